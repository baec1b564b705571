// Package logging builds the application's zap logger. The TUI owns the
// terminal, so logs go to a file rather than stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// File is the log destination. Empty resolves DefaultPath.
	File string

	// Level is a zap level name ("debug", "info", ...). Empty means info.
	Level string

	// Verbose forces the debug level.
	Verbose bool
}

// New builds a production JSON logger writing to opts.File.
func New(opts Options) (*zap.Logger, error) {
	path := opts.File
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// DefaultPath resolves the log file path in priority order:
// 1. WMVIEW_LOG_FILE environment variable
// 2. $XDG_STATE_HOME/wmview/wmview.log
// 3. ~/.local/state/wmview/wmview.log
func DefaultPath() (string, error) {
	if p := os.Getenv("WMVIEW_LOG_FILE"); p != "" {
		return p, nil
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "wmview", "wmview.log"), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
