// Package config resolves wmview settings from defaults, an optional YAML
// file and WMVIEW_* environment variables. Command-line flags are applied
// on top by the cmd package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/llm"
)

// Config holds all wmview configuration.
type Config struct {
	// Dataset is a JSON Lines file path or http(s) URL.
	Dataset string `yaml:"dataset"`

	// DB is the journal database path. Empty resolves the default path.
	DB string `yaml:"db"`

	// History enables the attempt journal and position snapshots.
	History bool `yaml:"history"`

	Log  LogConfig  `yaml:"log"`
	LLM  LLMConfig  `yaml:"llm"`
	Eval EvalConfig `yaml:"eval"`
}

// LogConfig configures the file logger.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// LLMConfig selects the prediction model. Empty fields keep the provider
// defaults from the llm package.
type LLMConfig struct {
	Provider string `yaml:"provider"` // anthropic, openai, gemini, openrouter, mock
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// EvalConfig configures batch evaluation.
type EvalConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Dataset: dataset.DefaultSource,
		History: true,
		Log:     LogConfig{Level: "info"},
		Eval:    EvalConfig{Concurrency: 4},
	}
}

// DefaultPath resolves the config file path in priority order:
// 1. WMVIEW_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/wmview/config.yaml
// 3. ~/.config/wmview/config.yaml
func DefaultPath() string {
	if p := os.Getenv("WMVIEW_CONFIG"); p != "" {
		return p
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "wmview", "config.yaml")
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path uses DefaultPath, and a missing
// default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WMVIEW_DATASET"); v != "" {
		c.Dataset = v
	}
	if v := os.Getenv("WMVIEW_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("WMVIEW_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.History = b
		}
	}
	if v := os.Getenv("WMVIEW_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("WMVIEW_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("WMVIEW_EVAL_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Eval.Concurrency = n
		}
	}
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dataset) == "" {
		return fmt.Errorf("dataset source is required")
	}
	if c.Eval.Concurrency < 1 {
		return fmt.Errorf("eval concurrency must be at least 1, got %d", c.Eval.Concurrency)
	}
	if c.LLM.Timeout != "" {
		if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
			return fmt.Errorf("llm timeout: %w", err)
		}
	}
	return nil
}

// LLMConfig layers the file's llm section over the llm package defaults,
// then applies the WMVIEW_* LLM environment variables. With no provider
// configured anywhere, well-known API key variables are probed.
func (c *Config) LLMConfig() llm.Config {
	cfg := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
	}
	cfg.Override(c.LLM.Model, c.LLM.APIKey, c.LLM.BaseURL)
	if d, err := time.ParseDuration(c.LLM.Timeout); err == nil && d > 0 {
		cfg.Timeout = d
	}

	llm.ApplyEnv(&cfg)

	if c.LLM.Provider == "" && os.Getenv("WMVIEW_LLM_PROVIDER") == "" && cfg.Validate() != nil {
		if discovered, ok := llm.DiscoverConfig(); ok {
			discovered.Timeout = cfg.Timeout
			return discovered
		}
	}
	return cfg
}
