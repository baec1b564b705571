package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wmview/internal/config"
	"github.com/abhisek/wmview/internal/logging"
	"github.com/abhisek/wmview/internal/store"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "wmview",
	Short: "Browse and check world-model benchmark samples",
	Long: `wmview is a terminal viewer for world-model benchmark datasets.

Samples are filtered by setting, task and step count, answers are verified
against the ground truth, and every attempt can be journaled to a local
SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides WMVIEW_CONFIG env var)")
	rootCmd.PersistentFlags().String("dataset", "", "Dataset path or http(s) URL (overrides WMVIEW_DATASET env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WMVIEW_DB env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")

	rootCmd.Flags().Bool("resume", false, "Restore the last viewed position")
	rootCmd.Flags().Bool("no-history", false, "Do not journal attempts or save the position")

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration, applies flags over it and builds the
// file logger.
func setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("dataset"); v != "" {
		loaded.Dataset = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		loaded.DB = v
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = loaded

	verbose, _ := cmd.Flags().GetBool("verbose")
	l, err := logging.New(logging.Options{
		File:    cfg.Log.File,
		Level:   cfg.Log.Level,
		Verbose: verbose,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = l.With(zap.String("command", cmd.Name()))
	return nil
}

// resolveDBPath returns the database path from --db, WMVIEW_DB or the
// config file, in that priority, falling back to the default XDG path.
func resolveDBPath() (string, error) {
	if cfg != nil && cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openStore opens the journal database.
func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("store opened", zap.String("path", dbPath))
	return s, nil
}
