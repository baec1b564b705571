package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wmview/internal/app"
	"github.com/abhisek/wmview/internal/llm"
	"github.com/abhisek/wmview/internal/predict"
	"github.com/abhisek/wmview/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	resume, _ := cmd.Flags().GetBool("resume")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	opts := app.Options{
		Source: cfg.Dataset,
		Resume: resume,
		Logger: logger,
	}

	var events store.EventRepo
	if cfg.History && !noHistory {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		opts.Attempts = st.AttemptRepo()
		opts.Snapshots = st.SnapshotRepo()
		events = st.EventRepo()
	} else if resume {
		fmt.Fprintln(os.Stderr, "History is disabled; --resume has no effect.")
	}

	provider, err := llm.NewProvider(ctx, cfg.LLMConfig(), events, logger)
	if err != nil {
		logger.Info("llm provider unavailable", zap.Error(err))
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Model predictions will be unavailable.")
	} else {
		opts.Predictor = predict.New(provider, predict.DefaultConfig())
	}

	logger.Info("starting viewer",
		zap.String("dataset", opts.Source),
		zap.Bool("history", opts.Attempts != nil),
		zap.Bool("resume", resume))
	return app.Run(opts)
}
