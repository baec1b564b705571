package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/eval"
	"github.com/abhisek/wmview/internal/llm"
	"github.com/abhisek/wmview/internal/predict"
	"github.com/abhisek/wmview/internal/store"
	"github.com/abhisek/wmview/internal/viewer"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Ask the configured model to answer every sample in a filter",
	Long: `Runs model predictions over the samples selected by --setting, --task
and --steps, verifies every answer against the ground truth and prints the
accuracy overall and per task. Each answer is journaled as an attempt
unless history is disabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		filter, err := evalFilter(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency < 1 {
			concurrency = cfg.Eval.Concurrency
		}

		ds, err := dataset.Load(ctx, cfg.Dataset)
		if err != nil {
			return err
		}
		samples := selectSamples(ds, filter, limit)
		if len(samples) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No samples match the filters.")
			return nil
		}

		var (
			attempts store.AttemptRepo
			events   store.EventRepo
		)
		if cfg.History {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			attempts = st.AttemptRepo()
			events = st.EventRepo()
		}

		provider, err := llm.NewProvider(ctx, cfg.LLMConfig(), events, logger)
		if err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}

		errOut := cmd.ErrOrStderr()
		var done atomic.Int64
		runner := eval.NewRunner(predict.New(provider, predict.DefaultConfig()), eval.Options{
			Concurrency: concurrency,
			Attempts:    attempts,
			Logger:      logger,
			OnResult: func(r eval.Result) {
				fmt.Fprintf(errOut, "\r%d/%d", done.Add(1), len(samples))
			},
		})

		report, err := runner.Run(ctx, samples)
		fmt.Fprintln(errOut)
		if errors.Is(err, context.Canceled) {
			return errors.New("eval interrupted")
		}
		if err != nil {
			return err
		}

		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

// evalFilter builds the sample filter from the selector flags, using the
// same parsing as the viewer's selectors.
func evalFilter(cmd *cobra.Command) (viewer.Filter, error) {
	f := viewer.NoFilter()

	setting, _ := cmd.Flags().GetString("setting")
	s, err := dataset.ParseSetting(setting)
	if err != nil {
		return f, err
	}
	f.Setting = s

	f.Task, _ = cmd.Flags().GetString("task")
	if strings.EqualFold(f.Task, "all") {
		f.Task = ""
	}

	if cmd.Flags().Changed("steps") {
		f.Steps, _ = cmd.Flags().GetInt("steps")
		if f.Steps < 0 {
			return f, fmt.Errorf("--steps must not be negative")
		}
	}
	return f, nil
}

// selectSamples returns the filtered samples in load order, truncated to
// limit when limit is positive.
func selectSamples(ds *dataset.Dataset, f viewer.Filter, limit int) []dataset.Sample {
	idx := viewer.ApplyFilter(ds.Samples(), f)
	if limit > 0 && len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]dataset.Sample, len(idx))
	for i, j := range idx {
		out[i] = ds.At(j)
	}
	return out
}

func printReport(w io.Writer, r *eval.Report) {
	fmt.Fprintf(w, "Run:       %s\n", r.RunID)
	fmt.Fprintf(w, "Model:     %s\n", r.Model)
	fmt.Fprintf(w, "Samples:   %d\n", r.Total)
	fmt.Fprintf(w, "Correct:   %d (%.1f%%)\n", r.Correct, 100*r.Accuracy())
	fmt.Fprintf(w, "Invalid:   %d\n", r.Invalid)
	fmt.Fprintf(w, "Failed:    %d\n", r.Failed)

	if len(r.ByTask) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-32s  %6s  %7s  %8s\n", "Task", "Total", "Correct", "Accuracy")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, t := range r.ByTask {
		fmt.Fprintf(w, "%-32s  %6d  %7d  %7.1f%%\n",
			truncate(t.Task, 32), t.Total, t.Correct, 100*t.Rate())
	}
}

func init() {
	evalCmd.Flags().String("setting", "", "Setting to evaluate: forward, inverse or all")
	evalCmd.Flags().String("task", "", "Task name to evaluate (default all)")
	evalCmd.Flags().Int("steps", viewer.AnyStep, "Step count to evaluate (default all)")
	evalCmd.Flags().IntP("limit", "n", 0, "Evaluate at most this many samples (0 = all)")
	evalCmd.Flags().IntP("concurrency", "c", 0, "Predictions in flight (default from config)")
}
