package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wmview/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled answer attempts and accuracy per source",
	RunE: func(cmd *cobra.Command, args []string) error {
		sampleID, _ := cmd.Flags().GetString("sample")
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.AttemptRepo()
		opts := store.QueryOpts{SampleID: sampleID}

		accuracy, err := repo.AccuracyBySource(ctx, opts)
		if err != nil {
			return fmt.Errorf("query accuracy: %w", err)
		}
		opts.Limit = limit
		attempts, err := repo.List(ctx, opts)
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(attempts) == 0 {
			fmt.Fprintln(w, "No attempts recorded yet.")
			return nil
		}
		printAccuracy(w, accuracy)
		fmt.Fprintln(w)
		printAttempts(w, attempts)
		return nil
	},
}

func printAccuracy(w io.Writer, stats []store.SourceAccuracy) {
	fmt.Fprintf(w, "%-32s  %8s  %7s  %8s\n", "Source", "Attempts", "Correct", "Accuracy")
	fmt.Fprintln(w, strings.Repeat("─", 62))
	for _, a := range stats {
		fmt.Fprintf(w, "%-32s  %8d  %7d  %7.1f%%\n",
			truncate(a.Source, 32), a.Attempts, a.Correct, 100*a.Rate())
	}
}

func printAttempts(w io.Writer, attempts []store.Attempt) {
	fmt.Fprintf(w, "%-6s  %-19s  %-16s  %-20s  %-24s  %s\n",
		"Seq", "Timestamp", "Sample", "Source", "Answer", "Result")
	fmt.Fprintln(w, strings.Repeat("─", 100))
	for _, a := range attempts {
		fmt.Fprintf(w, "%-6d  %-19s  %-16s  %-20s  %-24s  %s\n",
			a.Sequence,
			a.Timestamp.Local().Format("2006-01-02 15:04:05"),
			truncate(a.SampleID, 16),
			truncate(a.Source, 20),
			truncate(a.RawInput, 24),
			attemptResult(a),
		)
	}
}

func attemptResult(a store.Attempt) string {
	switch {
	case a.ErrorKind != "":
		return "rejected: " + a.ErrorKind
	case a.Correct:
		return "✓"
	default:
		return "✗"
	}
}

func init() {
	historyCmd.Flags().String("sample", "", "Only show attempts for this sample ID")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
}
