package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wmview/internal/dataset"
	"github.com/abhisek/wmview/internal/screens/browse"
	"github.com/abhisek/wmview/internal/store"
	"github.com/abhisek/wmview/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <sample-id> <answer>",
	Short: "Check an answer for one sample without opening the viewer",
	Example: `  wmview verify sample-0042 '[3, 1, 2]'
  wmview verify sample-0042 '[3, 1, 2]' --reveal`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reveal, _ := cmd.Flags().GetBool("reveal")

		ds, err := dataset.Load(ctx, cfg.Dataset)
		if err != nil {
			return err
		}
		i, ok := ds.IndexOf(args[0])
		if !ok {
			return fmt.Errorf("sample %q not found in %s", args[0], ds.Source)
		}
		sample := ds.At(i)
		raw := args[1]

		res, verr := verify.Verify(raw, sample.GTAnswer)

		w := cmd.OutOrStdout()
		switch {
		case verr != nil:
			fmt.Fprintln(w, "Rejected:", verr)
		case res.Correct:
			fmt.Fprintln(w, "Correct!")
		default:
			fmt.Fprintln(w, "Not quite.")
		}
		if reveal {
			fmt.Fprintln(w, "Ground truth:", sample.GTAnswer.String())
		}

		if !cfg.History {
			return nil
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		_, err = st.AttemptRepo().Append(ctx, store.AttemptData{
			SessionID: uuid.NewString(),
			SampleID:  sample.ID,
			Task:      sample.TaskName,
			Setting:   string(sample.Setting()),
			StepCount: sample.StepCount(),
			Source:    browse.UserSource,
			RawInput:  raw,
			Correct:   verr == nil && res.Correct,
			ErrorKind: verify.Kind(verr),
		})
		if err != nil {
			logger.Warn("failed to journal attempt", zap.String("sample_id", sample.ID), zap.Error(err))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().Bool("reveal", false, "Also print the ground truth")
}
