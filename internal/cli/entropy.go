package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plantrace/internal/batch"
	"github.com/roach88/plantrace/internal/report"
)

// EntropyOptions holds flags for the entropy command.
type EntropyOptions struct {
	*RootOptions
	Policy string
	Jobs   int
}

// NewEntropyCommand creates the entropy command.
func NewEntropyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EntropyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "entropy <data-dir> <out.csv>",
		Short: "Write the landmark position entropy of each problem",
		Long: `Compute the Shannon entropy, in bits, of each problem's landmark position
distribution under the ordering policy. Problems that never resolved a
landmark get an empty cell.

Examples:
  plantrace entropy ./data entropy.csv
  plantrace entropy ./data entropy_ff.csv --policy ff`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntropy(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", "", "landmark ordering policy (empty uses config)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "concurrent traces (0 uses config, then GOMAXPROCS)")

	return cmd
}

func runEntropy(opts *EntropyOptions, dataDir, outPath string, cmd *cobra.Command) error {
	policy, err := opts.policy(opts.Policy)
	if err != nil {
		return err
	}
	traces, err := opts.discoverTraces(dataDir)
	if err != nil {
		return err
	}

	rep, batchErr := runBatch(cmd, traces, batch.Options{
		Workers:   opts.workers(opts.Jobs),
		Mode:      batch.ModePositions,
		Policy:    policy,
		Logger:    opts.logger(cmd),
		MaxRounds: opts.settings().MaxRounds,
	})
	if rep == nil {
		return batchErr
	}

	var rows []report.EntropyRow
	for _, res := range rep.Succeeded() {
		rows = append(rows, report.EntropyRow{Problem: res.ID, Entropy: report.Entropy(res.Positions)})
	}
	if err := report.WriteFile(outPath, func(w io.Writer) error {
		return report.WriteEntropyCSV(w, rows)
	}); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, "failed to write entropy", err)
	}

	return finishBatch(opts.formatter(cmd), summarize(rep, []string{outPath}), batchErr)
}
