package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/plantrace/internal/batch"
	"github.com/roach88/plantrace/internal/report"
)

// BetweenOptions holds flags for the between command.
type BetweenOptions struct {
	*RootOptions
	Jobs     int
	Database string
}

// NewBetweenCommand creates the between command.
func NewBetweenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BetweenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "between <data-dir> <in.csv> <out.csv>",
		Short: "Append plans_between_landmarks to a metrics CSV",
		Long: `Run the lean plans-between-landmarks pass over every trace and append the
result as a new column of an existing per-problem CSV, keyed by its
problem column. Problems without a trace, or whose trace failed, get an
empty cell. The command refuses a CSV that already has the column.

Examples:
  plantrace between ./data metrics.csv metrics_between.csv
  plantrace between ./data metrics.csv metrics.csv --jobs 4`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBetween(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "concurrent traces (0 uses config, then GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "save the run to this SQLite database")

	return cmd
}

func runBetween(opts *BetweenOptions, dataDir, inPath, outPath string, cmd *cobra.Command) error {
	in, err := report.ReadCSVFile(inPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return WrapExitError(ExitCommandError, ErrCodeNotFound, "input CSV not found", err)
		}
		return WrapExitError(ExitCommandError, ErrCodeReadFailed, "failed to read input CSV", err)
	}
	if in.Column(report.BetweenColumn) >= 0 {
		return NewExitError(ExitCommandError, ErrCodeConfig, "input CSV already has a "+report.BetweenColumn+" column")
	}

	traces, err := opts.discoverTraces(dataDir)
	if err != nil {
		return err
	}

	rep, batchErr := runBatch(cmd, traces, batch.Options{
		Workers: opts.workers(opts.Jobs),
		Mode:    batch.ModeBetween,
		Logger:  opts.logger(cmd),
	})
	if rep == nil {
		return batchErr
	}

	values := make(map[string]string, len(rep.Results))
	for _, res := range rep.Succeeded() {
		values[res.ID] = report.FormatFloat(res.Between)
	}
	merged, err := report.MergeColumn(in, report.BetweenColumn, values)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeReadFailed, "failed to merge column", err)
	}
	if err := report.WriteFile(outPath, func(w io.Writer) error {
		return merged.WriteCSV(w)
	}); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, "failed to write CSV", err)
	}

	if err := saveReport(cmd, opts.database(opts.Database), dataDir, rep); err != nil {
		return err
	}

	return finishBatch(opts.formatter(cmd), summarize(rep, []string{outPath}), batchErr)
}
