package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plantrace/internal/batch"
	"github.com/roach88/plantrace/internal/report"
)

// MetricsOptions holds flags for the metrics command.
type MetricsOptions struct {
	*RootOptions
	Between   bool
	Jobs      int
	Database  string
	Precision int
}

// NewMetricsCommand creates the metrics command.
func NewMetricsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MetricsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "metrics <data-dir> <out.csv>",
		Short: "Write one metrics record per problem",
		Long: `Parse every trace under the data directory and write one CSV record per
problem: finished, plans generated and visited, dead ends, plan length,
plans until first landmark, normalized add work and reopen counts.

Failed traces are reported and left out of the CSV.

Exit codes:
  0 - All traces parsed
  1 - One or more traces failed
  2 - Command error (invalid paths, bad config, database errors)

Examples:
  plantrace metrics ./data out.csv
  plantrace metrics ./data out.csv --between --jobs 8
  plantrace metrics ./data out.csv --db results.db --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetrics(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Between, "between", false, "append the plans_between_landmarks column")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "concurrent traces (0 uses config, then GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "save the run to this SQLite database")
	cmd.Flags().IntVar(&opts.Precision, "precision", 0, "decimals of normalized_add_work (0 uses config)")

	return cmd
}

func runMetrics(opts *MetricsOptions, dataDir, outPath string, cmd *cobra.Command) error {
	logger := opts.logger(cmd)
	traces, err := opts.discoverTraces(dataDir)
	if err != nil {
		return err
	}

	rep, batchErr := runBatch(cmd, traces, batch.Options{
		Workers:   opts.workers(opts.Jobs),
		Mode:      batch.ModeMetrics,
		Logger:    logger,
		MaxRounds: opts.settings().MaxRounds,
	})
	if rep == nil {
		return batchErr
	}

	precision := opts.Precision
	if precision <= 0 {
		precision = opts.settings().AddWorkPrecision
	}
	csvOpts := report.MetricsOptions{Between: opts.Between, AddWorkPrecision: precision}

	var rows []report.MetricsRow
	for _, res := range rep.Succeeded() {
		rows = append(rows, report.MetricsRow{Problem: res.ID, Metrics: res.Metrics})
	}
	if err := report.WriteFile(outPath, func(w io.Writer) error {
		return report.WriteMetricsCSV(w, rows, csvOpts)
	}); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, "failed to write metrics", err)
	}

	if err := saveReport(cmd, opts.database(opts.Database), dataDir, rep); err != nil {
		return err
	}

	return finishBatch(opts.formatter(cmd), summarize(rep, []string{outPath}), batchErr)
}
