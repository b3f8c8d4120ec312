package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/plantrace/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// RunList is the output of runs without --run.
type RunList struct {
	Runs []store.RunRecord `json:"runs"`
}

// runsHeader is the text-mode header of RunList.
var runsHeader = []string{"RUN", "MODE", "POLICY", "STARTED", "TRACES", "DATA"}

// RunDetail is the output of runs --run.
type RunDetail struct {
	Run       store.RunRecord       `json:"run"`
	Metrics   []store.MetricsRecord `json:"metrics"`
	Positions int                   `json:"positions"`
	Failures  []store.FailureRecord `json:"failures"`
}

func (d RunDetail) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s, %s)\n", d.Run.ID, d.Run.Mode, d.Run.Policy)
	fmt.Fprintf(&b, "data %s\n", d.Run.DataDir)
	fmt.Fprintf(&b, "%d traces, %d position rows, %d failures", len(d.Metrics), d.Positions, len(d.Failures))
	for _, m := range d.Metrics {
		fmt.Fprintf(&b, "\n  %s finished=%t rounds=%d discarded=%d", m.Problem, m.Metrics.Finished, m.Rounds, m.Discarded)
	}
	for _, f := range d.Failures {
		fmt.Fprintf(&b, "\n  ✗ %s [%s] %s", f.Problem, f.Code, f.Message)
	}
	return b.String()
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved runs",
		Long: `List the batch runs saved in a results database, newest first, or show
the metrics and failures of one run.

Examples:
  plantrace runs --db results.db
  plantrace runs --db results.db --run 01890a5d-ac96-774b-bcce-b302099a8057`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one run")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	dbPath := opts.database(opts.Database)
	if dbPath == "" {
		return NewExitError(ExitCommandError, ErrCodeConfig, "no database: pass --db or set database in the config file")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, ErrCodeDatabase, "failed to list runs", err)
		}
		if f.Format == "json" {
			return f.Success(RunList{Runs: runs})
		}
		if len(runs) == 0 {
			return f.Success("No runs found.")
		}
		rows, err := runRows(ctx, st, runs)
		if err != nil {
			return WrapExitError(ExitCommandError, ErrCodeDatabase, "failed to count traces", err)
		}
		return f.Table(runsHeader, rows)
	}

	detail, err := loadRunDetail(ctx, st, opts.RunID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, ErrCodeNotFound, "run not found", err)
		}
		return WrapExitError(ExitCommandError, ErrCodeDatabase, "failed to read run", err)
	}
	return f.SuccessRun(detail.Run.ID, detail)
}

func loadRunDetail(ctx context.Context, st *store.Store, id string) (RunDetail, error) {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return RunDetail{}, err
	}
	metrics, err := st.ReadMetrics(ctx, id)
	if err != nil {
		return RunDetail{}, err
	}
	positions, err := st.ReadPositions(ctx, id)
	if err != nil {
		return RunDetail{}, err
	}
	failures, err := st.ReadFailures(ctx, id)
	if err != nil {
		return RunDetail{}, err
	}
	return RunDetail{Run: run, Metrics: metrics, Positions: len(positions), Failures: failures}, nil
}

// runRows renders runs for OutputFormatter.Table. TRACES counts stored
// metrics and failures together.
func runRows(ctx context.Context, st *store.Store, runs []store.RunRecord) ([][]string, error) {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		metrics, err := st.ReadMetrics(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		failures, err := st.ReadFailures(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		policy := r.Policy
		if r.Mode != "positions" {
			policy = "-"
		}
		rows[i] = []string{
			r.ID,
			r.Mode,
			policy,
			r.StartedAt.Local().Format(time.DateTime),
			strconv.Itoa(len(metrics) + len(failures)),
			r.DataDir,
		}
	}
	return rows, nil
}
