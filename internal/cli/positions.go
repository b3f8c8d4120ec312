package cli

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/plantrace/internal/batch"
	"github.com/roach88/plantrace/internal/ir"
	"github.com/roach88/plantrace/internal/report"
)

// PositionsOptions holds flags for the positions command.
type PositionsOptions struct {
	*RootOptions
	Policy   string
	Typed    bool
	Out      string
	Jobs     int
	Database string
}

// NewPositionsCommand creates the positions command.
func NewPositionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PositionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "positions <data-dir>",
		Short: "Write per-problem landmark position histograms",
		Long: `Parse every trace under the data directory and record, for each resolved
flaw selection containing landmarks, the position the ordering policy gives
each landmark. Writes <out>/<problem>/` + report.PositionsFile + ` per problem.

Policies: ` + policyList() + `

Examples:
  plantrace positions ./data
  plantrace positions ./data --policy ff --typed --out ./hist`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPositions(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", "", "landmark ordering policy (empty uses config)")
	cmd.Flags().BoolVar(&opts.Typed, "typed", false, "write position,landmark_type,count instead of value,count")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output root directory (defaults to the data directory)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "concurrent traces (0 uses config, then GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "save the run to this SQLite database")

	return cmd
}

func runPositions(opts *PositionsOptions, dataDir string, cmd *cobra.Command) error {
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

	outRoot := opts.Out
	if outRoot == "" {
		outRoot = dataDir
	}
	var outputs []string
	for _, res := range rep.Succeeded() {
		p := filepath.Join(outRoot, res.ID, report.PositionsFile)
		if err := report.WriteFile(p, func(w io.Writer) error {
			return report.WritePositionsCSV(w, res.Positions, opts.Typed)
		}); err != nil {
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed, "failed to write positions", err)
		}
		outputs = append(outputs, p)
	}

	if err := saveReport(cmd, opts.database(opts.Database), dataDir, rep); err != nil {
		return err
	}

	return finishBatch(opts.formatter(cmd), summarize(rep, outputs), batchErr)
}

func policyList() string {
	return strings.Join(ir.PolicyNames, ", ")
}
