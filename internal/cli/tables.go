package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/plantrace/internal/report"
)

// TableSummary is the command output of the CSV transform commands.
type TableSummary struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Rows   int    `json:"rows"`
}

func (s TableSummary) String() string {
	return fmt.Sprintf("wrote %s (%d rows from %s)", s.Output, s.Rows, s.Input)
}

// NewSuccessCommand creates the success command.
func NewSuccessCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "success <in.csv> <out.csv>",
		Short: "Rescale a per-problem heuristic table to success scores",
		Long: `Rescale every row of a per-problem CSV (lower is better) to [0,1]:

  score = (max - v) / (max - min)

A row whose values are all equal scores 1 everywhere. Missing or
non-numeric cells stay empty.

Example:
  plantrace success plans_until_landmark.csv success.csv`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return transformTable(rootOpts, args[0], args[1], report.SuccessScores, cmd)
		},
	}
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <in.csv> <out.csv>",
		Short: "Summarize a per-problem heuristic table by domain",
		Long: `Condense a per-problem CSV (lower is better) into two rows per domain,
where the domain is the problem id up to its first "-":

  <domain>_mean_pct_above_avg  mean percent above the per-problem average
  <domain>_win_rate            share of problems won, ties split evenly

Example:
  plantrace summary plans_until_landmark.csv summary.csv`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return transformTable(rootOpts, args[0], args[1], report.CompactSummary, cmd)
		},
	}
}

func transformTable(opts *RootOptions, inPath, outPath string, fn func(*report.Table) (*report.Table, error), cmd *cobra.Command) error {
	in, err := report.ReadCSVFile(inPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return WrapExitError(ExitCommandError, ErrCodeNotFound, "input CSV not found", err)
		}
		return WrapExitError(ExitCommandError, ErrCodeReadFailed, "failed to read input CSV", err)
	}

	out, err := fn(in)
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeReadFailed, "invalid input CSV", err)
	}

	if err := report.WriteFile(outPath, func(w io.Writer) error {
		return out.WriteCSV(w)
	}); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, "failed to write CSV", err)
	}

	return opts.formatter(cmd).Success(TableSummary{Input: inPath, Output: outPath, Rows: len(out.Rows)})
}
