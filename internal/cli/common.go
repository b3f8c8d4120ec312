package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/plantrace/internal/batch"
	"github.com/roach88/plantrace/internal/config"
	"github.com/roach88/plantrace/internal/ir"
	"github.com/roach88/plantrace/internal/source"
	"github.com/roach88/plantrace/internal/store"
)

// settings returns the loaded configuration, or the defaults when the
// command runs without the root pre-run (tests construct commands directly).
func (o *RootOptions) settings() config.Config {
	if o.Settings != nil {
		return *o.Settings
	}
	return config.Default()
}

// logger builds the command logger: text on stderr, Debug when verbose.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	logLevel := slog.LevelInfo
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// policy resolves the ordering policy: the flag wins over the config file.
func (o *RootOptions) policy(flag string) (ir.OrderingPolicy, error) {
	name := flag
	if name == "" {
		name = o.settings().Policy
	}
	p, err := ir.ParsePolicy(name)
	if err != nil {
		return p, WrapExitError(ExitCommandError, ErrCodeConfig, "invalid --policy", err)
	}
	return p, nil
}

// workers resolves the worker count: a positive flag wins over the config.
func (o *RootOptions) workers(flag int) int {
	if flag > 0 {
		return flag
	}
	return o.settings().Workers
}

// database resolves the results database path: the flag wins over the config.
func (o *RootOptions) database(flag string) string {
	if flag != "" {
		return flag
	}
	return o.settings().Database
}

// discoverTraces lists the traces of a data directory.
func (o *RootOptions) discoverTraces(dataDir string) ([]source.Trace, error) {
	traces, err := source.Discover(dataDir, o.settings().SourceOptions())
	if err != nil {
		var se *source.Error
		if errors.As(err, &se) {
			switch se.Code {
			case source.ErrCodeNotFound:
				return nil, WrapExitError(ExitCommandError, ErrCodeNotFound, "data directory not found", err)
			case source.ErrCodeDuplicateID:
				return nil, WrapExitError(ExitCommandError, ErrCodeReadFailed, "duplicate problem id in data directory", err)
			}
		}
		return nil, WrapExitError(ExitCommandError, ErrCodeReadFailed, "failed to scan data directory", err)
	}
	return traces, nil
}

// runBatch parses traces with the worker pool. SIGINT and SIGTERM cancel
// the batch; traces not yet started are then recorded as cancelled.
func runBatch(cmd *cobra.Command, traces []source.Trace, opts batch.Options) (*batch.Report, error) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := batch.Run(ctx, traces, opts)
	if err != nil {
		if rep == nil {
			return nil, WrapExitError(ExitCommandError, ErrCodeGeneric, "batch failed", err)
		}
		return rep, WrapExitError(ExitFailure, ErrCodeTraces, "batch interrupted", err)
	}
	return rep, nil
}

// saveReport persists a batch report when a database path is configured.
func saveReport(cmd *cobra.Command, dbPath, dataDir string, rep *batch.Report) error {
	if dbPath == "" {
		return nil
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
	if err := st.SaveRun(ctx, store.BundleFromReport(rep, dataDir)); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeDatabase, "failed to save run", err)
	}
	slog.Info("run saved", "run", rep.RunID, "db", dbPath)
	return nil
}

// TraceFailure is a failed trace in command output.
type TraceFailure struct {
	Problem string `json:"problem"`
	Source  string `json:"source"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchSummary is the command output of the batch commands.
type BatchSummary struct {
	RunID     string         `json:"run_id"`
	Mode      string         `json:"mode"`
	Policy    string         `json:"policy,omitempty"`
	Traces    int            `json:"traces"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Outputs   []string       `json:"outputs"`
	Failures  []TraceFailure `json:"failures,omitempty"`
}

func (s BatchSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d traces, %d succeeded, %d failed", s.Mode, s.Traces, s.Succeeded, s.Failed)
	for _, out := range s.Outputs {
		fmt.Fprintf(&b, "\n  wrote %s", out)
	}
	for _, f := range s.Failures {
		fmt.Fprintf(&b, "\n  ✗ %s [%s] %s", f.Problem, f.Code, f.Message)
	}
	return b.String()
}

func summarize(rep *batch.Report, outputs []string) BatchSummary {
	s := BatchSummary{
		RunID:   rep.RunID,
		Mode:    rep.Mode.String(),
		Traces:  len(rep.Results),
		Outputs: outputs,
	}
	if rep.Mode == batch.ModePositions {
		s.Policy = rep.Policy.String()
	}
	if s.Outputs == nil {
		s.Outputs = []string{}
	}
	for _, res := range rep.Results {
		if !res.Failed() {
			s.Succeeded++
			continue
		}
		s.Failed++
		s.Failures = append(s.Failures, TraceFailure{
			Problem: res.ID,
			Source:  res.Source,
			Code:    batch.ErrorCode(res.Err),
			Message: res.Err.Error(),
		})
	}
	return s
}

// finishBatch prints the summary and maps trace failures to ExitFailure.
// An earlier error (an interrupted batch) takes precedence.
func finishBatch(f *OutputFormatter, s BatchSummary, prior error) error {
	if err := f.SuccessRun(s.RunID, s); err != nil {
		return err
	}
	if prior != nil {
		return prior
	}
	if s.Failed > 0 {
		return NewExitError(ExitFailure, ErrCodeTraces, fmt.Sprintf("%d of %d traces failed", s.Failed, s.Traces))
	}
	return nil
}
