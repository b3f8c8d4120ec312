// Package batch parses many traces in parallel.
//
// Every trace gets its own engine.Parser on its own goroutine; a bounded
// errgroup caps concurrency. A failing trace is recorded in its Result and
// never cancels its siblings. Only context cancellation stops the batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/plantrace/internal/engine"
	"github.com/roach88/plantrace/internal/ir"
	"github.com/roach88/plantrace/internal/source"
)

// ErrUnknownMode is returned by ParseMode for unrecognized names.
var ErrUnknownMode = errors.New("unknown batch mode")

// Mode selects what is computed per trace.
type Mode int

const (
	// ModeMetrics runs the full parser and keeps the metrics record.
	ModeMetrics Mode = iota
	// ModeBetween runs only the lean plans-between-landmarks pass.
	ModeBetween
	// ModePositions runs the full parser and keeps the position table.
	ModePositions
)

var modeNames = map[Mode]string{
	ModeMetrics:   "metrics",
	ModeBetween:   "between",
	ModePositions: "positions",
}

// String returns the mode name.
func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeMetrics, fmt.Errorf("%w %q", ErrUnknownMode, name)
}

// Options configures Run.
type Options struct {
	// Workers caps concurrent traces. Zero or negative means GOMAXPROCS.
	Workers int

	// Mode selects the per-trace computation.
	Mode Mode

	// Policy is the landmark ordering policy for ModePositions.
	Policy ir.OrderingPolicy

	// MaxRounds caps the rounds parsed per trace in the full-parser modes.
	// Zero means unlimited.
	MaxRounds int64

	// RunIDs generates the run id. Nil means UUIDv7Generator.
	RunIDs IDGenerator

	// Logger receives per-trace progress. Nil means slog.Default().
	Logger *slog.Logger
}

// Result is the outcome of one trace.
type Result struct {
	// ID is the problem id of the trace.
	ID string

	// Source is the trace location, for diagnostics.
	Source string

	// Metrics is set in ModeMetrics and ModePositions.
	Metrics ir.RunMetrics

	// Positions is set in ModePositions.
	Positions *ir.LandmarkPositionTable

	// Between is the lean-pass value in ModeBetween; nil when not applicable.
	Between *float64

	// Digest is the hex SHA-256 of the decoded trace content.
	Digest string

	// Rounds and Discarded come from the full parser.
	Rounds    int64
	Discarded int64

	// Duration is the wall time spent on this trace.
	Duration time.Duration

	// Err is the per-trace failure, if any.
	Err error
}

// Failed reports whether the trace failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Report is the outcome of a batch.
type Report struct {
	// RunID uniquely identifies the batch (UUIDv7, time-ordered).
	RunID string

	Mode    Mode
	Policy  ir.OrderingPolicy
	Started time.Time
	Ended   time.Time

	// Results are sorted by ID, then Source.
	Results []Result
}

// Succeeded returns the results without errors.
func (r *Report) Succeeded() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Failures returns the results with errors.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// MergedPositions sums the position tables of all successful traces.
func (r *Report) MergedPositions() *ir.LandmarkPositionTable {
	total := ir.NewLandmarkPositionTable()
	for _, res := range r.Succeeded() {
		total.Merge(res.Positions)
	}
	return total
}

// Run parses traces concurrently and returns one Result per trace.
//
// The returned error is non-nil only when ctx is cancelled; traces that did
// not start before cancellation carry ctx.Err() in their Result.
func Run(ctx context.Context, traces []source.Trace, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ids := opts.RunIDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	runID, err := ids.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	report := &Report{
		RunID:   runID,
		Mode:    opts.Mode,
		Policy:  opts.Policy,
		Started: time.Now().UTC(),
		Results: make([]Result, len(traces)),
	}

	logger.Info("batch started",
		"run", report.RunID,
		"mode", opts.Mode.String(),
		"traces", len(traces),
		"workers", workers)

	var g errgroup.Group
	g.SetLimit(workers)
	for i, tr := range traces {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Results[i] = Result{ID: tr.ID, Source: tr.Label(), Err: err}
				return nil
			}
			report.Results[i] = processTrace(tr, opts, logger)
			return nil
		})
	}
	// Goroutines never return errors; failures live in Result.Err.
	_ = g.Wait()

	report.Ended = time.Now().UTC()
	sort.SliceStable(report.Results, func(i, j int) bool {
		a, b := report.Results[i], report.Results[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Source < b.Source
	})

	logger.Info("batch finished",
		"run", report.RunID,
		"succeeded", len(report.Succeeded()),
		"failed", len(report.Failures()),
		"elapsed", report.Ended.Sub(report.Started))

	return report, ctx.Err()
}

func processTrace(tr source.Trace, opts Options, logger *slog.Logger) (res Result) {
	start := time.Now()
	res = Result{ID: tr.ID, Source: tr.Label()}
	defer func() { res.Duration = time.Since(start) }()

	rc, err := tr.Open()
	if err != nil {
		res.Err = err
		logger.Warn("trace open failed", "trace", tr.ID, "error", err)
		return res
	}
	defer rc.Close()

	h := ir.NewTraceHasher()
	r := io.TeeReader(rc, h)

	switch opts.Mode {
	case ModeBetween:
		res.Between, res.Err = engine.PlansBetweenLandmarks(r)
	default:
		parsed, err := engine.ParseTrace(tr.ID, r, engine.Options{
			Policy:    opts.Policy,
			Logger:    logger,
			MaxRounds: opts.MaxRounds,
		})
		res.Err = err
		res.Metrics = parsed.Metrics
		res.Rounds = parsed.Rounds
		res.Discarded = parsed.Discarded
		if opts.Mode == ModePositions {
			res.Positions = parsed.Positions
		}
	}

	if res.Err != nil {
		logger.Warn("trace failed", "trace", tr.ID, "source", res.Source, "error", res.Err)
		return res
	}
	res.Digest = ir.HexDigest(h)
	logger.Debug("trace done", "trace", tr.ID, "digest", res.Digest)
	return res
}

// Failure codes for errors that carry no code of their own.
const (
	CodeCancelled = "CANCELLED"
	CodeError     = "ERROR"
)

// ErrorCode returns a stable code for a per-trace failure: the structural
// error code, the source error code, or a generic fallback.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var se *engine.StructuralError
	if errors.As(err, &se) {
		return string(se.Code)
	}
	if engine.IsRoundsExceededError(err) {
		return engine.ErrCodeRoundsExceeded
	}
	var srcErr *source.Error
	if errors.As(err, &srcErr) {
		return srcErr.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancelled
	}
	return CodeError
}
