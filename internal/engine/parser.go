package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/plantrace/internal/ir"
)

// MaxLineBytes is the longest trace line ParseTrace accepts.
const MaxLineBytes = 1 << 20

// Options configures a Parser.
type Options struct {
	// Policy is the landmark ordering policy. Zero value is neutral.
	Policy ir.OrderingPolicy

	// Logger receives discard and failure diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// MaxRounds stops the parse with a *RoundsExceededError after this many
	// rounds. Zero means unlimited.
	MaxRounds int64
}

// Result is everything a Parser derived from one trace.
type Result struct {
	TraceID   string                    `json:"trace_id"`
	Metrics   ir.RunMetrics             `json:"metrics"`
	Positions *ir.LandmarkPositionTable `json:"-"`

	// Rounds counts every RoundStart, discarded rounds included.
	Rounds int64 `json:"rounds"`

	// Resolved counts rounds closed by a handle line.
	Resolved int64 `json:"resolved"`

	// Discarded counts rounds dropped without a handle line.
	Discarded int64 `json:"discarded"`

	// Lines is the number of lines consumed.
	Lines int64 `json:"lines"`
}

// Parser is the single-pass state machine for one trace.
//
// Feed lines in order, then read Result. A Parser is not safe for concurrent
// use; parse independent traces with independent Parsers.
type Parser struct {
	traceID string
	logger  *slog.Logger

	depth     *DepthTracker
	rounds    *RoundAccumulator
	metrics   *MetricsAggregator
	positions *PositionClassifier
	quota     *RoundQuota

	lines    int64
	resolved int64
	err      error

	onResolve func(ir.ResolvedRound, []Assignment)
}

// NewParser creates a Parser for the trace identified by traceID.
func NewParser(traceID string, opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		traceID:   traceID,
		logger:    logger,
		depth:     NewDepthTracker(),
		rounds:    NewRoundAccumulator(),
		metrics:   NewMetricsAggregator(),
		positions: NewPositionClassifier(opts.Policy),
		quota:     NewRoundQuota(opts.MaxRounds),
	}
}

// OnResolve registers a callback invoked after every resolved round with the
// positions assigned to its landmarks.
func (p *Parser) OnResolve(fn func(ir.ResolvedRound, []Assignment)) {
	p.onResolve = fn
}

// Feed consumes one line.
//
// Returns a *StructuralError (with TraceID and Line set) when the line visits
// a node that was never created, and a *RoundsExceededError when the round
// quota runs out. The error is sticky: once a parse has failed, every later
// Feed returns the same error.
func (p *Parser) Feed(line string) error {
	if p.err != nil {
		return p.err
	}
	p.lines++

	switch ev := Classify(line).(type) {
	case ir.RoundStart:
		if err := p.quota.Check(p.traceID); err != nil {
			p.err = err
			return err
		}
		p.metrics.RoundStarted()
		if p.rounds.RoundStart() {
			p.logger.Debug("discarded unresolved round",
				"trace", p.traceID,
				"line", p.lines,
				"round", p.rounds.Index()-1)
		}

	case ir.Candidate:
		p.rounds.Candidate(ev)

	case ir.Handle:
		r, ok := p.rounds.Handle(ev.ChosenID)
		if !ok {
			return nil
		}
		r.Depth = p.depth.Current()
		p.resolved++
		p.metrics.Resolve(r)
		as := p.positions.Classify(r, r.Depth)
		if p.onResolve != nil {
			p.onResolve(r, as)
		}

	case ir.NodeVisit:
		p.metrics.ObserveNode(ev.NodeID)
		p.metrics.ObserveVisitSeq(ev.VisitSeq)
		if err := p.depth.Visit(ev.VisitSeq, ev.NodeID); err != nil {
			var se *StructuralError
			if errors.As(err, &se) {
				se.TraceID = p.traceID
				se.Line = p.lines
			}
			p.err = err
			return err
		}

	case ir.ChildCreated:
		p.metrics.ObserveNode(ev.ChildID)
		p.depth.ChildCreated(ev.ChildID)

	case ir.Summary:
		p.metrics.Summary(ev)
	}

	return nil
}

// Err returns the error that stopped the parse, if any.
func (p *Parser) Err() error {
	return p.err
}

// Depth returns the current depth tracker state.
func (p *Parser) Depth() *DepthTracker {
	return p.depth
}

// Result returns the metrics and positions accumulated so far.
func (p *Parser) Result() Result {
	return Result{
		TraceID:   p.traceID,
		Metrics:   p.metrics.Finalize(),
		Positions: p.positions.Table(),
		Rounds:    p.rounds.Index(),
		Resolved:  p.resolved,
		Discarded: p.rounds.Discarded(),
		Lines:     p.lines,
	}
}

// ParseTrace parses a whole trace from r.
//
// On a structural error the partial Result is returned together with the
// error, so callers can report the state reached.
func ParseTrace(traceID string, r io.Reader, opts Options) (Result, error) {
	p := NewParser(traceID, opts)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	for sc.Scan() {
		if err := p.Feed(sc.Text()); err != nil {
			p.logger.Warn("trace parse failed", "trace", traceID, "error", err)
			return p.Result(), err
		}
	}
	if err := sc.Err(); err != nil {
		return p.Result(), fmt.Errorf("read trace %s: %w", traceID, err)
	}

	res := p.Result()
	p.logger.Debug("trace parsed",
		"trace", traceID,
		"lines", res.Lines,
		"rounds", res.Rounds,
		"discarded", res.Discarded,
		"finished", res.Metrics.Finished)
	return res, nil
}
