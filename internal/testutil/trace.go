package testutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/plantrace/internal/ir"
)

// TraceBuilder assembles synthetic planner traces for tests.
//
// Lines use the same shapes the planner logs, so every builder method
// produces exactly one line that engine.Classify recognizes. Visit sequence
// numbers are assigned by a monotonic counter starting at 1.
//
// Thread-safety: none. Build one trace per test.
type TraceBuilder struct {
	lines []string
	seq   int64
}

// NewTraceBuilder creates an empty trace.
func NewTraceBuilder() *TraceBuilder {
	return &TraceBuilder{}
}

// Round appends a round start line.
func (b *TraceBuilder) Round() *TraceBuilder {
	return b.Line("Selecting a flaw from [open conditions, unsafe links]")
}

// Candidate appends an untyped candidate line.
func (b *TraceBuilder) Candidate(id string, level ir.Level, work int64) *TraceBuilder {
	return b.Line(fmt.Sprintf("  #<%s> LL: %s ... ADD_WORK: %d", id, level, work))
}

// TypedCandidate appends a candidate line carrying a landmark type.
func (b *TraceBuilder) TypedCandidate(id string, level ir.Level, landmarkType string, work int64) *TraceBuilder {
	return b.Line(fmt.Sprintf("  #<%s> LL: %s TYPE: %s ... ADD_WORK: %d", id, level, landmarkType, work))
}

// Goal appends the goal pseudo-candidate.
func (b *TraceBuilder) Goal(work int64) *TraceBuilder {
	return b.Candidate(ir.GoalID, ir.NotLandmark, work)
}

// Handle appends a handle line choosing id.
func (b *TraceBuilder) Handle(id string) *TraceBuilder {
	return b.Line(fmt.Sprintf("handle #<%s>", id))
}

// Visit appends a node visit with the next sequence number.
func (b *TraceBuilder) Visit(nodeID int64) *TraceBuilder {
	b.seq++
	return b.VisitSeq(b.seq, nodeID)
}

// VisitSeq appends a node visit with an explicit sequence number. The
// counter used by Visit continues from seq.
func (b *TraceBuilder) VisitSeq(seq, nodeID int64) *TraceBuilder {
	b.seq = seq
	return b.Line(fmt.Sprintf("%d: CURRENT PLAN (id %d) with rank (3,2)", seq, nodeID))
}

// Child appends a child creation line.
func (b *TraceBuilder) Child(childID int64) *TraceBuilder {
	return b.Line(fmt.Sprintf("CHILD (id %d) with rank (4,1)", childID))
}

// Summary appends a summary counter line.
func (b *TraceBuilder) Summary(m ir.SummaryMetric, v int64) *TraceBuilder {
	var prefix string
	switch m {
	case ir.SummaryPlansGenerated:
		prefix = "Plans generated"
	case ir.SummaryPlansVisited:
		prefix = "Plans visited"
	case ir.SummaryDeadEnds:
		prefix = "Dead ends encountered"
	case ir.SummaryPlanLength:
		prefix = "Number of steps"
	}
	return b.Line(fmt.Sprintf("%s: %d", prefix, v))
}

// Finished appends all four summary counters.
func (b *TraceBuilder) Finished(generated, visited, deadEnds, steps int64) *TraceBuilder {
	return b.Summary(ir.SummaryPlansGenerated, generated).
		Summary(ir.SummaryPlansVisited, visited).
		Summary(ir.SummaryDeadEnds, deadEnds).
		Summary(ir.SummaryPlanLength, steps)
}

// Line appends a raw line.
func (b *TraceBuilder) Line(line string) *TraceBuilder {
	b.lines = append(b.lines, line)
	return b
}

// Lines returns a copy of the lines built so far.
func (b *TraceBuilder) Lines() []string {
	return append([]string(nil), b.lines...)
}

// String returns the trace as newline-terminated text.
func (b *TraceBuilder) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

// Reader returns the trace as an io.Reader.
func (b *TraceBuilder) Reader() io.Reader {
	return strings.NewReader(b.String())
}
