package engine

import "github.com/roach88/plantrace/internal/ir"

// OpenFlawSet is the set of flaw ids chosen at least once in one trace.
type OpenFlawSet map[string]struct{}

// Contains reports whether id was chosen before.
func (s OpenFlawSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add marks id as chosen.
func (s OpenFlawSet) Add(id string) {
	s[id] = struct{}{}
}

// MetricsAggregator maintains the running metrics record of one trace.
//
// It consumes summary events, node/visit observations for the unfinished
// fallback, and resolved rounds. Finalize produces the ir.RunMetrics.
type MetricsAggregator struct {
	// Summary latch: visited/dead/steps only count after "Plans generated".
	latched   bool
	generated *int64
	visited   *int64
	deadEnds  *int64
	steps     *int64

	maxNodeID   int64
	maxVisitSeq int64

	plansUntilLandmark *int64
	open               OpenFlawSet
	flawsReopened      int64
	landmarksReopened  int64

	addWorkWins   float64
	addWorkRounds int64

	between betweenCounter
}

// NewMetricsAggregator creates an empty aggregator.
func NewMetricsAggregator() *MetricsAggregator {
	return &MetricsAggregator{open: make(OpenFlawSet)}
}

// Summary records one summary counter.
//
// "Plans generated" latches finished-tracking; the other three counters are
// ignored until then. Repeated counters overwrite earlier values.
func (m *MetricsAggregator) Summary(s ir.Summary) {
	if s.Metric == ir.SummaryPlansGenerated {
		m.latched = true
		m.generated = ir.Int64(s.Value)
		return
	}
	if !m.latched {
		return
	}
	switch s.Metric {
	case ir.SummaryPlansVisited:
		m.visited = ir.Int64(s.Value)
	case ir.SummaryDeadEnds:
		m.deadEnds = ir.Int64(s.Value)
	case ir.SummaryPlanLength:
		m.steps = ir.Int64(s.Value)
	}
}

// ObserveNode records a node id seen on a visit or child line.
func (m *MetricsAggregator) ObserveNode(id int64) {
	if id > m.maxNodeID {
		m.maxNodeID = id
	}
}

// ObserveVisitSeq records a visit sequence number.
func (m *MetricsAggregator) ObserveVisitSeq(seq int64) {
	if seq > m.maxVisitSeq {
		m.maxVisitSeq = seq
	}
}

// RoundStarted counts a round for plans-between-landmarks, discarded rounds
// included.
func (m *MetricsAggregator) RoundStarted() {
	m.between.roundStarted()
}

// Resolve folds one resolved round into the record.
func (m *MetricsAggregator) Resolve(r ir.ResolvedRound) {
	landmark := r.ChoseLandmark()

	if m.plansUntilLandmark == nil && landmark {
		m.plansUntilLandmark = ir.Int64(r.Index)
	}

	chosenCost, hasCost := r.ChosenCost()

	if m.open.Contains(r.ChosenID) {
		if hasCost {
			m.flawsReopened++
			if landmark {
				m.landmarksReopened++
			}
		}
	} else {
		m.open.Add(r.ChosenID)
	}

	if hasCost {
		lo, hi := costRange(r.Costs)
		if hi > lo {
			m.addWorkRounds++
			m.addWorkWins += float64(chosenCost-lo) / float64(hi-lo)
		}
	}

	if landmark {
		m.between.landmarkChosen()
	}
}

// Finished reports whether all four summary counters have been observed.
func (m *MetricsAggregator) Finished() bool {
	return m.generated != nil && m.visited != nil && m.deadEnds != nil && m.steps != nil
}

// Finalize returns the metrics record for the trace so far.
func (m *MetricsAggregator) Finalize() ir.RunMetrics {
	out := ir.RunMetrics{
		Finished:              m.Finished(),
		PlansUntilLandmark:    m.plansUntilLandmark,
		FlawsReopened:         m.flawsReopened,
		LandmarksReopened:     m.landmarksReopened,
		PlansBetweenLandmarks: m.between.value(),
	}

	switch {
	case m.generated != nil:
		out.PlansGenerated = ir.Int64(*m.generated)
	case m.maxNodeID > 0:
		out.PlansGenerated = ir.Int64(m.maxNodeID)
	}

	switch {
	case m.visited != nil:
		out.PlansVisited = ir.Int64(*m.visited)
	case m.maxVisitSeq > 0:
		out.PlansVisited = ir.Int64(m.maxVisitSeq)
	}

	if out.Finished {
		out.DeadEnds = ir.Int64(*m.deadEnds)
		out.PlanLength = ir.Int64(*m.steps)
	}

	if m.addWorkRounds > 0 {
		out.NormalizedAddWork = ir.Float64(m.addWorkWins / float64(m.addWorkRounds))
	}

	return out
}

func costRange(costs map[string]int64) (lo, hi int64) {
	first := true
	for _, c := range costs {
		if first {
			lo, hi = c, c
			first = false
			continue
		}
		lo = min(lo, c)
		hi = max(hi, c)
	}
	return lo, hi
}

// betweenCounter tracks the mean number of rounds between landmark choices.
type betweenCounter struct {
	rounds int64
	sum    int64
	hits   int64
}

func (b *betweenCounter) roundStarted() {
	b.rounds++
}

func (b *betweenCounter) landmarkChosen() {
	b.sum += b.rounds
	b.hits++
	b.rounds = 0
}

func (b *betweenCounter) value() *float64 {
	if b.hits == 0 {
		return nil
	}
	return ir.Float64(float64(b.sum) / float64(b.hits))
}
