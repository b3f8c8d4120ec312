package ir

// EventKind distinguishes between classified trace line kinds.
type EventKind int

const (
	// EventUnmatched is a line that matched no known pattern.
	EventUnmatched EventKind = iota
	// EventRoundStart opens a flaw selection round.
	EventRoundStart
	// EventCandidate is one flaw candidate inside a selection round.
	EventCandidate
	// EventHandle names the flaw chosen for the current round.
	EventHandle
	// EventNodeVisit marks the search node being expanded.
	EventNodeVisit
	// EventChildCreated marks a child plan generated from the current node.
	EventChildCreated
	// EventSummary is one of the end-of-search summary counters.
	EventSummary
)

// String returns the kind name used in logs and test output.
func (k EventKind) String() string {
	switch k {
	case EventRoundStart:
		return "round_start"
	case EventCandidate:
		return "candidate"
	case EventHandle:
		return "handle"
	case EventNodeVisit:
		return "node_visit"
	case EventChildCreated:
		return "child_created"
	case EventSummary:
		return "summary"
	default:
		return "unmatched"
	}
}

// Event is a tagged trace event produced from exactly one log line.
//
// The concrete types are RoundStart, Candidate, Handle, NodeVisit,
// ChildCreated, Summary and Unmatched. Callers switch on the concrete type.
type Event interface {
	Kind() EventKind
}

// RoundStart opens a flaw selection round ("Selecting a flaw from ...").
type RoundStart struct{}

// Candidate is a flaw offered for selection in the current round.
type Candidate struct {
	// ID is the opaque flaw token between "#<" and ">".
	ID string `json:"id"`

	// Level is the landmark level, or NotLandmark ("X").
	Level Level `json:"level"`

	// WorkCost is the ADD_WORK estimate used for relative ranking.
	WorkCost int64 `json:"work_cost"`

	// LandmarkType is the optional landmark name captured by the typed
	// candidate format. Empty when the trace does not carry it.
	LandmarkType string `json:"landmark_type,omitempty"`
}

// Handle resolves the current round with the chosen flaw id.
type Handle struct {
	ChosenID string `json:"chosen_id"`
}

// NodeVisit marks the expansion of a search node.
type NodeVisit struct {
	// VisitSeq is the leading visit sequence number of the line.
	VisitSeq int64 `json:"visit_seq"`
	// NodeID is the id of the plan being expanded.
	NodeID int64 `json:"node_id"`
}

// ChildCreated marks a child plan generated from the node under expansion.
type ChildCreated struct {
	ChildID int64 `json:"child_id"`
}

// SummaryMetric identifies one of the end-of-search counters.
type SummaryMetric int

const (
	SummaryPlansGenerated SummaryMetric = iota + 1
	SummaryPlansVisited
	SummaryDeadEnds
	SummaryPlanLength
)

// String returns the CSV column name of the metric.
func (m SummaryMetric) String() string {
	switch m {
	case SummaryPlansGenerated:
		return "plans_generated"
	case SummaryPlansVisited:
		return "plans_visited"
	case SummaryDeadEnds:
		return "dead_ends"
	case SummaryPlanLength:
		return "plan_length"
	default:
		return "unknown"
	}
}

// Summary is an end-of-search counter line such as "Plans generated: 10".
type Summary struct {
	Metric SummaryMetric `json:"metric"`
	Value  int64         `json:"value"`
}

// Unmatched is returned for lines that match no known pattern.
type Unmatched struct{}

func (RoundStart) Kind() EventKind   { return EventRoundStart }
func (Candidate) Kind() EventKind    { return EventCandidate }
func (Handle) Kind() EventKind       { return EventHandle }
func (NodeVisit) Kind() EventKind    { return EventNodeVisit }
func (ChildCreated) Kind() EventKind { return EventChildCreated }
func (Summary) Kind() EventKind      { return EventSummary }
func (Unmatched) Kind() EventKind    { return EventUnmatched }
