package engine

import "github.com/roach88/plantrace/internal/ir"

// RoundState is the state of a RoundAccumulator.
type RoundState int

const (
	// StateIdle means no selection round is open.
	StateIdle RoundState = iota
	// StateCollecting means a round is open and candidates are being buffered.
	StateCollecting
)

// String returns the state name.
func (s RoundState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateCollecting:
		return "COLLECTING"
	default:
		return "UNKNOWN"
	}
}

// RoundAccumulator collects the candidate set of one flaw selection round and
// resolves it against the handled flaw.
//
// Transitions:
//
//	IDLE       --RoundStart--> COLLECTING  (index++)
//	COLLECTING --Candidate---> COLLECTING  (buffer)
//	COLLECTING --RoundStart--> COLLECTING  (discard in-flight round, index++)
//	COLLECTING --Handle------> IDLE        (emit ResolvedRound)
//
// Candidate and Handle events in IDLE are ignored.
type RoundAccumulator struct {
	state      RoundState
	index      int64
	discarded  int64
	candidates []ir.Candidate
	costs      map[string]int64
	levels     map[string]ir.Level
}

// NewRoundAccumulator creates an accumulator in the IDLE state.
func NewRoundAccumulator() *RoundAccumulator {
	return &RoundAccumulator{state: StateIdle}
}

// RoundStart opens a new round.
//
// Returns true if an unresolved round was discarded. The discarded round
// contributes nothing to any metric but its index stays consumed.
func (a *RoundAccumulator) RoundStart() bool {
	dropped := a.state == StateCollecting
	if dropped {
		a.discarded++
	}
	a.index++
	a.state = StateCollecting
	a.reset()
	return dropped
}

// Candidate buffers one candidate of the open round.
//
// Costs are recorded for every id, the goal pseudo-candidate included.
// Levels are recorded for non-goal ids only.
func (a *RoundAccumulator) Candidate(c ir.Candidate) {
	if a.state != StateCollecting {
		return
	}
	a.candidates = append(a.candidates, c)
	a.costs[c.ID] = c.WorkCost
	if !ir.IsGoal(c.ID) {
		a.levels[c.ID] = c.Level
	}
}

// Handle resolves the open round against chosenID.
//
// Returns false if no round was open. The returned round owns its slices
// and maps; the accumulator starts fresh ones for the next round.
func (a *RoundAccumulator) Handle(chosenID string) (ir.ResolvedRound, bool) {
	if a.state != StateCollecting {
		return ir.ResolvedRound{}, false
	}
	r := ir.ResolvedRound{
		Index:      a.index,
		Candidates: a.candidates,
		ChosenID:   chosenID,
		Costs:      a.costs,
		Levels:     a.levels,
	}
	a.state = StateIdle
	a.candidates = nil
	a.costs = nil
	a.levels = nil
	return r, true
}

// Index returns the number of rounds started so far.
func (a *RoundAccumulator) Index() int64 {
	return a.index
}

// Discarded returns the number of rounds dropped without a handle line.
func (a *RoundAccumulator) Discarded() int64 {
	return a.discarded
}

// State returns the current state.
func (a *RoundAccumulator) State() RoundState {
	return a.state
}

func (a *RoundAccumulator) reset() {
	a.candidates = nil
	a.costs = make(map[string]int64)
	a.levels = make(map[string]ir.Level)
}
