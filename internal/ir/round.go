package ir

// ResolvedRound is a flaw selection round that ended with a handle line.
//
// Rounds interrupted by another RoundStart are discarded and never become a
// ResolvedRound, although they still consume an Index.
type ResolvedRound struct {
	// Index is the 1-based round ordinal, counting discarded rounds.
	Index int64 `json:"index"`

	// Candidates in arrival order, including the goal pseudo-candidate.
	Candidates []Candidate `json:"candidates"`

	// ChosenID is the flaw id named by the handle line.
	ChosenID string `json:"chosen_id"`

	// Costs maps every candidate id (goal included) to its ADD_WORK.
	Costs map[string]int64 `json:"costs"`

	// Levels maps every non-goal candidate id to its landmark level.
	Levels map[string]Level `json:"levels"`

	// Depth is the search depth of the node under expansion when the round
	// resolved.
	Depth int64 `json:"depth"`
}

// ChosenCost returns the ADD_WORK of the chosen candidate, if recorded.
func (r ResolvedRound) ChosenCost() (int64, bool) {
	c, ok := r.Costs[r.ChosenID]
	return c, ok
}

// ChosenLevel returns the landmark level of the chosen candidate, if recorded.
func (r ResolvedRound) ChosenLevel() (Level, bool) {
	l, ok := r.Levels[r.ChosenID]
	return l, ok
}

// ChoseLandmark reports whether the chosen candidate has a landmark level.
func (r ResolvedRound) ChoseLandmark() bool {
	l, ok := r.ChosenLevel()
	return ok && l.IsLandmark()
}
