package ir

// RunMetrics is the per-trace metrics record.
//
// Optional fields are nil when absent; absent is distinct from zero and is
// rendered as an empty CSV cell or JSON null.
type RunMetrics struct {
	// Finished is true iff all four summary counters were observed.
	Finished bool `json:"finished"`

	// PlansGenerated is the summary counter, or the maximum node id seen when
	// the search did not finish.
	PlansGenerated *int64 `json:"plans_generated"`

	// PlansVisited is the summary counter, or the maximum visit sequence
	// number seen when the search did not finish.
	PlansVisited *int64 `json:"plans_visited"`

	// DeadEnds is present only when Finished.
	DeadEnds *int64 `json:"dead_ends"`

	// PlanLength is the number of steps; present only when Finished.
	PlanLength *int64 `json:"plan_length"`

	// PlansUntilLandmark is the index of the first round whose chosen flaw
	// was a landmark.
	PlansUntilLandmark *int64 `json:"plans_until_landmark"`

	// NormalizedAddWork is the mean normalized ADD_WORK of chosen flaws over
	// rounds whose costs were not all equal, in [0,1].
	NormalizedAddWork *float64 `json:"normalized_add_work"`

	// FlawsReopened counts rounds that chose an already chosen flaw.
	FlawsReopened int64 `json:"flaws_reopened"`

	// LandmarksReopened counts reopened flaws that are landmarks.
	LandmarksReopened int64 `json:"landmarks_reopened"`

	// PlansBetweenLandmarks is the mean number of rounds between landmark
	// choices.
	PlansBetweenLandmarks *float64 `json:"plans_between_landmarks"`
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
