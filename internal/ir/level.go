package ir

import (
	"math"
	"strconv"
)

// GoalID is the reserved flaw id (max uint64) of the administrative goal
// pseudo-candidate. It is never landmark-eligible but its ADD_WORK still
// takes part in cost comparisons.
const GoalID = "18446744073709551615"

// NotLandmark is the level sentinel printed for non-landmark flaws.
const NotLandmark Level = "X"

// Level is the raw landmark level token of a candidate: a finite number or
// the NotLandmark sentinel.
type Level string

// IsLandmark reports whether the level is a finite number.
func (l Level) IsLandmark() bool {
	_, ok := l.Value()
	return ok
}

// Value returns the numeric level. ok is false for NotLandmark, empty or
// non-finite levels.
func (l Level) Value() (v float64, ok bool) {
	if l == "" || l == NotLandmark {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(l), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsGoal reports whether a flaw id is the goal pseudo-candidate.
func IsGoal(id string) bool {
	return id == GoalID
}
