package engine

import (
	"slices"

	"github.com/roach88/plantrace/internal/ir"
)

// Assignment is the position given to one landmark candidate of a round.
type Assignment struct {
	CandidateID  string `json:"candidate_id"`
	Position     int64  `json:"position"`
	LandmarkType string `json:"landmark_type"`
}

// PositionClassifier assigns positions to the landmark candidates of each
// resolved round and accumulates them into a LandmarkPositionTable.
type PositionClassifier struct {
	policy ir.OrderingPolicy
	table  *ir.LandmarkPositionTable
}

// NewPositionClassifier creates a classifier for the given policy.
func NewPositionClassifier(policy ir.OrderingPolicy) *PositionClassifier {
	return &PositionClassifier{
		policy: policy,
		table:  ir.NewLandmarkPositionTable(),
	}
}

// Policy returns the ordering policy in use.
func (c *PositionClassifier) Policy() ir.OrderingPolicy {
	return c.policy
}

// Classify assigns positions to the landmark candidates of r, counted from
// depth, records them and returns them in assignment order.
//
// The goal pseudo-candidate is never a landmark. Under the neutral policy a
// non-landmark still occupies its arrival slot.
func (c *PositionClassifier) Classify(r ir.ResolvedRound, depth int64) []Assignment {
	var out []Assignment

	if c.policy.Placement() == ir.PlaceArrival {
		for i, cand := range r.Candidates {
			if !isLandmarkCandidate(cand) {
				continue
			}
			out = append(out, Assignment{
				CandidateID:  cand.ID,
				Position:     depth + int64(i) + 1,
				LandmarkType: cand.LandmarkType,
			})
		}
		c.record(out)
		return out
	}

	var landmarks []ir.Candidate
	for _, cand := range r.Candidates {
		if isLandmarkCandidate(cand) {
			landmarks = append(landmarks, cand)
		}
	}
	nonLandmarks := int64(len(r.Candidates) - len(landmarks))

	switch c.policy.Sorting() {
	case ir.SortAscending:
		slices.SortStableFunc(landmarks, compareLevel)
	case ir.SortDescending:
		slices.SortStableFunc(landmarks, func(a, b ir.Candidate) int {
			return compareLevel(b, a)
		})
	case ir.SortLIFO:
		slices.Reverse(landmarks)
	}

	offset := depth + 1
	if c.policy.Placement() == ir.PlaceLast {
		offset += nonLandmarks
	}

	for i, cand := range landmarks {
		out = append(out, Assignment{
			CandidateID:  cand.ID,
			Position:     offset + int64(i),
			LandmarkType: cand.LandmarkType,
		})
	}
	c.record(out)
	return out
}

// Table returns the accumulated position table.
func (c *PositionClassifier) Table() *ir.LandmarkPositionTable {
	return c.table
}

func (c *PositionClassifier) record(as []Assignment) {
	for _, a := range as {
		c.table.Add(a.Position, a.LandmarkType)
	}
}

func isLandmarkCandidate(c ir.Candidate) bool {
	return !ir.IsGoal(c.ID) && c.Level.IsLandmark()
}

func compareLevel(a, b ir.Candidate) int {
	av, _ := a.Level.Value()
	bv, _ := b.Level.Value()
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}
