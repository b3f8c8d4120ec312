package engine

import (
	"bufio"
	"fmt"
	"io"

	"github.com/roach88/plantrace/internal/ir"
)

// PlansBetweenLandmarks computes the mean number of rounds between landmark
// choices in one lean pass over r.
//
// Only RoundStart, candidate levels and handle lines are followed. Depth and
// costs are never consulted, so traces the full Parser rejects still yield a
// value. Returns nil when no round chose a landmark.
func PlansBetweenLandmarks(r io.Reader) (*float64, error) {
	var (
		counter betweenCounter
		open    bool
		levels  = make(map[string]ir.Level)
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	for sc.Scan() {
		switch ev := Classify(sc.Text()).(type) {
		case ir.RoundStart:
			counter.roundStarted()
			open = true
			clear(levels)

		case ir.Candidate:
			if open && !ir.IsGoal(ev.ID) {
				levels[ev.ID] = ev.Level
			}

		case ir.Handle:
			if !open {
				continue
			}
			open = false
			if l, ok := levels[ev.ChosenID]; ok && l.IsLandmark() {
				counter.landmarkChosen()
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return counter.value(), nil
}
