package report

import (
	"encoding/csv"
	"io"
	"math"
	"slices"

	"github.com/roach88/plantrace/internal/ir"
)

// Entropy returns the Shannon entropy, in bits, of the landmark position
// distribution, with counts summed across landmark types.
//
// Returns nil for an empty table.
func Entropy(t *ir.LandmarkPositionTable) *float64 {
	byPos := t.ByPosition()
	var total int64
	for _, c := range byPos {
		total += c
	}
	if total == 0 {
		return nil
	}

	var h float64
	for _, p := range sortedPositions(byPos) {
		c := byPos[p]
		if c == 0 {
			continue
		}
		f := float64(c) / float64(total)
		h -= f * math.Log2(f)
	}
	// -0 for a single position.
	h = math.Abs(h)
	return &h
}

// EntropyRow is one problem's position entropy.
type EntropyRow struct {
	Problem string
	Entropy *float64
}

// WriteEntropyCSV writes problem,entropy rows in order.
func WriteEntropyCSV(w io.Writer, rows []EntropyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"problem", "entropy"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Problem, FormatFloat(r.Entropy)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedPositions(byPos map[int64]int64) []int64 {
	keys := make([]int64, 0, len(byPos))
	for p := range byPos {
		keys = append(keys, p)
	}
	slices.Sort(keys)
	return keys
}
