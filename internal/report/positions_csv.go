package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/roach88/plantrace/internal/ir"
)

// PositionsFile is the per-problem position histogram file name.
const PositionsFile = "landmarks_distribution.csv"

// WritePositionsCSV writes a position table.
//
// The typed form has columns position,landmark_type,count. The untyped form
// sums across landmark types and has columns value,count. Rows are sorted by
// position.
func WritePositionsCSV(w io.Writer, t *ir.LandmarkPositionTable, typed bool) error {
	cw := csv.NewWriter(w)

	if typed {
		if err := cw.Write([]string{"position", "landmark_type", "count"}); err != nil {
			return err
		}
		for _, r := range t.Rows() {
			rec := []string{
				strconv.FormatInt(r.Position, 10),
				r.LandmarkType,
				strconv.FormatInt(r.Count, 10),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	} else {
		if err := cw.Write([]string{"value", "count"}); err != nil {
			return err
		}
		byPos := t.ByPosition()
		for _, p := range sortedPositions(byPos) {
			rec := []string{strconv.FormatInt(p, 10), strconv.FormatInt(byPos[p], 10)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
