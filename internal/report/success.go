package report

import "fmt"

// SuccessScores rescales every row of a per-problem heuristic table to
// [0,1], where 1 is the best (lowest) value of the row:
//
//	score = (max - v) / (max - min)
//
// A row whose values are all equal scores 1.0 everywhere. Missing or
// non-numeric cells stay empty and do not take part in the row's min/max.
// The problem column is copied as-is and all other columns are scored.
func SuccessScores(t *Table) (*Table, error) {
	key := t.Column(ProblemColumn)
	if key < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ProblemColumn)
	}

	out := &Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, len(t.Rows)),
	}

	for i := range t.Rows {
		values := make([]float64, len(t.Header))
		present := make([]bool, len(t.Header))
		var lo, hi float64
		seen := false
		for c := range t.Header {
			if c == key {
				continue
			}
			v, ok := parseCell(t.Cell(i, c))
			if !ok {
				continue
			}
			values[c], present[c] = v, true
			if !seen {
				lo, hi, seen = v, v, true
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}

		rec := make([]string, len(t.Header))
		for c := range t.Header {
			switch {
			case c == key:
				rec[c] = t.Cell(i, c)
			case !present[c]:
				rec[c] = ""
			case hi == lo:
				one := 1.0
				rec[c] = FormatFloat(&one)
			default:
				s := (hi - values[c]) / (hi - lo)
				rec[c] = FormatFloat(&s)
			}
		}
		out.Rows[i] = rec
	}
	return out, nil
}
