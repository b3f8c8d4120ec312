package report

import (
	"errors"
	"fmt"
)

// ErrColumnExists is returned by MergeColumn when the column is already present.
var ErrColumnExists = errors.New("column already exists")

// ProblemColumn is the key column of every per-problem CSV.
const ProblemColumn = "problem"

// MergeColumn returns a copy of t with column appended, filled from values
// keyed by the problem column. Problems without a value get an empty cell.
//
// The input is never modified. Fails if column is already in the header or
// the header lacks a problem column.
func MergeColumn(t *Table, column string, values map[string]string) (*Table, error) {
	if t.Column(column) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnExists, column)
	}
	key := t.Column(ProblemColumn)
	if key < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ProblemColumn)
	}

	out := &Table{
		Header: append(append([]string(nil), t.Header...), column),
		Rows:   make([][]string, len(t.Rows)),
	}
	width := len(t.Header)
	for i, row := range t.Rows {
		rec := make([]string, width, width+1)
		copy(rec, row)
		out.Rows[i] = append(rec, values[t.Cell(i, key)])
	}
	return out, nil
}
