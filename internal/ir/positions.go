package ir

import "sort"

// PositionKey identifies one cell of a LandmarkPositionTable.
type PositionKey struct {
	Position     int64
	LandmarkType string
}

// PositionRow is one (position, landmark type, count) row.
type PositionRow struct {
	Position     int64  `json:"position"`
	LandmarkType string `json:"landmark_type"`
	Count        int64  `json:"count"`
}

// LandmarkPositionTable counts landmark occurrences per (position, type).
//
// The zero value is ready to use. LandmarkType is empty when the trace
// format does not carry landmark names; the table then tracks positions only.
type LandmarkPositionTable struct {
	counts map[PositionKey]int64
}

// NewLandmarkPositionTable creates an empty table.
func NewLandmarkPositionTable() *LandmarkPositionTable {
	return &LandmarkPositionTable{counts: make(map[PositionKey]int64)}
}

// Add increments the count for (position, landmarkType) by one.
func (t *LandmarkPositionTable) Add(position int64, landmarkType string) {
	t.AddN(position, landmarkType, 1)
}

// AddN adds n to the count for (position, landmarkType).
func (t *LandmarkPositionTable) AddN(position int64, landmarkType string, n int64) {
	if t.counts == nil {
		t.counts = make(map[PositionKey]int64)
	}
	t.counts[PositionKey{Position: position, LandmarkType: landmarkType}] += n
}

// Count returns the count for (position, landmarkType).
func (t *LandmarkPositionTable) Count(position int64, landmarkType string) int64 {
	return t.counts[PositionKey{Position: position, LandmarkType: landmarkType}]
}

// Len returns the number of distinct keys.
func (t *LandmarkPositionTable) Len() int {
	return len(t.counts)
}

// Total returns the sum of all counts.
func (t *LandmarkPositionTable) Total() int64 {
	var total int64
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Merge adds every count of other into t.
func (t *LandmarkPositionTable) Merge(other *LandmarkPositionTable) {
	if other == nil {
		return
	}
	for k, n := range other.counts {
		t.AddN(k.Position, k.LandmarkType, n)
	}
}

// Rows returns all rows ordered by position, then landmark type.
func (t *LandmarkPositionTable) Rows() []PositionRow {
	rows := make([]PositionRow, 0, len(t.counts))
	for k, n := range t.counts {
		rows = append(rows, PositionRow{Position: k.Position, LandmarkType: k.LandmarkType, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Position != rows[j].Position {
			return rows[i].Position < rows[j].Position
		}
		return rows[i].LandmarkType < rows[j].LandmarkType
	})
	return rows
}

// ByPosition sums counts across landmark types.
func (t *LandmarkPositionTable) ByPosition() map[int64]int64 {
	out := make(map[int64]int64)
	for k, n := range t.counts {
		out[k.Position] += n
	}
	return out
}
