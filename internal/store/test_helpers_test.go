package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/plantrace/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run record with fixed timestamps.
func createTestRun(id string) RunRecord {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return RunRecord{
		ID:            id,
		Mode:          "metrics",
		Policy:        ir.PolicyNeutral.String(),
		DataDir:       "/data/logistics",
		StartedAt:     started,
		EndedAt:       started.Add(1500 * time.Millisecond),
		ToolVersion:   ir.ToolVersion,
		RecordVersion: ir.RecordVersion,
	}
}

// createTestMetrics creates a finished metrics record.
func createTestMetrics(runID, problem string) MetricsRecord {
	return MetricsRecord{
		RunID:   runID,
		Problem: problem,
		Source:  "/data/" + problem + "/" + problem + ".vhpop-log.bz2",
		Digest:  "d-" + problem,
		Metrics: ir.RunMetrics{
			Finished:           true,
			PlansGenerated:     ir.Int64(10),
			PlansVisited:       ir.Int64(8),
			DeadEnds:           ir.Int64(2),
			PlanLength:         ir.Int64(4),
			PlansUntilLandmark: ir.Int64(1),
			NormalizedAddWork:  ir.Float64(0.25),
			FlawsReopened:      1,
		},
		Rounds:    6,
		Discarded: 1,
	}
}
