package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/plantrace/internal/batch"
	"github.com/roach88/plantrace/internal/ir"
)

// RunRecord describes one batch run.
type RunRecord struct {
	ID            string    `json:"id"`
	Mode          string    `json:"mode"`
	Policy        string    `json:"policy"`
	DataDir       string    `json:"data_dir"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	ToolVersion   string    `json:"tool_version"`
	RecordVersion string    `json:"record_version"`
}

// MetricsRecord is the stored metrics of one trace in one run.
type MetricsRecord struct {
	RunID     string        `json:"run_id"`
	Problem   string        `json:"problem"`
	Source    string        `json:"source"`
	Digest    string        `json:"digest"`
	Metrics   ir.RunMetrics `json:"metrics"`
	Rounds    int64         `json:"rounds"`
	Discarded int64         `json:"discarded"`
}

// PositionRecord is one landmark position count of one trace in one run.
type PositionRecord struct {
	RunID   string `json:"run_id"`
	Problem string `json:"problem"`
	ir.PositionRow
}

// FailureRecord is a per-trace failure.
type FailureRecord struct {
	RunID   string `json:"run_id"`
	Problem string `json:"problem"`
	Source  string `json:"source"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Bundle holds everything a batch run persists.
type Bundle struct {
	Run       RunRecord
	Metrics   []MetricsRecord
	Positions []PositionRecord
	Failures  []FailureRecord
}

// BundleFromReport converts a batch report into storable records.
// Failed traces become FailureRecords; their partial metrics are not kept.
func BundleFromReport(rep *batch.Report, dataDir string) Bundle {
	b := Bundle{Run: RunRecord{
		ID:            rep.RunID,
		Mode:          rep.Mode.String(),
		Policy:        rep.Policy.String(),
		DataDir:       dataDir,
		StartedAt:     rep.Started,
		EndedAt:       rep.Ended,
		ToolVersion:   ir.ToolVersion,
		RecordVersion: ir.RecordVersion,
	}}

	for _, res := range rep.Results {
		if res.Failed() {
			b.Failures = append(b.Failures, FailureRecord{
				RunID:   rep.RunID,
				Problem: res.ID,
				Source:  res.Source,
				Code:    batch.ErrorCode(res.Err),
				Message: res.Err.Error(),
			})
			continue
		}

		m := res.Metrics
		if rep.Mode == batch.ModeBetween {
			m = ir.RunMetrics{PlansBetweenLandmarks: res.Between}
		}
		b.Metrics = append(b.Metrics, MetricsRecord{
			RunID:     rep.RunID,
			Problem:   res.ID,
			Source:    res.Source,
			Digest:    res.Digest,
			Metrics:   m,
			Rounds:    res.Rounds,
			Discarded: res.Discarded,
		})

		if res.Positions == nil {
			continue
		}
		for _, row := range res.Positions.Rows() {
			b.Positions = append(b.Positions, PositionRecord{RunID: rep.RunID, Problem: res.ID, PositionRow: row})
		}
	}
	return b
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveRun writes a run and all of its rows in a single transaction.
// Re-saving the same bundle is a no-op.
func (s *Store) SaveRun(ctx context.Context, b Bundle) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := writeRun(ctx, tx, b.Run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	for _, m := range b.Metrics {
		if err := writeMetrics(ctx, tx, m); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}
	for _, p := range b.Positions {
		if err := writePosition(ctx, tx, p); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}
	for _, f := range b.Failures {
		if err := writeFailure(ctx, tx, f); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run: commit: %w", err)
	}
	return nil
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteRun(ctx context.Context, r RunRecord) error {
	return writeRun(ctx, s.db, r)
}

// WriteMetrics inserts the metrics of one trace.
// The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteMetrics(ctx context.Context, m MetricsRecord) error {
	return writeMetrics(ctx, s.db, m)
}

// WriteFailure inserts a per-trace failure.
func (s *Store) WriteFailure(ctx context.Context, f FailureRecord) error {
	return writeFailure(ctx, s.db, f)
}

func writeRun(ctx context.Context, db execer, r RunRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO runs
		(id, mode, policy, data_dir, started_at, ended_at, tool_version, record_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.Mode,
		r.Policy,
		r.DataDir,
		formatTime(r.StartedAt),
		formatTime(r.EndedAt),
		r.ToolVersion,
		r.RecordVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

func writeMetrics(ctx context.Context, db execer, m MetricsRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO trace_metrics
		(run_id, problem, source, digest, finished,
		 plans_generated, plans_visited, dead_ends, plan_length, plans_until_landmark,
		 normalized_add_work, flaws_reopened, landmarks_reopened, plans_between_landmarks,
		 rounds, discarded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, problem, source) DO NOTHING
	`,
		m.RunID,
		m.Problem,
		m.Source,
		m.Digest,
		boolInt(m.Metrics.Finished),
		nullInt64(m.Metrics.PlansGenerated),
		nullInt64(m.Metrics.PlansVisited),
		nullInt64(m.Metrics.DeadEnds),
		nullInt64(m.Metrics.PlanLength),
		nullInt64(m.Metrics.PlansUntilLandmark),
		nullFloat64(m.Metrics.NormalizedAddWork),
		m.Metrics.FlawsReopened,
		m.Metrics.LandmarksReopened,
		nullFloat64(m.Metrics.PlansBetweenLandmarks),
		m.Rounds,
		m.Discarded,
	)
	if err != nil {
		return fmt.Errorf("write metrics %s: %w", m.Problem, err)
	}
	return nil
}

func writePosition(ctx context.Context, db execer, p PositionRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO landmark_positions
		(run_id, problem, position, landmark_type, count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, problem, position, landmark_type) DO NOTHING
	`,
		p.RunID,
		p.Problem,
		p.Position,
		p.LandmarkType,
		p.Count,
	)
	if err != nil {
		return fmt.Errorf("write position %s/%d: %w", p.Problem, p.Position, err)
	}
	return nil
}

func writeFailure(ctx context.Context, db execer, f FailureRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO trace_failures
		(run_id, problem, source, code, message)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, problem, source) DO NOTHING
	`,
		f.RunID,
		f.Problem,
		f.Source,
		f.Code,
		f.Message,
	)
	if err != nil {
		return fmt.Errorf("write failure %s: %w", f.Problem, err)
	}
	return nil
}
