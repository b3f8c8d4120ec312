package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/plantrace/internal/ir"
)

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const runColumns = `id, mode, policy, data_dir, started_at, ended_at, tool_version, record_version`

// ListRuns returns all runs, newest first. Run ids are UUIDv7, so id order
// is creation order.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY id COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run by id.
func (s *Store) GetRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// ReadMetrics returns the per-trace metrics of a run, ordered by problem and
// source.
func (s *Store) ReadMetrics(ctx context.Context, runID string) ([]MetricsRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, problem, source, digest, finished,
		       plans_generated, plans_visited, dead_ends, plan_length, plans_until_landmark,
		       normalized_add_work, flaws_reopened, landmarks_reopened, plans_between_landmarks,
		       rounds, discarded
		FROM trace_metrics
		WHERE run_id = ?
		ORDER BY problem COLLATE BINARY ASC, source COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	out := []MetricsRecord{}
	for rows.Next() {
		m, err := scanMetrics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metrics: %w", err)
	}
	return out, nil
}

// ReadPositions returns the landmark position rows of a run, ordered by
// problem, position and landmark type.
func (s *Store) ReadPositions(ctx context.Context, runID string) ([]PositionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, problem, position, landmark_type, count
		FROM landmark_positions
		WHERE run_id = ?
		ORDER BY problem COLLATE BINARY ASC, position ASC, landmark_type COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	out := []PositionRecord{}
	for rows.Next() {
		var p PositionRecord
		if err := rows.Scan(&p.RunID, &p.Problem, &p.Position, &p.LandmarkType, &p.Count); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return out, nil
}

// ReadPositionTable folds the position rows of a run into one table summed
// across problems.
func (s *Store) ReadPositionTable(ctx context.Context, runID string) (*ir.LandmarkPositionTable, error) {
	rows, err := s.ReadPositions(ctx, runID)
	if err != nil {
		return nil, err
	}
	t := ir.NewLandmarkPositionTable()
	for _, r := range rows {
		t.AddN(r.Position, r.LandmarkType, r.Count)
	}
	return t, nil
}

// ReadFailures returns the failed traces of a run, ordered by problem and
// source.
func (s *Store) ReadFailures(ctx context.Context, runID string) ([]FailureRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, problem, source, code, message
		FROM trace_failures
		WHERE run_id = ?
		ORDER BY problem COLLATE BINARY ASC, source COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	out := []FailureRecord{}
	for rows.Next() {
		var f FailureRecord
		if err := rows.Scan(&f.RunID, &f.Problem, &f.Source, &f.Code, &f.Message); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return out, nil
}

// FindByDigest returns every metrics record whose trace content matches
// digest, oldest run first.
func (s *Store) FindByDigest(ctx context.Context, digest string) ([]MetricsRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, problem, source, digest, finished,
		       plans_generated, plans_visited, dead_ends, plan_length, plans_until_landmark,
		       normalized_add_work, flaws_reopened, landmarks_reopened, plans_between_landmarks,
		       rounds, discarded
		FROM trace_metrics
		WHERE digest = ?
		ORDER BY run_id COLLATE BINARY ASC, problem COLLATE BINARY ASC, source COLLATE BINARY ASC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("query digest: %w", err)
	}
	defer rows.Close()

	out := []MetricsRecord{}
	for rows.Next() {
		m, err := scanMetrics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate digest: %w", err)
	}
	return out, nil
}

func scanRun(row rowScanner) (RunRecord, error) {
	var r RunRecord
	var started, ended string
	err := row.Scan(&r.ID, &r.Mode, &r.Policy, &r.DataDir, &started, &ended, &r.ToolVersion, &r.RecordVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, err
		}
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	if r.StartedAt, err = parseTime(started); err != nil {
		return RunRecord{}, fmt.Errorf("scan run %s: %w", r.ID, err)
	}
	if r.EndedAt, err = parseTime(ended); err != nil {
		return RunRecord{}, fmt.Errorf("scan run %s: %w", r.ID, err)
	}
	return r, nil
}

func scanMetrics(row rowScanner) (MetricsRecord, error) {
	var m MetricsRecord
	var finished int
	var generated, visited, deadEnds, planLength, untilLandmark sql.NullInt64
	var addWork, between sql.NullFloat64

	err := row.Scan(
		&m.RunID, &m.Problem, &m.Source, &m.Digest, &finished,
		&generated, &visited, &deadEnds, &planLength, &untilLandmark,
		&addWork, &m.Metrics.FlawsReopened, &m.Metrics.LandmarksReopened, &between,
		&m.Rounds, &m.Discarded,
	)
	if err != nil {
		return MetricsRecord{}, fmt.Errorf("scan metrics: %w", err)
	}

	m.Metrics.Finished = finished != 0
	m.Metrics.PlansGenerated = int64Ptr(generated)
	m.Metrics.PlansVisited = int64Ptr(visited)
	m.Metrics.DeadEnds = int64Ptr(deadEnds)
	m.Metrics.PlanLength = int64Ptr(planLength)
	m.Metrics.PlansUntilLandmark = int64Ptr(untilLandmark)
	m.Metrics.NormalizedAddWork = float64Ptr(addWork)
	m.Metrics.PlansBetweenLandmarks = float64Ptr(between)
	return m, nil
}
