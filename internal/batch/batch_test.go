package batch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/plantrace/internal/engine"
	"github.com/roach88/plantrace/internal/ir"
	"github.com/roach88/plantrace/internal/source"
	"github.com/roach88/plantrace/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func landmarkTrace() *testutil.TraceBuilder {
	return testutil.NewTraceBuilder().
		Visit(0).Child(1).
		Round().Candidate("F1", "2", 5).Goal(0).Handle("F1").
		Visit(1).
		Round().Candidate("F2", ir.NotLandmark, 1).Candidate("F3", "1", 3).Handle("F3").
		Finished(10, 8, 2, 4)
}

func brokenTrace() *testutil.TraceBuilder {
	return testutil.NewTraceBuilder().
		Round().Candidate("F1", "1", 1).Handle("F1").
		Visit(99)
}

func writeTrace(t *testing.T, dir, name string, b *testutil.TraceBuilder) source.Trace {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(b.String()), 0o644))
	tr, err := source.Open(p)
	require.NoError(t, err)
	return tr
}

func TestRun_Metrics(t *testing.T) {
	dir := t.TempDir()
	traces := []source.Trace{
		writeTrace(t, dir, "prob02.vhpop-log", landmarkTrace()),
		writeTrace(t, dir, "prob01.vhpop-log", landmarkTrace()),
	}

	report, err := Run(context.Background(), traces, Options{Workers: 2, Logger: quietLogger()})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "prob01", report.Results[0].ID)
	assert.Equal(t, "prob02", report.Results[1].ID)

	want := ir.RunMetrics{
		Finished:              true,
		PlansGenerated:        ir.Int64(10),
		PlansVisited:          ir.Int64(8),
		DeadEnds:              ir.Int64(2),
		PlanLength:            ir.Int64(4),
		PlansUntilLandmark:    ir.Int64(1),
		NormalizedAddWork:     ir.Float64(1.0),
		PlansBetweenLandmarks: ir.Float64(1.0),
	}
	for _, res := range report.Results {
		require.NoError(t, res.Err)
		if diff := cmp.Diff(want, res.Metrics); diff != "" {
			t.Errorf("%s metrics mismatch (-want +got):\n%s", res.ID, diff)
		}
		assert.Equal(t, ir.TraceDigest([]byte(landmarkTrace().String())), res.Digest)
		assert.Nil(t, res.Positions, "positions only kept in positions mode")
	}

	parsed, err := uuid.Parse(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.False(t, report.Ended.Before(report.Started))
}

func TestRun_FailureIsolated(t *testing.T) {
	dir := t.TempDir()
	traces := []source.Trace{
		writeTrace(t, dir, "a.vhpop-log", landmarkTrace()),
		writeTrace(t, dir, "b.vhpop-log", brokenTrace()),
		writeTrace(t, dir, "c.vhpop-log", landmarkTrace()),
		{ID: "d", Path: filepath.Join(dir, "missing.vhpop-log")},
	}

	report, err := Run(context.Background(), traces, Options{Workers: 1, Logger: quietLogger()})
	require.NoError(t, err)

	assert.Len(t, report.Succeeded(), 2)
	failures := report.Failures()
	require.Len(t, failures, 2)

	assert.Equal(t, "b", failures[0].ID)
	assert.True(t, engine.IsStructuralError(failures[0].Err))
	assert.Empty(t, failures[0].Digest)

	assert.Equal(t, "d", failures[1].ID)
	var se *source.Error
	assert.ErrorAs(t, failures[1].Err, &se)
}

func TestRun_BetweenToleratesStructuralErrors(t *testing.T) {
	dir := t.TempDir()
	traces := []source.Trace{writeTrace(t, dir, "b.vhpop-log", brokenTrace())}

	report, err := Run(context.Background(), traces, Options{Mode: ModeBetween, Logger: quietLogger()})
	require.NoError(t, err)

	res := report.Results[0]
	require.NoError(t, res.Err)
	require.NotNil(t, res.Between)
	assert.InDelta(t, 1.0, *res.Between, 1e-12)
}

func TestRun_PositionsMerged(t *testing.T) {
	dir := t.TempDir()
	traces := []source.Trace{
		writeTrace(t, dir, "a.vhpop-log", landmarkTrace()),
		writeTrace(t, dir, "b.vhpop-log", landmarkTrace()),
		writeTrace(t, dir, "c.vhpop-log", brokenTrace()),
	}

	report, err := Run(context.Background(), traces, Options{
		Mode:   ModePositions,
		Policy: ir.PolicyFirstFirst,
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	// Round 1 at depth 0: F1 → 1. Round 2 at depth 1: F3 → 2.
	want := []ir.PositionRow{
		{Position: 1, LandmarkType: "", Count: 2},
		{Position: 2, LandmarkType: "", Count: 2},
	}
	if diff := cmp.Diff(want, report.MergedPositions().Rows()); diff != "" {
		t.Errorf("merged positions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ir.PolicyFirstFirst, report.Policy)
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	traces := []source.Trace{writeTrace(t, dir, "a.vhpop-log", landmarkTrace())}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, traces, Options{Logger: quietLogger()})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, report.Results, 1)
	assert.ErrorIs(t, report.Results[0].Err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	report, err := Run(context.Background(), nil, Options{Logger: quietLogger()})
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.MergedPositions().Len())
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"metrics", "between", "positions"} {
		m, err := ParseMode(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.String())
	}

	_, err := ParseMode("plots")
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, "Mode(9)", Mode(9).String())
}

func TestErrorCode(t *testing.T) {
	dir := t.TempDir()
	traces := []source.Trace{
		writeTrace(t, dir, "b.vhpop-log", brokenTrace()),
		{ID: "d", Path: filepath.Join(dir, "missing.vhpop-log")},
	}
	report, err := Run(context.Background(), traces, Options{Workers: 1, Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, string(engine.ErrCodeUnknownNode), ErrorCode(report.Results[0].Err))
	assert.Equal(t, source.ErrCodeOpenFailed, ErrorCode(report.Results[1].Err))
	assert.Equal(t, CodeCancelled, ErrorCode(context.Canceled))
	assert.Equal(t, CodeError, ErrorCode(assert.AnError))
	assert.Empty(t, ErrorCode(nil))
}

func TestRun_MaxRounds(t *testing.T) {
	dir := t.TempDir()
	traces := []source.Trace{writeTrace(t, dir, "a.vhpop-log", landmarkTrace())}

	report, err := Run(context.Background(), traces, Options{MaxRounds: 1, Logger: quietLogger()})
	require.NoError(t, err)

	res := report.Results[0]
	require.Error(t, res.Err)
	assert.True(t, engine.IsRoundsExceededError(res.Err))
	assert.Equal(t, engine.ErrCodeRoundsExceeded, ErrorCode(res.Err))
	assert.Equal(t, int64(1), res.Rounds, "partial result kept")

	report, err = Run(context.Background(), traces, Options{MaxRounds: 2, Logger: quietLogger()})
	require.NoError(t, err)
	assert.NoError(t, report.Results[0].Err)
}
