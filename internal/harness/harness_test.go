package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plantrace/internal/ir"
	"github.com/roach88/plantrace/internal/testutil"
)

func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.Len(t, scenarios, 9)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "failures:\n%s", strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRun_BuilderScenario(t *testing.T) {
	b := testutil.NewTraceBuilder().
		Round().Candidate("F1", "3", 5).Goal(0).Handle("F1").
		Finished(10, 8, 2, 4)

	s := &Scenario{
		Name:        "builder",
		Description: "Scenario assembled with the trace builder",
		Lines:       b.Lines(),
		Expect: &ExpectMetrics{
			Finished:          boolPtr(true),
			NormalizedAddWork: ir.Float64(1.0),
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, int64(1), result.Resolved)
}

func TestRun_ReportsMismatches(t *testing.T) {
	s := &Scenario{
		Name:        "mismatch",
		Description: "Every expectation is wrong",
		Lines: []string{
			"Selecting a flaw from [open conditions]",
			"  #<F1> LL: 2 ... ADD_WORK: 5",
			"handle #<F1>",
		},
		Expect: &ExpectMetrics{
			Finished:           boolPtr(true),
			PlansUntilLandmark: ir.Int64(3),
			Absent:             []string{"plans_between_landmarks"},
		},
		ExpectPositions: []ExpectPosition{{Position: 4, Count: 1}},
		ExpectError:     "UNKNOWN_NODE",
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Expectation failed: error")
	assert.Contains(t, result.Errors[1], "Expectation failed: finished")
	assert.Contains(t, result.Errors[2], "Expectation failed: plans_until_landmark")
	assert.Contains(t, result.Errors[3], "Expectation failed: plans_between_landmarks")
	assert.Contains(t, result.Errors[4], "Expected: [4:1]")
	assert.Contains(t, result.Errors[4], "Actual: [1:1]")
	assert.Contains(t, result.Errors[4], "[3] handle #<F1>")
}

func TestRun_FloatTolerance(t *testing.T) {
	s := &Scenario{
		Name:        "tolerance",
		Description: "Ratios compare within tolerance",
		Lines: []string{
			"Selecting a flaw from [open conditions]",
			"  #<F1> LL: X ... ADD_WORK: 1",
			"  #<F2> LL: X ... ADD_WORK: 0",
			"  #<F3> LL: X ... ADD_WORK: 3",
			"handle #<F1>",
		},
		Expect: &ExpectMetrics{NormalizedAddWork: ir.Float64(0.3333333333)},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_InvalidPolicy(t *testing.T) {
	_, err := Run(&Scenario{Name: "bad", Policy: "FF", Lines: []string{"x"}})
	assert.ErrorIs(t, err, ir.ErrUnknownPolicy)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	p := writeScenario(t, `
name: typo
description: d
lines: ["x"]
expect_position: []
`)
	_, err := LoadScenario(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing name", "description: d\nlines: [x]\nexpect_error: E\n", "name is required"},
		{"missing description", "name: n\nlines: [x]\nexpect_error: E\n", "description is required"},
		{"missing lines", "name: n\ndescription: d\nexpect_error: E\n", "lines list is required"},
		{"no expectation", "name: n\ndescription: d\nlines: [x]\n", "at least one of"},
		{"bad policy", "name: n\ndescription: d\npolicy: nope\nlines: [x]\nexpect_error: E\n", "unknown ordering policy"},
		{"bad absent", "name: n\ndescription: d\nlines: [x]\nexpect: {absent: [flaws_reopened]}\n", "not an optional metric"},
		{"bad position", "name: n\ndescription: d\nlines: [x]\nexpect_positions: [{position: 0, count: 1}]\n", "position must be >= 1"},
		{"bad count", "name: n\ndescription: d\nlines: [x]\nexpect_positions: [{position: 1, count: 0}]\n", "count must be >= 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadDir_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	doc := "name: same\ndescription: d\nlines: [x]\nexpect_error: E\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate scenario name "same"`)
}

func TestSnapshotJSON_DefaultsPolicy(t *testing.T) {
	data, err := SnapshotJSON(&Scenario{Name: "s"}, NewResult())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"policy": "neutral"`)
	assert.Contains(t, string(data), `"positions": []`)
	assert.NotContains(t, string(data), "error_code")
	assert.True(t, strings.HasSuffix(string(data), "}\n"))
}

func writeScenario(t *testing.T, doc string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
	return p
}

func boolPtr(b bool) *bool {
	return &b
}
