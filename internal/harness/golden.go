package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/plantrace/internal/ir"
)

// Snapshot captures the deterministic part of a scenario result.
type Snapshot struct {
	ScenarioName string           `json:"scenario_name"`
	Policy       string           `json:"policy"`
	Metrics      ir.RunMetrics    `json:"metrics"`
	Positions    []ir.PositionRow `json:"positions"`
	ErrorCode    string           `json:"error_code,omitempty"`
	Rounds       int64            `json:"rounds"`
	Resolved     int64            `json:"resolved"`
	Discarded    int64            `json:"discarded"`
}

// SnapshotJSON renders the snapshot of a result as indented JSON with a
// trailing newline. Field order is fixed by the struct, so output is stable.
func SnapshotJSON(scenario *Scenario, result *Result) ([]byte, error) {
	policy := scenario.Policy
	if policy == "" {
		policy = ir.PolicyNeutral.String()
	}
	positions := result.Positions
	if positions == nil {
		positions = []ir.PositionRow{}
	}

	snap := Snapshot{
		ScenarioName: scenario.Name,
		Policy:       policy,
		Metrics:      result.Metrics,
		Positions:    positions,
		ErrorCode:    result.ErrorCode,
		Rounds:       result.Rounds,
		Resolved:     result.Resolved,
		Discarded:    result.Discarded,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
