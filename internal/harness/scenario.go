package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/plantrace/internal/ir"
)

// Scenario defines one parser check.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Policy is the landmark ordering policy. Empty means neutral.
	Policy string `yaml:"policy,omitempty"`

	// Lines is the trace, one entry per line.
	Lines []string `yaml:"lines"`

	// Expect is a subset match on the metrics record.
	Expect *ExpectMetrics `yaml:"expect,omitempty"`

	// ExpectPositions is the full expected position table.
	ExpectPositions []ExpectPosition `yaml:"expect_positions,omitempty"`

	// ExpectError is the expected structural error code. Empty means the
	// trace must parse cleanly.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ExpectMetrics lists expected metric values. Nil fields are not checked.
type ExpectMetrics struct {
	Finished              *bool    `yaml:"finished,omitempty"`
	PlansGenerated        *int64   `yaml:"plans_generated,omitempty"`
	PlansVisited          *int64   `yaml:"plans_visited,omitempty"`
	DeadEnds              *int64   `yaml:"dead_ends,omitempty"`
	PlanLength            *int64   `yaml:"plan_length,omitempty"`
	PlansUntilLandmark    *int64   `yaml:"plans_until_landmark,omitempty"`
	NormalizedAddWork     *float64 `yaml:"normalized_add_work,omitempty"`
	FlawsReopened         *int64   `yaml:"flaws_reopened,omitempty"`
	LandmarksReopened     *int64   `yaml:"landmarks_reopened,omitempty"`
	PlansBetweenLandmarks *float64 `yaml:"plans_between_landmarks,omitempty"`

	// Absent names optional metrics that must not be present.
	Absent []string `yaml:"absent,omitempty"`
}

// ExpectPosition is one expected row of the position table.
type ExpectPosition struct {
	Position int64  `yaml:"position"`
	Type     string `yaml:"type,omitempty"`
	Count    int64  `yaml:"count"`
}

// optionalMetrics are the metric names accepted in ExpectMetrics.Absent.
var optionalMetrics = map[string]bool{
	"plans_generated":         true,
	"plans_visited":           true,
	"dead_ends":               true,
	"plan_length":             true,
	"plans_until_landmark":    true,
	"normalized_add_work":     true,
	"plans_between_landmarks": true,
}

// Trace returns the scenario lines as newline-terminated text.
func (s *Scenario) Trace() string {
	if len(s.Lines) == 0 {
		return ""
	}
	return strings.Join(s.Lines, "\n") + "\n"
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "expect_position:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, ordered by file
// name. Scenario names must be unique.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	seen := make(map[string]string)
	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", name, s.Name, prev)
		}
		seen[s.Name] = name
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Lines) == 0 {
		return fmt.Errorf("lines list is required and must be non-empty")
	}

	if s.Policy != "" {
		if _, err := ir.ParsePolicy(s.Policy); err != nil {
			return err
		}
	}

	if s.Expect == nil && s.ExpectPositions == nil && s.ExpectError == "" {
		return fmt.Errorf("at least one of expect, expect_positions or expect_error is required")
	}

	if s.Expect != nil {
		for i, name := range s.Expect.Absent {
			if !optionalMetrics[name] {
				return fmt.Errorf("expect.absent[%d]: %q is not an optional metric", i, name)
			}
		}
	}

	for i, p := range s.ExpectPositions {
		if p.Position < 1 {
			return fmt.Errorf("expect_positions[%d]: position must be >= 1", i)
		}
		if p.Count < 1 {
			return fmt.Errorf("expect_positions[%d]: count must be >= 1", i)
		}
	}

	return nil
}
