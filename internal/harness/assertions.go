package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/plantrace/internal/ir"
)

// floatTolerance bounds the difference accepted between expected and actual
// ratio metrics.
const floatTolerance = 1e-9

// AssertionError is returned when an expectation fails.
// It includes the trace lines to help debug the failure.
type AssertionError struct {
	Type     string   // Expectation kind: metric name, positions or error
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Lines    []string // Scenario trace for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Lines) > 0 {
		fmt.Fprintf(&buf, "\nTrace:\n")
		for i, line := range e.Lines {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}

	return buf.String()
}

// EvaluateExpectations checks every expectation of the scenario against the
// result. Returns one error per failed expectation, in a fixed order:
// error code, metrics (in record order), absent metrics, positions.
func EvaluateExpectations(result *Result, s *Scenario) []error {
	var errs []error
	fail := func(kind, expected, actual string) {
		errs = append(errs, &AssertionError{Type: kind, Expected: expected, Actual: actual, Lines: s.Lines})
	}

	if result.ErrorCode != s.ExpectError {
		fail("error", orNone(s.ExpectError), orNone(result.ErrorCode))
	}

	if e := s.Expect; e != nil {
		m := result.Metrics
		if e.Finished != nil && *e.Finished != m.Finished {
			fail("finished", fmt.Sprint(*e.Finished), fmt.Sprint(m.Finished))
		}
		checkInt := func(name string, want, got *int64) {
			if want != nil && (got == nil || *want != *got) {
				fail(name, fmt.Sprint(*want), formatInt(got))
			}
		}
		checkFloat := func(name string, want, got *float64) {
			if want != nil && (got == nil || math.Abs(*want-*got) > floatTolerance) {
				fail(name, fmt.Sprint(*want), formatFloat(got))
			}
		}
		checkInt("plans_generated", e.PlansGenerated, m.PlansGenerated)
		checkInt("plans_visited", e.PlansVisited, m.PlansVisited)
		checkInt("dead_ends", e.DeadEnds, m.DeadEnds)
		checkInt("plan_length", e.PlanLength, m.PlanLength)
		checkInt("plans_until_landmark", e.PlansUntilLandmark, m.PlansUntilLandmark)
		checkFloat("normalized_add_work", e.NormalizedAddWork, m.NormalizedAddWork)
		checkInt("flaws_reopened", e.FlawsReopened, &m.FlawsReopened)
		checkInt("landmarks_reopened", e.LandmarksReopened, &m.LandmarksReopened)
		checkFloat("plans_between_landmarks", e.PlansBetweenLandmarks, m.PlansBetweenLandmarks)

		for _, name := range e.Absent {
			if actual, present := optionalValue(m, name); present {
				fail(name, "absent", actual)
			}
		}
	}

	if s.ExpectPositions != nil {
		want := make([]ir.PositionRow, len(s.ExpectPositions))
		for i, p := range s.ExpectPositions {
			want[i] = ir.PositionRow{Position: p.Position, LandmarkType: p.Type, Count: p.Count}
		}
		if !equalRows(want, result.Positions) {
			fail("positions", formatRows(want), formatRows(result.Positions))
		}
	}

	return errs
}

// optionalValue returns the rendered value of a named optional metric and
// whether it is present.
func optionalValue(m ir.RunMetrics, name string) (string, bool) {
	switch name {
	case "plans_generated":
		return formatInt(m.PlansGenerated), m.PlansGenerated != nil
	case "plans_visited":
		return formatInt(m.PlansVisited), m.PlansVisited != nil
	case "dead_ends":
		return formatInt(m.DeadEnds), m.DeadEnds != nil
	case "plan_length":
		return formatInt(m.PlanLength), m.PlanLength != nil
	case "plans_until_landmark":
		return formatInt(m.PlansUntilLandmark), m.PlansUntilLandmark != nil
	case "normalized_add_work":
		return formatFloat(m.NormalizedAddWork), m.NormalizedAddWork != nil
	case "plans_between_landmarks":
		return formatFloat(m.PlansBetweenLandmarks), m.PlansBetweenLandmarks != nil
	}
	return "", false
}

// equalRows compares position rows. Both sides are ordered by position then
// type; expected rows are compared in the order given.
func equalRows(want, got []ir.PositionRow) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

func formatRows(rows []ir.PositionRow) string {
	if len(rows) == 0 {
		return "[]"
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		if r.LandmarkType == "" {
			parts[i] = fmt.Sprintf("%d:%d", r.Position, r.Count)
		} else {
			parts[i] = fmt.Sprintf("%d/%s:%d", r.Position, r.LandmarkType, r.Count)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatInt(v *int64) string {
	if v == nil {
		return "absent"
	}
	return fmt.Sprint(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "absent"
	}
	return fmt.Sprint(*v)
}

func orNone(code string) string {
	if code == "" {
		return "no error"
	}
	return code
}
