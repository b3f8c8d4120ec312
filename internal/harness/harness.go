package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/plantrace/internal/engine"
	"github.com/roach88/plantrace/internal/ir"
)

// Run executes a scenario against a fresh engine.Parser and evaluates its
// expectations.
//
// The returned error is reserved for scenarios that cannot run at all (an
// invalid policy). A structural parse error is an outcome, recorded in
// Result.ErrorCode and checked against ExpectError.
func Run(scenario *Scenario) (*Result, error) {
	policy := ir.PolicyNeutral
	if scenario.Policy != "" {
		p, err := ir.ParsePolicy(scenario.Policy)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		policy = p
	}

	parsed, err := engine.ParseTrace(scenario.Name, strings.NewReader(scenario.Trace()), engine.Options{
		Policy: policy,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in checks
	})

	result := NewResult()
	result.Metrics = parsed.Metrics
	result.Rounds = parsed.Rounds
	result.Resolved = parsed.Resolved
	result.Discarded = parsed.Discarded
	if parsed.Positions != nil {
		result.Positions = parsed.Positions.Rows()
	}

	if err != nil {
		var se *engine.StructuralError
		if !errors.As(err, &se) {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.ErrorCode = string(se.Code)
	}

	for _, failure := range EvaluateExpectations(result, scenario) {
		result.AddError(failure.Error())
	}
	return result, nil
}
