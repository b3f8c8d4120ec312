package harness

import "github.com/roach88/plantrace/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation matched.
	Pass bool `json:"pass"`

	// Metrics is the metrics record the parser produced.
	Metrics ir.RunMetrics `json:"metrics"`

	// Positions is the position table, ordered by position then type.
	Positions []ir.PositionRow `json:"positions"`

	// ErrorCode is the structural error code, empty when the trace parsed.
	ErrorCode string `json:"error_code,omitempty"`

	// Rounds, Resolved and Discarded are the parser's round counters.
	Rounds    int64 `json:"rounds"`
	Resolved  int64 `json:"resolved"`
	Discarded int64 `json:"discarded"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Positions: []ir.PositionRow{},
		Errors:    []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
