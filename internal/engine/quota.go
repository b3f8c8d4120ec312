package engine

import (
	"errors"
	"fmt"
)

// RoundQuota caps the number of flaw-selection rounds a Parser accepts for
// one trace. It guards batch runs against logs of searches that never
// terminated, which can run to millions of rounds.
//
// A limit of zero or less disables the quota.
type RoundQuota struct {
	limit   int64 // Maximum rounds for this trace
	current int64 // Rounds seen so far
}

// NewRoundQuota creates a quota with the given limit.
func NewRoundQuota(limit int64) *RoundQuota {
	return &RoundQuota{limit: limit}
}

// Check counts one round and validates it against the limit.
//
// Returns *RoundsExceededError once the count goes past the limit.
func (q *RoundQuota) Check(traceID string) error {
	q.current++
	if q.limit > 0 && q.current > q.limit {
		return &RoundsExceededError{
			TraceID: traceID,
			Rounds:  q.current,
			Limit:   q.limit,
		}
	}
	return nil
}

// Current returns the number of rounds counted.
func (q *RoundQuota) Current() int64 {
	return q.current
}

// Limit returns the configured limit.
func (q *RoundQuota) Limit() int64 {
	return q.limit
}

// RoundsExceededError is returned when a trace exceeds its round quota.
// Like a structural error it stops the parse; the partial Result is kept.
type RoundsExceededError struct {
	TraceID string
	Rounds  int64
	Limit   int64
}

// ErrCodeRoundsExceeded is the failure code of RoundsExceededError.
const ErrCodeRoundsExceeded = "ROUNDS_EXCEEDED"

// Error implements the error interface.
func (e *RoundsExceededError) Error() string {
	return fmt.Sprintf("trace %s exceeded round quota: %d rounds > %d limit",
		e.TraceID, e.Rounds, e.Limit)
}

// IsRoundsExceededError returns true if the error is a RoundsExceededError.
// Uses errors.As to handle wrapped errors.
func IsRoundsExceededError(err error) bool {
	var re *RoundsExceededError
	return errors.As(err, &re)
}
