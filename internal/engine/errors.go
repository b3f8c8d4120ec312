package engine

import (
	"errors"
	"fmt"
)

// StructuralError represents a trace that cannot be parsed further.
//
// Structural errors include:
//   - Unknown node: a visit references a node id with no pending depth
//
// StructuralError is fatal for its trace only. It carries the depth tracker
// state at the failure point so the malformed log can be diagnosed.
type StructuralError struct {
	// Code identifies the error category.
	Code StructuralErrorCode

	// Message is a human-readable description.
	Message string

	// TraceID identifies the affected trace (set by Parser).
	TraceID string

	// Line is the 1-based line number of the offending line (set by Parser).
	Line int64

	// NodeID is the node id referenced by the offending visit.
	NodeID int64

	// VisitSeq is the visit sequence number of the offending line.
	VisitSeq int64

	// CurrentDepth is the depth tracker's depth before the failure.
	CurrentDepth int64

	// Pending is the number of created, not yet visited nodes.
	Pending int
}

// StructuralErrorCode categorizes structural errors.
type StructuralErrorCode string

const (
	// ErrCodeUnknownNode indicates a visit to a node that was never created.
	ErrCodeUnknownNode StructuralErrorCode = "UNKNOWN_NODE"
)

// Error implements the error interface.
func (e *StructuralError) Error() string {
	state := fmt.Sprintf("node=%d, visit=%d, depth=%d, pending=%d", e.NodeID, e.VisitSeq, e.CurrentDepth, e.Pending)
	if e.TraceID != "" {
		return fmt.Sprintf("%s: %s (trace=%s, line=%d, %s)", e.Code, e.Message, e.TraceID, e.Line, state)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, state)
}

// IsStructuralError returns true if the error is a StructuralError.
// Uses errors.As to handle wrapped errors.
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// newUnknownNodeError creates a StructuralError for a visit to an unknown node.
func newUnknownNodeError(visitSeq, nodeID, depth int64, pending int) *StructuralError {
	return &StructuralError{
		Code:         ErrCodeUnknownNode,
		Message:      "visited node has no pending depth",
		NodeID:       nodeID,
		VisitSeq:     visitSeq,
		CurrentDepth: depth,
		Pending:      pending,
	}
}
