package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuralError_Error(t *testing.T) {
	err := newUnknownNodeError(17, 42, 3, 5)
	assert.Equal(t,
		"UNKNOWN_NODE: visited node has no pending depth (node=42, visit=17, depth=3, pending=5)",
		err.Error())

	err.TraceID = "prob01"
	err.Line = 120
	assert.Equal(t,
		"UNKNOWN_NODE: visited node has no pending depth (trace=prob01, line=120, node=42, visit=17, depth=3, pending=5)",
		err.Error())
}

func TestIsStructuralError(t *testing.T) {
	base := newUnknownNodeError(1, 2, 0, 0)

	assert.True(t, IsStructuralError(base))
	assert.True(t, IsStructuralError(fmt.Errorf("parse: %w", base)))
	assert.False(t, IsStructuralError(errors.New("other")))
	assert.False(t, IsStructuralError(nil))
}
