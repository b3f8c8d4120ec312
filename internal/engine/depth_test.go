package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepthTracker_RootSeeded(t *testing.T) {
	d := NewDepthTracker()

	depth, ok := d.PendingDepth(RootNodeID)
	assert.True(t, ok)
	assert.Equal(t, int64(0), depth)
	assert.Equal(t, 1, d.Pending())
	assert.Equal(t, int64(0), d.Current())
}

func TestDepthTracker_VisitConsumesEntry(t *testing.T) {
	d := NewDepthTracker()

	require.NoError(t, d.Visit(1, 0))
	assert.Equal(t, 0, d.Pending())

	_, ok := d.PendingDepth(RootNodeID)
	assert.False(t, ok, "root entry must be gone after its visit")

	err := d.Visit(2, 0)
	require.Error(t, err)
	assert.True(t, IsStructuralError(err))
}

func TestDepthTracker_Backtracking(t *testing.T) {
	d := NewDepthTracker()

	require.NoError(t, d.Visit(1, 0))
	d.ChildCreated(1)
	d.ChildCreated(2)

	require.NoError(t, d.Visit(2, 1))
	assert.Equal(t, int64(1), d.Current())
	d.ChildCreated(3)

	require.NoError(t, d.Visit(3, 3))
	assert.Equal(t, int64(2), d.Current())

	// Backtrack to the sibling created at depth 1.
	require.NoError(t, d.Visit(4, 2))
	assert.Equal(t, int64(1), d.Current())
	assert.Equal(t, 0, d.Pending())
}

func TestDepthTracker_ChildDepthUsesCurrent(t *testing.T) {
	d := NewDepthTracker()
	require.NoError(t, d.Visit(1, 0))
	d.ChildCreated(5)
	require.NoError(t, d.Visit(2, 5))
	d.ChildCreated(6)

	depth, ok := d.PendingDepth(6)
	require.True(t, ok)
	assert.Equal(t, int64(2), depth)
}

func TestDepthTracker_UnknownNode(t *testing.T) {
	d := NewDepthTracker()
	require.NoError(t, d.Visit(1, 0))
	d.ChildCreated(7)

	err := d.Visit(9, 99)
	require.Error(t, err)

	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ErrCodeUnknownNode, se.Code)
	assert.Equal(t, int64(99), se.NodeID)
	assert.Equal(t, int64(9), se.VisitSeq)
	assert.Equal(t, int64(0), se.CurrentDepth)
	assert.Equal(t, 1, se.Pending)

	// State unchanged after a failed visit.
	assert.Equal(t, 1, d.Pending())
	require.NoError(t, d.Visit(10, 7))
	assert.Equal(t, int64(1), d.Current())
}
