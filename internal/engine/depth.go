package engine

// RootNodeID is the id of the initial plan, pre-seeded at depth 0.
const RootNodeID int64 = 0

// DepthTracker maintains the search-tree depth of the node under expansion.
//
// Visits are not in creation order (the search backtracks), so depth is
// tracked with an explicit id→depth table rather than a stack. Each pending
// entry is consumed by exactly one visit, which bounds memory to the number
// of created but not yet visited children.
//
// Thread-safety: none. A DepthTracker belongs to one Parser.
type DepthTracker struct {
	pending map[int64]int64
	current int64
}

// NewDepthTracker creates a tracker with the root node pending at depth 0.
func NewDepthTracker() *DepthTracker {
	return &DepthTracker{
		pending: map[int64]int64{RootNodeID: 0},
	}
}

// ChildCreated records a child of the node under expansion.
func (d *DepthTracker) ChildCreated(childID int64) {
	d.pending[childID] = d.current + 1
}

// Visit makes nodeID the node under expansion and consumes its pending entry.
//
// Returns a *StructuralError if nodeID has no pending entry. The tracker is
// left unchanged in that case.
func (d *DepthTracker) Visit(visitSeq, nodeID int64) error {
	depth, ok := d.pending[nodeID]
	if !ok {
		return newUnknownNodeError(visitSeq, nodeID, d.current, len(d.pending))
	}
	d.current = depth
	delete(d.pending, nodeID)
	return nil
}

// Current returns the depth of the node under expansion.
func (d *DepthTracker) Current() int64 {
	return d.current
}

// Pending returns the number of created, not yet visited nodes.
func (d *DepthTracker) Pending() int {
	return len(d.pending)
}

// PendingDepth returns the recorded depth of a not yet visited node.
func (d *DepthTracker) PendingDepth(nodeID int64) (int64, bool) {
	depth, ok := d.pending[nodeID]
	return depth, ok
}
