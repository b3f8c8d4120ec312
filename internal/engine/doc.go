// Package engine implements the single-pass trace state machine.
//
// A planner trace is an unstructured log stream. The engine turns it into a
// structured ir.RunMetrics record and an ir.LandmarkPositionTable in one
// sequential pass, one line at a time.
//
// ARCHITECTURE:
//
// Per-line flow:
// 1. Classify() maps the line to exactly one tagged ir.Event (or Unmatched)
// 2. NodeVisit / ChildCreated events update the DepthTracker
// 3. RoundStart / Candidate / Handle events drive the RoundAccumulator
// 4. A Handle that closes a round emits an ir.ResolvedRound
// 5. The resolved round feeds the MetricsAggregator and, together with the
//    depth at resolution time, the PositionClassifier
// 6. Summary events feed the MetricsAggregator directly
//
// A Parser owns one instance of each component for exactly one trace. There
// is no shared mutable state between parsers, so traces can be parsed in
// parallel by an external pool (see internal/batch) with one Parser each.
//
// CRITICAL PATTERNS:
//
// Discard policy:
// A RoundStart that arrives while a round is still collecting discards the
// in-flight round without any metric contribution. The round index still
// advances. This mirrors the planner's logging and is pinned by tests.
//
// Fatal depth lookup:
// A NodeVisit for a node id with no pending depth is a StructuralError. The
// parse of that trace stops; callers decide whether to skip the trace.
//
// Lean pass:
// PlansBetweenLandmarks() only follows RoundStart / Candidate / Handle and
// never consults depth, so it succeeds on traces the full Parser rejects.
package engine
