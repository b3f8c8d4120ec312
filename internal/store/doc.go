// Package store provides SQLite-backed storage for batch parse results.
//
// One batch run writes:
//   - Runs: run id (UUIDv7), mode, policy, data directory, timestamps
//   - Trace metrics: one ir.RunMetrics row per trace, keyed by problem and source
//   - Landmark positions: one row per (problem, position, landmark type)
//   - Trace failures: per-trace errors with their error code
//
// # Critical Patterns
//
// Absent is not zero:
//   - Optional metrics are stored as NULL and read back as nil pointers
//
// Idempotent writes:
//   - Every insert uses ON CONFLICT DO NOTHING on its natural key
//   - Re-saving a run is a no-op
//
// Deterministic query results:
//   - All queries ORDER BY their natural key with COLLATE BINARY
//
// Atomic runs:
//   - SaveRun writes a run and all of its rows in one transaction
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
