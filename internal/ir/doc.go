// Package ir provides the shared data model for plantrace.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the trace event model,
// the per-trace metrics record and the landmark position table as the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Absent metrics are nil pointers, never zero values
//   - Node ids and sequence numbers are int64; flaw ids are opaque strings
//   - Ordering policies are a closed enumeration validated once (ParsePolicy)
//   - All JSON tags use snake_case
package ir
