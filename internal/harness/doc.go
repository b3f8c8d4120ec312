// Package harness runs scenario checks against the trace parser.
//
// A scenario is a literal trace plus the metrics, landmark positions or
// structural error it must produce. Scenarios execute the real engine.Parser,
// so they pin parser behavior the same way unit tests do, but stay readable
// as data.
//
// # Scenario Format
//
//	name: reopened_landmark
//	description: "A second choice of the same flaw counts as reopened"
//	policy: neutral            # optional, default neutral
//	lines:
//	  - "Selecting a flaw from [open conditions]"
//	  - "  #<F1> LL: X ... ADD_WORK: 5"
//	  - "handle #<F1>"
//	expect:                    # subset match, omitted fields are not checked
//	  finished: false
//	  flaws_reopened: 1
//	  absent: [dead_ends]      # fields that must be absent
//	expect_positions:          # exact match on the whole table
//	  - {position: 2, count: 1}
//	expect_error: UNKNOWN_NODE # structural error code
//
// # Golden Snapshots
//
// RunWithGolden writes the parse result as indented JSON and compares it with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
