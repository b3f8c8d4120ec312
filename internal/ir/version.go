package ir

// Version constants for the record schema and the tool.
const (
	// RecordVersion is the RunMetrics / position table schema version.
	RecordVersion = "1"

	// ToolVersion is the plantrace version.
	ToolVersion = "0.1.0"
)
