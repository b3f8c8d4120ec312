package testutil

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plantrace/internal/ir"
)

func TestTraceBuilder_VisitSequence(t *testing.T) {
	b := NewTraceBuilder().Visit(0).Child(1).Visit(1).VisitSeq(10, 2).Visit(3)

	assert.Equal(t, []string{
		"1: CURRENT PLAN (id 0) with rank (3,2)",
		"CHILD (id 1) with rank (4,1)",
		"2: CURRENT PLAN (id 1) with rank (3,2)",
		"10: CURRENT PLAN (id 2) with rank (3,2)",
		"11: CURRENT PLAN (id 3) with rank (3,2)",
	}, b.Lines())
}

func TestTraceBuilder_Round(t *testing.T) {
	b := NewTraceBuilder().
		Round().
		Candidate("F1", "3", 5).
		TypedCandidate("F2", "1", "open", 2).
		Goal(0).
		Handle("F1")

	assert.Equal(t, []string{
		"Selecting a flaw from [open conditions, unsafe links]",
		"  #<F1> LL: 3 ... ADD_WORK: 5",
		"  #<F2> LL: 1 TYPE: open ... ADD_WORK: 2",
		"  #<18446744073709551615> LL: X ... ADD_WORK: 0",
		"handle #<F1>",
	}, b.Lines())
}

func TestTraceBuilder_Finished(t *testing.T) {
	b := NewTraceBuilder().Finished(10, 8, 2, 4)

	assert.Equal(t, "Plans generated: 10\nPlans visited: 8\nDead ends encountered: 2\nNumber of steps: 4\n", b.String())
}

func TestTraceBuilder_ReaderAndEmpty(t *testing.T) {
	assert.Equal(t, "", NewTraceBuilder().String())

	b := NewTraceBuilder().Summary(ir.SummaryPlanLength, 7)
	data, err := io.ReadAll(b.Reader())
	require.NoError(t, err)
	assert.Equal(t, "Number of steps: 7\n", string(data))
}

func TestTraceBuilder_LinesIsCopy(t *testing.T) {
	b := NewTraceBuilder().Round()
	lines := b.Lines()
	lines[0] = "mutated"

	assert.Equal(t, "Selecting a flaw from [open conditions, unsafe links]", b.Lines()[0])
}
