package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/plantrace/internal/ir"
)

// Line patterns, in classification priority order.
var (
	reRoundStart = regexp.MustCompile(`^Selecting a flaw from`)

	// #<id> LL: <level> [TYPE: <name>] ... ADD_WORK: <int>
	// Any level token is kept; ir.Level decides whether it is a landmark.
	reCandidate = regexp.MustCompile(
		`#<([^>]+)>\s+LL:\s*(\S+)(?:\s+TYPE:\s*(\S+))?.*?\bADD_WORK:\s*(\d+)`)

	reHandle = regexp.MustCompile(`^\s*handle #<([^>]+)>`)

	reNodeVisit = regexp.MustCompile(`(?i)^(\d+):.*CURRENT PLAN \(id (\d+)\) with rank \(`)

	reChildCreated = regexp.MustCompile(`(?i)CHILD \(id (\d+)\) with rank \(`)

	reSummary = regexp.MustCompile(
		`(?i)^(Plans generated|Plans visited|Dead ends encountered|Number of steps):\s*(\d+)`)
)

// summaryMetrics maps lowercased summary prefixes to their metric.
var summaryMetrics = map[string]ir.SummaryMetric{
	"plans generated":       ir.SummaryPlansGenerated,
	"plans visited":         ir.SummaryPlansVisited,
	"dead ends encountered": ir.SummaryDeadEnds,
	"number of steps":       ir.SummaryPlanLength,
}

// Classify maps one trace line to exactly one event.
//
// Patterns are tried in priority order: RoundStart, Candidate, Handle,
// NodeVisit, ChildCreated, Summary. A line matching none of them, or one
// whose numeric fields overflow int64, yields ir.Unmatched{}.
//
// Classify is stateless and safe for concurrent use.
func Classify(line string) ir.Event {
	line = strings.TrimRight(line, "\r\n")

	if reRoundStart.MatchString(line) {
		return ir.RoundStart{}
	}

	if m := reCandidate.FindStringSubmatch(line); m != nil {
		work, err := strconv.ParseInt(m[4], 10, 64)
		if err == nil {
			return ir.Candidate{
				ID:           m[1],
				Level:        ir.Level(m[2]),
				WorkCost:     work,
				LandmarkType: m[3],
			}
		}
	}

	if m := reHandle.FindStringSubmatch(line); m != nil {
		return ir.Handle{ChosenID: m[1]}
	}

	if m := reNodeVisit.FindStringSubmatch(line); m != nil {
		seq, err1 := strconv.ParseInt(m[1], 10, 64)
		id, err2 := strconv.ParseInt(m[2], 10, 64)
		if err1 == nil && err2 == nil {
			return ir.NodeVisit{VisitSeq: seq, NodeID: id}
		}
		return ir.Unmatched{}
	}

	if m := reChildCreated.FindStringSubmatch(line); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			return ir.ChildCreated{ChildID: id}
		}
		return ir.Unmatched{}
	}

	if m := reSummary.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseInt(m[2], 10, 64); err == nil {
			return ir.Summary{Metric: summaryMetrics[strings.ToLower(m[1])], Value: v}
		}
	}

	return ir.Unmatched{}
}
