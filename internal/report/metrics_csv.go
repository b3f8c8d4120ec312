package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/roach88/plantrace/internal/ir"
)

// MetricsColumns is the metrics CSV header, in order.
var MetricsColumns = []string{
	"problem",
	"finished",
	"plans_generated",
	"plans_visited",
	"dead_ends",
	"plan_length",
	"plans_until_landmark",
	"normalized_add_work",
	"flaws_reopened",
	"landmarks_reopened",
}

// BetweenColumn is the optional trailing metrics column.
const BetweenColumn = "plans_between_landmarks"

// DefaultAddWorkPrecision is the number of decimals of normalized_add_work.
const DefaultAddWorkPrecision = 4

// MetricsRow is one problem's metrics record.
type MetricsRow struct {
	Problem string
	Metrics ir.RunMetrics
}

// MetricsOptions controls WriteMetricsCSV.
type MetricsOptions struct {
	// Between appends the plans_between_landmarks column.
	Between bool

	// AddWorkPrecision is the decimals of normalized_add_work. Zero means
	// DefaultAddWorkPrecision.
	AddWorkPrecision int
}

// MetricsHeader returns the header for the given options.
func MetricsHeader(opts MetricsOptions) []string {
	h := append([]string(nil), MetricsColumns...)
	if opts.Between {
		h = append(h, BetweenColumn)
	}
	return h
}

// MetricsRecord renders one row. Absent values are empty cells; finished is
// rendered as 1 or 0.
func MetricsRecord(row MetricsRow, opts MetricsOptions) []string {
	precision := opts.AddWorkPrecision
	if precision <= 0 {
		precision = DefaultAddWorkPrecision
	}
	m := row.Metrics
	finished := "0"
	if m.Finished {
		finished = "1"
	}
	rec := []string{
		row.Problem,
		finished,
		formatInt(m.PlansGenerated),
		formatInt(m.PlansVisited),
		formatInt(m.DeadEnds),
		formatInt(m.PlanLength),
		formatInt(m.PlansUntilLandmark),
		formatFixed(m.NormalizedAddWork, precision),
		strconv.FormatInt(m.FlawsReopened, 10),
		strconv.FormatInt(m.LandmarksReopened, 10),
	}
	if opts.Between {
		rec = append(rec, FormatFloat(m.PlansBetweenLandmarks))
	}
	return rec
}

// WriteMetricsCSV writes a header and one record per row, in row order.
func WriteMetricsCSV(w io.Writer, rows []MetricsRow, opts MetricsOptions) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MetricsHeader(opts)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(MetricsRecord(r, opts)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
