package report

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Win-rate ties: values within tolerance of the row minimum share the win.
const (
	tieAbsTol = 1e-12
	tieRelTol = 1e-8
)

// DomainOf returns the domain of a problem id: the text before the first "-".
func DomainOf(problem string) string {
	domain, _, _ := strings.Cut(problem, "-")
	return domain
}

// CompactSummary condenses a per-problem heuristic table (lower is better)
// into two rows per domain:
//
//	<domain>_mean_pct_above_avg  mean over problems of (v - mean)/mean * 100
//	<domain>_win_rate            share of problems where the column is the
//	                             minimum; ties split the win evenly
//
// Heuristic columns are every non-problem column, sorted by name. Domains
// are sorted by name. Values are rounded to 2 decimals; cells with no data
// are empty. The first header cell is empty, as the row labels have no name.
func CompactSummary(t *Table) (*Table, error) {
	key := t.Column(ProblemColumn)
	if key < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ProblemColumn)
	}

	var heuristics []string
	cols := map[string]int{}
	for c, h := range t.Header {
		if c == key {
			continue
		}
		heuristics = append(heuristics, h)
		cols[h] = c
	}
	slices.Sort(heuristics)

	byDomain := map[string][]int{}
	for i := range t.Rows {
		d := DomainOf(t.Cell(i, key))
		byDomain[d] = append(byDomain[d], i)
	}
	domains := make([]string, 0, len(byDomain))
	for d := range byDomain {
		domains = append(domains, d)
	}
	slices.Sort(domains)

	out := &Table{Header: append([]string{""}, heuristics...)}
	for _, d := range domains {
		pct, wins := summarizeDomain(t, byDomain[d], heuristics, cols)
		out.Rows = append(out.Rows,
			append([]string{d + "_mean_pct_above_avg"}, pct...),
			append([]string{d + "_win_rate"}, wins...))
	}
	return out, nil
}

func summarizeDomain(t *Table, rows []int, heuristics []string, cols map[string]int) (pct, wins []string) {
	n := len(heuristics)
	pctSum := make([]float64, n)
	pctCount := make([]int, n)
	winShare := make([]float64, n)
	problems := 0

	for _, r := range rows {
		values := make([]float64, n)
		present := make([]bool, n)
		var sum, lo float64
		count := 0
		for h, name := range heuristics {
			v, ok := parseCell(t.Cell(r, cols[name]))
			if !ok {
				continue
			}
			values[h], present[h] = v, true
			if count == 0 || v < lo {
				lo = v
			}
			sum += v
			count++
		}
		if count == 0 {
			continue
		}
		problems++

		mean := sum / float64(count)
		if mean != 0 {
			for h := range heuristics {
				if present[h] {
					pctSum[h] += (values[h] - mean) / mean * 100
					pctCount[h]++
				}
			}
		}

		var winners []int
		for h := range heuristics {
			if present[h] && math.Abs(values[h]-lo) <= tieAbsTol+tieRelTol*math.Abs(lo) {
				winners = append(winners, h)
			}
		}
		share := 1.0 / float64(len(winners))
		for _, h := range winners {
			winShare[h] += share
		}
	}

	pct = make([]string, n)
	wins = make([]string, n)
	for h := range heuristics {
		if pctCount[h] > 0 {
			v := round2(pctSum[h] / float64(pctCount[h]))
			pct[h] = FormatFloat(&v)
		}
		if problems > 0 {
			v := round2(winShare[h] / float64(problems))
			wins[h] = FormatFloat(&v)
		}
	}
	return pct, wins
}
