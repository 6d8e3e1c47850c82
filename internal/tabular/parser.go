package tabular

import (
	"strings"

	"insurstat/pkg/contracts/domain"
)

// aggregateMarkers are row names that denote sheet totals rather than an
// insurer. Compared case-insensitively.
var aggregateMarkers = map[string]struct{}{
	"total":       {},
	"grand total": {},
}

// EntityResolver maps a raw insurer-name cell to a canonical identifier.
// Implementations record names they cannot resolve; Resolve never fails the
// row beyond returning ok=false.
type EntityResolver interface {
	Resolve(raw string) (int64, bool)
}

// Result is the explicit outcome of parsing one table: the partial
// observations it yielded plus everything that was dropped along the way.
// Droppage is data, not error: a table with no name column, a metric with no
// matching column, and a row with an unresolvable insurer all leave the rest
// of the table intact.
type Result struct {
	Observations   []domain.Observation
	MissingMetrics []string
	SkippedRows    int
	UnresolvedRows int
	NameColumn     string
}

// Empty reports whether the table contributed nothing.
func (r Result) Empty() bool {
	return len(r.Observations) == 0
}

// ParseTable extracts observations for every metric in the dictionary from
// one sheet. The year and source tag stamp each observation with the period
// and provenance of the run. Observations are emitted in dictionary order per
// metric, then row order, which makes the merge engine's last-write-wins
// policy deterministic.
func ParseTable(tbl *Table, dict Dictionary, resolver EntityResolver, year int, source string) Result {
	var res Result
	if tbl == nil || len(tbl.Rows) == 0 {
		return res
	}

	nameCol, ok := FindColumn(tbl.Columns, dict.NameCandidates)
	if !ok {
		return res
	}
	res.NameColumn = nameCol

	// Resolve every insurer once per table, not once per metric.
	rowIDs := make([]int64, len(tbl.Rows))
	rowOK := make([]bool, len(tbl.Rows))
	for i := range tbl.Rows {
		raw := tbl.Cell(i, nameCol)
		if raw == "" {
			res.SkippedRows++
			continue
		}
		if _, agg := aggregateMarkers[strings.ToLower(raw)]; agg {
			res.SkippedRows++
			continue
		}
		id, resolved := resolver.Resolve(raw)
		if !resolved {
			res.UnresolvedRows++
			continue
		}
		rowIDs[i] = id
		rowOK[i] = true
	}

	for _, metric := range dict.Metrics {
		valueCol, found := FindColumn(tbl.Columns, metric.Candidates)
		if !found {
			res.MissingMetrics = append(res.MissingMetrics, metric.Label)
			continue
		}
		for i := range tbl.Rows {
			if !rowOK[i] {
				continue
			}
			value, present := CleanNumber(tbl.Cell(i, valueCol))
			if !present {
				continue
			}
			res.Observations = append(res.Observations, domain.Observation{
				InsurerID: rowIDs[i],
				Metric:    metric.Label,
				Value:     value,
				Year:      year,
				Source:    source,
			})
		}
	}
	return res
}
