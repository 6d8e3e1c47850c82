package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// TableFailure records one table or archive member that could not be parsed.
// Failures here never escalate: the rest of the archive proceeds.
type TableFailure struct {
	Member string
	Sheet  string
	Reason string
}

// PeriodResult is the outcome of one period worker. Err is set only for
// period-fatal conditions (archive unobtainable or implausibly small); table
// level problems land in TableFailures instead.
type PeriodResult struct {
	Year          int
	URL           string
	RowsWritten   int
	TablesParsed  int
	TablesSkipped int
	TableFailures []TableFailure
	Err           error
}

// RunReport aggregates everything an operator needs at the end of a run: the
// row count, per-period outcomes, and where the unresolved names went.
type RunReport struct {
	RunID             string
	RowsWritten       int
	Periods           []PeriodResult
	UnresolvedCount   int
	UnresolvedLogPath string
}

// Summary renders the operator-facing end-of-run report.
func (r *RunReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ingestion run %s\n", r.RunID)

	periods := make([]PeriodResult, len(r.Periods))
	copy(periods, r.Periods)
	sort.Slice(periods, func(i, j int) bool { return periods[i].Year < periods[j].Year })

	for _, p := range periods {
		if p.Err != nil {
			fmt.Fprintf(&b, "  [%d] FAILED: %v\n", p.Year, p.Err)
			continue
		}
		fmt.Fprintf(&b, "  [%d] rows written: %d (tables parsed: %d, skipped: %d)\n",
			p.Year, p.RowsWritten, p.TablesParsed, p.TablesSkipped)
		for _, f := range p.TableFailures {
			fmt.Fprintf(&b, "        table failure %s/%s: %s\n", f.Member, f.Sheet, f.Reason)
		}
	}

	fmt.Fprintf(&b, "total rows written: %d\n", r.RowsWritten)
	if r.UnresolvedCount > 0 {
		fmt.Fprintf(&b, "unresolved insurer names: %d (see %s)\n", r.UnresolvedCount, r.UnresolvedLogPath)
	}
	return b.String()
}
