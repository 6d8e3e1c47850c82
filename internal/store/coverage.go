package store

import (
	"context"
	"fmt"
	"strings"
)

// Coverage reports, for one (year, source) pair, how many insurers carry a
// non-null value per metric. This is the operator's quick check that an
// ingestion pass actually extracted something for each edition.
type Coverage struct {
	Year    int
	Source  string
	Rows    int
	Metrics map[string]int
}

// MetricCoverage returns per-(year, source) non-null counts for every metric
// column, ordered by year then source.
func (s *Store) MetricCoverage(ctx context.Context) ([]Coverage, error) {
	var counts strings.Builder
	for _, col := range indicatorColumns {
		counts.WriteString(", COUNT(")
		counts.WriteString(col)
		counts.WriteString(")")
	}
	query := `SELECT year, source, COUNT(*)` + counts.String() +
		` FROM indicators GROUP BY year, source ORDER BY year, source`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query metric coverage: %w", err)
	}
	defer rows.Close()

	var out []Coverage
	for rows.Next() {
		cov := Coverage{Metrics: make(map[string]int, len(indicatorColumns))}
		values := make([]int, len(indicatorColumns))
		dest := make([]any, 0, len(indicatorColumns)+3)
		dest = append(dest, &cov.Year, &cov.Source, &cov.Rows)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan metric coverage: %w", err)
		}
		for i, col := range indicatorColumns {
			cov.Metrics[col] = values[i]
		}
		out = append(out, cov)
	}
	return out, rows.Err()
}

// RowCount returns the total number of indicator rows.
func (s *Store) RowCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM indicators`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count indicator rows: %w", err)
	}
	return n, nil
}
