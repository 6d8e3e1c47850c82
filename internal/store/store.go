// Package store persists merged indicator records in SQLite, keyed by the
// natural key (insurer, year, source).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"insurstat/pkg/contracts/domain"
)

// indicatorColumns is the fixed metric column set of the indicators table, in
// schema order. Metric labels arriving from the dictionary are validated
// against this allowlist before they reach SQL text.
var indicatorColumns = []string{
	"claim_settlement_ratio",
	"solvency_ratio",
	"gross_premium_total",
	"claims_ratio",
	"eom_ratio",
	"commission_ratio",
	"grievances_received",
	"grievances_resolved",
	"grievances_pending",
	"grievances_within_tat_percent",
	"aum_total",
}

// Store manages indicator persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string

	columnSet map[string]struct{}
}

// Open initializes or connects to the indicator database and applies the
// schema. Pragmas go through the DSN so every connection the pool opens gets
// them; a pragma applied with Exec would configure only the one connection
// that happened to run it, leaving the rest with busy_timeout 0 and instant
// SQLITE_BUSY failures under concurrent period workers.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db, path: path, columnSet: make(map[string]struct{}, len(indicatorColumns))}
	for _, col := range indicatorColumns {
		store.columnSet[col] = struct{}{}
	}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// KnownMetrics returns the metric columns the schema can hold, in schema
// order.
func KnownMetrics() []string {
	out := make([]string, len(indicatorColumns))
	copy(out, indicatorColumns)
	return out
}

func (s *Store) applySchema(ctx context.Context) error {
	var metricDefs strings.Builder
	for _, col := range indicatorColumns {
		metricDefs.WriteString(col)
		metricDefs.WriteString(" REAL,\n            ")
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS insurers (
            id   INTEGER PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            type TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS indicators (
            insurer_id INTEGER NOT NULL REFERENCES insurers(id),
            year       INTEGER NOT NULL,
            source     TEXT NOT NULL,
            ` + metricDefs.String() + `
            PRIMARY KEY (insurer_id, year, source)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_indicators_year_source ON indicators(year, source)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SeedInsurers inserts the roster idempotently. Existing rows are left
// untouched, so re-running ingestion never mutates the roster.
func (s *Store) SeedInsurers(ctx context.Context, insurers []domain.Insurer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO insurers (id, name, type) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insurer insert: %w", err)
	}
	defer stmt.Close()

	for _, ins := range insurers {
		if _, err := stmt.ExecContext(ctx, ins.ID, ins.Name, ins.Type); err != nil {
			return fmt.Errorf("seed insurer %d: %w", ins.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insurer seed: %w", err)
	}
	return nil
}

// UpsertRecord writes one merged record with column-level replace semantics:
// metrics present in the record overwrite the stored value, metrics absent
// from the record keep whatever an earlier write stored. Unknown metric
// labels are a configuration error and rejected before any SQL runs.
func (s *Store) UpsertRecord(ctx context.Context, rec domain.IndicatorRecord) error {
	return s.upsert(ctx, s.db, rec)
}

// UpsertAll writes a batch of merged records in one transaction and returns
// the number of rows written.
func (s *Store) UpsertAll(ctx context.Context, recs []domain.IndicatorRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	written := 0
	for _, rec := range recs {
		if err := s.upsert(ctx, tx, rec); err != nil {
			return written, err
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert transaction: %w", err)
	}
	return written, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) upsert(ctx context.Context, db execer, rec domain.IndicatorRecord) error {
	if rec.InsurerID <= 0 {
		return fmt.Errorf("upsert record: invalid insurer id %d", rec.InsurerID)
	}
	if len(rec.Metrics) == 0 {
		return nil
	}

	// Deterministic column order keeps the generated SQL stable.
	present := make([]string, 0, len(rec.Metrics))
	for label := range rec.Metrics {
		if _, known := s.columnSet[label]; !known {
			return fmt.Errorf("upsert record: unknown metric label %q", label)
		}
		present = append(present, label)
	}
	sort.Strings(present)

	var (
		cols    strings.Builder
		marks   strings.Builder
		updates strings.Builder
		args    = []any{rec.InsurerID, rec.Year, rec.Source}
	)
	for _, label := range present {
		cols.WriteString(", ")
		cols.WriteString(label)
		marks.WriteString(", ?")
		if updates.Len() > 0 {
			updates.WriteString(", ")
		}
		updates.WriteString(label)
		updates.WriteString(" = excluded.")
		updates.WriteString(label)
		args = append(args, rec.Metrics[label])
	}

	query := `INSERT INTO indicators (insurer_id, year, source` + cols.String() + `)
        VALUES (?, ?, ?` + marks.String() + `)
        ON CONFLICT (insurer_id, year, source) DO UPDATE SET ` + updates.String()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert indicators (insurer %d, year %d, source %s): %w",
			rec.InsurerID, rec.Year, rec.Source, err)
	}
	return nil
}

// Record fetches one stored record by natural key. The bool reports whether
// the row exists; absent metric columns are omitted from the map.
func (s *Store) Record(ctx context.Context, key domain.RecordKey) (domain.IndicatorRecord, bool, error) {
	query := `SELECT ` + strings.Join(indicatorColumns, ", ") +
		` FROM indicators WHERE insurer_id = ? AND year = ? AND source = ?`
	row := s.db.QueryRowContext(ctx, query, key.InsurerID, key.Year, key.Source)

	values := make([]sql.NullFloat64, len(indicatorColumns))
	dest := make([]any, len(indicatorColumns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return domain.IndicatorRecord{}, false, nil
		}
		return domain.IndicatorRecord{}, false, fmt.Errorf("get record: %w", err)
	}

	rec := domain.IndicatorRecord{
		InsurerID: key.InsurerID,
		Year:      key.Year,
		Source:    key.Source,
		Metrics:   make(map[string]float64),
	}
	for i, col := range indicatorColumns {
		if values[i].Valid {
			rec.Metrics[col] = values[i].Float64
		}
	}
	return rec, true, nil
}

// Records returns every stored record ordered by year, source, and insurer.
// Absent metric columns are omitted from each record's map.
func (s *Store) Records(ctx context.Context) ([]domain.IndicatorRecord, error) {
	query := `SELECT insurer_id, year, source, ` + strings.Join(indicatorColumns, ", ") +
		` FROM indicators ORDER BY year, source, insurer_id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var recs []domain.IndicatorRecord
	for rows.Next() {
		rec := domain.IndicatorRecord{Metrics: make(map[string]float64)}
		values := make([]sql.NullFloat64, len(indicatorColumns))
		dest := make([]any, 0, len(indicatorColumns)+3)
		dest = append(dest, &rec.InsurerID, &rec.Year, &rec.Source)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		for i, col := range indicatorColumns {
			if values[i].Valid {
				rec.Metrics[col] = values[i].Float64
			}
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return recs, nil
}

// InsurerNames returns the canonical name for every seeded insurer id.
func (s *Store) InsurerNames(ctx context.Context) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM insurers`)
	if err != nil {
		return nil, fmt.Errorf("list insurers: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan insurer: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list insurers: %w", err)
	}
	return names, nil
}

// BeginBulkLoad relaxes durability for the ingestion pass. Concurrent period
// workers write disjoint keys, so the only cost is crash durability during
// the load itself. The pool is pinned to a single connection first: Exec
// scopes a pragma to the connection that runs it, so without the pin the
// relaxed settings would cover one pooled connection and miss the rest.
func (s *Store) BeginBulkLoad(ctx context.Context) error {
	s.db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("enter bulk load mode: %w", err)
		}
	}
	return nil
}

// EndBulkLoad restores the standard durability settings and reopens the pool.
func (s *Store) EndBulkLoad(ctx context.Context) error {
	for _, pragma := range []string{"PRAGMA synchronous = FULL", "PRAGMA journal_mode = WAL"} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("leave bulk load mode: %w", err)
		}
	}
	s.db.SetMaxOpenConns(0)
	return nil
}
