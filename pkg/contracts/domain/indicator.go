package domain

// Insurer represents a regulated insurance company tracked across reporting
// years. Insurers are seeded once per run from a curated list and are
// immutable afterwards.
type Insurer struct {
	ID   int64  `json:"id" yaml:"id" db:"id" validate:"required,min=1"`
	Name string `json:"name" yaml:"name" db:"name" validate:"required,min=2,max=200"`
	Type string `json:"type" yaml:"type" db:"type" validate:"required"`
}

// Observation is a single (insurer, metric, value) fact extracted from one
// table. Observations are ephemeral: they exist only between parsing a sheet
// and merging into an IndicatorRecord.
type Observation struct {
	InsurerID int64   `json:"insurer_id"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Year      int     `json:"year"`
	Source    string  `json:"source"`
}

// IndicatorRecord is the durable unit of ingestion: one row per
// (insurer, year, source) holding a sparse metric-label to value mapping.
// Metrics absent from the map are simply unknown for this record; persisting
// a record never clears previously stored values for metrics it omits.
type IndicatorRecord struct {
	InsurerID int64              `json:"insurer_id" db:"insurer_id" validate:"required,min=1"`
	Year      int                `json:"year" db:"year" validate:"required,min=2000,max=2100"`
	Source    string             `json:"source" db:"source" validate:"required"`
	Metrics   map[string]float64 `json:"metrics" validate:"required"`
}

// Key identifies the natural key of the record.
func (r IndicatorRecord) Key() RecordKey {
	return RecordKey{InsurerID: r.InsurerID, Year: r.Year, Source: r.Source}
}

// RecordKey is the natural key (insurer, year, source) of an IndicatorRecord.
type RecordKey struct {
	InsurerID int64
	Year      int
	Source    string
}
