package pipeline

import (
	"sort"

	"insurstat/pkg/contracts/domain"
)

// Merge combines partial observations from every table of one ingestion pass
// into one record per (insurer, year, source). When the same metric for the
// same key appears more than once, the later observation wins: last-write-wins
// by processing order is the engine's explicit merge policy, not an ordering
// accident. Output is sorted by key for deterministic persistence order.
func Merge(observations []domain.Observation) []domain.IndicatorRecord {
	merged := make(map[domain.RecordKey]*domain.IndicatorRecord)
	for _, obs := range observations {
		key := domain.RecordKey{InsurerID: obs.InsurerID, Year: obs.Year, Source: obs.Source}
		rec, ok := merged[key]
		if !ok {
			rec = &domain.IndicatorRecord{
				InsurerID: obs.InsurerID,
				Year:      obs.Year,
				Source:    obs.Source,
				Metrics:   make(map[string]float64),
			}
			merged[key] = rec
		}
		rec.Metrics[obs.Metric] = obs.Value
	}

	records := make([]domain.IndicatorRecord, 0, len(merged))
	for _, rec := range merged {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		if records[i].Source != records[j].Source {
			return records[i].Source < records[j].Source
		}
		return records[i].InsurerID < records[j].InsurerID
	})
	return records
}
