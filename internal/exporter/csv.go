// Package exporter writes indicator records out as CSV for spreadsheet
// review. Files carry a UTF-8 BOM so Excel opens them correctly.
package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"insurstat/internal/store"
	"insurstat/pkg/contracts/domain"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// WriteIndicatorsCSV writes the given records to path, one row per
// (insurer, year, source) with every schema metric as a column. Metrics the
// record lacks are left empty. Insurer names come from the names map; an id
// without a name falls back to the bare id.
func WriteIndicatorsCSV(path string, records []domain.IndicatorRecord, names map[int64]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(bom); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	metrics := store.KnownMetrics()
	writer := csv.NewWriter(file)
	header := append([]string{"insurer_id", "insurer", "year", "source"}, metrics...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		name, ok := names[rec.InsurerID]
		if !ok {
			name = strconv.FormatInt(rec.InsurerID, 10)
		}
		row := make([]string, 0, len(header))
		row = append(row,
			strconv.FormatInt(rec.InsurerID, 10),
			name,
			strconv.Itoa(rec.Year),
			rec.Source)
		for _, label := range metrics {
			if v, present := rec.Metrics[label]; present {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record for insurer %d: %w", rec.InsurerID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
