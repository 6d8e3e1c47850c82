package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurstat/pkg/contracts/domain"
)

func TestWriteIndicatorsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "indicators.csv")
	records := []domain.IndicatorRecord{
		{InsurerID: 7, Year: 2024, Source: "handbook", Metrics: map[string]float64{
			"solvency_ratio": 1850.25,
			"claims_ratio":   64.7,
		}},
		{InsurerID: 42, Year: 2024, Source: "handbook", Metrics: map[string]float64{
			"aum_total": 12345.0,
		}},
	}
	names := map[int64]string{7: "Acme Life Assurance Company"}

	require.NoError(t, WriteIndicatorsCSV(path, records, names))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, []string{"insurer_id", "insurer", "year", "source"}, header[:4])
	col := func(label string) int {
		for i, h := range header {
			if h == label {
				return i
			}
		}
		t.Fatalf("column %q not in header", label)
		return -1
	}

	assert.Equal(t, "Acme Life Assurance Company", rows[1][1])
	assert.Equal(t, "2024", rows[1][2])
	assert.Equal(t, "1850.25", rows[1][col("solvency_ratio")])
	assert.Equal(t, "64.7", rows[1][col("claims_ratio")])
	assert.Equal(t, "", rows[1][col("aum_total")])

	// Unseeded insurer falls back to its bare id.
	assert.Equal(t, "42", rows[2][1])
	assert.Equal(t, "12345", rows[2][col("aum_total")])
}

func TestWriteIndicatorsCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indicators.csv")
	require.NoError(t, WriteIndicatorsCSV(path, nil, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
