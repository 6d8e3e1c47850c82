package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRowsHeaderOnFirstRow(t *testing.T) {
	rows := [][]string{
		{"Insurer", "Solvency Ratio"},
		{"Acme Life Insurance", "1.85"},
	}
	tbl, ok := FromRows(rows, []string{"insurer"})
	require.True(t, ok)
	assert.Equal(t, []string{"Insurer", "Solvency Ratio"}, tbl.Columns)
	assert.Len(t, tbl.Rows, 1)
}

func TestFromRowsSkipsTitleRows(t *testing.T) {
	rows := [][]string{
		{"Statement 14"},
		{},
		{"Insurer", "Solvency Ratio"},
		{"Acme Life Insurance", "1.85"},
		{"Beta General Insurance", "2.10"},
	}
	tbl, ok := FromRows(rows, []string{"insurer"})
	require.True(t, ok)
	assert.Equal(t, "Insurer", tbl.Columns[0])
	assert.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Acme Life Insurance", tbl.Cell(0, "Insurer"))
}

func TestFromRowsNoNameColumn(t *testing.T) {
	rows := [][]string{
		{"Date", "Volume"},
		{"2024-01-01", "10"},
	}
	_, ok := FromRows(rows, []string{"insurer", "company name"})
	assert.False(t, ok)
}

func TestFromRowsHeaderBeyondScanDepth(t *testing.T) {
	rows := make([][]string, 0, headerScanDepth+2)
	for i := 0; i < headerScanDepth; i++ {
		rows = append(rows, []string{"filler"})
	}
	rows = append(rows, []string{"Insurer", "Solvency Ratio"}, []string{"Acme Life Insurance", "1.85"})
	_, ok := FromRows(rows, []string{"insurer"})
	assert.False(t, ok)
}

func TestTableCell(t *testing.T) {
	tbl := NewTable([]string{"Insurer", "Value"}, [][]string{
		{"  Acme Life Insurance  ", "42"},
		{"Short"},
	})
	assert.Equal(t, "Acme Life Insurance", tbl.Cell(0, "Insurer"))
	assert.Equal(t, "", tbl.Cell(1, "Value"))
	assert.Equal(t, "", tbl.Cell(0, "Missing"))
	assert.Equal(t, "", tbl.Cell(5, "Insurer"))
}
