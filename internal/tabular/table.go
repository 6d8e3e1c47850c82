package tabular

import "strings"

// headerScanDepth bounds how far into a sheet the header row is searched for.
// Handbook sheets put at most a handful of title and footnote rows above the
// real header.
const headerScanDepth = 10

// Table is one tabular sheet: a header of named columns over ordered rows.
// Cell access is by column label, mirroring how source tables are addressed
// everywhere else in the engine.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a Table from a header and data rows. Short rows are
// readable; Cell returns "" for cells beyond a row's length.
func NewTable(columns []string, rows [][]string) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return &Table{Columns: columns, Rows: rows, index: index}
}

// Cell returns the trimmed value of the named column in the given row.
func (t *Table) Cell(row int, column string) string {
	idx, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	cells := t.Rows[row]
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// FromRows locates the header row inside a raw sheet and returns the table
// beneath it. Sheets carry title and footnote rows above the header, so the
// header is detected as the first row (within headerScanDepth) from which the
// insurer-name column resolves. Returns false when no such row exists, which
// marks the sheet unparseable.
func FromRows(rows [][]string, nameCandidates []string) (*Table, bool) {
	limit := len(rows)
	if limit > headerScanDepth {
		limit = headerScanDepth
	}
	for i := 0; i < limit; i++ {
		if len(rows[i]) == 0 {
			continue
		}
		if _, ok := FindColumn(rows[i], nameCandidates); ok {
			return NewTable(rows[i], rows[i+1:]), true
		}
	}
	return nil, false
}
