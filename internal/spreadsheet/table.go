package spreadsheet

import "strings"

// Row is one data row of a table with its 1-based line number in the source
type Row struct {
	Line  int
	Cells []string
}

// Table is the uniform row-oriented view of a spreadsheet, whatever its format.
// The first non-blank record is the header; every row has len(Header) cells.
type Table struct {
	Source string
	Sheet  string
	Header []string
	Rows   []Row
}

// NewTable builds a Table from raw records
func NewTable(source, sheet string, records [][]string) (*Table, error) {
	t := &Table{Source: source, Sheet: sheet}

	headerAt := -1
	for i, record := range records {
		if !isBlank(record) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrEmptyTable
	}

	for _, cell := range records[headerAt] {
		t.Header = append(t.Header, strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
	}
	// Drop trailing unnamed header cells (spreadsheets often report used ranges wider than the data)
	for len(t.Header) > 0 && t.Header[len(t.Header)-1] == "" {
		t.Header = t.Header[:len(t.Header)-1]
	}
	if len(t.Header) == 0 {
		return nil, ErrEmptyTable
	}

	for i := headerAt + 1; i < len(records); i++ {
		if isBlank(records[i]) {
			continue
		}
		cells := make([]string, len(t.Header))
		copy(cells, records[i])
		t.Rows = append(t.Rows, Row{Line: i + 1, Cells: cells})
	}

	return t, nil
}

// ColumnIndex returns the position of a header name (case-sensitive) or -1
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
