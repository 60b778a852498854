package sheet

import (
	"strings"
)

// headerScanRows is how many leading rows are searched for the header.
const headerScanRows = 5

// headerMarkers identify the header row by substring, lowercased.
var headerMarkers = []string{"paciente", "nome"}

// Extractor yields the data rows of one sheet: everything after the header
// row. The header is the first of the leading rows with a cell containing a
// header marker, or row 0 when none does.
type Extractor struct {
	rows      Rows
	buffered  [][]string
	headerRow int
	cur       []string
	done      bool
}

// NewExtractor buffers up to headerScanRows rows to locate the header.
func NewExtractor(rows Rows) *Extractor {
	e := &Extractor{rows: rows}
	for len(e.buffered) < headerScanRows && rows.Next() {
		e.buffered = append(e.buffered, rows.Columns())
	}
	e.headerRow = findHeader(e.buffered)
	if len(e.buffered) > 0 {
		e.buffered = e.buffered[e.headerRow+1:]
	}
	return e
}

// HeaderRow returns the zero-based index of the detected header row.
func (e *Extractor) HeaderRow() int {
	return e.headerRow
}

// Next advances to the next data row.
func (e *Extractor) Next() bool {
	if e.done {
		return false
	}
	if len(e.buffered) > 0 {
		e.cur = e.buffered[0]
		e.buffered = e.buffered[1:]
		return true
	}
	if e.rows.Next() {
		e.cur = e.rows.Columns()
		return true
	}
	e.done = true
	return false
}

// Row returns the current data row.
func (e *Extractor) Row() []string {
	return e.cur
}

// Err returns the first read error of the underlying rows.
func (e *Extractor) Err() error {
	return e.rows.Err()
}

func findHeader(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			c := strings.ToLower(strings.TrimSpace(cell))
			for _, m := range headerMarkers {
				if strings.Contains(c, m) {
					return i
				}
			}
		}
	}
	return 0
}
