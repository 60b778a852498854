package model

// Table is an in-memory CSV table: a header plus rows of strings. Rows are
// not required to match the header width.
type Table struct {
	Source string
	Header []string
	Rows   [][]string
}

// NewCanonicalTable builds a Table with the canonical header from records.
func NewCanonicalTable(source string, records []Record) *Table {
	t := &Table{Source: source, Header: CanonicalHeader(), Rows: make([][]string, 0, len(records))}
	for _, r := range records {
		t.Rows = append(t.Rows, r.Fields())
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Records converts rows to Records by position.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = RecordFromFields(row)
	}
	return out
}
