package pipeline

import (
	"strings"

	"github.com/gyeh/dischargeprep/internal/model"
)

// DedupResult describes how a table was deduplicated.
type DedupResult struct {
	Table   *model.Table
	Removed int
	// ByKey is true when name and date columns were found. Otherwise whole
	// rows were compared.
	ByKey      bool
	NameColumn string
	DateColumn string
}

// Dedup keeps the first record for each (name, date) pair, comparing stored
// values as-is. When either column is missing it drops exact duplicate rows
// instead. Order is preserved.
func Dedup(t *model.Table) *DedupResult {
	nameCol := FindColumn(t.Header, "pacientes", "nome")
	dateCol := FindColumn(t.Header, "dia alta", "data")

	res := &DedupResult{
		Table: &model.Table{Source: t.Source, Header: append([]string(nil), t.Header...)},
		ByKey: nameCol >= 0 && dateCol >= 0,
	}
	if res.ByKey {
		res.NameColumn = t.Header[nameCol]
		res.DateColumn = t.Header[dateCol]
	}

	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		var key string
		if res.ByKey {
			key = field(row, nameCol) + "\x00" + field(row, dateCol)
		} else {
			key = rowKey(row, len(t.Header))
		}
		if _, dup := seen[key]; dup {
			res.Removed++
			continue
		}
		seen[key] = struct{}{}
		res.Table.Rows = append(res.Table.Rows, row)
	}
	return res
}

// rowKey joins a row padded to width so that rows differing only by missing
// trailing cells compare equal.
func rowKey(row []string, width int) string {
	if len(row) < width {
		padded := make([]string, width)
		copy(padded, row)
		row = padded
	}
	return strings.Join(row, "\x00")
}
