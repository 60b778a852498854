package normalize

import (
	"strings"

	"github.com/gyeh/dischargeprep/internal/model"
)

// NormalizeRow repairs one raw spreadsheet row and returns the records it
// holds: none for blank rows, two when the row looks like two patients merged
// into one, otherwise the row itself. Every record is padded or truncated to
// the canonical width.
//
// Rules apply in order and the first match wins:
//
//	a. no non-blank field                      -> nothing
//	b. trailing blanks trimmed, a blank first field dropped once;
//	   a still-blank first field               -> nothing
//	c. field 1 is a name, not a discharge type -> [field1, field2...], [field0]
//	d. field 0 is "Name One, Name Two"         -> one record per name
//	e. field 0 has >6 capitalized words        -> split at the midpoint
//	f. otherwise                               -> the row
//
// These are heuristics over hand-typed data. Legitimate long names can be
// split and some merged rows slip through.
func (r Rules) NormalizeRow(raw []string) []model.Record {
	row := make([]string, len(raw))
	for i, f := range raw {
		row[i] = strings.TrimSpace(f)
	}

	// a
	if !anyNonBlank(row) {
		return nil
	}

	// b
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}
	if len(row) >= 2 && row[0] == "" {
		row = row[1:]
	}
	if len(row) == 0 || row[0] == "" {
		return nil
	}

	// c
	if len(row) >= 2 && row[1] != "" && !r.IsDischargeType(row[1]) && looksLikeName(row[1]) {
		primary := model.RecordFromFields(append([]string{row[1]}, row[2:]...))
		extra := model.Record{model.ColPatient: row[0]}
		return []model.Record{primary, extra}
	}

	first := row[0]
	rest := row[1:]

	// d
	if strings.Contains(first, ",") {
		parts := strings.Split(first, ",")
		if len(parts) == 2 {
			a, b := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			if looksLikeName(a) && looksLikeName(b) {
				return []model.Record{withPatient(a, rest), withPatient(b, rest)}
			}
		}
		return []model.Record{model.RecordFromFields(row)}
	}

	// e
	if words := strings.Fields(first); len(words) > 6 {
		mid := len(words) / 2
		left, right := words[:mid], words[mid:]
		if len(left) >= 2 && len(right) >= 2 && capitalized(left) && capitalized(right) {
			return []model.Record{
				withPatient(strings.Join(left, " "), rest),
				withPatient(strings.Join(right, " "), rest),
			}
		}
	}

	// f
	return []model.Record{model.RecordFromFields(row)}
}

func withPatient(name string, rest []string) model.Record {
	return model.RecordFromFields(append([]string{name}, rest...))
}

func anyNonBlank(row []string) bool {
	for _, f := range row {
		if f != "" {
			return true
		}
	}
	return false
}
