// Package clean scrubs malformed rows from flat discharge CSV files. Lines and
// File work on raw text lines so that broken quoting cannot stop them. Table
// and Dir apply the same rules to parsed records, which keeps quoted commas
// and embedded newlines inside their field.
package clean

import (
	"strings"

	"github.com/gyeh/dischargeprep/internal/model"
)

// headerMarker identifies the header line.
const headerMarker = "Pacientes"

// Verdict is the outcome of classifying one line.
type Verdict int

const (
	Keep Verdict = iota
	KeepHeader
	DropBlank
	DropNoData
	DropShifted
	DropNameOnly
)

func (v Verdict) String() string {
	switch v {
	case Keep:
		return "keep"
	case KeepHeader:
		return "header"
	case DropBlank:
		return "blank"
	case DropNoData:
		return "no data"
	case DropShifted:
		return "shifted row without patient"
	case DropNameOnly:
		return "patient without data"
	default:
		return "unknown"
	}
}

// Kept reports whether the line survives cleaning.
func (v Verdict) Kept() bool {
	return v == Keep || v == KeepHeader
}

// Result holds the cleaned lines and the counts behind them.
type Result struct {
	Lines     []string
	Kept      int
	Discarded int
	// Dropped maps 1-based line numbers to the reason they were discarded.
	Dropped map[int]Verdict
}

// Lines cleans a whole file worth of lines. The first line containing
// "Pacientes" is kept verbatim as the header; every other line is classified
// by CleanLine. Header lines are not counted as kept rows.
func Lines(lines []string) *Result {
	res := &Result{Dropped: make(map[int]Verdict)}
	headerSeen := false
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if !headerSeen && line != "" && strings.Contains(line, headerMarker) {
			res.Lines = append(res.Lines, line)
			headerSeen = true
			continue
		}
		out, v := CleanLine(line)
		if !v.Kept() {
			res.Discarded++
			res.Dropped[i+1] = v
			continue
		}
		res.Lines = append(res.Lines, out)
		res.Kept++
	}
	return res
}

// CleanLine classifies one data line and, when it is kept, returns it
// rewritten with exactly seven unquoted fields. The line is split on every
// comma.
func CleanLine(line string) (string, Verdict) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", DropBlank
	}
	out, v := CleanFields(strings.Split(line, ","))
	if !v.Kept() {
		return "", v
	}
	return strings.Join(out, ","), v
}

// CleanFields classifies one record and, when it is kept, returns exactly
// seven cleaned fields.
//
// A record is dropped when it has no non-empty field, has more than seven
// fields with an empty first one (shifted row), or has a patient name and
// nothing in fields 2–7.
func CleanFields(fields []string) ([]string, Verdict) {
	for len(fields) > 0 && isEmptyField(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}

	switch {
	case allEmpty(fields):
		return nil, DropNoData
	case len(fields) > model.NumColumns && isEmptyField(fields[0]):
		return nil, DropShifted
	case !isEmptyField(fields[0]) && allEmpty(window(fields, 1, model.NumColumns)):
		return nil, DropNameOnly
	}

	out := make([]string, model.NumColumns)
	for i := range out {
		if i < len(fields) {
			out[i] = cleanField(fields[i])
		}
	}
	return out, Keep
}

// TableResult is the outcome of cleaning a parsed table.
type TableResult struct {
	Table     *model.Table
	Kept      int
	Discarded int
	// Dropped maps the 1-based data row number to why it was removed.
	Dropped map[int]Verdict
}

// Table cleans every data row of t with CleanFields. The header is kept as
// is and t is not modified.
func Table(t *model.Table) *TableResult {
	res := &TableResult{
		Table:   &model.Table{Source: t.Source, Header: t.Header},
		Dropped: make(map[int]Verdict),
	}
	for i, row := range t.Rows {
		out, v := CleanFields(row)
		if !v.Kept() {
			res.Discarded++
			res.Dropped[i+1] = v
			continue
		}
		res.Table.Rows = append(res.Table.Rows, out)
		res.Kept++
	}
	return res
}

// fieldCutset is stripped from both ends of every kept field. Stripping
// quotes and blanks together makes a cleaned field a fixed point.
const fieldCutset = "\" \t\r"

func cleanField(f string) string {
	return strings.Trim(f, fieldCutset)
}

// isEmptyField treats blank and quote-only fields as empty.
func isEmptyField(f string) bool {
	return cleanField(f) == ""
}

func allEmpty(fields []string) bool {
	for _, f := range fields {
		if !isEmptyField(f) {
			return false
		}
	}
	return true
}

func window(fields []string, from, to int) []string {
	if from >= len(fields) {
		return nil
	}
	if to > len(fields) {
		to = len(fields)
	}
	return fields[from:to]
}
