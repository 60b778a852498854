package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/dischargeprep/internal/normalize"
)

type xlsxWorkbook struct {
	path     string
	file     *excelize.File
	date1904 bool
	// style index -> has a date number format
	dateStyles map[int]bool
}

func openXLSX(path string) (*xlsxWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &xlsxWorkbook{path: path, file: f, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

func (w *xlsxWorkbook) Path() string         { return w.path }
func (w *xlsxWorkbook) SheetNames() []string { return w.file.GetSheetList() }
func (w *xlsxWorkbook) Close() error         { return w.file.Close() }

func (w *xlsxWorkbook) Rows(sheet string) (Rows, error) {
	rows, err := w.file.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("rows of %q: %w", sheet, err)
	}
	return &xlsxRows{wb: w, sheet: sheet, rows: rows}, nil
}

// isDateStyle resolves and caches whether a cell style renders a date.
func (w *xlsxWorkbook) isDateStyle(styleID int) bool {
	if v, ok := w.dateStyles[styleID]; ok {
		return v
	}
	isDate := false
	if style, err := w.file.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	w.dateStyles[styleID] = isDate
	return isDate
}

type xlsxRows struct {
	wb    *xlsxWorkbook
	sheet string
	rows  *excelize.Rows
	rowNo int
	cur   []string
	err   error
}

func (r *xlsxRows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	r.rowNo++
	cols, err := r.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		r.err = fmt.Errorf("read row %d of %q: %w", r.rowNo, r.sheet, err)
		return false
	}
	for i, v := range cols {
		cols[i] = r.cellText(i, strings.TrimSpace(v))
	}
	r.cur = cols
	return true
}

// cellText renders a date-formatted serial number as YYYY-MM-DD and leaves
// everything else as the stored text.
func (r *xlsxRows) cellText(col int, v string) string {
	if v == "" {
		return v
	}
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	cell, err := excelize.CoordinatesToCellName(col+1, r.rowNo)
	if err != nil {
		return v
	}
	styleID, err := r.wb.file.GetCellStyle(r.sheet, cell)
	if err != nil || !r.wb.isDateStyle(styleID) {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, r.wb.date1904)
	if err != nil {
		return v
	}
	return t.Format(normalize.ISODate)
}

func (r *xlsxRows) Columns() []string { return r.cur }

func (r *xlsxRows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Error()
}

func (r *xlsxRows) Close() error { return r.rows.Close() }

// isDateNumFmt reports whether a number format renders a calendar date.
// Built-in ids follow ECMA-376 18.8.30 plus the CJK date ids.
func isDateNumFmt(id int, custom *string) bool {
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	if custom == nil {
		return false
	}
	return customFmtHasDate(*custom)
}

// customFmtHasDate looks for y or d tokens outside quoted literals and
// bracketed sections (colors, locales, elapsed time).
func customFmtHasDate(format string) bool {
	inQuote, inBracket := false, false
	for _, c := range strings.ToLower(format) {
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		case c == 'y' || c == 'd':
			return true
		}
	}
	return false
}
