// Package sheet reads spreadsheet workbooks (.xlsx, .ods) row by row and
// converts their sheets into canonical CSV tables.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned by Open for file types it cannot read.
var ErrUnsupported = errors.New("unsupported spreadsheet format")

// Rows iterates the cell text of one sheet. Date cells are already rendered
// as YYYY-MM-DD. Iteration is single-pass.
type Rows interface {
	Next() bool
	Columns() []string
	Err() error
	Close() error
}

// Workbook is an open spreadsheet document.
type Workbook interface {
	Path() string
	SheetNames() []string
	Rows(sheet string) (Rows, error)
	Close() error
}

// Extensions lists the file extensions Open understands.
var Extensions = []string{".xlsx", ".ods"}

// IsSpreadsheet reports whether path has a supported extension.
func IsSpreadsheet(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Open opens a workbook, choosing the reader by file extension.
func Open(path string) (Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return openXLSX(path)
	case ".ods":
		return openODS(path)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
}

// sliceRows serves rows that were materialized up front.
type sliceRows struct {
	rows [][]string
	pos  int
}

func (s *sliceRows) Next() bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceRows) Columns() []string { return s.rows[s.pos-1] }
func (s *sliceRows) Err() error        { return nil }
func (s *sliceRows) Close() error      { return nil }
