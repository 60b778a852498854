package sheet

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	nsOffice = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	nsTable  = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	nsText   = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
)

// Repeat attributes are expanded up to the grid limits of LibreOffice Calc.
// Anything past them is dropped.
const (
	maxODSColumns = 16384
	maxODSRows    = 1048576
)

type odsSheet struct {
	name string
	rows [][]string
}

// odsWorkbook holds every sheet of an OpenDocument spreadsheet. content.xml
// is one document for all sheets, so it is decoded once at open.
type odsWorkbook struct {
	path   string
	sheets []odsSheet
}

func openODS(path string) (*odsWorkbook, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open ods: %w", err)
	}
	defer zr.Close()

	var content *zip.File
	for _, f := range zr.File {
		if f.Name == "content.xml" {
			content = f
			break
		}
	}
	if content == nil {
		return nil, fmt.Errorf("open ods: content.xml not found")
	}

	rc, err := content.Open()
	if err != nil {
		return nil, fmt.Errorf("open content.xml: %w", err)
	}
	defer rc.Close()

	sheets, err := parseODSContent(rc)
	if err != nil {
		return nil, fmt.Errorf("parse content.xml: %w", err)
	}
	return &odsWorkbook{path: path, sheets: sheets}, nil
}

func (w *odsWorkbook) Path() string { return w.path }
func (w *odsWorkbook) Close() error { return nil }

func (w *odsWorkbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.name
	}
	return names
}

func (w *odsWorkbook) Rows(sheet string) (Rows, error) {
	for _, s := range w.sheets {
		if s.name == sheet {
			return &sliceRows{rows: s.rows}, nil
		}
	}
	return nil, fmt.Errorf("sheet %q does not exist", sheet)
}

// odsCell accumulates one table:table-cell while decoding.
type odsCell struct {
	valueType string
	dateValue string
	value     string
	repeat    int
	paras     []string
	text      strings.Builder
}

func (c *odsCell) String() string {
	if c.valueType == "date" && len(c.dateValue) >= 10 {
		return c.dateValue[:10]
	}
	s := strings.TrimSpace(strings.Join(c.paras, "\n"))
	if s == "" {
		s = strings.TrimSpace(c.value)
	}
	return s
}

// odsRowBuilder expands repeated cells. Blank repeats are held back until a
// non-blank cell follows, so a trailing "repeat 16384" costs nothing. A row
// never grows past maxODSColumns.
type odsRowBuilder struct {
	cells        []string
	pendingBlank int
}

func (b *odsRowBuilder) add(v string, n int) {
	if v == "" {
		b.pendingBlank += n
		return
	}
	for ; b.pendingBlank > 0 && len(b.cells) < maxODSColumns; b.pendingBlank-- {
		b.cells = append(b.cells, "")
	}
	b.pendingBlank = 0
	for i := 0; i < n && len(b.cells) < maxODSColumns; i++ {
		b.cells = append(b.cells, v)
	}
}

// parseODSContent walks content.xml and returns the cell text of every
// table in document order. Blank trailing rows are dropped.
func parseODSContent(r io.Reader) ([]odsSheet, error) {
	dec := xml.NewDecoder(r)

	var (
		sheets       []odsSheet
		cur          *odsSheet
		row          *odsRowBuilder
		rowRepeat    int
		pendingRows  int
		cell         *odsCell
		inParagraph  int
		cellDepth    int
		depthInTable int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if cur != nil {
				depthInTable++
			}
			switch {
			case t.Name.Space == nsTable && t.Name.Local == "table" && cur == nil:
				cur = &odsSheet{name: attr(t, nsTable, "name")}
				depthInTable = 0
				pendingRows = 0
			case cur == nil:
			case cell != nil:
				// Nested content of a cell: paragraphs and inline spacing.
				cellDepth++
				switch {
				case t.Name.Space == nsText && t.Name.Local == "p":
					inParagraph++
					cell.text.Reset()
				case t.Name.Space == nsText && t.Name.Local == "s" && inParagraph > 0:
					cell.text.WriteString(strings.Repeat(" ", min(atoiDefault(attr(t, nsText, "c"), 1), maxODSColumns)))
				case t.Name.Space == nsText && t.Name.Local == "tab" && inParagraph > 0:
					cell.text.WriteByte('\t')
				case t.Name.Space == nsText && t.Name.Local == "line-break" && inParagraph > 0:
					cell.text.WriteByte('\n')
				}
			case t.Name.Space == nsTable && t.Name.Local == "table-row":
				row = &odsRowBuilder{}
				rowRepeat = atoiDefault(attr(t, nsTable, "number-rows-repeated"), 1)
			case t.Name.Space == nsTable && (t.Name.Local == "table-cell" || t.Name.Local == "covered-table-cell") && row != nil:
				cell = &odsCell{
					valueType: attr(t, nsOffice, "value-type"),
					dateValue: attr(t, nsOffice, "date-value"),
					value:     firstNonEmpty(attr(t, nsOffice, "value"), attr(t, nsOffice, "boolean-value")),
					repeat:    atoiDefault(attr(t, nsTable, "number-columns-repeated"), 1),
				}
				cellDepth = 0
			}

		case xml.CharData:
			if cell != nil && inParagraph > 0 {
				cell.text.Write(t)
			}

		case xml.EndElement:
			switch {
			case cur == nil:
			case cell != nil && cellDepth > 0:
				cellDepth--
				if t.Name.Space == nsText && t.Name.Local == "p" {
					inParagraph--
					if inParagraph == 0 {
						cell.paras = append(cell.paras, cell.text.String())
					}
				}
			case cell != nil && t.Name.Space == nsTable && (t.Name.Local == "table-cell" || t.Name.Local == "covered-table-cell"):
				row.add(cell.String(), cell.repeat)
				cell = nil
			case row != nil && t.Name.Space == nsTable && t.Name.Local == "table-row":
				if len(row.cells) == 0 {
					pendingRows += rowRepeat
				} else {
					for ; pendingRows > 0 && len(cur.rows) < maxODSRows; pendingRows-- {
						cur.rows = append(cur.rows, []string{})
					}
					pendingRows = 0
					for i := 0; i < rowRepeat && len(cur.rows) < maxODSRows; i++ {
						cur.rows = append(cur.rows, append([]string(nil), row.cells...))
					}
				}
				row = nil
			case t.Name.Space == nsTable && t.Name.Local == "table" && depthInTable == 0:
				sheets = append(sheets, *cur)
				cur = nil
			}
			if cur != nil {
				depthInTable--
			}
		}
	}
	return sheets, nil
}

func attr(se xml.StartElement, space, local string) string {
	for _, a := range se.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
