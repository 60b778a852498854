package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gyeh/dischargeprep/internal/model"
)

// ErrEmpty is returned for a file with no header row.
var ErrEmpty = errors.New("no columns to parse from file")

// ReadTable reads a comma-delimited file with optional quoting.
// The first record is the header; header cells are trimmed. Rows may be
// shorter or longer than the header.
func ReadTable(path string) (*model.Table, error) {
	data, err := readDecoded(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read %s: %w", path, ErrEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	t := &model.Table{Source: path, Header: header}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadLines returns the raw text lines of a file without parsing fields,
// which tolerates broken quoting.
func ReadLines(path string) ([]string, error) {
	data, err := readDecoded(path)
	if err != nil {
		return nil, err
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return lines, nil
}

func readDecoded(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	data, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return data, nil
}
