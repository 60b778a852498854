package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gyeh/dischargeprep/internal/model"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadTable_BOMAndRaggedRows(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(" Pacientes ,Tipo de Alta\nMaria Silva,ALTA,extra\nJoao\n")...)
	path := writeFile(t, "a.csv", data)

	tbl, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if !reflect.DeepEqual(tbl.Header, []string{"Pacientes", "Tipo de Alta"}) {
		t.Errorf("header: %q", tbl.Header)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if len(tbl.Rows[0]) != 3 || len(tbl.Rows[1]) != 1 {
		t.Errorf("ragged rows not preserved: %q", tbl.Rows)
	}
}

func TestReadTable_Windows1252(t *testing.T) {
	// "Endereço" and "João" encoded as Windows-1252.
	data := []byte("Pacientes,Endere\xe7o\nJo\xe3o Costa,Rua A\n")
	path := writeFile(t, "latin.csv", data)

	tbl, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if tbl.Header[1] != "Endereço" {
		t.Errorf("header not decoded: %q", tbl.Header[1])
	}
	if tbl.Rows[0][0] != "João Costa" {
		t.Errorf("row not decoded: %q", tbl.Rows[0][0])
	}
}

func TestReadTable_Empty(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)
	_, err := ReadTable(path)
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestReadTable_Missing(t *testing.T) {
	if _, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "merged.csv")
	in := &model.Table{
		Header: model.CanonicalHeader(),
		Rows:   [][]string{{"Maria Silva", "ALTA", "", "2023-01-05", "", "Rua A, 10", "CAPS II"}},
	}
	if err := WriteTable(path, in); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if !reflect.DeepEqual(out.Header, in.Header) || !reflect.DeepEqual(out.Rows, in.Rows) {
		t.Errorf("round trip mismatch:\n got %q %q", out.Header, out.Rows)
	}
}

func TestReadLines_KeepsBrokenQuotes(t *testing.T) {
	path := writeFile(t, "broken.csv", []byte("Pacientes,Tipo\n\"Maria,ALTA\n\n"))
	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	want := []string{"Pacientes,Tipo", "\"Maria,ALTA", ""}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines: got %q, want %q", lines, want)
	}
}
