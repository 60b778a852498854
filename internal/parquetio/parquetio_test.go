package parquetio

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/dischargeprep/internal/model"
)

func TestWriteThenReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged_deduped.parquet")
	in := []model.Record{
		model.RecordFromFields([]string{"Maria Silva", "ALTA", "9999", "2023-01-05", "F20", "Rua A", "CAPS II"}),
		model.RecordFromFields([]string{"João Costa"}),
	}
	if err := WriteRecords(path, in); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}

	tbl, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if !reflect.DeepEqual(tbl.Header, model.CanonicalHeader()) {
		t.Errorf("header: %q", tbl.Header)
	}
	if !reflect.DeepEqual(tbl.Records(), in) {
		t.Errorf("records:\n got  %q\n want %q", tbl.Records(), in)
	}
}

func TestValidateSchema_MissingColumns(t *testing.T) {
	type partial struct {
		Patient string `parquet:"patient"`
	}
	path := filepath.Join(t.TempDir(), "partial.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w := parquet.NewGenericWriter[partial](f)
	w.Write([]partial{{Patient: "Maria"}})
	w.Close()
	f.Close()

	if _, err := ReadTable(path); err == nil {
		t.Fatal("expected schema validation error")
	}
}
