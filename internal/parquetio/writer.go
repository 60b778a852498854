package parquetio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/dischargeprep/internal/model"
)

// WriteRecords writes records to a new Parquet file at path.
func WriteRecords(path string, records []model.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer f.Close()

	rows := make([]model.ParquetRecord, len(records))
	for i, r := range records {
		rows[i] = r.ToParquet()
	}

	w := parquet.NewGenericWriter[model.ParquetRecord](f)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}
