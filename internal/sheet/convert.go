package sheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/normalize"
	"github.com/gyeh/dischargeprep/internal/tabular"
)

// SheetStats counts what the normalizer did with one sheet.
type SheetStats struct {
	Sheet     string
	HeaderRow int
	RowsRead  int
	Records   int
	RowsSplit int
	// RowsDropped counts raw rows that produced no record with a patient.
	RowsDropped int
}

// ExtractRecords reads one sheet and returns its normalized records. Records
// without a patient name are discarded.
func ExtractRecords(wb Workbook, sheet string, rules normalize.Rules) ([]model.Record, SheetStats, error) {
	stats := SheetStats{Sheet: sheet}

	rows, err := wb.Rows(sheet)
	if err != nil {
		return nil, stats, err
	}
	defer rows.Close()

	ex := NewExtractor(rows)
	stats.HeaderRow = ex.HeaderRow()

	var records []model.Record
	for ex.Next() {
		stats.RowsRead++
		out := rules.NormalizeRow(ex.Row())
		if len(out) > 1 {
			stats.RowsSplit++
		}
		kept := 0
		for _, rec := range out {
			if strings.TrimSpace(rec.Patient()) == "" {
				continue
			}
			records = append(records, rec)
			kept++
		}
		if kept == 0 {
			stats.RowsDropped++
		}
	}
	if err := ex.Err(); err != nil {
		return nil, stats, fmt.Errorf("extract %q: %w", sheet, err)
	}
	stats.Records = len(records)
	return records, stats, nil
}

// ConvertOptions controls which sheets are written.
type ConvertOptions struct {
	// AllSheets writes every sheet with data. By default only the first
	// sheet and sheets named like "Plan1" are written.
	AllSheets bool
}

// ConvertWorkbook writes each selected sheet of the workbook at path as a
// canonical CSV in outDir, named "<stem>__<sheet>.csv". Sheets without
// records produce no file. Returns the files created.
func ConvertWorkbook(path, outDir string, rules normalize.Rules, opts ConvertOptions, log zerolog.Logger) ([]string, []SheetStats, error) {
	wb, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer wb.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var (
		created []string
		stats   []SheetStats
	)
	for i, name := range wb.SheetNames() {
		records, st, err := ExtractRecords(wb, name, rules)
		if err != nil {
			return created, stats, err
		}
		stats = append(stats, st)
		if len(records) == 0 {
			continue
		}

		safe := normalize.SafeName(name, "sheet")
		if !opts.AllSheets && i != 0 && !strings.Contains(strings.ToLower(safe), "plan1") {
			log.Debug().Str("file", filepath.Base(path)).Str("sheet", name).Msg("sheet skipped")
			continue
		}

		out := filepath.Join(outDir, stem+"__"+safe+".csv")
		if err := tabular.WriteTable(out, model.NewCanonicalTable(path, records)); err != nil {
			return created, stats, fmt.Errorf("write sheet %q: %w", name, err)
		}
		created = append(created, out)

		log.Info().
			Str("file", filepath.Base(path)).
			Str("sheet", name).
			Int("header_row", st.HeaderRow).
			Int("rows_read", st.RowsRead).
			Int("records", st.Records).
			Int("rows_split", st.RowsSplit).
			Msg("sheet converted")
	}
	return created, stats, nil
}
