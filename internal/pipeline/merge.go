package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/normalize"
	"github.com/gyeh/dischargeprep/internal/parquetio"
	"github.com/gyeh/dischargeprep/internal/tabular"
)

// ErrNoInput is returned when no source yields a single record.
var ErrNoInput = errors.New("no valid source tables")

// MergeResult is the outcome of merging all sources.
type MergeResult struct {
	Table   *model.Table
	Merged  int // sources that contributed rows
	Skipped int // sources that could not be read
}

// ReadSource reads a .csv or .parquet file into a table.
func ReadSource(path string) (*model.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return parquetio.ReadTable(path)
	}
	return tabular.ReadTable(path)
}

// Merge reads every path in order, standardizes each table to the canonical
// columns and concatenates the survivors. Unreadable sources are logged and
// skipped. Returns ErrNoInput when the result has no rows.
func Merge(paths []string, rules normalize.Rules, log zerolog.Logger) (*MergeResult, error) {
	res := &MergeResult{Table: &model.Table{Source: "merged", Header: model.CanonicalHeader()}}

	for _, p := range paths {
		t, err := ReadSource(p)
		if err != nil {
			log.Warn().Err(err).Str("file", filepath.Base(p)).Msg("source skipped")
			res.Skipped++
			continue
		}

		records := Standardize(t, rules)
		if len(records) == 0 {
			log.Debug().Str("file", filepath.Base(p)).Msg("source has no records")
			continue
		}
		for _, r := range records {
			res.Table.Rows = append(res.Table.Rows, r.Fields())
		}
		res.Merged++

		log.Info().
			Str("file", filepath.Base(p)).
			Int("rows", t.Len()).
			Int("records", len(records)).
			Msg("source merged")
	}

	if res.Table.Len() == 0 {
		return res, ErrNoInput
	}
	return res, nil
}

// Standardize maps a table onto the canonical columns. Tables with at least
// seven columns are taken positionally; narrower tables are matched by header
// name with blanks for missing columns. Fields are trimmed, an Address that is
// really a facility moves to a blank Referral, and records without a patient
// are dropped.
func Standardize(t *model.Table, rules normalize.Rules) []model.Record {
	var idx [model.NumColumns]int
	if len(t.Header) >= model.NumColumns {
		for i := range idx {
			idx[i] = i
		}
	} else {
		for i := range idx {
			idx[i] = -1
		}
		for j, h := range t.Header {
			if c, ok := model.ColumnByHeader(h); ok && idx[c] == -1 {
				idx[c] = j
			}
		}
	}

	var out []model.Record
	for _, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		var rec model.Record
		for i, j := range idx {
			rec[i] = strings.TrimSpace(field(row, j))
		}
		if rec[model.ColReferral] == "" && rules.HasFacilityPrefix(rec[model.ColAddress]) {
			rec[model.ColReferral] = rec[model.ColAddress]
			rec[model.ColAddress] = ""
		}
		if rec.Patient() == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func blankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// writeMerged writes the merged table, or an empty marker file when there is
// nothing to write.
func writeMerged(path string, t *model.Table) error {
	if t == nil || t.Len() == 0 {
		if err := tabular.Touch(path); err != nil {
			return fmt.Errorf("write empty marker: %w", err)
		}
		return nil
	}
	return tabular.WriteTable(path, t)
}
