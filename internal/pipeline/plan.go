package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/gyeh/dischargeprep/internal/normalize"
	"github.com/gyeh/dischargeprep/internal/sheet"
)

// SheetPlan is the dry-run outcome for one sheet.
type SheetPlan struct {
	File string
	sheet.SheetStats
}

// PlanResult is the dry-run outcome for a whole input tree.
type PlanResult struct {
	Sheets []SheetPlan
	Tables []string
	Failed map[string]error
}

// Plan extracts and normalizes every sheet found under inputDir without
// writing anything.
func Plan(inputDir string, rules normalize.Rules) (*PlanResult, error) {
	src, err := Discover(inputDir)
	if err != nil {
		return nil, err
	}

	res := &PlanResult{Tables: src.Tables, Failed: make(map[string]error)}
	for _, path := range src.Spreadsheets {
		if err := planWorkbook(path, rules, res); err != nil {
			res.Failed[path] = err
		}
	}
	return res, nil
}

func planWorkbook(path string, rules normalize.Rules, res *PlanResult) error {
	wb, err := sheet.Open(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	for _, name := range wb.SheetNames() {
		_, st, err := sheet.ExtractRecords(wb, name, rules)
		if err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
		res.Sheets = append(res.Sheets, SheetPlan{File: filepath.Base(path), SheetStats: st})
	}
	return nil
}
