package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gyeh/dischargeprep/internal/sheet"
)

// Sources lists the input files found under a directory tree, each sorted by
// path.
type Sources struct {
	Spreadsheets []string
	Tables       []string // .csv and .parquet
}

// Discover walks root and collects spreadsheets and flat tables. Directories
// listed in skip (typically the output and temp dirs) are not descended into.
func Discover(root string, skip ...string) (*Sources, error) {
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		if abs, err := filepath.Abs(s); err == nil {
			skipSet[abs] = true
		}
	}

	src := &Sources{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if abs, aerr := filepath.Abs(path); aerr == nil && skipSet[abs] && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		// Office lock files, e.g. "~$altas.xlsx" or ".~lock.altas.ods#".
		if strings.HasPrefix(d.Name(), "~$") || strings.HasPrefix(d.Name(), ".~lock") {
			return nil
		}
		switch {
		case sheet.IsSpreadsheet(path):
			src.Spreadsheets = append(src.Spreadsheets, path)
		case isTable(path):
			src.Tables = append(src.Tables, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(src.Spreadsheets)
	sort.Strings(src.Tables)
	return src, nil
}

func isTable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".parquet":
		return true
	}
	return false
}
