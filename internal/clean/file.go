package clean

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/dischargeprep/internal/tabular"
)

// FileResult summarizes cleaning one file.
type FileResult struct {
	Input     string
	Output    string
	Kept      int
	Discarded int
	// CopiedThrough is set when cleaning failed and the input was copied
	// unmodified.
	CopiedThrough bool
}

// File cleans the CSV at in and writes the result to out. An empty out
// rewrites in place.
func File(in, out string, log zerolog.Logger) (*FileResult, error) {
	if out == "" {
		out = in
	}

	lines, err := tabular.ReadLines(in)
	if err != nil {
		return nil, err
	}

	res := Lines(lines)
	for _, n := range sortedKeys(res.Dropped) {
		log.Debug().
			Str("file", filepath.Base(in)).
			Int("line", n).
			Str("reason", res.Dropped[n].String()).
			Msg("line removed")
	}

	if err := tabular.WriteLines(out, res.Lines); err != nil {
		return nil, err
	}

	log.Info().
		Str("file", filepath.Base(in)).
		Str("output", out).
		Int("kept", res.Kept).
		Int("discarded", res.Discarded).
		Msg("file cleaned")

	return &FileResult{Input: in, Output: out, Kept: res.Kept, Discarded: res.Discarded}, nil
}

// TableFile cleans the CSV at in as parsed records and writes the result to
// out. Quoted fields survive intact. An empty out rewrites in place.
func TableFile(in, out string, log zerolog.Logger) (*FileResult, error) {
	if out == "" {
		out = in
	}

	t, err := tabular.ReadTable(in)
	if err != nil {
		return nil, err
	}

	res := Table(t)
	for _, n := range sortedKeys(res.Dropped) {
		log.Debug().
			Str("file", filepath.Base(in)).
			Int("row", n).
			Str("reason", res.Dropped[n].String()).
			Msg("row removed")
	}

	if err := tabular.WriteTable(out, res.Table); err != nil {
		return nil, err
	}

	log.Info().
		Str("file", filepath.Base(in)).
		Str("output", out).
		Int("kept", res.Kept).
		Int("discarded", res.Discarded).
		Msg("file cleaned")

	return &FileResult{Input: in, Output: out, Kept: res.Kept, Discarded: res.Discarded}, nil
}

// Dir cleans every *.csv in src into dst under the same name with TableFile.
// A file that fails to clean is copied through unmodified so it is never
// lost.
func Dir(src, dst string, log zerolog.Logger) ([]*FileResult, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", src, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	var results []*FileResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		in := filepath.Join(src, entry.Name())
		out := filepath.Join(dst, entry.Name())

		res, err := TableFile(in, out, log)
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("cleaning failed, copying original")
			if cpErr := copyFile(in, out); cpErr != nil {
				return results, fmt.Errorf("copy %s: %w", entry.Name(), cpErr)
			}
			res = &FileResult{Input: in, Output: out, CopiedThrough: true}
		}
		results = append(results, res)
	}
	return results, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func sortedKeys(m map[int]Verdict) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
