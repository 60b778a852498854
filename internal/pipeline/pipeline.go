package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/dischargeprep/internal/clean"
	"github.com/gyeh/dischargeprep/internal/config"
	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/parquetio"
	"github.com/gyeh/dischargeprep/internal/sheet"
	"github.com/gyeh/dischargeprep/internal/tabular"
)

// Output file and directory names under the output dir.
const (
	MergedFile        = "merged.csv"
	DedupedFile       = "merged_deduped.csv"
	DedupedParquet    = "merged_deduped.parquet"
	PartitionDir      = "by_encaminhado"
	CleanPartitionDir = "by_encaminhado_clean"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ConvertResult lists the CSVs produced from spreadsheets.
type ConvertResult struct {
	Files        []string
	Spreadsheets int
	Sheets       int
	Failed       int
}

// Convert writes every discovered spreadsheet as canonical CSVs into
// cfg.TempDir. A workbook that fails is logged and counted as failed; the
// sheets it wrote before failing are still merged.
func Convert(cfg *config.Config, spreadsheets []string, log zerolog.Logger) (*ConvertResult, error) {
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	res := &ConvertResult{}
	opts := sheet.ConvertOptions{AllSheets: cfg.AllSheets}
	for _, path := range spreadsheets {
		files, _, err := sheet.ConvertWorkbook(path, cfg.TempDir, cfg.Rules, opts, log)
		res.Sheets += len(files)
		res.Files = append(res.Files, files...)
		if err != nil {
			log.Warn().Err(err).
				Str("file", filepath.Base(path)).
				Int("sheets_kept", len(files)).
				Msg("spreadsheet conversion failed")
			res.Failed++
			continue
		}
		res.Spreadsheets++
	}
	return res, nil
}

// Run executes the full pipeline: discover → convert → merge → dedup →
// partition → clean → report.
func Run(cfg *config.Config, log zerolog.Logger) (*model.RunSummary, error) {
	totalStart := time.Now()
	summary := &model.RunSummary{RunID: uuid.New().String()}
	log = log.With().Str("run_id", summary.RunID).Logger()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, &PipelineError{Phase: "setup", Err: err}
	}

	// Phase 1: Discover
	log.Info().Str("input_dir", cfg.InputDir).Msg("discovering sources")
	src, err := Discover(cfg.InputDir, cfg.OutputDir, cfg.TempDir)
	if err != nil {
		return nil, &PipelineError{Phase: "discover", Err: err}
	}
	log.Info().
		Int("spreadsheets", len(src.Spreadsheets)).
		Int("tables", len(src.Tables)).
		Msg("sources discovered")

	// Phase 2: Convert
	phaseStart := time.Now()
	conv, err := Convert(cfg, src.Spreadsheets, log)
	if err != nil {
		return nil, &PipelineError{Phase: "convert", Err: err}
	}
	summary.SpreadsheetsRead = conv.Spreadsheets
	summary.SheetsConverted = conv.Sheets
	summary.DurationConvert = time.Since(phaseStart)

	// Phase 3: Merge
	phaseStart = time.Now()
	sources := append(append([]string(nil), conv.Files...), src.Tables...)
	merged, err := Merge(sources, cfg.Rules, log)
	mergedPath := filepath.Join(cfg.OutputDir, MergedFile)
	if errors.Is(err, ErrNoInput) {
		if werr := writeMerged(mergedPath, nil); werr != nil {
			log.Warn().Err(werr).Msg("could not write empty marker")
		}
		return nil, &PipelineError{Phase: "merge", Err: err}
	}
	if err != nil {
		return nil, &PipelineError{Phase: "merge", Err: err}
	}
	if err := writeMerged(mergedPath, merged.Table); err != nil {
		return nil, &PipelineError{Phase: "merge", Err: err}
	}
	summary.SourcesMerged = merged.Merged
	summary.SourcesSkipped = merged.Skipped + conv.Failed
	summary.RowsMerged = merged.Table.Len()
	summary.DurationMerge = time.Since(phaseStart)
	log.Info().Int("rows", summary.RowsMerged).Str("file", mergedPath).Msg("merge complete")

	// Phase 4: Dedup
	dd := Dedup(merged.Table)
	if !dd.ByKey {
		log.Info().Msg("name/date columns not found, removing exact duplicate rows")
	}
	dedupPath := filepath.Join(cfg.OutputDir, DedupedFile)
	if err := tabular.WriteTable(dedupPath, dd.Table); err != nil {
		return nil, &PipelineError{Phase: "dedup", Err: err}
	}
	if cfg.ExportParquet {
		pqPath := filepath.Join(cfg.OutputDir, DedupedParquet)
		if err := parquetio.WriteRecords(pqPath, dd.Table.Records()); err != nil {
			return nil, &PipelineError{Phase: "dedup", Err: err}
		}
		log.Info().Str("file", pqPath).Msg("parquet export written")
	}
	summary.RowsDeduped = dd.Table.Len()
	summary.DuplicatesRemoved = dd.Removed
	log.Info().
		Int("rows", summary.RowsDeduped).
		Int("removed", dd.Removed).
		Bool("by_key", dd.ByKey).
		Msg("dedup complete")

	// Phase 5: Partition
	phaseStart = time.Now()
	rawDir := filepath.Join(cfg.OutputDir, PartitionDir)
	if err := os.RemoveAll(rawDir); err != nil {
		return nil, &PipelineError{Phase: "partition", Err: err}
	}
	parts, err := WritePartitions(dd.Table, rawDir, cfg.Rules, log)
	if err != nil {
		return nil, &PipelineError{Phase: "partition", Err: err}
	}
	summary.Groups = len(parts)
	log.Info().Int("groups", len(parts)).Str("dir", rawDir).Msg("partition complete")

	// Phase 6: Clean
	cleanDir := filepath.Join(cfg.OutputDir, CleanPartitionDir)
	if err := os.RemoveAll(cleanDir); err != nil {
		return nil, &PipelineError{Phase: "clean", Err: err}
	}
	results, err := clean.Dir(rawDir, cleanDir, log)
	if err != nil {
		return nil, &PipelineError{Phase: "clean", Err: err}
	}
	for _, r := range results {
		summary.RowsKeptClean += r.Kept
		summary.RowsDiscardedClean += r.Discarded
	}
	summary.DurationPartition = time.Since(phaseStart)

	if !cfg.KeepRawPartitions {
		if err := os.RemoveAll(rawDir); err != nil {
			log.Warn().Err(err).Msg("raw partition cleanup failed (non-fatal)")
		}
	}

	// Phase 7: Report
	rep, err := BuildReport(cleanDir, time.Now(), log)
	if err != nil {
		return nil, &PipelineError{Phase: "report", Err: err}
	}
	summary.ReportPath = filepath.Join(cfg.OutputDir, ReportFile)
	if err := WriteReport(summary.ReportPath, rep); err != nil {
		return nil, &PipelineError{Phase: "report", Err: err}
	}

	summary.DurationTotal = time.Since(totalStart)
	log.Info().
		Int("rows_merged", summary.RowsMerged).
		Int("rows_deduped", summary.RowsDeduped).
		Int("groups", summary.Groups).
		Int("rows_discarded_clean", summary.RowsDiscardedClean).
		Str("report", summary.ReportPath).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("pipeline complete")

	return summary, nil
}
