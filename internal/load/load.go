// Package load bulk-loads a deduplicated discharge table into Postgres.
package load

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/dischargeprep/internal/config"
	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/pipeline"
)

// Run executes the load: preflight → copy → finalize. A failed copy removes
// the partial batch and marks it failed.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*model.LoadSummary, error) {
	totalStart := time.Now()

	// Phase 1: Preflight
	log.Info().Str("file", cfg.FilePath).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, cfg.FilePath, cfg.Rules, cfg.Force)
	if err != nil {
		return nil, &pipeline.PipelineError{Phase: "preflight", Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Str("batch_id", pf.BatchID.String()).
			Str("sha256", pf.FileSHA256).
			Msg("file already loaded, skipping (use --force to reload)")
		return &model.LoadSummary{
			FilePath:      pf.FilePath,
			FileSHA256:    pf.FileSHA256,
			BatchID:       pf.BatchID.String(),
			RowsRead:      pf.RowsRead,
			AlreadyLoaded: true,
			DurationTotal: time.Since(totalStart),
		}, nil
	}

	// Phase 2: Copy
	log.Info().Msg("starting copy")
	if err := UpdateStatus(ctx, pool, pf.BatchID, StatusCopying); err != nil {
		return nil, &pipeline.PipelineError{Phase: "copy", Err: err}
	}
	stageResult, err := Stage(ctx, pool, log, pf, cfg.Rules)
	if err != nil {
		if cerr := Cleanup(ctx, pool, log, pf.BatchID); cerr != nil {
			log.Warn().Err(cerr).Msg("batch cleanup failed (non-fatal)")
		}
		_ = UpdateStatus(ctx, pool, pf.BatchID, StatusFailed)
		return nil, &pipeline.PipelineError{Phase: "copy", Err: err}
	}

	// Phase 3: Finalize
	if _, err := Finalize(ctx, pool, log, pf.BatchID, stageResult.RowsCopied); err != nil {
		_ = UpdateStatus(ctx, pool, pf.BatchID, StatusFailed)
		return nil, &pipeline.PipelineError{Phase: "finalize", Err: err}
	}

	summary := &model.LoadSummary{
		FilePath:      pf.FilePath,
		FileSHA256:    pf.FileSHA256,
		BatchID:       pf.BatchID.String(),
		RowsRead:      pf.RowsRead,
		RowsCopied:    stageResult.RowsCopied,
		DurationTotal: time.Since(totalStart),
	}

	log.Info().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_copied", summary.RowsCopied).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("load complete")

	return summary, nil
}
