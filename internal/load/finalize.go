package load

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/dischargeprep/internal/sql"
)

// Finalize marks the batch loaded with its row count and runs ANALYZE.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, batchID uuid.UUID, rows int64) (time.Duration, error) {
	start := time.Now()

	if _, err := pool.Exec(ctx, embedsql.MarkBatchLoaded, batchID, rows); err != nil {
		return 0, fmt.Errorf("mark batch loaded: %w", err)
	}
	log.Info().Str("batch_id", batchID.String()).Int64("rows", rows).Msg("batch loaded")

	if _, err := pool.Exec(ctx, embedsql.AnalyzeRecords); err != nil {
		return 0, fmt.Errorf("analyze records: %w", err)
	}
	log.Info().Msg("ANALYZE complete")

	return time.Since(start), nil
}
