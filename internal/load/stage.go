package load

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/dischargeprep/internal/db"
	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/normalize"
	embedsql "github.com/gyeh/dischargeprep/internal/sql"
)

const copyBufferSize = 1024

// StageResult holds metrics from the copy phase.
type StageResult struct {
	RowsCopied int64
	Duration   time.Duration
}

// Stage converts the preflight records to LoadRows and COPY-loads them into
// altas.records via a channel-backed CopyFromSource.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, pf *PreflightResult, rules normalize.Rules) (*StageResult, error) {
	start := time.Now()

	ch := make(chan *model.LoadRow, copyBufferSize)
	errCh := make(chan error, 1)

	// Producer goroutine: records → LoadRows → channel
	go func() {
		defer close(ch)
		for i, rec := range pf.Records {
			row := rules.ToLoadRow(rec, pf.BatchID, int64(i+1))
			select {
			case ch <- row:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	source := db.NewChannelSource(ch)
	rowsCopied, err := pool.CopyFrom(ctx,
		pgx.Identifier{"altas", "records"},
		model.LoadColumns(),
		source,
	)
	if err != nil {
		// Unblock the producer if COPY stopped reading early.
		for range ch {
		}
	}

	prodErr := <-errCh
	if prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_sent", source.Sent()).
		Int64("rows_copied", rowsCopied).
		Str("duration", dur.String()).
		Msg("copy complete")

	return &StageResult{RowsCopied: rowsCopied, Duration: dur}, nil
}

// UpdateStatus sets the status of a load batch.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateBatchStatus, batchID, status)
	return err
}
