package load

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/normalize"
	"github.com/gyeh/dischargeprep/internal/pipeline"
	embedsql "github.com/gyeh/dischargeprep/internal/sql"
)

// Batch statuses stored in altas.load_batches.
const (
	StatusPending = "pending"
	StatusCopying = "copying"
	StatusLoaded  = "loaded"
	StatusFailed  = "failed"
)

// PreflightResult holds all context resolved before copying.
type PreflightResult struct {
	FilePath   string
	FileSHA256 string
	FileSize   int64
	// BatchID tags every copied row. A forced reload reuses the batch of the
	// earlier load of the same file.
	BatchID uuid.UUID
	// Records are the standardized records read from the file.
	Records []model.Record
	// RowsRead counts data rows in the file, including rejected ones.
	RowsRead int64
	// AlreadyLoaded is true when the file's sha256 is already loaded and
	// force is off.
	AlreadyLoaded bool
}

// Preflight hashes and reads the file, then registers it as a load batch.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, filePath string, rules normalize.Rules, force bool) (*PreflightResult, error) {
	start := time.Now()

	sha, err := normalize.FileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight stat: %w", err)
	}

	table, err := pipeline.ReadSource(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight read: %w", err)
	}
	records := pipeline.Standardize(table, rules)

	log.Info().
		Str("file", filepath.Base(filePath)).
		Str("sha256", sha).
		Int("rows", table.Len()).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	batchID, alreadyLoaded, err := registerBatch(ctx, pool, filePath, sha, stat.Size(), force)
	if err != nil {
		return nil, fmt.Errorf("preflight register batch: %w", err)
	}

	return &PreflightResult{
		FilePath:      filePath,
		FileSHA256:    sha,
		FileSize:      stat.Size(),
		BatchID:       batchID,
		Records:       records,
		RowsRead:      int64(table.Len()),
		AlreadyLoaded: alreadyLoaded,
	}, nil
}

func registerBatch(ctx context.Context, pool *pgxpool.Pool, filePath, sha string, fileSize int64, force bool) (uuid.UUID, bool, error) {
	var batchID uuid.UUID
	err := pool.QueryRow(ctx, embedsql.RegisterBatch,
		uuid.New(), filepath.Base(filePath), sha, fileSize,
	).Scan(&batchID)
	if err == nil {
		return batchID, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, fmt.Errorf("register batch: %w", err)
	}

	// ON CONFLICT DO NOTHING returned no rows: the file was seen before.
	var status string
	if err := pool.QueryRow(ctx, embedsql.LookupBatch, sha).Scan(&batchID, &status); err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup existing batch: %w", err)
	}
	if !force && status == StatusLoaded {
		return batchID, true, nil
	}

	// Drop whatever an earlier attempt left behind before copying again.
	if _, err := pool.Exec(ctx, embedsql.DeleteBatchRecords, batchID); err != nil {
		return uuid.Nil, false, fmt.Errorf("clear previous batch rows: %w", err)
	}
	if err := UpdateStatus(ctx, pool, batchID, StatusPending); err != nil {
		return uuid.Nil, false, fmt.Errorf("reset batch status: %w", err)
	}
	return batchID, false, nil
}
