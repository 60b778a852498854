package db

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/dischargeprep/internal/sql"
)

// MigrationNames lists the embedded migration files in the order they run.
func MigrationNames() ([]string, error) {
	names, err := fs.Glob(embedsql.Migrations, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// ApplyMigrations runs every embedded migration in file name order. The DDL
// is written to be re-runnable, so applying twice is a no-op.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	names, err := MigrationNames()
	if err != nil {
		return err
	}

	for _, name := range names {
		data, err := fs.ReadFile(embedsql.Migrations, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		start := time.Now()
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute migration %s: %w", path.Base(name), err)
		}
		log.Info().Str("migration", path.Base(name)).Dur("duration", time.Since(start)).Msg("migration applied")
	}

	log.Info().Int("count", len(names)).Msg("all migrations applied")
	return nil
}
