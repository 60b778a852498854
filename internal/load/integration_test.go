package load_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/dischargeprep/internal/config"
	"github.com/gyeh/dischargeprep/internal/db"
	"github.com/gyeh/dischargeprep/internal/load"
	"github.com/gyeh/dischargeprep/internal/logging"
	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/normalize"
	"github.com/gyeh/dischargeprep/internal/parquetio"
)

const (
	testPort     = 15433
	testDB       = "altastest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

const dedupedCSV = `Pacientes,Tipo de Alta,Telefone,Dia Alta,Cid,Endereço,Encaminhado
Maria Silva,ALTA,9999-0000,2023-01-05,F20,Rua A,CAPS II
João Costa,OBITO,,05/01/2023,,CAPS AD,
Pedro Lima,MELHORADA,,,,,
,ALTA,,,,,
`

func TestMain(m *testing.M) {
	if os.Getenv("DISCHARGEPREP_PG_TESTS") != "1" {
		fmt.Fprintln(os.Stderr, "SKIP: set DISCHARGEPREP_PG_TESTS=1 to run the Postgres integration tests")
		os.Exit(0)
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

// setupDB connects, drops the schema and applies migrations.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS altas CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}

	log := logging.Setup("text", false)
	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}
	// Migrations are re-runnable.
	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		pool.Close()
		t.Fatalf("migrations (second run): %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "merged_deduped.csv")
	if err := os.WriteFile(path, []byte(dedupedCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func newConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg := &config.Config{DSN: testDSN, FilePath: path, LogFormat: "text"}
	if err := cfg.LoadRules(); err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	return cfg
}

func countRecords(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	var n int64
	if err := pool.QueryRow(context.Background(), "SELECT count(*) FROM altas.records").Scan(&n); err != nil {
		t.Fatalf("count records: %v", err)
	}
	return n
}

func TestLoad_CSV(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text", false)

	summary, err := load.Run(ctx, pool, log, newConfig(t, writeCSV(t)))
	if err != nil {
		t.Fatalf("load.Run: %v", err)
	}

	t.Run("summary_metrics", func(t *testing.T) {
		if summary.RowsRead != 4 {
			t.Errorf("RowsRead: got %d, want 4", summary.RowsRead)
		}
		if summary.RowsCopied != 3 {
			t.Errorf("RowsCopied: got %d, want 3", summary.RowsCopied)
		}
		if summary.AlreadyLoaded {
			t.Error("first load reported AlreadyLoaded")
		}
	})

	t.Run("batch_status", func(t *testing.T) {
		var status string
		var rows int64
		err := pool.QueryRow(ctx,
			"SELECT status, rows_loaded FROM altas.load_batches WHERE batch_id = $1", summary.BatchID,
		).Scan(&status, &rows)
		if err != nil {
			t.Fatalf("query batch: %v", err)
		}
		if status != load.StatusLoaded || rows != 3 {
			t.Errorf("batch: got status=%s rows=%d", status, rows)
		}
	})

	t.Run("facility_address_moved_to_referral", func(t *testing.T) {
		var address, referral *string
		var key string
		err := pool.QueryRow(ctx,
			"SELECT address, referral, referral_key FROM altas.records WHERE patient = 'João Costa'",
		).Scan(&address, &referral, &key)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if address != nil {
			t.Errorf("address: got %q, want NULL", *address)
		}
		if referral == nil || *referral != "CAPS AD" || key != "CAPS AD" {
			t.Errorf("referral: got %v key %q", referral, key)
		}
	})

	t.Run("dates_parsed", func(t *testing.T) {
		rows, err := pool.Query(ctx,
			"SELECT patient, to_char(discharge_date, 'YYYY-MM-DD') FROM altas.records ORDER BY source_row_number")
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		defer rows.Close()

		got := map[string]*string{}
		for rows.Next() {
			var patient string
			var date *string
			if err := rows.Scan(&patient, &date); err != nil {
				t.Fatalf("scan: %v", err)
			}
			got[patient] = date
		}
		if d := got["Maria Silva"]; d == nil || *d != "2023-01-05" {
			t.Errorf("Maria Silva date: %v", d)
		}
		if d := got["João Costa"]; d == nil || *d != "2023-01-05" {
			t.Errorf("João Costa date: %v", d)
		}
		if d := got["Pedro Lima"]; d != nil {
			t.Errorf("Pedro Lima date: got %s, want NULL", *d)
		}
	})

	t.Run("referral_counts_view", func(t *testing.T) {
		var n int64
		err := pool.QueryRow(ctx,
			"SELECT patients FROM altas.referral_counts WHERE referral_key = $1", normalize.EmptyReferral,
		).Scan(&n)
		if err != nil {
			t.Fatalf("query view: %v", err)
		}
		if n != 1 {
			t.Errorf("empty referral count: got %d, want 1", n)
		}
	})
}

func TestLoad_Idempotency(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text", false)
	cfg := newConfig(t, writeCSV(t))

	first, err := load.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	second, err := load.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.AlreadyLoaded || second.RowsCopied != 0 {
		t.Errorf("second run should skip, got AlreadyLoaded=%v copied=%d", second.AlreadyLoaded, second.RowsCopied)
	}
	if second.BatchID != first.BatchID {
		t.Errorf("batch id changed: %s -> %s", first.BatchID, second.BatchID)
	}
	if n := countRecords(t, pool); n != first.RowsCopied {
		t.Errorf("records after skipped reload: got %d, want %d", n, first.RowsCopied)
	}

	cfg.Force = true
	forced, err := load.Run(ctx, pool, log, cfg)
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if forced.RowsCopied != first.RowsCopied || forced.BatchID != first.BatchID {
		t.Errorf("forced run: copied=%d batch=%s", forced.RowsCopied, forced.BatchID)
	}
	if n := countRecords(t, pool); n != first.RowsCopied {
		t.Errorf("records after forced reload: got %d, want %d (no duplicates)", n, first.RowsCopied)
	}
}

func TestLoad_Parquet(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text", false)

	path := filepath.Join(t.TempDir(), "merged_deduped.parquet")
	records := []model.Record{
		{"Maria Silva", "ALTA", "", "2023-01-05", "", "", "CAPS II"},
		{"Rui Souza", "ABANDONO", "", "2023-01-07", "", "", "caps  ii"},
	}
	if err := parquetio.WriteRecords(path, records); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	summary, err := load.Run(ctx, pool, log, newConfig(t, path))
	if err != nil {
		t.Fatalf("load.Run: %v", err)
	}
	if summary.RowsCopied != 2 {
		t.Errorf("RowsCopied: got %d, want 2", summary.RowsCopied)
	}

	var n int64
	err = pool.QueryRow(ctx,
		"SELECT patients FROM altas.referral_counts WHERE referral_key = 'CAPS II'",
	).Scan(&n)
	if err != nil {
		t.Fatalf("query view: %v", err)
	}
	if n != 2 {
		t.Errorf("CAPS II count: got %d, want 2", n)
	}
}
