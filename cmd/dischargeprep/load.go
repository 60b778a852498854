package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/dischargeprep/internal/db"
	"github.com/gyeh/dischargeprep/internal/exitcode"
	"github.com/gyeh/dischargeprep/internal/load"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk-load a deduplicated CSV or Parquet file into Postgres",
	Args:  cobra.NoArgs,
	RunE:  runLoad,
}

func init() {
	addDSNFlag(loadCmd)
	f := loadCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to merged_deduped.csv or .parquet (required)")
	f.BoolVar(&cfg.Force, "force", false, "Reload even if the file SHA was already loaded")
	_ = loadCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(loadCmd)
}

// addDSNFlag registers --dsn, defaulting to DISCHARGEPREP_DB_URL.
func addDSNFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.DSN, "dsn", os.Getenv("DISCHARGEPREP_DB_URL"), "Postgres connection string (or set DISCHARGEPREP_DB_URL)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := load.Run(ctx, pool, log, &cfg)
	if err != nil {
		pool.Close()
		exitForPipeline(log, err, "load failed")
	}

	if summary.AlreadyLoaded {
		fmt.Printf("Already loaded as batch %s, nothing to do\n", summary.BatchID)
		return nil
	}
	fmt.Printf("Load complete: %d of %d rows copied into batch %s (%.1fs)\n",
		summary.RowsCopied, summary.RowsRead, summary.BatchID, summary.DurationTotal.Seconds())
	return nil
}
