package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gyeh/dischargeprep/internal/exitcode"
	"github.com/gyeh/dischargeprep/internal/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run extraction stats per sheet (no writes)",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&cfg.InputDir, "input-dir", "i", "", "Directory with the source spreadsheets (default <exe dir>/Arquivos)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := setup()
	resolveDirs(log)

	res, err := pipeline.Plan(cfg.InputDir, cfg.Rules)
	if err != nil {
		log.Error().Err(err).Msg("plan failed")
		os.Exit(exitcode.ValidationError)
	}

	fmt.Println("=== dischargeprep plan ===")
	fmt.Printf("Input: %s\n\n", cfg.InputDir)
	fmt.Printf("%-30s %-15s %6s %6s %8s %6s %6s\n", "FILE", "SHEET", "HEADER", "ROWS", "RECORDS", "SPLIT", "DROP")

	var rows, records int
	for _, s := range res.Sheets {
		fmt.Printf("%-30s %-15s %6d %6d %8d %6d %6d\n",
			s.File, s.Sheet, s.HeaderRow+1, s.RowsRead, s.Records, s.RowsSplit, s.RowsDropped)
		rows += s.RowsRead
		records += s.Records
	}
	fmt.Printf("\nTotal: %d rows → %d records\n", rows, records)

	if len(res.Tables) > 0 {
		fmt.Println("\nFlat tables merged as-is:")
		for _, p := range res.Tables {
			fmt.Printf("  %s\n", filepath.Base(p))
		}
	}
	for path, ferr := range res.Failed {
		log.Warn().Err(ferr).Str("file", filepath.Base(path)).Msg("spreadsheet unreadable")
	}
	return nil
}
