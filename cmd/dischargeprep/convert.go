package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/dischargeprep/internal/exitcode"
	"github.com/gyeh/dischargeprep/internal/pipeline"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert spreadsheets to canonical CSVs only",
	Args:  cobra.NoArgs,
	RunE:  runConvert,
}

func init() {
	addDirFlags(convertCmd, false)
	convertCmd.Flags().BoolVar(&cfg.AllSheets, "all-sheets", false, "Convert every sheet instead of the first one and Plan1")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	log := setup()
	resolveDirs(log)

	src, err := pipeline.Discover(cfg.InputDir, cfg.OutputDir, cfg.TempDir)
	if err != nil {
		log.Error().Err(err).Msg("discovery failed")
		os.Exit(exitcode.ValidationError)
	}
	if len(src.Spreadsheets) == 0 {
		log.Warn().Str("input_dir", cfg.InputDir).Msg("no spreadsheets found")
		os.Exit(exitcode.NoInput)
	}

	res, err := pipeline.Convert(&cfg, src.Spreadsheets, log)
	if err != nil {
		exitForPipeline(log, &pipeline.PipelineError{Phase: "convert", Err: err}, "conversion failed")
	}

	fmt.Printf("Converted %d of %d spreadsheets into %d CSVs in %s\n",
		res.Spreadsheets, len(src.Spreadsheets), res.Sheets, cfg.TempDir)
	return nil
}
