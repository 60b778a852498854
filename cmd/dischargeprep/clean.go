package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/dischargeprep/internal/clean"
	"github.com/gyeh/dischargeprep/internal/exitcode"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file> [output]",
	Short: "Remove malformed rows from a merged CSV",
	Long:  "Cleans a CSV line by line. Without an output path the file is rewritten in place.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	log := setup()

	in, out := args[0], ""
	if len(args) == 2 {
		out = args[1]
	}
	if _, err := os.Stat(in); err != nil {
		log.Error().Err(err).Msg("input not accessible")
		os.Exit(exitcode.UsageError)
	}

	res, err := clean.File(in, out, log)
	if err != nil {
		log.Error().Err(err).Str("file", in).Msg("cleaning failed")
		os.Exit(exitcode.PipelineError)
	}

	fmt.Printf("Cleaned %s: %d rows kept, %d lines removed\n", res.Output, res.Kept, res.Discarded)
	return nil
}
