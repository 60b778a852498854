package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyeh/dischargeprep/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Convert, merge, deduplicate, partition and clean the input directory",
	Args:  cobra.NoArgs,
	RunE:  runPipeline,
}

func init() {
	addDirFlags(runCmd, true)
	f := runCmd.Flags()
	f.BoolVar(&cfg.AllSheets, "all-sheets", false, "Convert every sheet instead of the first one and Plan1")
	f.BoolVar(&cfg.ExportParquet, "parquet", false, "Also write the deduplicated table as Parquet")
	f.BoolVar(&cfg.KeepRawPartitions, "keep-raw-partitions", false, "Keep the uncleaned per-referral files")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	log := setup()
	resolveDirs(log)

	summary, err := pipeline.Run(&cfg, log)
	if err != nil {
		exitForPipeline(log, err, "pipeline failed")
	}

	fmt.Printf("Pipeline complete: %d rows merged, %d after dedup, %d groups, %d rows discarded (%.1fs)\n",
		summary.RowsMerged, summary.RowsDeduped, summary.Groups, summary.RowsDiscardedClean, summary.DurationTotal.Seconds())
	fmt.Printf("Report: %s\n", summary.ReportPath)
	return nil
}
