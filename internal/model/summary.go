package model

import "time"

// RunSummary captures metrics from a single pipeline run.
type RunSummary struct {
	RunID              string
	SpreadsheetsRead   int
	SheetsConverted    int
	SourcesMerged      int
	SourcesSkipped     int
	RowsMerged         int
	RowsDeduped        int
	DuplicatesRemoved  int
	Groups             int
	RowsKeptClean      int
	RowsDiscardedClean int
	ReportPath         string
	DurationConvert    time.Duration
	DurationMerge      time.Duration
	DurationPartition  time.Duration
	DurationTotal      time.Duration
}

// LoadSummary captures metrics from a single database load.
type LoadSummary struct {
	FilePath      string
	FileSHA256    string
	BatchID       string
	RowsRead      int64
	RowsCopied    int64
	AlreadyLoaded bool
	DurationTotal time.Duration
}
