package sql

import (
	"embed"
)

// Migrations holds the schema DDL, applied in file name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_batch.sql
var RegisterBatch string

//go:embed queries/lookup_batch.sql
var LookupBatch string

//go:embed queries/update_batch_status.sql
var UpdateBatchStatus string

//go:embed queries/mark_batch_loaded.sql
var MarkBatchLoaded string

//go:embed queries/delete_batch_records.sql
var DeleteBatchRecords string

//go:embed queries/analyze_records.sql
var AnalyzeRecords string
