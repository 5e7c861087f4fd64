package sql

import (
	"embed"
	_ "embed"
)

// Migrations holds the schema migration files, applied in name order.
//
//go:embed migrations
var Migrations embed.FS

//go:embed queries/register_batch.sql
var RegisterBatch string

//go:embed queries/lookup_batch.sql
var LookupBatch string

//go:embed queries/update_batch_status.sql
var UpdateBatchStatus string

//go:embed queries/insert_liquidations.sql
var InsertLiquidations string

//go:embed queries/insert_liquidation_lines.sql
var InsertLiquidationLines string

//go:embed queries/delete_staging_batch.sql
var DeleteStagingBatch string

//go:embed queries/delete_serving_batch.sql
var DeleteServingBatch string

//go:embed queries/deactivate_older_batches.sql
var DeactivateOlderBatches string

//go:embed queries/activate_batch.sql
var ActivateBatch string

//go:embed queries/analyze_liquidations.sql
var AnalyzeLiquidations string

//go:embed queries/analyze_lines.sql
var AnalyzeLines string
