package model

import "time"

// BatchSummary captures metrics from a single batch liquidation run.
type BatchSummary struct {
	FilePath            string
	FileSHA256          string
	BatchID             string
	ScheduleVersion     string
	RowsRead            int64
	RowsRejected        int64
	LiquidationsStaged  int64
	LinesStaged         int64
	LiquidationsServing int64
	LinesServing        int64
	DurationStage       time.Duration
	DurationTransform   time.Duration
	DurationFinalize    time.Duration
	DurationTotal       time.Duration
}
