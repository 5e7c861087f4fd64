package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/neuraudit/issliq/internal/db"
	"github.com/neuraudit/issliq/internal/liquidation"
	"github.com/neuraudit/issliq/internal/model"
	"github.com/neuraudit/issliq/internal/normalize"
	"github.com/neuraudit/issliq/internal/parquetread"
	embedsql "github.com/neuraudit/issliq/internal/sql"
)

const readBatchSize = 1024

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsRead     int64
	RowsRejected int64
	Liquidations int64
	LinesStaged  int64
	Duration     time.Duration
}

// Stage streams procedure rows from the Parquet file, liquidates each one
// against the schedule, and COPY-loads the resulting line items into the
// staging table via a channel-backed CopyFromSource. Rows that fail the
// engine preconditions are rejected and counted, never liquidated.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, calc *liquidation.Calculator, pf *PreflightResult) (*StageResult, error) {
	start := time.Now()

	reader, err := parquetread.Open(pf.FilePath)
	if err != nil {
		return nil, fmt.Errorf("stage open: %w", err)
	}
	defer reader.Close()

	ch := make(chan *model.StagingRow, readBatchSize)
	errCh := make(chan error, 1)

	var rowsRead, rowsRejected, liquidations int64

	// Producer goroutine: read Parquet → validate → liquidate → push lines
	go func() {
		defer close(ch)
		buf := make([]model.ProcedureRow, readBatchSize)
		var rowNum int64

		for {
			n, readErr := reader.Read(buf)
			for i := 0; i < n; i++ {
				rowNum++
				rowsRead++

				req, reqErr := normalize.ToRequest(&buf[i])
				if reqErr != nil {
					rowsRejected++
					log.Warn().Err(reqErr).Int64("row", rowNum).Msg("row rejected")
					continue
				}

				res := calc.Calculate(req)
				liquidations++

				for _, staging := range normalize.ToStagingRows(&req, &res, pf.BatchID, rowNum) {
					select {
					case ch <- staging:
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					}
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				errCh <- fmt.Errorf("read parquet at row %d: %w", rowNum, readErr)
				return
			}
		}
		errCh <- nil
	}()

	// Consumer: COPY from channel into staging table
	source := db.NewChannelSource(ch)
	linesStaged, err := pool.CopyFrom(ctx,
		pgx.Identifier{"ingest", "stage_liquidation_lines"},
		model.StagingColumns(),
		source,
	)

	// Wait for producer to finish
	prodErr := <-errCh
	if prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_read", rowsRead).
		Int64("rows_rejected", rowsRejected).
		Int64("liquidations", liquidations).
		Int64("lines_staged", linesStaged).
		Str("duration", dur.String()).
		Float64("rows_per_sec", float64(rowsRead)/dur.Seconds()).
		Msg("staging complete")

	return &StageResult{
		RowsRead:     rowsRead,
		RowsRejected: rowsRejected,
		Liquidations: liquidations,
		LinesStaged:  linesStaged,
		Duration:     dur,
	}, nil
}

// UpdateStatus updates the batch status.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateBatchStatus, batchID, status)
	return err
}
