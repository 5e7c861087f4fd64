package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/neuraudit/issliq/internal/normalize"
	"github.com/neuraudit/issliq/internal/parquetread"
	embedsql "github.com/neuraudit/issliq/internal/sql"
)

// PreflightResult holds all context resolved during the preflight phase.
type PreflightResult struct {
	// FilePath is the original path passed to Preflight, stored as-is.
	FilePath string
	// FileSHA256 is the hex-encoded SHA-256 digest of the file.
	FileSHA256 string
	// FileSize is the file size in bytes from os.Stat.
	FileSize int64
	// BatchID identifies this batch. Freshly generated for a new file;
	// reused from the DB when re-running a previously seen file with force.
	BatchID uuid.UUID
	// ScheduleVersion is the tariff schedule the batch will be priced with.
	ScheduleVersion string
	// NumRows is the total row count reported by the Parquet file metadata.
	NumRows int64
	// AlreadyLoaded is true when the file's sha256 already exists with a
	// finished status and force mode is off, signaling the pipeline can
	// skip this file.
	AlreadyLoaded bool
}

// Preflight hashes the file, validates the Parquet schema, and registers
// the batch, detecting files that were already liquidated.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, filePath, scheduleVersion string, force bool) (*PreflightResult, error) {
	start := time.Now()

	sha, err := normalize.FileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight stat: %w", err)
	}

	reader, err := parquetread.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight open: %w", err)
	}
	defer reader.Close()

	if err := parquetread.ValidateSchema(reader.Schema()); err != nil {
		return nil, fmt.Errorf("preflight validate: %w", err)
	}
	numRows := reader.NumRows()

	log.Info().
		Str("file", filepath.Base(filePath)).
		Str("sha256", sha).
		Int64("rows", numRows).
		Str("schedule", scheduleVersion).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	batchID, alreadyLoaded, err := registerBatch(ctx, pool, filePath, sha, stat.Size(), scheduleVersion, force)
	if err != nil {
		return nil, fmt.Errorf("preflight register batch: %w", err)
	}

	return &PreflightResult{
		FilePath:        filePath,
		FileSHA256:      sha,
		FileSize:        stat.Size(),
		BatchID:         batchID,
		ScheduleVersion: scheduleVersion,
		NumRows:         numRows,
		AlreadyLoaded:   alreadyLoaded,
	}, nil
}

func registerBatch(ctx context.Context, pool *pgxpool.Pool, filePath, sha string, fileSize int64, scheduleVersion string, force bool) (uuid.UUID, bool, error) {
	newID := uuid.New()

	var batchID uuid.UUID
	err := pool.QueryRow(ctx, embedsql.RegisterBatch,
		newID, filepath.Base(filePath), sha, fileSize, scheduleVersion,
	).Scan(&batchID)
	if err == nil {
		return batchID, false, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, false, fmt.Errorf("register batch: %w", err)
	}

	// Already exists (ON CONFLICT DO NOTHING returned no rows).
	var existingID uuid.UUID
	var status string
	if err := pool.QueryRow(ctx, embedsql.LookupBatch, sha).Scan(&existingID, &status); err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup existing batch: %w", err)
	}

	if !force && (status == "active" || status == "complete") {
		return existingID, true, nil
	}

	// Reset for re-liquidation: clear prior serving and staging rows.
	if _, err := pool.Exec(ctx, embedsql.UpdateBatchStatus, existingID, "pending"); err != nil {
		return uuid.Nil, false, fmt.Errorf("reset batch status: %w", err)
	}
	if _, err := pool.Exec(ctx, embedsql.DeleteServingBatch, existingID); err != nil {
		return uuid.Nil, false, fmt.Errorf("clear serving rows: %w", err)
	}
	if _, err := pool.Exec(ctx, embedsql.DeleteStagingBatch, existingID); err != nil {
		return uuid.Nil, false, fmt.Errorf("clear staging rows: %w", err)
	}
	return existingID, false, nil
}
