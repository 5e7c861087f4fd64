package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/neuraudit/issliq/internal/sql"
)

// Finalize activates the batch (deactivating earlier batches for the
// same source file) or just marks it complete, then runs ANALYZE.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, pf *PreflightResult, activate bool) (time.Duration, error) {
	start := time.Now()

	if activate {
		tag, err := pool.Exec(ctx, embedsql.DeactivateOlderBatches, filepath.Base(pf.FilePath), pf.BatchID)
		if err != nil {
			return 0, fmt.Errorf("deactivate older batches: %w", err)
		}
		log.Info().Int64("deactivated", tag.RowsAffected()).Msg("older batches deactivated")

		if _, err := pool.Exec(ctx, embedsql.ActivateBatch, pf.BatchID); err != nil {
			return 0, fmt.Errorf("activate batch: %w", err)
		}
		log.Info().Str("batch_id", pf.BatchID.String()).Msg("batch activated")
	} else {
		if err := UpdateStatus(ctx, pool, pf.BatchID, "complete"); err != nil {
			return 0, fmt.Errorf("update status to complete: %w", err)
		}
	}

	if _, err := pool.Exec(ctx, embedsql.AnalyzeLiquidations); err != nil {
		return 0, fmt.Errorf("analyze liquidations: %w", err)
	}
	if _, err := pool.Exec(ctx, embedsql.AnalyzeLines); err != nil {
		return 0, fmt.Errorf("analyze lines: %w", err)
	}
	log.Info().Msg("ANALYZE complete")

	return time.Since(start), nil
}
