package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/neuraudit/issliq/internal/sql"
)

// TransformResult holds metrics from the staging → serving transform.
type TransformResult struct {
	Liquidations int64
	Lines        int64
	Duration     time.Duration
}

// Transform promotes the staged batch into the serving tables: one
// summary row per liquidation in audit.liquidations, then the line items
// in audit.liquidation_lines keyed by the generated liquidation IDs.
func Transform(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, batchID uuid.UUID) (*TransformResult, error) {
	start := time.Now()

	liqTag, err := pool.Exec(ctx, embedsql.InsertLiquidations, batchID)
	if err != nil {
		return nil, fmt.Errorf("insert liquidations: %w", err)
	}

	lineTag, err := pool.Exec(ctx, embedsql.InsertLiquidationLines, batchID)
	if err != nil {
		return nil, fmt.Errorf("insert liquidation lines: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Int64("liquidations", liqTag.RowsAffected()).
		Int64("lines", lineTag.RowsAffected()).
		Str("duration", dur.String()).
		Msg("transform complete")

	return &TransformResult{
		Liquidations: liqTag.RowsAffected(),
		Lines:        lineTag.RowsAffected(),
		Duration:     dur,
	}, nil
}
