package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/neuraudit/issliq/internal/config"
	"github.com/neuraudit/issliq/internal/liquidation"
	"github.com/neuraudit/issliq/internal/model"
	"github.com/neuraudit/issliq/internal/schedule"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full batch liquidation pipeline:
// preflight → stage → transform → finalize → cleanup.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config, sched *schedule.Schedule) (*model.BatchSummary, error) {
	totalStart := time.Now()
	calc := liquidation.New(sched)

	// Phase 1: Preflight
	log.Info().Str("file", cfg.FilePath).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, cfg.FilePath, sched.Version, cfg.Force)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Str("batch_id", pf.BatchID.String()).
			Str("sha256", pf.FileSHA256).
			Msg("file already liquidated, skipping (use --force to re-run)")
		return &model.BatchSummary{
			FilePath:        pf.FilePath,
			FileSHA256:      pf.FileSHA256,
			BatchID:         pf.BatchID.String(),
			ScheduleVersion: pf.ScheduleVersion,
			DurationTotal:   time.Since(totalStart),
		}, nil
	}

	// Phase 2: Stage
	log.Info().Msg("starting staging")
	if err := UpdateStatus(ctx, pool, pf.BatchID, "staging"); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	stageResult, err := Stage(ctx, pool, log, calc, pf)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.BatchID, "failed")
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	if err := UpdateStatus(ctx, pool, pf.BatchID, "staged"); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	// Phase 3: Transform
	log.Info().Msg("starting transform")
	if err := UpdateStatus(ctx, pool, pf.BatchID, "transforming"); err != nil {
		return nil, &PipelineError{Phase: "transform", Err: err}
	}

	transformResult, err := Transform(ctx, pool, log, pf.BatchID)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.BatchID, "failed")
		return nil, &PipelineError{Phase: "transform", Err: err}
	}

	// Phase 4: Finalize
	log.Info().Msg("finalizing")
	finalizeDur, err := Finalize(ctx, pool, log, pf, cfg.Activate)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.BatchID, "failed")
		return nil, &PipelineError{Phase: "finalize", Err: err}
	}

	// Phase 5: Cleanup staging
	if !cfg.KeepStaging {
		log.Info().Msg("cleaning up staging")
		if err := Cleanup(ctx, pool, log, pf.BatchID); err != nil {
			log.Warn().Err(err).Msg("staging cleanup failed (non-fatal)")
		}
	}

	summary := &model.BatchSummary{
		FilePath:            pf.FilePath,
		FileSHA256:          pf.FileSHA256,
		BatchID:             pf.BatchID.String(),
		ScheduleVersion:     pf.ScheduleVersion,
		RowsRead:            stageResult.RowsRead,
		RowsRejected:        stageResult.RowsRejected,
		LiquidationsStaged:  stageResult.Liquidations,
		LinesStaged:         stageResult.LinesStaged,
		LiquidationsServing: transformResult.Liquidations,
		LinesServing:        transformResult.Lines,
		DurationStage:       stageResult.Duration,
		DurationTransform:   transformResult.Duration,
		DurationFinalize:    finalizeDur,
		DurationTotal:       time.Since(totalStart),
	}

	log.Info().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_rejected", summary.RowsRejected).
		Int64("liquidations", summary.LiquidationsServing).
		Int64("lines", summary.LinesServing).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("batch pipeline complete")

	return summary, nil
}
