package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neuraudit/issliq/internal/batch"
	"github.com/neuraudit/issliq/internal/db"
	"github.com/neuraudit/issliq/internal/exitcode"
	"github.com/neuraudit/issliq/internal/logging"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Liquidate a Parquet file of procedures into the database",
	RunE:  runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to Parquet file (required)")
	f.BoolVar(&cfg.Activate, "activate", false, "Mark this batch as the active one for its source file")
	f.BoolVar(&cfg.Force, "force", false, "Re-liquidate even if file SHA already exists")
	f.BoolVar(&cfg.KeepStaging, "keep-staging", false, "Keep staging rows after transform")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	sched := loadSchedule(log)

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := batch.Run(ctx, pool, log, &cfg, sched)
	if err != nil {
		if pe, ok := err.(*batch.PipelineError); ok {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("batch failed")
			switch pe.Phase {
			case "preflight":
				os.Exit(exitcode.ValidationError)
			case "stage":
				os.Exit(exitcode.CopyError)
			default:
				os.Exit(exitcode.TransformError)
			}
		}
		log.Error().Err(err).Msg("batch failed")
		os.Exit(exitcode.TransformError)
	}

	fmt.Printf("Batch complete: %d liquidations, %d line items, %d rows rejected (%.1fs)\n",
		summary.LiquidationsServing, summary.LinesServing, summary.RowsRejected,
		summary.DurationTotal.Seconds())
	return nil
}
