package batch_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neuraudit/issliq/internal/batch"
	"github.com/neuraudit/issliq/internal/db"
	"github.com/neuraudit/issliq/internal/logging"
	"github.com/neuraudit/issliq/internal/model"
	embedsql "github.com/neuraudit/issliq/internal/sql"
)

// insertBatch registers a batch row directly, bypassing preflight.
func insertBatch(t *testing.T, pool *pgxpool.Pool, fileName string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	var got uuid.UUID
	err := pool.QueryRow(context.Background(), embedsql.RegisterBatch,
		id, fileName, id.String(), int64(1024), "ISS-2001",
	).Scan(&got)
	if err != nil {
		t.Fatalf("register batch: %v", err)
	}
	return got
}

// makeStagingRow builds a staging line with sensible defaults.
func makeStagingRow(batchID uuid.UUID, rowNum int64, seq int32, code string, amount, total int64) *model.StagingRow {
	desc := "Procedimiento de prueba"
	return &model.StagingRow{
		BatchID:              batchID,
		SourceRowNumber:      rowNum,
		SourceRowHash:        []byte{0x01, 0x02},
		ProcedureCode:        "890201",
		ProcedureDescription: &desc,
		UVRWeight:            80,
		UpliftBPS:            0,
		SurgeonType:          "SPECIALIST",
		AnesthesiaType:       "GENERAL_OR_REGIONAL",
		RoomType:             "OPERATING_ROOM",
		ScheduleVersion:      "ISS-2001",
		LineSeq:              seq,
		LineCode:             code,
		LineConcept:          "Cirujano",
		PercentageBPS:        10000,
		AmountCentavos:       amount,
		TotalCentavos:        total,
	}
}

func copyStagingRows(t *testing.T, pool *pgxpool.Pool, rows []*model.StagingRow) {
	t.Helper()
	ch := make(chan *model.StagingRow, len(rows))
	for _, r := range rows {
		ch <- r
	}
	close(ch)

	n, err := pool.CopyFrom(context.Background(),
		pgx.Identifier{"ingest", "stage_liquidation_lines"},
		model.StagingColumns(),
		db.NewChannelSource(ch),
	)
	if err != nil {
		t.Fatalf("copy staging rows: %v", err)
	}
	if n != int64(len(rows)) {
		t.Fatalf("copied %d rows, want %d", n, len(rows))
	}
}

func TestTransformPromotesBatch(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")
	batchID := insertBatch(t, pool, "ops_transform.parquet")

	// Two liquidations: row 1 with three lines, row 2 with two.
	copyStagingRows(t, pool, []*model.StagingRow{
		makeStagingRow(batchID, 1, 1, "S41101", 10160000, 29423000),
		makeStagingRow(batchID, 1, 2, "S41401", 7680000, 29423000),
		makeStagingRow(batchID, 1, 3, "S23205", 11483000, 29423000),
		makeStagingRow(batchID, 2, 1, "S41101", 812000, 1354000),
		makeStagingRow(batchID, 2, 2, "S23401", 542000, 1354000),
	})

	res, err := batch.Transform(ctx, pool, log, batchID)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if res.Liquidations != 2 {
		t.Errorf("liquidations = %d, want 2", res.Liquidations)
	}
	if res.Lines != 5 {
		t.Errorf("lines = %d, want 5", res.Lines)
	}

	// The summary row carries the shared total, once per source row.
	var total int64
	err = pool.QueryRow(ctx,
		"SELECT total_centavos FROM audit.liquidations WHERE batch_id = $1 AND source_row_number = 1",
		batchID,
	).Scan(&total)
	if err != nil {
		t.Fatalf("query liquidation: %v", err)
	}
	if total != 29423000 {
		t.Errorf("total_centavos = %d, want 29423000", total)
	}

	// Every staged line must have landed under its parent liquidation.
	var orphans int
	err = pool.QueryRow(ctx, `
		SELECT count(*)
		FROM audit.liquidation_lines ll
		LEFT JOIN audit.liquidations l ON l.liquidation_id = ll.liquidation_id
		WHERE l.liquidation_id IS NULL`,
	).Scan(&orphans)
	if err != nil {
		t.Fatalf("query orphans: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d orphan lines", orphans)
	}

	var lineCount int
	err = pool.QueryRow(ctx, `
		SELECT count(*)
		FROM audit.liquidation_lines ll
		JOIN audit.liquidations l ON l.liquidation_id = ll.liquidation_id
		WHERE l.batch_id = $1 AND l.source_row_number = 1`,
		batchID,
	).Scan(&lineCount)
	if err != nil {
		t.Fatalf("query lines: %v", err)
	}
	if lineCount != 3 {
		t.Errorf("lines for row 1 = %d, want 3", lineCount)
	}
}

func TestTransformIsRerunSafe(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")
	batchID := insertBatch(t, pool, "ops_rerun.parquet")

	copyStagingRows(t, pool, []*model.StagingRow{
		makeStagingRow(batchID, 1, 1, "S41101", 812000, 812000),
	})

	if _, err := batch.Transform(ctx, pool, log, batchID); err != nil {
		t.Fatalf("first transform: %v", err)
	}
	// A second transform of the same batch violates the
	// (batch_id, source_row_number) uniqueness and must fail rather
	// than silently duplicate audit rows.
	if _, err := batch.Transform(ctx, pool, log, batchID); err == nil {
		t.Fatal("second transform succeeded, want unique violation")
	}

	var count int
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM audit.liquidations WHERE batch_id = $1", batchID,
	).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("liquidations = %d, want 1", count)
	}
}

func TestUpdateStatusAndCleanup(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")
	keepID := insertBatch(t, pool, "ops_keep.parquet")
	dropID := insertBatch(t, pool, "ops_drop.parquet")

	copyStagingRows(t, pool, []*model.StagingRow{
		makeStagingRow(keepID, 1, 1, "S41101", 100, 100),
		makeStagingRow(dropID, 1, 1, "S41101", 200, 200),
		makeStagingRow(dropID, 2, 1, "S41101", 300, 300),
	})

	if err := batch.UpdateStatus(ctx, pool, dropID, "staged"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	var status string
	if err := pool.QueryRow(ctx,
		"SELECT status FROM ingest.batches WHERE batch_id = $1", dropID,
	).Scan(&status); err != nil {
		t.Fatalf("query status: %v", err)
	}
	if status != "staged" {
		t.Errorf("status = %q, want staged", status)
	}

	// Cleanup removes only the target batch's staging rows.
	if err := batch.Cleanup(ctx, pool, log, dropID); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	var dropped, kept int
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM ingest.stage_liquidation_lines WHERE batch_id = $1", dropID,
	).Scan(&dropped); err != nil {
		t.Fatalf("count dropped: %v", err)
	}
	if err := pool.QueryRow(ctx,
		"SELECT count(*) FROM ingest.stage_liquidation_lines WHERE batch_id = $1", keepID,
	).Scan(&kept); err != nil {
		t.Fatalf("count kept: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped batch still has %d staging rows", dropped)
	}
	if kept != 1 {
		t.Errorf("kept batch has %d staging rows, want 1", kept)
	}
}

func TestFinalizeActivateDeactivatesOlder(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")

	// Two versions of the same source file.
	oldID := insertBatch(t, pool, "procedures_2026.parquet")
	if _, err := pool.Exec(ctx, embedsql.ActivateBatch, oldID); err != nil {
		t.Fatalf("activate old batch: %v", err)
	}
	newID := insertBatch(t, pool, "procedures_2026.parquet")

	pf := &batch.PreflightResult{
		FilePath: "/data/procedures_2026.parquet",
		BatchID:  newID,
	}
	if _, err := batch.Finalize(ctx, pool, log, pf, true); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	var oldActive, newActive bool
	if err := pool.QueryRow(ctx,
		"SELECT is_active FROM ingest.batches WHERE batch_id = $1", oldID,
	).Scan(&oldActive); err != nil {
		t.Fatalf("query old: %v", err)
	}
	if err := pool.QueryRow(ctx,
		"SELECT is_active FROM ingest.batches WHERE batch_id = $1", newID,
	).Scan(&newActive); err != nil {
		t.Fatalf("query new: %v", err)
	}
	if oldActive {
		t.Error("older batch still active after activation of newer batch")
	}
	if !newActive {
		t.Error("newer batch not active")
	}
}
