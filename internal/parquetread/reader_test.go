package parquetread_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/neuraudit/issliq/internal/model"
	"github.com/neuraudit/issliq/internal/parquetread"
)

func writeFixture(t *testing.T, rows []model.ProcedureRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "procedures.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	w := goparquet.NewGenericWriter[model.ProcedureRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestReaderRoundTrip(t *testing.T) {
	want := []model.ProcedureRow{
		{ProcedureCode: "890201", Description: "a", UVRWeight: 80, SurgeonType: "SPECIALIST", AnesthesiaType: "GENERAL_OR_REGIONAL", RoomType: "OPERATING_ROOM"},
		{ProcedureCode: "860101", Description: "b", UVRWeight: 20, SurgeonType: "GENERAL_PRACTITIONER", AnesthesiaType: "NONE", RoomType: "BASIC_PROCEDURE_ROOM"},
	}
	path := writeFixture(t, want)

	r, err := parquetread.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.NumRows() != int64(len(want)) {
		t.Errorf("NumRows = %d, want %d", r.NumRows(), len(want))
	}
	if err := parquetread.ValidateSchema(r.Schema()); err != nil {
		t.Errorf("ValidateSchema: %v", err)
	}

	var got []model.ProcedureRow
	buf := make([]model.ProcedureRow, 1)
	for {
		n, readErr := r.Read(buf)
		got = append(got, buf[:n]...)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			t.Fatalf("Read: %v", readErr)
		}
	}

	if len(got) != len(want) {
		t.Fatalf("read %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestValidateSchemaMissingColumn(t *testing.T) {
	type truncatedRow struct {
		ProcedureCode string  `parquet:"procedure_code"`
		UVRWeight     float64 `parquet:"uvr_weight"`
	}
	path := filepath.Join(t.TempDir(), "bad.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w := goparquet.NewGenericWriter[truncatedRow](f)
	if _, err := w.Write([]truncatedRow{{ProcedureCode: "890201", UVRWeight: 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	f.Close()

	r, err := parquetread.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if err := parquetread.ValidateSchema(r.Schema()); err == nil {
		t.Error("expected schema validation error for missing columns")
	}
}
