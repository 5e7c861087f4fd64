// mkfixture writes a synthetic Parquet fixture of procedure rows
// covering every surgeon/anesthesia/room branch, plus a few invalid rows
// for rejection accounting.
// Usage: go run ./cmd/mkfixture --out testdata/procedures-small.parquet --rows 200
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/neuraudit/issliq/internal/model"
)

var (
	surgeonTypes    = []string{"SPECIALIST", "GENERAL_PRACTITIONER"}
	anesthesiaTypes = []string{"GENERAL_OR_REGIONAL", "LOCAL", "NONE"}
	roomTypes       = []string{"OPERATING_ROOM", "SPECIAL_PROCEDURE_ROOM", "BASIC_PROCEDURE_ROOM"}
)

func main() {
	out := flag.String("out", "testdata/procedures-small.parquet", "output parquet")
	numRows := flag.Int("rows", 200, "rows to generate")
	invalid := flag.Int("invalid", 5, "invalid rows to mix in")
	seed := flag.Int64("seed", 1, "rng seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	rows := make([]model.ProcedureRow, 0, *numRows)
	for i := 0; i < *numRows-*invalid; i++ {
		// Keep some rows above the 170 UVR operating table maximum so the
		// overflow formula path shows up in fixtures.
		uvr := float64(rng.Intn(200))
		rows = append(rows, model.ProcedureRow{
			ProcedureCode:         fmt.Sprintf("89%04d", rng.Intn(10000)),
			Description:           fmt.Sprintf("Procedimiento quirúrgico %d", i+1),
			UVRWeight:             uvr,
			ContractUpliftPercent: float64(rng.Intn(5)) * 10,
			SurgeonType:           surgeonTypes[rng.Intn(len(surgeonTypes))],
			AnesthesiaType:        anesthesiaTypes[rng.Intn(len(anesthesiaTypes))],
			RoomType:              roomTypes[rng.Intn(len(roomTypes))],
			HasSurgicalAssistant:  rng.Intn(2) == 0,
			AppliesArticle134:     rng.Intn(4) == 0,
		})
	}
	for i := 0; i < *invalid; i++ {
		// Missing code and a bogus enum: both must be rejected in staging.
		rows = append(rows, model.ProcedureRow{
			ProcedureCode:  "",
			UVRWeight:      10,
			SurgeonType:    "SPECIALIST",
			AnesthesiaType: "HYPNOSIS",
			RoomType:       "OPERATING_ROOM",
		})
	}
	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })

	outFile, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	writer := goparquet.NewGenericWriter[model.ProcedureRow](outFile)
	if _, err := writer.Write(rows); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close writer: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d rows to %s\n", len(rows), *out)
}
