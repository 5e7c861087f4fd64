package normalize

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/neuraudit/issliq/internal/liquidation"
	"github.com/neuraudit/issliq/internal/model"
)

// ToRequest converts a Parquet-read ProcedureRow into a validated
// ProcedureRequest. Rows that fail the engine preconditions (missing
// code, negative or non-finite numerics, unknown enum values) are
// rejected here, before the calculator ever sees them.
func ToRequest(row *model.ProcedureRow) (liquidation.ProcedureRequest, error) {
	var req liquidation.ProcedureRequest

	code := Code(row.ProcedureCode)
	if code == "" {
		return req, fmt.Errorf("missing procedure code")
	}
	if math.IsNaN(row.UVRWeight) || math.IsInf(row.UVRWeight, 0) {
		return req, fmt.Errorf("uvr weight is not a finite number")
	}
	if math.IsNaN(row.ContractUpliftPercent) || math.IsInf(row.ContractUpliftPercent, 0) {
		return req, fmt.Errorf("contract uplift percent is not a finite number")
	}

	surgeon, err := liquidation.ParseSurgeonType(row.SurgeonType)
	if err != nil {
		return req, err
	}
	anesthesia, err := liquidation.ParseAnesthesiaType(row.AnesthesiaType)
	if err != nil {
		return req, err
	}
	room, err := liquidation.ParseRoomType(row.RoomType)
	if err != nil {
		return req, err
	}

	req = liquidation.ProcedureRequest{
		Code:                  code,
		Description:           row.Description,
		UVRWeight:             decimal.NewFromFloat(row.UVRWeight),
		ContractUpliftPercent: decimal.NewFromFloat(row.ContractUpliftPercent),
		SurgeonType:           surgeon,
		AnesthesiaType:        anesthesia,
		RoomType:              room,
		HasSurgicalAssistant:  row.HasSurgicalAssistant,
		AppliesArticle134:     row.AppliesArticle134,
	}
	if err := req.Validate(); err != nil {
		return liquidation.ProcedureRequest{}, err
	}
	return req, nil
}

// ToStagingRows flattens a liquidation result into staging rows, one per
// line item, with amounts rounded to centavos.
func ToStagingRows(req *liquidation.ProcedureRequest, res *liquidation.Result, batchID uuid.UUID, rowNum int64) []*model.StagingRow {
	hash := RowHashFromValues(rowNum,
		req.Code,
		req.Description,
		string(req.SurgeonType),
		string(req.AnesthesiaType),
		string(req.RoomType),
		req.UVRWeight.String(),
		req.ContractUpliftPercent.String(),
	)
	uvr, _ := req.UVRWeight.Float64()
	totalCentavos := PesosToCentavos(res.Total)

	rows := make([]*model.StagingRow, len(res.Lines))
	for i, line := range res.Lines {
		rows[i] = &model.StagingRow{
			BatchID:         batchID,
			SourceRowNumber: rowNum,
			SourceRowHash:   hash,

			ProcedureCode:        req.Code,
			ProcedureDescription: optStr(req.Description),
			UVRWeight:            uvr,
			UpliftBPS:            PercentToBasisPoints(req.ContractUpliftPercent),
			AppliesArticle134:    req.AppliesArticle134,
			SurgeonType:          string(req.SurgeonType),
			AnesthesiaType:       string(req.AnesthesiaType),
			RoomType:             string(req.RoomType),
			ScheduleVersion:      res.ScheduleVersion,

			LineSeq:         int32(i + 1),
			LineCode:        line.Code,
			LineConcept:     line.Concept,
			LineDescription: optStr(line.Description),
			PercentageBPS:   PercentToBasisPoints(line.Percentage),
			AmountCentavos:  PesosToCentavos(line.Amount),
			TotalCentavos:   totalCentavos,
		}
	}
	return rows
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
