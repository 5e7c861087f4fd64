package model

import "github.com/google/uuid"

// StagingRow is one liquidation line item in staging form: the line
// denormalized with its parent request fields, monetary values rounded
// to centavos for persistence. One liquidated procedure produces between
// three and five staging rows sharing the same source_row_number.
type StagingRow struct {
	BatchID         uuid.UUID
	SourceRowNumber int64
	SourceRowHash   []byte

	ProcedureCode        string
	ProcedureDescription *string
	UVRWeight            float64
	UpliftBPS            int32
	AppliesArticle134    bool
	SurgeonType          string
	AnesthesiaType       string
	RoomType             string
	ScheduleVersion      string

	LineSeq         int32
	LineCode        string
	LineConcept     string
	LineDescription *string
	PercentageBPS   int32
	AmountCentavos  int64
	TotalCentavos   int64
}

// StagingColumns returns the staging table column names in COPY order.
func StagingColumns() []string {
	return []string{
		"batch_id",
		"source_row_number",
		"source_row_hash",
		"procedure_code",
		"procedure_description",
		"uvr_weight",
		"uplift_bps",
		"applies_article_134",
		"surgeon_type",
		"anesthesia_type",
		"room_type",
		"schedule_version",
		"line_seq",
		"line_code",
		"line_concept",
		"line_description",
		"percentage_bps",
		"amount_centavos",
		"total_centavos",
	}
}

// CopyValues returns the row values in the same order as StagingColumns.
func (r *StagingRow) CopyValues() []any {
	return []any{
		r.BatchID,
		r.SourceRowNumber,
		r.SourceRowHash,
		r.ProcedureCode,
		r.ProcedureDescription,
		r.UVRWeight,
		r.UpliftBPS,
		r.AppliesArticle134,
		r.SurgeonType,
		r.AnesthesiaType,
		r.RoomType,
		r.ScheduleVersion,
		r.LineSeq,
		r.LineCode,
		r.LineConcept,
		r.LineDescription,
		r.PercentageBPS,
		r.AmountCentavos,
		r.TotalCentavos,
	}
}
