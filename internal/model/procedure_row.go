package model

// ProcedureRow mirrors the Parquet schema for one procedure to be
// liquidated. Numeric fields are float64 matching the Parquet
// representation; they are converted to decimal during normalization.
type ProcedureRow struct {
	ProcedureCode         string  `parquet:"procedure_code"`
	Description           string  `parquet:"description"`
	UVRWeight             float64 `parquet:"uvr_weight"`
	ContractUpliftPercent float64 `parquet:"contract_uplift_percent"`
	SurgeonType           string  `parquet:"surgeon_type"`
	AnesthesiaType        string  `parquet:"anesthesia_type"`
	RoomType              string  `parquet:"room_type"`
	HasSurgicalAssistant  bool    `parquet:"has_surgical_assistant"`
	AppliesArticle134     bool    `parquet:"applies_article_134"`
}
