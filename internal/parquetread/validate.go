package parquetread

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// requiredColumns are the Parquet columns a batch file must carry.
var requiredColumns = []string{
	"procedure_code",
	"uvr_weight",
	"surgeon_type",
	"anesthesia_type",
	"room_type",
}

// ValidateSchema checks that the Parquet schema contains every column
// the liquidation pipeline needs.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	for _, col := range requiredColumns {
		if !columns[col] {
			return fmt.Errorf("missing required column: %s", col)
		}
	}
	return nil
}
