// Package schedule holds the ISS-2001 tariff reference data: UVR range
// tables for room rights and surgical materials, per-UVR professional
// rates, and the official line codes. Schedules are versioned documents
// (the default encodes Acuerdo 256 de 2001) so a future tariff update is
// a data change, not a code change.
package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RangeEntry is one tariff line of a UVR range table. Bounds are
// inclusive on both ends.
type RangeEntry struct {
	RangeMin int
	RangeMax int
	Code     string
	Value    decimal.Decimal
}

// Table is an ordered sequence of non-overlapping UVR ranges.
type Table struct {
	Name    string
	Entries []RangeEntry
}

// Find returns the single entry whose range contains uvr, or ok=false
// when uvr falls outside every range in the table.
func (t *Table) Find(uvr decimal.Decimal) (RangeEntry, bool) {
	for _, e := range t.Entries {
		min := decimal.NewFromInt(int64(e.RangeMin))
		max := decimal.NewFromInt(int64(e.RangeMax))
		if uvr.Cmp(min) >= 0 && uvr.Cmp(max) <= 0 {
			return e, true
		}
	}
	return RangeEntry{}, false
}

// Max returns the highest tabulated UVR bound, or 0 for an empty table.
func (t *Table) Max() int {
	if len(t.Entries) == 0 {
		return 0
	}
	return t.Entries[len(t.Entries)-1].RangeMax
}

// Rates are the per-UVR professional fee rates.
type Rates struct {
	SpecialistPerUVR       decimal.Decimal
	GeneralPerUVR          decimal.Decimal
	AnesthesiologistPerUVR decimal.Decimal
	AssistantPerUVR        decimal.Decimal
}

// Overflow holds the per-UVR formulas applied above the operating-room
// table maximum, with the line codes used for formula-priced lines.
type Overflow struct {
	RoomRightsPerUVR decimal.Decimal
	RoomRightsCode   string
	MaterialsPerUVR  decimal.Decimal
	MaterialsCode    string
}

// FixedMaterial is a flat material charge used by procedure rooms,
// priced per procedure rather than by UVR range.
type FixedMaterial struct {
	Code  string
	Value decimal.Decimal
}

// LineCodes are the official codes for the professional fee lines.
type LineCodes struct {
	SurgeonSpecialist string
	SurgeonGeneral    string
	Anesthesiologist  string
	Assistant         string
}

// Schedule is one complete tariff schedule version.
type Schedule struct {
	Version string
	Source  string

	Rates     Rates
	Overflow  Overflow
	LineCodes LineCodes

	SpecialRoomMaterials FixedMaterial
	BasicRoomMaterials   FixedMaterial

	OperatingRoomRights    Table
	SpecialRoomRights      Table
	BasicRoomRights        Table
	OperatingRoomMaterials Table
}

// Validate checks structural soundness of the schedule: every table must
// have ascending, non-overlapping ranges and non-negative values, and
// every rate and line code must be present.
func (s *Schedule) Validate() error {
	if s.Version == "" {
		return fmt.Errorf("schedule version is required")
	}
	for _, t := range []*Table{
		&s.OperatingRoomRights,
		&s.SpecialRoomRights,
		&s.BasicRoomRights,
		&s.OperatingRoomMaterials,
	} {
		if err := validateTable(t); err != nil {
			return err
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"specialist_per_uvr":           s.Rates.SpecialistPerUVR,
		"general_practitioner_per_uvr": s.Rates.GeneralPerUVR,
		"anesthesiologist_per_uvr":     s.Rates.AnesthesiologistPerUVR,
		"assistant_per_uvr":            s.Rates.AssistantPerUVR,
		"overflow room_rights_per_uvr": s.Overflow.RoomRightsPerUVR,
		"overflow materials_per_uvr":   s.Overflow.MaterialsPerUVR,
		"special_room materials value": s.SpecialRoomMaterials.Value,
		"basic_room materials value":   s.BasicRoomMaterials.Value,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	for name, c := range map[string]string{
		"surgeon_specialist":   s.LineCodes.SurgeonSpecialist,
		"surgeon_general":      s.LineCodes.SurgeonGeneral,
		"anesthesiologist":     s.LineCodes.Anesthesiologist,
		"assistant":            s.LineCodes.Assistant,
		"special_room materials": s.SpecialRoomMaterials.Code,
		"basic_room materials":   s.BasicRoomMaterials.Code,
	} {
		if c == "" {
			return fmt.Errorf("line code %s is required", name)
		}
	}
	return nil
}

func validateTable(t *Table) error {
	if len(t.Entries) == 0 {
		return fmt.Errorf("table %s: no range entries", t.Name)
	}
	prev := -1
	for i, e := range t.Entries {
		if e.Code == "" {
			return fmt.Errorf("table %s entry %d: code is required", t.Name, i)
		}
		if e.RangeMin > e.RangeMax {
			return fmt.Errorf("table %s entry %s: range [%d,%d] inverted", t.Name, e.Code, e.RangeMin, e.RangeMax)
		}
		if e.RangeMin <= prev {
			return fmt.Errorf("table %s entry %s: range [%d,%d] overlaps or descends", t.Name, e.Code, e.RangeMin, e.RangeMax)
		}
		if e.Value.IsNegative() {
			return fmt.Errorf("table %s entry %s: negative value", t.Name, e.Code)
		}
		prev = e.RangeMax
	}
	return nil
}
