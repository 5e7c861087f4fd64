// Package liquidation implements the ISS-2001 surgical tariff
// liquidation: an itemized monetary breakdown (surgeon, anesthesiologist,
// surgical assistant, room rights, materials) for a procedure, computed
// from its UVR weight and the contractual parameters of the claim.
package liquidation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SurgeonType selects the per-UVR rate applied to surgeon fees.
type SurgeonType string

const (
	SurgeonSpecialist SurgeonType = "SPECIALIST"
	SurgeonGeneral    SurgeonType = "GENERAL_PRACTITIONER"
)

// AnesthesiaType determines whether anesthesiologist fees apply.
type AnesthesiaType string

const (
	AnesthesiaGeneralOrRegional AnesthesiaType = "GENERAL_OR_REGIONAL"
	AnesthesiaLocal             AnesthesiaType = "LOCAL"
	AnesthesiaNone              AnesthesiaType = "NONE"
)

// RoomType selects the tariff table set for room rights and materials.
type RoomType string

const (
	RoomOperating        RoomType = "OPERATING_ROOM"
	RoomSpecialProcedure RoomType = "SPECIAL_PROCEDURE_ROOM"
	RoomBasicProcedure   RoomType = "BASIC_PROCEDURE_ROOM"
)

// ParseSurgeonType returns the SurgeonType for a raw string, or an error
// for anything outside the closed set.
func ParseSurgeonType(s string) (SurgeonType, error) {
	switch SurgeonType(strings.ToUpper(strings.TrimSpace(s))) {
	case SurgeonSpecialist:
		return SurgeonSpecialist, nil
	case SurgeonGeneral:
		return SurgeonGeneral, nil
	}
	return "", fmt.Errorf("unknown surgeon type %q", s)
}

// ParseAnesthesiaType returns the AnesthesiaType for a raw string.
func ParseAnesthesiaType(s string) (AnesthesiaType, error) {
	switch AnesthesiaType(strings.ToUpper(strings.TrimSpace(s))) {
	case AnesthesiaGeneralOrRegional:
		return AnesthesiaGeneralOrRegional, nil
	case AnesthesiaLocal:
		return AnesthesiaLocal, nil
	case AnesthesiaNone:
		return AnesthesiaNone, nil
	}
	return "", fmt.Errorf("unknown anesthesia type %q", s)
}

// ParseRoomType returns the RoomType for a raw string.
func ParseRoomType(s string) (RoomType, error) {
	switch RoomType(strings.ToUpper(strings.TrimSpace(s))) {
	case RoomOperating:
		return RoomOperating, nil
	case RoomSpecialProcedure:
		return RoomSpecialProcedure, nil
	case RoomBasicProcedure:
		return RoomBasicProcedure, nil
	}
	return "", fmt.Errorf("unknown room type %q", s)
}

// ProcedureRequest is the immutable input to one liquidation.
type ProcedureRequest struct {
	Code                  string
	Description           string
	UVRWeight             decimal.Decimal
	ContractUpliftPercent decimal.Decimal
	SurgeonType           SurgeonType
	AnesthesiaType        AnesthesiaType
	RoomType              RoomType
	HasSurgicalAssistant  bool
	AppliesArticle134     bool
}

// Validate enforces the caller-side preconditions of Calculate: a
// procedure code, a non-negative UVR weight and uplift, and enum fields
// inside their closed sets. Calculate assumes these hold.
func (r *ProcedureRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return fmt.Errorf("procedure code is required")
	}
	if r.UVRWeight.IsNegative() {
		return fmt.Errorf("uvr weight must not be negative, got %s", r.UVRWeight)
	}
	if r.ContractUpliftPercent.IsNegative() {
		return fmt.Errorf("contract uplift percent must not be negative, got %s", r.ContractUpliftPercent)
	}
	if _, err := ParseSurgeonType(string(r.SurgeonType)); err != nil {
		return err
	}
	if _, err := ParseAnesthesiaType(string(r.AnesthesiaType)); err != nil {
		return err
	}
	if _, err := ParseRoomType(string(r.RoomType)); err != nil {
		return err
	}
	return nil
}

// LineItem is one fee component of a liquidation. A zero Amount with an
// explanatory Description means the fee category applied but was not
// billable by rule; fully inapplicable categories are omitted instead.
type LineItem struct {
	Code        string          `json:"code"`
	Concept     string          `json:"concept"`
	Description string          `json:"description"`
	Percentage  decimal.Decimal `json:"percentage"`
	Amount      decimal.Decimal `json:"amount"`
}

// Result is the itemized liquidation for one procedure.
type Result struct {
	Code             string          `json:"code"`
	Description      string          `json:"description"`
	UVRWeight        decimal.Decimal `json:"uvr_weight"`
	ScheduleVersion  string          `json:"schedule_version"`
	UpliftFactor     decimal.Decimal `json:"uplift_factor"`
	Article134Factor decimal.Decimal `json:"article_134_factor"`
	Lines            []LineItem      `json:"lines"`
	Total            decimal.Decimal `json:"total"`
}
