package liquidation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/neuraudit/issliq/internal/schedule"
)

// Concept labels for the five fee components.
const (
	ConceptSurgeon          = "Cirujano"
	ConceptAnesthesiologist = "Anestesiólogo"
	ConceptAssistant        = "Ayudantía quirúrgica"
	ConceptRoomRights       = "Derechos de sala"
	ConceptMaterials        = "Materiales"
)

// outOfRangeCode labels room-rights lines for UVR weights that fall
// outside every tabulated range of a table without an overflow formula.
const outOfRangeCode = "S00000"

var (
	one            = decimal.NewFromInt(1)
	hundred        = decimal.NewFromInt(100)
	article134Rate = decimal.New(13, -1) // 1.3
)

// Calculator liquidates procedures against one tariff schedule version.
// It is stateless apart from the immutable schedule, so a single
// Calculator may be shared across any number of goroutines.
type Calculator struct {
	sched *schedule.Schedule
}

// New returns a Calculator bound to the given schedule.
func New(s *schedule.Schedule) *Calculator {
	return &Calculator{sched: s}
}

// Calculate produces the itemized liquidation for req. It is pure and
// total: no I/O, no error path. Callers are expected to have validated
// req (see ProcedureRequest.Validate); the UVR weight is assumed to be a
// valid non-negative decimal.
func (c *Calculator) Calculate(req ProcedureRequest) Result {
	uplift := one.Add(req.ContractUpliftPercent.Div(hundred))
	art134 := one
	if req.AppliesArticle134 {
		art134 = article134Rate
	}

	res := Result{
		Code:             req.Code,
		Description:      req.Description,
		UVRWeight:        req.UVRWeight,
		ScheduleVersion:  c.sched.Version,
		UpliftFactor:     uplift,
		Article134Factor: art134,
	}

	res.Lines = append(res.Lines, c.surgeonLine(req, uplift, art134))
	if line, ok := c.anesthesiologistLine(req, uplift, art134); ok {
		res.Lines = append(res.Lines, line)
	}
	if line, ok := c.assistantLine(req, uplift, art134); ok {
		res.Lines = append(res.Lines, line)
	}
	res.Lines = append(res.Lines, c.roomRightsLine(req, uplift, art134))
	res.Lines = append(res.Lines, c.materialsLine(req, uplift))

	total := decimal.Zero
	for _, l := range res.Lines {
		total = total.Add(l.Amount)
	}
	res.Total = total
	return res
}

func (c *Calculator) surgeonLine(req ProcedureRequest, uplift, art134 decimal.Decimal) LineItem {
	code := c.sched.LineCodes.SurgeonSpecialist
	rate := c.sched.Rates.SpecialistPerUVR
	desc := "Honorarios cirujano especialista"
	if req.SurgeonType == SurgeonGeneral {
		code = c.sched.LineCodes.SurgeonGeneral
		rate = c.sched.Rates.GeneralPerUVR
		desc = "Honorarios médico general"
	}
	return LineItem{
		Code:        code,
		Concept:     ConceptSurgeon,
		Description: desc,
		Percentage:  hundred,
		Amount:      req.UVRWeight.Mul(rate).Mul(uplift).Mul(art134),
	}
}

// anesthesiologistLine is emitted for general/regional anesthesia (full
// fee) and for local anesthesia (zero amount: local anesthesia is never
// a separate billable fee). No anesthesia means no line at all.
func (c *Calculator) anesthesiologistLine(req ProcedureRequest, uplift, art134 decimal.Decimal) (LineItem, bool) {
	switch req.AnesthesiaType {
	case AnesthesiaGeneralOrRegional:
		return LineItem{
			Code:        c.sched.LineCodes.Anesthesiologist,
			Concept:     ConceptAnesthesiologist,
			Description: "Honorarios anestesiólogo",
			Percentage:  hundred,
			Amount:      req.UVRWeight.Mul(c.sched.Rates.AnesthesiologistPerUVR).Mul(uplift).Mul(art134),
		}, true
	case AnesthesiaLocal:
		return LineItem{
			Code:        c.sched.LineCodes.Anesthesiologist,
			Concept:     ConceptAnesthesiologist,
			Description: "Anestesia local: no facturable como honorario separado",
			Percentage:  hundred,
			Amount:      decimal.Zero,
		}, true
	}
	return LineItem{}, false
}

// assistantLine applies only when an assistant participated; the fee is
// billable only for operating-room procedures.
func (c *Calculator) assistantLine(req ProcedureRequest, uplift, art134 decimal.Decimal) (LineItem, bool) {
	if !req.HasSurgicalAssistant {
		return LineItem{}, false
	}
	if req.RoomType != RoomOperating {
		return LineItem{
			Code:        c.sched.LineCodes.Assistant,
			Concept:     ConceptAssistant,
			Description: "Ayudantía solo facturable en sala de cirugía",
			Percentage:  hundred,
			Amount:      decimal.Zero,
		}, true
	}
	return LineItem{
		Code:        c.sched.LineCodes.Assistant,
		Concept:     ConceptAssistant,
		Description: "Honorarios ayudantía quirúrgica",
		Percentage:  hundred,
		Amount:      req.UVRWeight.Mul(c.sched.Rates.AssistantPerUVR).Mul(uplift).Mul(art134),
	}, true
}

func (c *Calculator) roomRightsLine(req ProcedureRequest, uplift, art134 decimal.Decimal) LineItem {
	var table *schedule.Table
	var roomDesc string
	overflow := false
	switch req.RoomType {
	case RoomSpecialProcedure:
		table = &c.sched.SpecialRoomRights
		roomDesc = "sala especial de procedimientos"
	case RoomBasicProcedure:
		table = &c.sched.BasicRoomRights
		roomDesc = "sala básica de procedimientos"
	default:
		table = &c.sched.OperatingRoomRights
		roomDesc = "sala de cirugía"
		overflow = true
	}

	if overflow && req.UVRWeight.Cmp(decimal.NewFromInt(int64(table.Max()))) > 0 {
		return LineItem{
			Code:        c.sched.Overflow.RoomRightsCode,
			Concept:     ConceptRoomRights,
			Description: fmt.Sprintf("Derechos de %s, liquidación por fórmula (>%d UVR)", roomDesc, table.Max()),
			Percentage:  hundred,
			Amount:      req.UVRWeight.Mul(c.sched.Overflow.RoomRightsPerUVR).Mul(uplift).Mul(art134),
		}
	}

	entry, ok := table.Find(req.UVRWeight)
	if !ok {
		return LineItem{
			Code:        outOfRangeCode,
			Concept:     ConceptRoomRights,
			Description: fmt.Sprintf("Derechos de %s: UVR fuera de rango tarifario", roomDesc),
			Percentage:  hundred,
			Amount:      decimal.Zero,
		}
	}
	return LineItem{
		Code:        entry.Code,
		Concept:     ConceptRoomRights,
		Description: fmt.Sprintf("Derechos de %s, rango %d-%d UVR", roomDesc, entry.RangeMin, entry.RangeMax),
		Percentage:  hundred,
		Amount:      entry.Value.Mul(uplift).Mul(art134),
	}
}

// materialsLine never carries the Article 134 factor. Procedure rooms
// bill a fixed material value; the operating room bills by UVR range,
// with the per-UVR formula above the table maximum.
func (c *Calculator) materialsLine(req ProcedureRequest, uplift decimal.Decimal) LineItem {
	switch req.RoomType {
	case RoomSpecialProcedure:
		return LineItem{
			Code:        c.sched.SpecialRoomMaterials.Code,
			Concept:     ConceptMaterials,
			Description: "Materiales sala especial de procedimientos, valor fijo",
			Percentage:  hundred,
			Amount:      c.sched.SpecialRoomMaterials.Value.Mul(uplift),
		}
	case RoomBasicProcedure:
		return LineItem{
			Code:        c.sched.BasicRoomMaterials.Code,
			Concept:     ConceptMaterials,
			Description: "Materiales sala básica de procedimientos, valor fijo",
			Percentage:  hundred,
			Amount:      c.sched.BasicRoomMaterials.Value.Mul(uplift),
		}
	}

	table := &c.sched.OperatingRoomMaterials
	if req.UVRWeight.Cmp(decimal.NewFromInt(int64(table.Max()))) > 0 {
		return LineItem{
			Code:        c.sched.Overflow.MaterialsCode,
			Concept:     ConceptMaterials,
			Description: fmt.Sprintf("Materiales de cirugía, liquidación por fórmula (>%d UVR)", table.Max()),
			Percentage:  hundred,
			Amount:      req.UVRWeight.Mul(c.sched.Overflow.MaterialsPerUVR).Mul(uplift),
		}
	}

	entry, ok := table.Find(req.UVRWeight)
	if !ok {
		return LineItem{
			Code:        outOfRangeCode,
			Concept:     ConceptMaterials,
			Description: "Materiales de cirugía: UVR fuera de rango tarifario",
			Percentage:  hundred,
			Amount:      decimal.Zero,
		}
	}
	return LineItem{
		Code:        entry.Code,
		Concept:     ConceptMaterials,
		Description: fmt.Sprintf("Materiales de cirugía, rango %d-%d UVR", entry.RangeMin, entry.RangeMax),
		Percentage:  hundred,
		Amount:      entry.Value.Mul(uplift),
	}
}
