package liquidation_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/neuraudit/issliq/internal/liquidation"
	"github.com/neuraudit/issliq/internal/schedule"
)

func defaultCalc(t *testing.T) *liquidation.Calculator {
	t.Helper()
	s, err := schedule.Default()
	if err != nil {
		t.Fatalf("load default schedule: %v", err)
	}
	return liquidation.New(s)
}

// baseRequest is the reference case: 80 UVR specialist surgery under
// general anesthesia with an assistant, base tariff, no Article 134.
func baseRequest() liquidation.ProcedureRequest {
	return liquidation.ProcedureRequest{
		Code:                  "890201",
		Description:           "Colecistectomía por laparoscopia",
		UVRWeight:             decimal.NewFromInt(80),
		ContractUpliftPercent: decimal.Zero,
		SurgeonType:           liquidation.SurgeonSpecialist,
		AnesthesiaType:        liquidation.AnesthesiaGeneralOrRegional,
		RoomType:              liquidation.RoomOperating,
		HasSurgicalAssistant:  true,
		AppliesArticle134:     false,
	}
}

func lineByConcept(t *testing.T, res liquidation.Result, concept string) liquidation.LineItem {
	t.Helper()
	for _, l := range res.Lines {
		if l.Concept == concept {
			return l
		}
	}
	t.Fatalf("no line with concept %q in %+v", concept, res.Lines)
	return liquidation.LineItem{}
}

func hasConcept(res liquidation.Result, concept string) bool {
	for _, l := range res.Lines {
		if l.Concept == concept {
			return true
		}
	}
	return false
}

func wantAmount(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("amount = %s, want %s", got, want)
	}
}

func TestCalculateBaseCase(t *testing.T) {
	res := defaultCalc(t).Calculate(baseRequest())

	if len(res.Lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %+v", len(res.Lines), res.Lines)
	}

	surgeon := lineByConcept(t, res, liquidation.ConceptSurgeon)
	if surgeon.Code != "S41101" {
		t.Errorf("surgeon code = %s, want S41101", surgeon.Code)
	}
	wantAmount(t, surgeon.Amount, "101600")

	anesthesiologist := lineByConcept(t, res, liquidation.ConceptAnesthesiologist)
	if anesthesiologist.Code != "S41201" {
		t.Errorf("anesthesiologist code = %s, want S41201", anesthesiologist.Code)
	}
	wantAmount(t, anesthesiologist.Amount, "76800")

	assistant := lineByConcept(t, res, liquidation.ConceptAssistant)
	if assistant.Code != "S41301" {
		t.Errorf("assistant code = %s, want S41301", assistant.Code)
	}
	wantAmount(t, assistant.Amount, "28800")

	room := lineByConcept(t, res, liquidation.ConceptRoomRights)
	if room.Code != "S23205" {
		t.Errorf("room rights code = %s, want S23205", room.Code)
	}
	wantAmount(t, room.Amount, "114830")

	materials := lineByConcept(t, res, liquidation.ConceptMaterials)
	if materials.Code != "S55107" {
		t.Errorf("materials code = %s, want S55107", materials.Code)
	}
	wantAmount(t, materials.Amount, "88610")

	wantAmount(t, res.Total, "410640")

	for _, l := range res.Lines {
		if !l.Percentage.Equal(decimal.NewFromInt(100)) {
			t.Errorf("line %s percentage = %s, want 100", l.Code, l.Percentage)
		}
	}
}

func TestCalculateLocalAnesthesiaZero(t *testing.T) {
	req := baseRequest()
	req.AnesthesiaType = liquidation.AnesthesiaLocal
	res := defaultCalc(t).Calculate(req)

	anesthesiologist := lineByConcept(t, res, liquidation.ConceptAnesthesiologist)
	if !anesthesiologist.Amount.IsZero() {
		t.Errorf("local anesthesia amount = %s, want 0", anesthesiologist.Amount)
	}
	if anesthesiologist.Code != "S41201" {
		t.Errorf("anesthesiologist code = %s, want S41201", anesthesiologist.Code)
	}
	if anesthesiologist.Description == "" {
		t.Error("zero anesthesiologist line should carry an explanation")
	}
	wantAmount(t, res.Total, "333840")
}

func TestCalculateBasicRoomGatesAssistant(t *testing.T) {
	req := baseRequest()
	req.RoomType = liquidation.RoomBasicProcedure
	res := defaultCalc(t).Calculate(req)

	assistant := lineByConcept(t, res, liquidation.ConceptAssistant)
	if !assistant.Amount.IsZero() {
		t.Errorf("assistant amount outside operating room = %s, want 0", assistant.Amount)
	}
	if assistant.Description == "" {
		t.Error("gated assistant line should carry an explanation")
	}

	// 80 UVR is outside the basic table's two ranges (0-20, 21-30).
	room := lineByConcept(t, res, liquidation.ConceptRoomRights)
	if !room.Amount.IsZero() {
		t.Errorf("out-of-range room rights = %s, want 0", room.Amount)
	}
	if room.Description == "" {
		t.Error("out-of-range room line should carry an explanation")
	}

	materials := lineByConcept(t, res, liquidation.ConceptMaterials)
	if materials.Code != "S55115" {
		t.Errorf("basic room materials code = %s, want S55115", materials.Code)
	}
	wantAmount(t, materials.Amount, "10350")

	wantAmount(t, res.Total, "188750")
}

func TestCalculateOverflowAboveTableMax(t *testing.T) {
	req := baseRequest()
	req.UVRWeight = decimal.NewFromInt(200)
	res := defaultCalc(t).Calculate(req)

	room := lineByConcept(t, res, liquidation.ConceptRoomRights)
	wantAmount(t, room.Amount, "282000") // 200 × 1410

	materials := lineByConcept(t, res, liquidation.ConceptMaterials)
	wantAmount(t, materials.Amount, "207000") // 200 × 1035

	wantAmount(t, res.Total, "1007000")
}

func TestCalculateUpliftAndArticle134(t *testing.T) {
	req := liquidation.ProcedureRequest{
		Code:                  "860101",
		UVRWeight:             decimal.NewFromInt(20),
		ContractUpliftPercent: decimal.NewFromInt(50),
		SurgeonType:           liquidation.SurgeonGeneral,
		AnesthesiaType:        liquidation.AnesthesiaNone,
		RoomType:              liquidation.RoomOperating,
		HasSurgicalAssistant:  false,
		AppliesArticle134:     true,
	}
	res := defaultCalc(t).Calculate(req)

	wantAmount(t, res.UpliftFactor, "1.5")
	wantAmount(t, res.Article134Factor, "1.3")

	if len(res.Lines) != 3 {
		t.Fatalf("expected 3 lines (no anesthesiologist, no assistant), got %d", len(res.Lines))
	}

	surgeon := lineByConcept(t, res, liquidation.ConceptSurgeon)
	if surgeon.Code != "S41401" {
		t.Errorf("general practitioner surgeon code = %s, want S41401", surgeon.Code)
	}
	wantAmount(t, surgeon.Amount, "31590") // 20 × 810 × 1.5 × 1.3

	room := lineByConcept(t, res, liquidation.ConceptRoomRights)
	if room.Code != "S23101" {
		t.Errorf("room rights code = %s, want S23101", room.Code)
	}
	wantAmount(t, room.Amount, "25135.5") // 12890 × 1.5 × 1.3

	materials := lineByConcept(t, res, liquidation.ConceptMaterials)
	if materials.Code != "S55101" {
		t.Errorf("materials code = %s, want S55101", materials.Code)
	}
	wantAmount(t, materials.Amount, "9525") // 6350 × 1.5, no Article 134

	wantAmount(t, res.Total, "66250.5")
}

// requestGrid spans every enum branch plus boundary and fractional UVR
// weights, including 20.5 which falls in the gap between integer-bounded
// ranges and 171 which crosses into the overflow formula.
func requestGrid() []liquidation.ProcedureRequest {
	uvrs := []string{"0", "5.5", "20", "20.5", "30", "80", "170", "171", "500"}
	uplifts := []string{"0", "12.5"}
	var reqs []liquidation.ProcedureRequest
	for _, uvr := range uvrs {
		for _, up := range uplifts {
			for _, st := range []liquidation.SurgeonType{liquidation.SurgeonSpecialist, liquidation.SurgeonGeneral} {
				for _, at := range []liquidation.AnesthesiaType{liquidation.AnesthesiaGeneralOrRegional, liquidation.AnesthesiaLocal, liquidation.AnesthesiaNone} {
					for _, rt := range []liquidation.RoomType{liquidation.RoomOperating, liquidation.RoomSpecialProcedure, liquidation.RoomBasicProcedure} {
						for _, assistant := range []bool{true, false} {
							for _, art134 := range []bool{true, false} {
								reqs = append(reqs, liquidation.ProcedureRequest{
									Code:                  "890201",
									UVRWeight:             decimal.RequireFromString(uvr),
									ContractUpliftPercent: decimal.RequireFromString(up),
									SurgeonType:           st,
									AnesthesiaType:        at,
									RoomType:              rt,
									HasSurgicalAssistant:  assistant,
									AppliesArticle134:     art134,
								})
							}
						}
					}
				}
			}
		}
	}
	return reqs
}

func TestCalculateDeterminism(t *testing.T) {
	calc := defaultCalc(t)
	for _, req := range requestGrid() {
		a := calc.Calculate(req)
		b := calc.Calculate(req)
		ja, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		jb, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(ja) != string(jb) {
			t.Fatalf("non-deterministic result for %+v:\n%s\n%s", req, ja, jb)
		}
	}
}

func TestCalculateTotalAdditivity(t *testing.T) {
	calc := defaultCalc(t)
	for _, req := range requestGrid() {
		res := calc.Calculate(req)
		sum := decimal.Zero
		for _, l := range res.Lines {
			if l.Amount.IsNegative() {
				t.Fatalf("negative line amount %s for %+v", l.Amount, req)
			}
			sum = sum.Add(l.Amount)
		}
		if !sum.Equal(res.Total) {
			t.Fatalf("total %s != line sum %s for %+v", res.Total, sum, req)
		}
	}
}

func TestCalculateLocalAnesthesiaNeverBilled(t *testing.T) {
	calc := defaultCalc(t)
	for _, req := range requestGrid() {
		if req.AnesthesiaType != liquidation.AnesthesiaLocal {
			continue
		}
		res := calc.Calculate(req)
		line := lineByConcept(t, res, liquidation.ConceptAnesthesiologist)
		if !line.Amount.IsZero() {
			t.Fatalf("local anesthesia billed %s for %+v", line.Amount, req)
		}
	}
}

func TestCalculateAssistantRoomGating(t *testing.T) {
	calc := defaultCalc(t)
	for _, req := range requestGrid() {
		if !req.HasSurgicalAssistant {
			continue
		}
		res := calc.Calculate(req)
		line := lineByConcept(t, res, liquidation.ConceptAssistant)

		if req.RoomType != liquidation.RoomOperating {
			if !line.Amount.IsZero() {
				t.Fatalf("assistant billed %s outside operating room for %+v", line.Amount, req)
			}
			continue
		}

		uplift := decimal.NewFromInt(1).Add(req.ContractUpliftPercent.Div(decimal.NewFromInt(100)))
		art134 := decimal.NewFromInt(1)
		if req.AppliesArticle134 {
			art134 = decimal.RequireFromString("1.3")
		}
		want := req.UVRWeight.Mul(decimal.NewFromInt(360)).Mul(uplift).Mul(art134)
		if !line.Amount.Equal(want) {
			t.Fatalf("assistant amount %s, want %s for %+v", line.Amount, want, req)
		}
	}
}

func TestArticle134NeverChangesMaterials(t *testing.T) {
	calc := defaultCalc(t)
	for _, req := range requestGrid() {
		if req.AppliesArticle134 {
			continue
		}
		with := req
		with.AppliesArticle134 = true

		matOff := lineByConcept(t, calc.Calculate(req), liquidation.ConceptMaterials)
		matOn := lineByConcept(t, calc.Calculate(with), liquidation.ConceptMaterials)
		if !matOff.Amount.Equal(matOn.Amount) {
			t.Fatalf("Article 134 changed materials %s → %s for %+v", matOff.Amount, matOn.Amount, req)
		}
	}
}

func TestCalculateLineOmissionRules(t *testing.T) {
	calc := defaultCalc(t)

	req := baseRequest()
	req.AnesthesiaType = liquidation.AnesthesiaNone
	if hasConcept(calc.Calculate(req), liquidation.ConceptAnesthesiologist) {
		t.Error("anesthesiologist line should be omitted for NONE")
	}

	req = baseRequest()
	req.HasSurgicalAssistant = false
	if hasConcept(calc.Calculate(req), liquidation.ConceptAssistant) {
		t.Error("assistant line should be omitted when no assistant participated")
	}
}

// The table value at 170 UVR (239750) and the overflow formula just
// above it (171 × 1410 = 241110) come straight from the schedule data;
// the step between them is reference-data behavior, not something the
// calculator smooths.
func TestOverflowBoundary(t *testing.T) {
	calc := defaultCalc(t)

	req := baseRequest()
	req.UVRWeight = decimal.NewFromInt(170)
	room := lineByConcept(t, calc.Calculate(req), liquidation.ConceptRoomRights)
	if room.Code != "S23214" {
		t.Errorf("at 170 UVR room code = %s, want table entry S23214", room.Code)
	}
	wantAmount(t, room.Amount, "239750")

	req.UVRWeight = decimal.NewFromInt(171)
	room = lineByConcept(t, calc.Calculate(req), liquidation.ConceptRoomRights)
	wantAmount(t, room.Amount, "241110")
}

func TestCalculateGapUVRDegradesToZero(t *testing.T) {
	req := baseRequest()
	req.UVRWeight = decimal.RequireFromString("20.5")
	res := defaultCalc(t).Calculate(req)

	room := lineByConcept(t, res, liquidation.ConceptRoomRights)
	if !room.Amount.IsZero() {
		t.Errorf("room rights in range gap = %s, want 0", room.Amount)
	}
	materials := lineByConcept(t, res, liquidation.ConceptMaterials)
	if !materials.Amount.IsZero() {
		t.Errorf("materials in range gap = %s, want 0", materials.Amount)
	}
}
