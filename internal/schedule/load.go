package schedule

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed iss2001.yaml
var iss2001YAML []byte

// yamlSchedule is the on-disk YAML structure. Monetary values are whole
// pesos in the source schedule, carried as integers in the document and
// converted to decimal on load.
type yamlSchedule struct {
	Version string `yaml:"version"`
	Source  string `yaml:"source"`

	Rates struct {
		Specialist       int64 `yaml:"specialist_per_uvr"`
		General          int64 `yaml:"general_practitioner_per_uvr"`
		Anesthesiologist int64 `yaml:"anesthesiologist_per_uvr"`
		Assistant        int64 `yaml:"assistant_per_uvr"`
	} `yaml:"rates"`

	Overflow struct {
		RoomRightsPerUVR int64  `yaml:"room_rights_per_uvr"`
		RoomRightsCode   string `yaml:"room_rights_code"`
		MaterialsPerUVR  int64  `yaml:"materials_per_uvr"`
		MaterialsCode    string `yaml:"materials_code"`
	} `yaml:"overflow"`

	LineCodes struct {
		SurgeonSpecialist string `yaml:"surgeon_specialist"`
		SurgeonGeneral    string `yaml:"surgeon_general"`
		Anesthesiologist  string `yaml:"anesthesiologist"`
		Assistant         string `yaml:"assistant"`
	} `yaml:"line_codes"`

	FixedMaterials struct {
		SpecialRoom yamlFixed `yaml:"special_room"`
		BasicRoom   yamlFixed `yaml:"basic_room"`
	} `yaml:"fixed_materials"`

	Tables struct {
		OperatingRoomRights    []yamlRange `yaml:"operating_room_rights"`
		SpecialRoomRights      []yamlRange `yaml:"special_room_rights"`
		BasicRoomRights        []yamlRange `yaml:"basic_room_rights"`
		OperatingRoomMaterials []yamlRange `yaml:"operating_room_materials"`
	} `yaml:"tables"`
}

type yamlFixed struct {
	Code  string `yaml:"code"`
	Value int64  `yaml:"value"`
}

type yamlRange struct {
	Min   int    `yaml:"min"`
	Max   int    `yaml:"max"`
	Code  string `yaml:"code"`
	Value int64  `yaml:"value"`
}

// Load parses and validates a YAML schedule document.
func Load(data []byte) (*Schedule, error) {
	var ys yamlSchedule
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}

	s := &Schedule{
		Version: ys.Version,
		Source:  ys.Source,
		Rates: Rates{
			SpecialistPerUVR:       decimal.NewFromInt(ys.Rates.Specialist),
			GeneralPerUVR:          decimal.NewFromInt(ys.Rates.General),
			AnesthesiologistPerUVR: decimal.NewFromInt(ys.Rates.Anesthesiologist),
			AssistantPerUVR:        decimal.NewFromInt(ys.Rates.Assistant),
		},
		Overflow: Overflow{
			RoomRightsPerUVR: decimal.NewFromInt(ys.Overflow.RoomRightsPerUVR),
			RoomRightsCode:   ys.Overflow.RoomRightsCode,
			MaterialsPerUVR:  decimal.NewFromInt(ys.Overflow.MaterialsPerUVR),
			MaterialsCode:    ys.Overflow.MaterialsCode,
		},
		LineCodes: LineCodes{
			SurgeonSpecialist: ys.LineCodes.SurgeonSpecialist,
			SurgeonGeneral:    ys.LineCodes.SurgeonGeneral,
			Anesthesiologist:  ys.LineCodes.Anesthesiologist,
			Assistant:         ys.LineCodes.Assistant,
		},
		SpecialRoomMaterials: FixedMaterial{
			Code:  ys.FixedMaterials.SpecialRoom.Code,
			Value: decimal.NewFromInt(ys.FixedMaterials.SpecialRoom.Value),
		},
		BasicRoomMaterials: FixedMaterial{
			Code:  ys.FixedMaterials.BasicRoom.Code,
			Value: decimal.NewFromInt(ys.FixedMaterials.BasicRoom.Value),
		},
		OperatingRoomRights:    toTable("operating_room_rights", ys.Tables.OperatingRoomRights),
		SpecialRoomRights:      toTable("special_room_rights", ys.Tables.SpecialRoomRights),
		BasicRoomRights:        toTable("basic_room_rights", ys.Tables.BasicRoomRights),
		OperatingRoomMaterials: toTable("operating_room_materials", ys.Tables.OperatingRoomMaterials),
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate schedule: %w", err)
	}
	return s, nil
}

// LoadFile loads a schedule from an external YAML file, for tariff
// versions other than the embedded default.
func LoadFile(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	return Load(data)
}

// Default returns the embedded ISS-2001 (Acuerdo 256) schedule.
func Default() (*Schedule, error) {
	return Load(iss2001YAML)
}

func toTable(name string, ranges []yamlRange) Table {
	t := Table{Name: name, Entries: make([]RangeEntry, len(ranges))}
	for i, r := range ranges {
		t.Entries[i] = RangeEntry{
			RangeMin: r.Min,
			RangeMax: r.Max,
			Code:     r.Code,
			Value:    decimal.NewFromInt(r.Value),
		}
	}
	return t
}
