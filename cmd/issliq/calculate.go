package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/neuraudit/issliq/internal/exitcode"
	"github.com/neuraudit/issliq/internal/liquidation"
	"github.com/neuraudit/issliq/internal/logging"
	"github.com/neuraudit/issliq/internal/normalize"
)

var calcFlags struct {
	code        string
	description string
	uvr         float64
	uplift      float64
	surgeon     string
	anesthesia  string
	room        string
	assistant   bool
	article134  bool
	jsonOut     bool
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Liquidate a single procedure from flags",
	RunE:  runCalculate,
}

func init() {
	f := calculateCmd.Flags()
	f.StringVar(&calcFlags.code, "code", "", "CUPS procedure code (required)")
	f.StringVar(&calcFlags.description, "description", "", "Procedure description")
	f.Float64Var(&calcFlags.uvr, "uvr", 0, "UVR weight of the procedure (required)")
	f.Float64Var(&calcFlags.uplift, "uplift", 0, "Contract uplift percent over the base tariff")
	f.StringVar(&calcFlags.surgeon, "surgeon", string(liquidation.SurgeonSpecialist), "Surgeon type: SPECIALIST or GENERAL_PRACTITIONER")
	f.StringVar(&calcFlags.anesthesia, "anesthesia", string(liquidation.AnesthesiaGeneralOrRegional), "Anesthesia type: GENERAL_OR_REGIONAL, LOCAL or NONE")
	f.StringVar(&calcFlags.room, "room", string(liquidation.RoomOperating), "Room type: OPERATING_ROOM, SPECIAL_PROCEDURE_ROOM or BASIC_PROCEDURE_ROOM")
	f.BoolVar(&calcFlags.assistant, "assistant", false, "A surgical assistant participated")
	f.BoolVar(&calcFlags.article134, "article134", false, "Apply the Article 134 30% uplift")
	f.BoolVar(&calcFlags.jsonOut, "json", false, "Emit the liquidation as JSON")
	_ = calculateCmd.MarkFlagRequired("code")
	_ = calculateCmd.MarkFlagRequired("uvr")
	rootCmd.AddCommand(calculateCmd)
}

func runCalculate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	req, err := buildRequest()
	if err != nil {
		log.Error().Err(err).Msg("invalid procedure request")
		os.Exit(exitcode.UsageError)
	}

	sched := loadSchedule(log)
	res := liquidation.New(sched).Calculate(req)

	if calcFlags.jsonOut {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("encode result")
			os.Exit(exitcode.ValidationError)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("=== Liquidación %s ===\n", res.ScheduleVersion)
	fmt.Printf("Procedimiento: %s  %s\n", res.Code, res.Description)
	fmt.Printf("UVR: %s  Incremento contractual: %s%%  Factor Art. 134: %s\n\n",
		res.UVRWeight, req.ContractUpliftPercent, res.Article134Factor)
	for _, l := range res.Lines {
		fmt.Printf("  %-8s %-22s %14s  %s\n", l.Code, l.Concept, l.Amount.StringFixed(2), l.Description)
	}
	fmt.Printf("\nTotal: %s\n", res.Total.StringFixed(2))
	return nil
}

func buildRequest() (liquidation.ProcedureRequest, error) {
	var req liquidation.ProcedureRequest

	surgeon, err := liquidation.ParseSurgeonType(calcFlags.surgeon)
	if err != nil {
		return req, err
	}
	anesthesia, err := liquidation.ParseAnesthesiaType(calcFlags.anesthesia)
	if err != nil {
		return req, err
	}
	room, err := liquidation.ParseRoomType(calcFlags.room)
	if err != nil {
		return req, err
	}

	req = liquidation.ProcedureRequest{
		Code:                  normalize.Code(calcFlags.code),
		Description:           calcFlags.description,
		UVRWeight:             decimal.NewFromFloat(calcFlags.uvr),
		ContractUpliftPercent: decimal.NewFromFloat(calcFlags.uplift),
		SurgeonType:           surgeon,
		AnesthesiaType:        anesthesia,
		RoomType:              room,
		HasSurgicalAssistant:  calcFlags.assistant,
		AppliesArticle134:     calcFlags.article134,
	}
	if err := req.Validate(); err != nil {
		return liquidation.ProcedureRequest{}, err
	}
	return req, nil
}
