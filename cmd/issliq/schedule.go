package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neuraudit/issliq/internal/logging"
	"github.com/neuraudit/issliq/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the loaded tariff schedule",
	Long:  "Loads and validates the tariff schedule (embedded ISS-2001 or --schedule file) and prints its rates and range tables.",
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	s := loadSchedule(log)

	fmt.Printf("=== Tarifario %s (%s) ===\n\n", s.Version, s.Source)
	fmt.Println("Honorarios por UVR:")
	fmt.Printf("  cirujano especialista  %8s  (%s)\n", s.Rates.SpecialistPerUVR, s.LineCodes.SurgeonSpecialist)
	fmt.Printf("  médico general         %8s  (%s)\n", s.Rates.GeneralPerUVR, s.LineCodes.SurgeonGeneral)
	fmt.Printf("  anestesiólogo          %8s  (%s)\n", s.Rates.AnesthesiologistPerUVR, s.LineCodes.Anesthesiologist)
	fmt.Printf("  ayudantía              %8s  (%s)\n", s.Rates.AssistantPerUVR, s.LineCodes.Assistant)
	fmt.Println()
	fmt.Printf("Fórmula sobre %d UVR: derechos de sala %s/UVR (%s), materiales %s/UVR (%s)\n",
		s.OperatingRoomRights.Max(),
		s.Overflow.RoomRightsPerUVR, s.Overflow.RoomRightsCode,
		s.Overflow.MaterialsPerUVR, s.Overflow.MaterialsCode)
	fmt.Printf("Materiales valor fijo: sala especial %s (%s), sala básica %s (%s)\n\n",
		s.SpecialRoomMaterials.Value, s.SpecialRoomMaterials.Code,
		s.BasicRoomMaterials.Value, s.BasicRoomMaterials.Code)

	for _, t := range []*schedule.Table{
		&s.OperatingRoomRights,
		&s.SpecialRoomRights,
		&s.BasicRoomRights,
		&s.OperatingRoomMaterials,
	} {
		fmt.Printf("%s (%d rangos):\n", t.Name, len(t.Entries))
		for _, e := range t.Entries {
			fmt.Printf("  %-8s %3d-%3d UVR  %12s\n", e.Code, e.RangeMin, e.RangeMax, e.Value)
		}
		fmt.Println()
	}
	return nil
}
