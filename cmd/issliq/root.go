package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/neuraudit/issliq/internal/config"
	"github.com/neuraudit/issliq/internal/exitcode"
	"github.com/neuraudit/issliq/internal/schedule"
)

var cfg config.Config
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "issliq",
	Short: "ISS-2001 surgical tariff liquidation engine",
	Long:  "Liquidates surgical procedures against the ISS-2001 (Acuerdo 256) tariff schedule: itemized fees for surgeon, anesthesiologist, assistant, room rights and materials, with batch Parquet → Postgres audit loading.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return nil
		}
		// Flags the user set explicitly win over the config file.
		pf := cmd.Root().PersistentFlags()
		if !pf.Changed("log-format") {
			cfg.LogFormat = ""
		}
		if !pf.Changed("schedule") {
			cfg.SchedulePath = ""
		}
		if err := cfg.LoadFromFile(cfgFile); err != nil {
			return err
		}
		if cfg.LogFormat == "" {
			cfg.LogFormat = "text"
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("NEURAUDIT_DB_URL"), "Postgres connection string (or set NEURAUDIT_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.SchedulePath, "schedule", "", "Tariff schedule YAML file (default: embedded ISS-2001)")
	pf.StringVar(&cfgFile, "config", "", "Optional YAML config file")
}

// loadSchedule resolves the tariff schedule from --schedule or the
// embedded default, exiting on validation failure.
func loadSchedule(log zerolog.Logger) *schedule.Schedule {
	var (
		s   *schedule.Schedule
		err error
	)
	if cfg.SchedulePath != "" {
		s, err = schedule.LoadFile(cfg.SchedulePath)
	} else {
		s, err = schedule.Default()
	}
	if err != nil {
		log.Error().Err(err).Msg("schedule load failed")
		os.Exit(exitcode.ValidationError)
	}
	return s
}
