package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for an issliq run.
type Config struct {
	DSN          string
	FilePath     string
	SchedulePath string // external tariff schedule YAML; empty = embedded ISS-2001
	LogFormat    string // "text" or "json"
	Activate     bool
	Force        bool
	KeepStaging  bool
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Schedule  string `yaml:"schedule"`
	LogFormat string `yaml:"log_format"`
}

// LoadFromFile reads a YAML config file and merges its values into
// Config. Values already set (e.g. from flags) take precedence.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if c.SchedulePath == "" {
		c.SchedulePath = yc.Schedule
	}
	if c.LogFormat == "" {
		c.LogFormat = yc.LogFormat
	}
	return c.validateLogFormat()
}

func (c *Config) validateLogFormat() error {
	switch c.LogFormat {
	case "", "text", "json":
		return nil
	}
	return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	if c.SchedulePath != "" {
		if _, err := os.Stat(c.SchedulePath); err != nil {
			return fmt.Errorf("schedule file not accessible: %w", err)
		}
	}
	return c.validateLogFormat()
}

// ValidateWithDSN checks both file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or NEURAUDIT_DB_URL is required")
	}
	return nil
}
