package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/linksignis/navledger/ledger"
)

// Config carries everything the CLI needs that isn't per-invocation.
type Config struct {
	Database string       `json:"database" yaml:"database"`
	Ledger   LedgerConfig `json:"ledger" yaml:"ledger"`
	Report   ReportConfig `json:"report" yaml:"report"`
}

// LedgerConfig contains ledger construction parameters.
type LedgerConfig struct {
	// EpochStart is the date (MM/DD/YYYY) on which the running
	// other-transaction total resets to zero: the fund's inception.
	EpochStart string `json:"epoch_start" yaml:"epoch_start"`
}

// ReportConfig contains report generation parameters.
type ReportConfig struct {
	Output string `json:"output" yaml:"output"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Ledger.EpochStart == "" {
		return fmt.Errorf("ledger.epoch_start is required")
	}
	if _, err := ledger.ParseDate(c.Ledger.EpochStart); err != nil {
		return fmt.Errorf("ledger.epoch_start must be MM/DD/YYYY: %w", err)
	}
	return nil
}

// Epoch returns the parsed epoch start date. Call Validate first; a config
// that passed validation cannot fail here.
func (c *Config) Epoch() (ledger.Date, error) {
	return ledger.ParseDate(c.Ledger.EpochStart)
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Database: "daily_accounting.db",
		Ledger: LedgerConfig{
			EpochStart: "01/19/2023",
		},
		Report: ReportConfig{
			Output: "nav_report.xlsx",
		},
	}
}
