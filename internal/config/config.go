package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OutputDir      string        `yaml:"output_dir"`
	Limits         LimitsConfig  `yaml:"limits"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	SecurityNotes  []string      `yaml:"security_notes"`
	CloudMetadata  bool          `yaml:"cloud_metadata"`
	Compress       bool          `yaml:"compress"`
	MetricsFile    string        `yaml:"metrics_file"`
}

// LimitsConfig bounds the size of the report.
type LimitsConfig struct {
	Connections int `yaml:"connections"`
	Processes   int `yaml:"processes"`
}

var defaultSecurityNotes = []string{
	"Red flags: unknown admin tools, repeated MFA prompts, browser proxy changes, unknown startup items.",
	"If compromise suspected: isolate device from network and escalate with collected report.",
	"Do not delete suspicious files before hashing/capturing paths and timestamps.",
}

func Default() *Config {
	notes := make([]string, len(defaultSecurityNotes))
	copy(notes, defaultSecurityNotes)

	return &Config{
		OutputDir: "reports",
		Limits: LimitsConfig{
			Connections: 200,
			Processes:   30,
		},
		CommandTimeout: 15 * time.Second,
		SecurityNotes:  notes,
	}
}

// LoadConfig reads a YAML file on top of Default. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.Limits.Connections <= 0 {
		return fmt.Errorf("invalid limits.connections: %d", c.Limits.Connections)
	}
	if c.Limits.Processes <= 0 {
		return fmt.Errorf("invalid limits.processes: %d", c.Limits.Processes)
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("invalid command_timeout: %s", c.CommandTimeout)
	}

	return nil
}
