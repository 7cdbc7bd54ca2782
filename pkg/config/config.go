// Package config loads and validates hostsnap.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "hostsnap.yaml"

// Config represents a hostsnap.yaml file.
type Config struct {
	Version   int           `yaml:"version"    json:"version"`
	OutputDir string        `yaml:"output_dir" json:"output_dir"`
	Timeout   time.Duration `yaml:"timeout"    json:"timeout"`
	Ports     Ports         `yaml:"ports"      json:"ports"`
	Events    Events        `yaml:"events"     json:"events"`
}

// Ports configures the port correlation pipeline.
type Ports struct {
	Lister       string `yaml:"lister"        json:"lister"`        // auto|gopsutil|netstat
	ProcessTable string `yaml:"process_table" json:"process_table"` // auto|gopsutil
	Output       string `yaml:"output"        json:"output"`
}

// Events configures the event extraction pipeline.
type Events struct {
	Source    string   `yaml:"source"    json:"source"` // auto|wevtutil|journalctl|sdjournal
	Threshold uint32   `yaml:"threshold" json:"threshold"`
	Channels  []string `yaml:"channels"  json:"channels"`
	Output    string   `yaml:"output"    json:"output"`
}

// Provider selectors.
const (
	Auto = "auto"

	ListerGopsutil = "gopsutil"
	ListerNetstat  = "netstat"

	TableGopsutil = "gopsutil"

	SourceWevtutil   = "wevtutil"
	SourceJournalctl = "journalctl"
	SourceSdjournal  = "sdjournal"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:   1,
		OutputDir: ".",
		Timeout:   60 * time.Second,
		Ports: Ports{
			Lister:       Auto,
			ProcessTable: Auto,
			Output:       "process_ports.json",
		},
		Events: Events{
			Source:    Auto,
			Threshold: 1,
			Channels:  []string{"Application", "System"},
			Output:    "events.json",
		},
	}
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a config document on top of the defaults, so omitted keys
// keep their default values.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.Ports.Lister = strings.ToLower(strings.TrimSpace(c.Ports.Lister))
	c.Ports.ProcessTable = strings.ToLower(strings.TrimSpace(c.Ports.ProcessTable))
	c.Events.Source = strings.ToLower(strings.TrimSpace(c.Events.Source))
	return c, nil
}

// Marshal renders c as YAML.
func Marshal(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}

// PortsPath returns the process/port output file, resolved against OutputDir.
func (c *Config) PortsPath() string { return c.resolve(c.Ports.Output) }

// EventsPath returns the events output file, resolved against OutputDir.
func (c *Config) EventsPath() string { return c.resolve(c.Events.Output) }

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.OutputDir == "" {
		return p
	}
	return filepath.Join(c.OutputDir, p)
}
