package config

import (
	"fmt"
	"slices"
)

// Validate checks the config for structural correctness.
func Validate(c *Config) []error {
	var errs []error

	if c.Version != 1 {
		errs = append(errs, fmt.Errorf("version must be 1, got %d", c.Version))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}

	if !slices.Contains([]string{Auto, ListerGopsutil, ListerNetstat}, c.Ports.Lister) {
		errs = append(errs, fmt.Errorf("ports.lister must be auto, gopsutil, or netstat; got %q", c.Ports.Lister))
	}
	if !slices.Contains([]string{Auto, TableGopsutil}, c.Ports.ProcessTable) {
		errs = append(errs, fmt.Errorf("ports.process_table must be auto or gopsutil; got %q", c.Ports.ProcessTable))
	}
	if c.Ports.Output == "" {
		errs = append(errs, fmt.Errorf("ports.output is required"))
	}

	if !slices.Contains([]string{Auto, SourceWevtutil, SourceJournalctl, SourceSdjournal}, c.Events.Source) {
		errs = append(errs, fmt.Errorf("events.source must be auto, wevtutil, journalctl, or sdjournal; got %q", c.Events.Source))
	}
	if c.Events.Threshold < 1 || c.Events.Threshold > 5 {
		errs = append(errs, fmt.Errorf("events.threshold must be between 1 and 5, got %d", c.Events.Threshold))
	}
	if len(c.Events.Channels) == 0 {
		errs = append(errs, fmt.Errorf("events.channels must list at least one channel"))
	}
	for i, ch := range c.Events.Channels {
		if ch == "" {
			errs = append(errs, fmt.Errorf("events.channels[%d] is empty", i))
		}
	}
	if c.Events.Output == "" {
		errs = append(errs, fmt.Errorf("events.output is required"))
	}

	if c.Ports.Output != "" && c.PortsPath() == c.EventsPath() {
		errs = append(errs, fmt.Errorf("ports.output and events.output must differ"))
	}

	return errs
}
