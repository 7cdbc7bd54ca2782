// Package snapshot writes pipeline results as pretty-printed JSON files.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/modoterra/hostsnap/pkg/core"
)

// Default output file names.
const (
	ProcessPortsFile = "process_ports.json"
	EventsFile       = "events.json"
)

// Encode writes v to w as indented JSON followed by a newline.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteFile creates or truncates path and writes v to it as indented JSON.
func WriteFile(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, v); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteProcessPorts writes a process/port snapshot. A nil process list is
// written as an empty array.
func WriteProcessPorts(path string, snap core.ProcessPortSnapshot) error {
	if snap.Processes == nil {
		snap.Processes = []core.ProcessPortRecord{}
	}
	for i := range snap.Processes {
		if snap.Processes[i].Ports == nil {
			snap.Processes[i].Ports = []uint16{}
		}
	}
	return WriteFile(path, snap)
}

// WriteEvents writes the event records as a bare JSON array.
func WriteEvents(path string, events core.EventSnapshot) error {
	if events == nil {
		events = core.EventSnapshot{}
	}
	return WriteFile(path, events)
}

// ReadProcessPorts loads a snapshot previously written by WriteProcessPorts.
func ReadProcessPorts(path string) (core.ProcessPortSnapshot, error) {
	var snap core.ProcessPortSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse %s: %w", path, err)
	}
	return snap, nil
}

// ReadEvents loads events previously written by WriteEvents.
func ReadEvents(path string) (core.EventSnapshot, error) {
	var events core.EventSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return events, nil
}
