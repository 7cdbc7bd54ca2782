// Package netconn parses tabular connection listings such as `netstat -ano`.
package netconn

import (
	"strconv"
	"strings"

	"github.com/modoterra/hostsnap/pkg/core"
)

// minFields is protocol, local address, remote address, state, pid.
const minFields = 5

// Parse extracts connection entries from the raw text of a connection
// listing. Lines that do not parse are skipped.
func Parse(output string) []core.ConnectionEntry {
	entries := []core.ConnectionEntry{}
	for line := range strings.Lines(output) {
		if e, ok := ParseLine(line); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// ParseLines is Parse for output that is already split into lines.
func ParseLines(lines []string) []core.ConnectionEntry {
	entries := make([]core.ConnectionEntry, 0, len(lines))
	for _, line := range lines {
		if e, ok := ParseLine(line); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// ParseLine parses a single row. It reports false for header, blank, short
// or malformed lines.
func ParseLine(line string) (core.ConnectionEntry, bool) {
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return core.ConnectionEntry{}, false
	}
	if strings.EqualFold(fields[0], "proto") {
		return core.ConnectionEntry{}, false
	}

	port, ok := LocalPort(fields[1])
	if !ok {
		return core.ConnectionEntry{}, false
	}

	pid, err := strconv.ParseInt(fields[4], 10, 32)
	if err != nil {
		return core.ConnectionEntry{}, false
	}

	return core.ConnectionEntry{
		Proto: strings.ToUpper(fields[0]),
		Port:  port,
		PID:   int32(pid),
	}, true
}

// LocalPort extracts the port from an address of the form host:port.
// Bracketed IPv6 literals ([::1]:8080) must carry the port after "]:";
// other addresses split on the last colon.
func LocalPort(addr string) (uint16, bool) {
	var portStr string
	if strings.HasPrefix(addr, "[") {
		end := strings.LastIndex(addr, "]:")
		if end < 0 {
			return 0, false
		}
		portStr = addr[end+2:]
	} else {
		i := strings.LastIndexByte(addr, ':')
		if i < 0 {
			return 0, false
		}
		portStr = addr[i+1:]
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(port), true
}
