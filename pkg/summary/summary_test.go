package summary

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modoterra/hostsnap/pkg/core"
)

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	WriteResult(&buf, Result{Name: "Process and port data", Path: "process_ports.json", Count: 3})
	assert.Contains(t, buf.String(), "saved to 'process_ports.json'")
	assert.Contains(t, buf.String(), "(3 records)")

	buf.Reset()
	WriteResult(&buf, Result{Name: "Events", Err: errors.New("create events.json: permission denied")})
	assert.Contains(t, buf.String(), "permission denied")
	assert.NotContains(t, buf.String(), "saved")
}

func TestProcessTable(t *testing.T) {
	out := ProcessTable(core.ProcessPortSnapshot{Processes: []core.ProcessPortRecord{
		{PID: 1234, Name: "svc.exe", Ports: []uint16{80, 443}},
	}})
	assert.Contains(t, out, "PID")
	assert.Contains(t, out, "svc.exe")
	assert.Contains(t, out, "80,443")
}

func TestProcessTableEmpty(t *testing.T) {
	assert.Contains(t, ProcessTable(core.EmptyProcessPortSnapshot()), "no processes")
}

func TestFormatPorts(t *testing.T) {
	assert.Equal(t, "22", formatPorts([]uint16{22}))
	assert.Equal(t, "1,2,3,4,5,6 +2", formatPorts([]uint16{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Equal(t, "", formatPorts(nil))
}

func TestEventCounts(t *testing.T) {
	got := EventCounts(core.EventSnapshot{
		{EventID: 41, ProviderName: "Kernel", Level: 1},
		{EventID: 7031, ProviderName: "SCM", Level: 2},
		{EventID: 6008, ProviderName: "EventLog", Level: 2},
	})
	assert.Equal(t, "critical=1 error=2", got)
	assert.Contains(t, EventCounts(nil), "no events")
}
