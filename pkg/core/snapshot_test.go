package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPortSnapshotRoundTrip(t *testing.T) {
	snap := ProcessPortSnapshot{Processes: []ProcessPortRecord{
		{PID: 1234, Name: "svc.exe", Ports: []uint16{80, 443}},
	}}

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"processes":[{"pid":1234,"name":"svc.exe","ports":[80,443]}]}`, string(data))

	var got ProcessPortSnapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, snap, got)
}

func TestEmptySnapshotsSerializeAsArrays(t *testing.T) {
	data, err := json.Marshal(EmptyProcessPortSnapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"processes":[]}`, string(data))

	data, err = json.Marshal(EventSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestLogEventRecordKeys(t *testing.T) {
	data, err := json.Marshal(LogEventRecord{EventID: 41, ProviderName: "Kernel", Level: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event_id":41,"provider_name":"Kernel","level":2}`, string(data))
}

func TestProcessTableLookup(t *testing.T) {
	table := NewProcessTable([]Process{
		{PID: 1, Name: "init"},
		{PID: 42, Name: "old"},
		{PID: 42, Name: "sshd"},
	})

	assert.Equal(t, 2, table.Len())

	p, ok := table.Lookup(42)
	require.True(t, ok)
	assert.Equal(t, "sshd", p.Name)

	_, ok = table.Lookup(7)
	assert.False(t, ok)
}

func TestZeroProcessTable(t *testing.T) {
	var table ProcessTable
	_, ok := table.Lookup(1)
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())
}
