package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/modoterra/hostsnap/pkg/core"
)

type fakeLister struct {
	output string
	err    error
}

func (f fakeLister) Name() string { return "fake" }

func (f fakeLister) List(context.Context) (string, error) { return f.output, f.err }

type fakeTables struct {
	procs []core.Process
	err   error
	calls *int
}

func (f fakeTables) Name() string { return "fake" }

func (f fakeTables) Snapshot(context.Context) (core.ProcessTable, error) {
	if f.calls != nil {
		*f.calls++
	}
	if f.err != nil {
		return core.ProcessTable{}, f.err
	}
	return core.NewProcessTable(f.procs), nil
}

const listing = `  Proto  Local Address          Foreign Address        State           PID
  TCP    0.0.0.0:80             0.0.0.0:0              LISTENING       1234
  TCP    0.0.0.0:443            0.0.0.0:0              LISTENING       1234
  TCP    0.0.0.0:22             0.0.0.0:0              LISTENING       999
`

func TestCollect(t *testing.T) {
	calls := 0
	c := NewCollector(
		fakeLister{output: listing},
		fakeTables{procs: []core.Process{{PID: 1234, Name: "svc.exe"}}, calls: &calls},
		zaptest.NewLogger(t),
	)

	snap, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "process table is snapshotted once per run")
	assert.Equal(t, []core.ProcessPortRecord{{PID: 1234, Name: "svc.exe", Ports: []uint16{80, 443}}}, snap.Processes)
}

func TestCollectListerFailureDegrades(t *testing.T) {
	boom := errors.New("exec: \"netstat\": executable file not found in $PATH")
	calls := 0
	c := NewCollector(fakeLister{err: boom}, fakeTables{calls: &calls}, zaptest.NewLogger(t))

	snap, err := c.Collect(context.Background())
	require.ErrorIs(t, err, boom)
	assert.NotNil(t, snap.Processes)
	assert.Empty(t, snap.Processes)
	assert.Equal(t, 0, calls)
}

func TestCollectTableFailureDegrades(t *testing.T) {
	boom := errors.New("read /proc: permission denied")
	c := NewCollector(fakeLister{output: listing}, fakeTables{err: boom}, zaptest.NewLogger(t))

	snap, err := c.Collect(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, snap.Processes)
}
