package events

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/modoterra/hostsnap/pkg/core"
)

type fakeSource struct {
	records []core.RawRecord
	err     error
	gotQ    core.LogQuery
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context, q core.LogQuery) (iter.Seq[core.RawRecord], error) {
	f.gotQ = q
	if f.err != nil {
		return nil, f.err
	}
	return slices.Values(f.records), nil
}

func TestExtract(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	src := &fakeSource{records: []core.RawRecord{
		xmlRecord(kernelPowerEvent),
		xmlRecord(missingProviderEvent),
	}}

	snap, stats, err := NewExtractor(src, DefaultQuery(), zap.New(obsCore)).Extract(context.Background())

	require.NoError(t, err)
	assert.Equal(t, core.EventSnapshot{{EventID: 41, ProviderName: "Kernel", Level: 2}}, snap)
	assert.Equal(t, Stats{Fetched: 2, Normalized: 1, Skipped: 1}, stats)
	assert.Equal(t, 1, logs.FilterMessage("error parsing event").Len())
	assert.Equal(t, []uint32{1}, src.gotQ.Levels())
}

func TestExtractSourceFailure(t *testing.T) {
	boom := errors.New("The RPC server is unavailable")
	src := &fakeSource{err: boom}

	snap, stats, err := NewExtractor(src, DefaultQuery(), zap.NewNop()).Extract(context.Background())

	require.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
	assert.Zero(t, stats)
}

func TestExtractNoRecords(t *testing.T) {
	snap, stats, err := NewExtractor(&fakeSource{}, DefaultQuery(), zap.NewNop()).Extract(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
	assert.Equal(t, Stats{}, stats)
}
