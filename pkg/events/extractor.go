package events

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/pkg/core"
)

// ErrSourceUnavailable wraps any failure of a log source to answer a query.
var ErrSourceUnavailable = errors.New("log source unavailable")

// Stats counts what happened during one extraction.
type Stats struct {
	Fetched    int
	Normalized int
	Skipped    int
}

// Extractor runs the event extraction pipeline against one log source.
type Extractor struct {
	source core.LogSource
	query  Query
	logger *zap.Logger
}

// NewExtractor creates an extractor for the given source and query.
func NewExtractor(source core.LogSource, query Query, logger *zap.Logger) *Extractor {
	return &Extractor{source: source, query: query, logger: logger}
}

// Extract fetches and normalizes records. If the source fails, the returned
// snapshot is empty and the error wraps ErrSourceUnavailable. Records that do
// not match the schema are logged and skipped.
func (e *Extractor) Extract(ctx context.Context) (core.EventSnapshot, Stats, error) {
	snap := core.EventSnapshot{}
	var stats Stats

	seq, err := e.source.Fetch(ctx, e.query)
	if err != nil {
		e.logger.Warn("error fetching events", zap.String("source", e.source.Name()), zap.Error(err))
		return snap, stats, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, e.source.Name(), err)
	}

	for _, o := range NormalizeAll(seq) {
		stats.Fetched++
		if !o.OK() {
			stats.Skipped++
			e.logger.Warn("error parsing event", zap.Int("index", o.Index), zap.Error(o.Err))
			continue
		}
		stats.Normalized++
		snap = append(snap, o.Record)
	}

	e.logger.Info("extracted events",
		zap.String("source", e.source.Name()),
		zap.Strings("channels", e.query.Channels()),
		zap.Uint32("threshold", e.query.Threshold()),
		zap.Int("fetched", stats.Fetched),
		zap.Int("normalized", stats.Normalized),
		zap.Int("skipped", stats.Skipped))
	return snap, stats, nil
}
