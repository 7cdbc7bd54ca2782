package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/pkg/config"
	"github.com/modoterra/hostsnap/pkg/core"
	"github.com/modoterra/hostsnap/pkg/events"
	"github.com/modoterra/hostsnap/pkg/ports"
	"github.com/modoterra/hostsnap/pkg/snapshot"
	"github.com/modoterra/hostsnap/pkg/summary"
)

// isolate runs fn and turns a panic into an error so one pipeline cannot
// take the other down.
func isolate(logger *zap.Logger, pipeline string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panicked", zap.String("pipeline", pipeline), zap.Any("panic", r))
			err = fmt.Errorf("%s pipeline panicked: %v", pipeline, r)
		}
	}()
	return fn()
}

// runPorts correlates ports with processes and writes the snapshot. The
// file is written even when collection fails. Collection gets its own
// cfg.Timeout deadline.
func runPorts(ctx context.Context, cfg *config.Config, set providerSet, logger *zap.Logger) (summary.Result, core.ProcessPortSnapshot) {
	res := summary.Result{Name: "Process and port data", Path: cfg.PortsPath()}
	snap := core.EmptyProcessPortSnapshot()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	_ = isolate(logger, "ports", func() error {
		s, err := ports.NewCollector(set.lister, set.tables, logger).Collect(ctx)
		snap = s
		return err
	})

	if err := isolate(logger, "ports", func() error {
		return snapshot.WriteProcessPorts(res.Path, snap)
	}); err != nil {
		logger.Error("error saving process info", zap.String("path", res.Path), zap.Error(err))
		res.Err = err
		return res, snap
	}
	res.Count = len(snap.Processes)
	return res, snap
}

// runEvents extracts events and writes them. The file is written even when
// the log source is unavailable. Extraction gets its own cfg.Timeout
// deadline.
func runEvents(ctx context.Context, cfg *config.Config, set providerSet, logger *zap.Logger) (summary.Result, core.EventSnapshot) {
	res := summary.Result{Name: "Events", Path: cfg.EventsPath()}
	evs := core.EventSnapshot{}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	_ = isolate(logger, "events", func() error {
		q := events.NewQuery(cfg.Events.Threshold, cfg.Events.Channels...)
		e, _, err := events.NewExtractor(set.source, q, logger).Extract(ctx)
		evs = e
		return err
	})

	if err := isolate(logger, "events", func() error {
		return snapshot.WriteEvents(res.Path, evs)
	}); err != nil {
		logger.Error("error saving events to file", zap.String("path", res.Path), zap.Error(err))
		res.Err = err
		return res, evs
	}
	res.Count = len(evs)
	return res, evs
}
