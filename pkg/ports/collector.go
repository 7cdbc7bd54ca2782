package ports

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/pkg/core"
	"github.com/modoterra/hostsnap/pkg/netconn"
)

// Collector runs the port correlation pipeline: list, parse, snapshot the
// process table, aggregate.
type Collector struct {
	lister core.Lister
	tables core.TableProvider
	logger *zap.Logger
}

// NewCollector creates a collector over the given providers.
func NewCollector(lister core.Lister, tables core.TableProvider, logger *zap.Logger) *Collector {
	return &Collector{lister: lister, tables: tables, logger: logger}
}

// Collect produces a snapshot. A failing lister or process table yields the
// empty snapshot together with the error; the snapshot is always writable.
func (c *Collector) Collect(ctx context.Context) (core.ProcessPortSnapshot, error) {
	output, err := c.lister.List(ctx)
	if err != nil {
		c.logger.Warn("connection listing unavailable, writing empty snapshot",
			zap.String("lister", c.lister.Name()), zap.Error(err))
		return core.EmptyProcessPortSnapshot(), fmt.Errorf("list connections (%s): %w", c.lister.Name(), err)
	}

	entries := netconn.Parse(output)
	c.logger.Debug("parsed connection listing",
		zap.String("lister", c.lister.Name()), zap.Int("entries", len(entries)))

	table, err := c.tables.Snapshot(ctx)
	if err != nil {
		c.logger.Warn("process table unavailable, writing empty snapshot",
			zap.String("provider", c.tables.Name()), zap.Error(err))
		return core.EmptyProcessPortSnapshot(), fmt.Errorf("process table (%s): %w", c.tables.Name(), err)
	}

	snap := Aggregate(table, entries)
	c.logger.Info("correlated ports",
		zap.Int("entries", len(entries)),
		zap.Int("processes_seen", table.Len()),
		zap.Int("processes_with_ports", len(snap.Processes)))
	return snap, nil
}
