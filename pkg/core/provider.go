package core

import (
	"context"
	"iter"
)

// Lister enumerates network connections and returns the listing as text:
// a header line followed by rows of protocol, local address, remote address,
// state and owning pid.
type Lister interface {
	// Name returns the lister's identifier (e.g., "netstat", "gopsutil").
	Name() string

	List(ctx context.Context) (string, error)
}

// TableProvider takes a bulk snapshot of the process table.
type TableProvider interface {
	Name() string

	Snapshot(ctx context.Context) (ProcessTable, error)
}

// LogQuery is the part of an event query a log source needs.
type LogQuery interface {
	// Channels returns the logical log channels to read.
	Channels() []string
	// Levels returns every severity level the query accepts, most severe first.
	Levels() []uint32
}

// LogSource fetches raw structured log records.
type LogSource interface {
	Name() string

	// Fetch returns a lazy sequence of records matching q. An error means the
	// source is unreachable or rejected the query.
	Fetch(ctx context.Context, q LogQuery) (iter.Seq[RawRecord], error)
}
