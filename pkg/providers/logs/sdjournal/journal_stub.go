//go:build !linux || !cgo || !sdjournal

package sdjournal

import (
	"context"
	"iter"

	"github.com/modoterra/hostsnap/pkg/core"
)

// Available reports whether this build can read the journal.
func Available() bool { return false }

func (p *Provider) Fetch(context.Context, core.LogQuery) (iter.Seq[core.RawRecord], error) {
	return nil, ErrUnavailable
}
