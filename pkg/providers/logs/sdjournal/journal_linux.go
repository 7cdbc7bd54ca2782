//go:build linux && cgo && sdjournal

package sdjournal

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/coreos/go-systemd/v22/sdjournal"
	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/pkg/core"
)

// Available reports whether this build can read the journal.
func Available() bool { return true }

// Fetch opens the journal, applies the priority matches and a match on the
// current boot id, and yields every entry as a JSON record. The sequence must
// be iterated once; it closes the journal when iteration ends.
func (p *Provider) Fetch(ctx context.Context, q core.LogQuery) (iter.Seq[core.RawRecord], error) {
	matches, err := Matches(q)
	if err != nil {
		return nil, err
	}

	j, err := sdjournal.NewJournal()
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	for _, m := range matches {
		if err := j.AddMatch(m); err != nil {
			j.Close()
			return nil, fmt.Errorf("add match %s: %w", m, err)
		}
	}
	if bootID, err := j.GetBootID(); err == nil {
		if err := j.AddMatch("_BOOT_ID=" + bootID); err != nil {
			j.Close()
			return nil, fmt.Errorf("add boot match: %w", err)
		}
	} else {
		p.logger.Debug("boot id unavailable, reading all boots", zap.Error(err))
	}
	if err := j.SeekHead(); err != nil {
		j.Close()
		return nil, fmt.Errorf("seek journal head: %w", err)
	}

	return func(yield func(core.RawRecord) bool) {
		defer j.Close()
		for ctx.Err() == nil {
			n, err := j.Next()
			if err != nil {
				p.logger.Warn("journal read failed", zap.Error(err))
				return
			}
			if n == 0 {
				return
			}
			entry, err := j.GetEntry()
			if err != nil {
				p.logger.Warn("journal entry unreadable", zap.Error(err))
				continue
			}
			data, err := json.Marshal(entry.Fields)
			if err != nil {
				continue
			}
			if !yield(core.RawRecord{Format: core.FormatJSON, Data: data}) {
				return
			}
		}
	}, nil
}
