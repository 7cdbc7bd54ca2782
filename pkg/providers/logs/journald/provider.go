// Package journald reads the systemd journal by running journalctl.
package journald

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"os/exec"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/internal/cmdutil"
	"github.com/modoterra/hostsnap/pkg/core"
)

// waitDelay bounds how long Wait waits for journalctl's pipes after the
// process is killed.
const waitDelay = 2 * time.Second

// Provider streams journal entries as JSON records.
type Provider struct {
	bin     string
	maxLine int
	logger  *zap.Logger
}

// New creates a journalctl-backed log source.
func New(logger *zap.Logger) *Provider {
	return &Provider{bin: "journalctl", maxLine: cmdutil.MaxLineSize, logger: logger}
}

// WithMaxLine sets the longest journal entry that is kept, in bytes.
func (p *Provider) WithMaxLine(n int) *Provider {
	p.maxLine = n
	return p
}

// WithBinary overrides the journalctl executable.
func (p *Provider) WithBinary(bin string) *Provider {
	p.bin = bin
	return p
}

func (p *Provider) Name() string { return "journalctl" }

// Args returns the journalctl arguments for q: the current boot, JSON output,
// and the priority range covering the query's levels.
func Args(q core.LogQuery) ([]string, error) {
	prios := core.PrioritiesForLevels(q.Levels())
	if len(prios) == 0 {
		return nil, fmt.Errorf("query accepts no levels")
	}
	return []string{
		"--no-pager",
		"--boot",
		"--output=json",
		fmt.Sprintf("--priority=%d..%d", slices.Min(prios), slices.Max(prios)),
	}, nil
}

// Fetch starts journalctl and returns a sequence that yields one record per
// output line. The journal is not partitioned into channels, so the query's
// channels are not used. Entries longer than the line limit are skipped
// with a warning. The sequence must be iterated exactly once; it reaps the
// journalctl process when iteration ends.
func (p *Provider) Fetch(ctx context.Context, q core.LogQuery) (iter.Seq[core.RawRecord], error) {
	args, err := Args(q)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("journal has no channels, reading all units",
		zap.Strings("channels", q.Channels()))

	subCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(subCtx, p.bin, args...)
	cmd.WaitDelay = waitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("journalctl pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("journalctl start: %w", err)
	}

	return func(yield func(core.RawRecord) bool) {
		defer cancel()
		stopped := false
		scanErr := cmdutil.ScanLines(stdout, p.maxLine, func(line string) bool {
			line = strings.TrimSpace(line)
			if line == "" {
				return true
			}
			if !yield(core.RawRecord{Format: core.FormatJSON, Data: []byte(line)}) {
				stopped = true
				return false
			}
			return true
		}, func(size int) {
			p.logger.Warn("journal entry too long, skipped",
				zap.Int("bytes", size), zap.Int("limit", p.maxLine))
		})
		if stopped || scanErr != nil {
			cancel()
		}
		waitErr := cmd.Wait()
		switch {
		case scanErr != nil:
			p.logger.Warn("journalctl output truncated", zap.Error(scanErr))
		case waitErr != nil && !stopped:
			p.logger.Warn("journalctl exited with error",
				zap.Error(waitErr), zap.String("stderr", strings.TrimSpace(stderr.String())))
		}
	}, nil
}
