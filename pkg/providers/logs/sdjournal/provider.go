// Package sdjournal reads the systemd journal through libsystemd.
//
// The reader is compiled only with the sdjournal build tag on linux with cgo
// (go build -tags sdjournal), which needs the libsystemd development headers.
// Other builds get a stub whose Fetch returns ErrUnavailable.
package sdjournal

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/pkg/core"
)

// ErrUnavailable is returned on builds without journal support.
var ErrUnavailable = errors.New("systemd journal support not built in (requires linux, cgo and -tags sdjournal)")

// Provider reads journal entries matching a query's priorities on the
// current boot.
type Provider struct {
	logger *zap.Logger
}

// New creates a journal log source.
func New(logger *zap.Logger) *Provider {
	return &Provider{logger: logger}
}

func (p *Provider) Name() string { return "sdjournal" }

// Matches returns the journal matches for q. Matches on the same field are
// OR'ed by the journal.
func Matches(q core.LogQuery) ([]string, error) {
	prios := core.PrioritiesForLevels(q.Levels())
	if len(prios) == 0 {
		return nil, fmt.Errorf("query accepts no levels")
	}
	matches := make([]string, 0, len(prios))
	for _, pr := range prios {
		matches = append(matches, fmt.Sprintf("PRIORITY=%d", pr))
	}
	return matches, nil
}
