// Package netstat lists connections by running the netstat command.
package netstat

import (
	"context"

	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/internal/cmdutil"
)

// DefaultArgs ask for all connections and listeners, numeric addresses and
// the owning pid (Windows netstat syntax).
var DefaultArgs = []string{"-ano"}

// Provider runs netstat and returns its output unchanged.
type Provider struct {
	bin    string
	args   []string
	logger *zap.Logger
}

// New creates a netstat lister using DefaultArgs.
func New(logger *zap.Logger) *Provider {
	return &Provider{bin: "netstat", args: DefaultArgs, logger: logger}
}

// WithCommand overrides the command that is run.
func (p *Provider) WithCommand(bin string, args ...string) *Provider {
	p.bin = bin
	p.args = args
	return p
}

func (p *Provider) Name() string { return "netstat" }

func (p *Provider) List(ctx context.Context) (string, error) {
	out, err := cmdutil.Output(ctx, p.bin, p.args...)
	if err != nil {
		return "", err
	}
	p.logger.Debug("netstat finished", zap.String("bin", p.bin), zap.Int("bytes", len(out)))
	return string(out), nil
}
