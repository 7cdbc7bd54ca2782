// Package gopsutil lists connections and processes through
// github.com/shirou/gopsutil, which reads /proc on Linux and the native
// APIs on Windows and macOS.
package gopsutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"text/tabwriter"

	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/pkg/core"
)

// Socket types as reported in ConnectionStat.Type.
const (
	sockStream = 1
	sockDgram  = 2
)

// Provider is both a core.Lister and a core.TableProvider.
type Provider struct {
	kind   string
	logger *zap.Logger
}

// New creates a provider for the "inet" connection kind (TCP and UDP over
// IPv4 and IPv6).
func New(logger *zap.Logger) *Provider {
	return &Provider{kind: "inet", logger: logger}
}

func (p *Provider) Name() string { return "gopsutil" }

// List renders the host's connections with the columns Proto, Local Address,
// Foreign Address, State, PID.
func (p *Provider) List(ctx context.Context) (string, error) {
	conns, err := psnet.ConnectionsWithContext(ctx, p.kind)
	if err != nil {
		return "", fmt.Errorf("list %s connections: %w", p.kind, err)
	}
	out, err := Render(conns)
	if err != nil {
		return "", err
	}
	p.logger.Debug("connection listing", zap.Int("connections", len(conns)))
	return out, nil
}

// Render formats connections as a netstat-style table. Connections of other
// socket types are left out. UDP sockets have no state and are shown as
// UNCONN.
func Render(conns []psnet.ConnectionStat) (string, error) {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "Proto\tLocal Address\tForeign Address\tState\tPID")
	for _, c := range conns {
		var proto string
		switch c.Type {
		case sockStream:
			proto = "TCP"
		case sockDgram:
			proto = "UDP"
		default:
			continue
		}
		state := c.Status
		if state == "" || state == "NONE" {
			state = "UNCONN"
		}
		if state == "LISTEN" {
			state = "LISTENING"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", proto, formatAddr(c.Laddr), formatAddr(c.Raddr), state, c.Pid)
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// formatAddr joins ip and port, bracketing IPv6. An unset address is "*:*".
func formatAddr(a psnet.Addr) string {
	if a.IP == "" && a.Port == 0 {
		return "*:*"
	}
	ip := a.IP
	if ip == "" {
		ip = "*"
	}
	return net.JoinHostPort(ip, strconv.FormatUint(uint64(a.Port), 10))
}

// Snapshot returns the name of every running process. Processes that exit
// or deny access while being read are left out.
func (p *Provider) Snapshot(ctx context.Context) (core.ProcessTable, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return core.ProcessTable{}, fmt.Errorf("list processes: %w", err)
	}

	entries := make([]core.Process, 0, len(procs))
	skipped := 0
	for _, proc := range procs {
		if err := ctx.Err(); err != nil {
			return core.ProcessTable{}, err
		}
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			if !errors.Is(err, process.ErrorProcessNotRunning) {
				p.logger.Debug("process name unavailable", zap.Int32("pid", proc.Pid), zap.Error(err))
			}
			skipped++
			continue
		}
		entries = append(entries, core.Process{PID: proc.Pid, Name: name})
	}

	p.logger.Debug("process table",
		zap.Int("processes", len(entries)),
		zap.Int("skipped", skipped))
	return core.NewProcessTable(entries), nil
}
