// Package summary renders a short human-readable report of a run.
package summary

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/modoterra/hostsnap/pkg/core"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// maxPortsShown caps the ports listed per process in the table.
const maxPortsShown = 6

// Result is the outcome of one pipeline.
type Result struct {
	Name  string
	Path  string
	Count int
	Err   error
}

// WriteResult prints one line stating whether the pipeline wrote its file.
func WriteResult(w io.Writer, r Result) {
	if r.Err != nil {
		fmt.Fprintf(w, "%s %s: %s\n", failStyle.Render("✗"), titleStyle.Render(r.Name), r.Err)
		return
	}
	fmt.Fprintf(w, "%s %s saved to '%s' %s\n",
		okStyle.Render("✓"), titleStyle.Render(r.Name), r.Path,
		dimStyle.Render(fmt.Sprintf("(%d records)", r.Count)))
}

// ProcessTable renders the processes of snap as a table.
func ProcessTable(snap core.ProcessPortSnapshot) string {
	if len(snap.Processes) == 0 {
		return dimStyle.Render("no processes with open ports")
	}
	rows := make([][]string, 0, len(snap.Processes))
	for _, p := range snap.Processes {
		rows = append(rows, []string{strconv.Itoa(int(p.PID)), p.Name, formatPorts(p.Ports)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		}).
		Headers("PID", "NAME", "PORTS").
		Rows(rows...)
	return t.String()
}

// EventCounts renders how many events were extracted per level.
func EventCounts(events core.EventSnapshot) string {
	if len(events) == 0 {
		return dimStyle.Render("no events")
	}
	counts := make(map[uint32]int)
	for _, e := range events {
		counts[e.Level]++
	}
	var parts []string
	for l := core.LevelCritical; l <= core.LevelVerbose; l++ {
		if n := counts[l]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", core.LevelName(l), n))
		}
	}
	return strings.Join(parts, " ")
}

func formatPorts(ports []uint16) string {
	shown := ports
	if len(shown) > maxPortsShown {
		shown = shown[:maxPortsShown]
	}
	strs := make([]string, len(shown))
	for i, p := range shown {
		strs[i] = strconv.Itoa(int(p))
	}
	s := strings.Join(strs, ",")
	if extra := len(ports) - len(shown); extra > 0 {
		s += fmt.Sprintf(" +%d", extra)
	}
	return s
}
