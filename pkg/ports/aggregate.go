// Package ports correlates listening ports with the processes that own them.
package ports

import "github.com/modoterra/hostsnap/pkg/core"

// Aggregate groups connection entries by owning process. Entries whose pid is
// not in table are dropped. Records appear in the order their pid was first
// seen; ports keep the order of entries.
func Aggregate(table core.ProcessTable, entries []core.ConnectionEntry) core.ProcessPortSnapshot {
	snap := core.EmptyProcessPortSnapshot()
	index := make(map[int32]int)

	for _, e := range entries {
		proc, ok := table.Lookup(e.PID)
		if !ok {
			continue
		}
		if pos, seen := index[e.PID]; seen {
			rec := &snap.Processes[pos]
			rec.Ports = append(rec.Ports, e.Port)
			continue
		}
		index[e.PID] = len(snap.Processes)
		snap.Processes = append(snap.Processes, core.ProcessPortRecord{
			PID:   e.PID,
			Name:  proc.Name,
			Ports: []uint16{e.Port},
		})
	}
	return snap
}
