package core

// Process is the metadata a process table provider reports for one pid.
type Process struct {
	PID  int32
	Name string
}

// ProcessTable is a point-in-time snapshot of running processes.
// It is built once per run and never refreshed.
type ProcessTable struct {
	procs map[int32]Process
}

// NewProcessTable builds a table from the given processes. Later entries
// with a duplicate pid replace earlier ones.
func NewProcessTable(procs []Process) ProcessTable {
	m := make(map[int32]Process, len(procs))
	for _, p := range procs {
		m[p.PID] = p
	}
	return ProcessTable{procs: m}
}

// Lookup returns the process with the given pid.
func (t ProcessTable) Lookup(pid int32) (Process, bool) {
	p, ok := t.procs[pid]
	return p, ok
}

// Len returns the number of processes in the table.
func (t ProcessTable) Len() int { return len(t.procs) }
