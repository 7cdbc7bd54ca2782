package core

// ConnectionEntry is one parsed row of a connection listing.
type ConnectionEntry struct {
	Proto string
	Port  uint16
	PID   int32
}

// ProcessPortRecord groups every port observed for one process.
// Ports keep discovery order; a port reported twice appears twice.
type ProcessPortRecord struct {
	PID   int32    `json:"pid"`
	Name  string   `json:"name"`
	Ports []uint16 `json:"ports"`
}

// ProcessPortSnapshot is the root document of process_ports.json.
type ProcessPortSnapshot struct {
	Processes []ProcessPortRecord `json:"processes"`
}

// EmptyProcessPortSnapshot returns a snapshot that serializes as {"processes": []}.
func EmptyProcessPortSnapshot() ProcessPortSnapshot {
	return ProcessPortSnapshot{Processes: []ProcessPortRecord{}}
}

// LogEventRecord is the flat projection of one structured log entry.
type LogEventRecord struct {
	EventID      uint32 `json:"event_id"`
	ProviderName string `json:"provider_name"`
	Level        uint32 `json:"level"`
}

// EventSnapshot is the content of events.json. It serializes as a bare array.
type EventSnapshot []LogEventRecord
