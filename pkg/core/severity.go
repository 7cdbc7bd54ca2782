package core

// Severity levels, lower is more severe.
const (
	LevelCritical    uint32 = 1
	LevelError       uint32 = 2
	LevelWarning     uint32 = 3
	LevelInformation uint32 = 4
	LevelVerbose     uint32 = 5
)

// LevelName returns the conventional name for a severity level.
func LevelName(level uint32) string {
	switch level {
	case LevelCritical:
		return "critical"
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInformation:
		return "information"
	case LevelVerbose:
		return "verbose"
	default:
		return "unknown"
	}
}

// LevelFromPriority maps a syslog/journal priority (0=emerg..7=debug) to a
// severity level. It reports false for priorities outside 0..7.
func LevelFromPriority(priority int) (uint32, bool) {
	switch priority {
	case 0, 1, 2:
		return LevelCritical, true
	case 3:
		return LevelError, true
	case 4:
		return LevelWarning, true
	case 5, 6:
		return LevelInformation, true
	case 7:
		return LevelVerbose, true
	default:
		return 0, false
	}
}

// PrioritiesForLevels returns every journal priority that maps to one of levels.
func PrioritiesForLevels(levels []uint32) []int {
	want := make(map[uint32]bool, len(levels))
	for _, l := range levels {
		want[l] = true
	}
	var prios []int
	for p := 0; p <= 7; p++ {
		if l, _ := LevelFromPriority(p); want[l] {
			prios = append(prios, p)
		}
	}
	return prios
}
