package source

import (
	"strings"
	"time"
)

// Level is a log severity. Each level is its own bit so a set of levels
// can be held in a single Level value and tested with &.
type Level uint8

const (
	LevelDebug Level = 1 << iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// LevelAll selects every severity
const LevelAll = LevelDebug | LevelInfo | LevelWarn | LevelError | LevelFatal

// Levels lists the severities from least to most severe
var Levels = []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal}

// String returns the upper-case level name
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// Letter returns the single character tag used in display lines
func (l Level) Letter() byte {
	switch l {
	case LevelDebug:
		return 'D'
	case LevelInfo:
		return 'I'
	case LevelWarn:
		return 'W'
	case LevelError:
		return 'E'
	case LevelFatal:
		return 'F'
	}
	return '?'
}

// ParseLevel maps a level name (case-insensitive, common abbreviations
// accepted) to a Level. Unknown names return 0.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG", "DBG", "TRACE", "TRC":
		return LevelDebug
	case "INFO", "INF":
		return LevelInfo
	case "WARN", "WRN", "WARNING":
		return LevelWarn
	case "ERROR", "ERR":
		return LevelError
	case "FATAL", "FTL", "CRIT", "CRITICAL":
		return LevelFatal
	}
	return 0
}

// ParseLevelMask combines level names into a mask
func ParseLevelMask(names []string) Level {
	var mask Level
	for _, n := range names {
		mask |= ParseLevel(n)
	}
	return mask
}

// Entry is one structured log record. Entries are never modified once
// appended to a Log.
type Entry struct {
	Stamp    time.Time
	Seq      uint32
	Level    Level
	Node     string
	Message  string
	File     string
	Function string
	Line     int
}

// Log is an append-only sequence of entries addressed by original index
type Log interface {
	// Len returns the number of entries
	Len() int

	// Entry returns the entry at original index idx (0-based)
	Entry(idx int) *Entry

	// MinTime returns the earliest timestamp seen so far
	MinTime() time.Time

	// Subscribe registers a listener for growth notifications
	Subscribe(l Listener)
}

// Listener receives notifications from a Log. Both callbacks run
// synchronously on the goroutine that appended.
type Listener interface {
	// EntriesAppended is called after the log grew; the new entries are
	// those at original indices at or above the previous length.
	EntriesAppended()

	// MinTimeChanged is called when an appended entry moved the earliest
	// known timestamp.
	MinTimeChanged()
}
