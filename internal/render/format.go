package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/TimelordUK/mconsole/internal/source"
)

// TimeMode selects how stamps appear in display lines
type TimeMode struct {
	Show     bool
	Absolute bool
	MinTime  time.Time // origin for relative stamps
}

// FormatStamp formats t as sec.nsec when absolute, otherwise as
// h:mm:ss:mmm since origin
func FormatStamp(t time.Time, absolute bool, origin time.Time) string {
	if t.IsZero() {
		return "-"
	}
	if absolute {
		return fmt.Sprintf("%d.%09d", t.Unix(), t.Nanosecond())
	}

	d := t.Sub(origin)
	if origin.IsZero() || d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	hours := secs / 3600
	minutes := (secs / 60) % 60
	seconds := secs % 60
	millis := (d % time.Second) / time.Millisecond

	return fmt.Sprintf("%d:%02d:%02d:%03d", hours, minutes, seconds, millis)
}

// DisplayLine returns the one-line form of an entry: "[L stamp] message"
// or "[L] message" when time is hidden
func DisplayLine(e *source.Entry, mode TimeMode) string {
	if mode.Show {
		return fmt.Sprintf("[%c %s] %s", e.Level.Letter(),
			FormatStamp(e.Stamp, mode.Absolute, mode.MinTime), e.Message)
	}
	return fmt.Sprintf("[%c] %s", e.Level.Letter(), e.Message)
}

// DetailHeader returns the metadata block shown above a message in the
// detail pane
func DetailHeader(e *source.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Timestamp: %s\n", FormatStamp(e.Stamp, true, time.Time{}))
	fmt.Fprintf(&b, "Seq: %d\n", e.Seq)
	fmt.Fprintf(&b, "Node: %s\n", e.Node)
	fmt.Fprintf(&b, "Level: %s\n", e.Level)
	fmt.Fprintf(&b, "Function: %s\n", e.Function)
	fmt.Fprintf(&b, "File: %s\n", e.File)
	fmt.Fprintf(&b, "Line: %d\n", e.Line)
	return b.String()
}
