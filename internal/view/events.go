package view

import "fmt"

// EventKind identifies a change to a View
type EventKind int

const (
	// EventReset means the mapping was rebuilt; cached positions are void
	EventReset EventKind = iota
	// EventInserted means positions [Start, End) were added
	EventInserted
	// EventChanged means positions [Start, End) render differently
	EventChanged
)

func (k EventKind) String() string {
	switch k {
	case EventReset:
		return "reset"
	case EventInserted:
		return "inserted"
	case EventChanged:
		return "changed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event describes one change. Start and End are view positions, End
// exclusive; both are zero for EventReset.
type Event struct {
	Kind       EventKind
	Start      int
	End        int
	Generation uint64
}

// Len returns the number of positions covered
func (e Event) Len() int {
	return e.End - e.Start
}

func (e Event) String() string {
	if e.Kind == EventReset {
		return fmt.Sprintf("reset(gen %d)", e.Generation)
	}
	return fmt.Sprintf("%s[%d,%d)(gen %d)", e.Kind, e.Start, e.End, e.Generation)
}

// Listener receives events synchronously, in the order they happen
type Listener func(Event)
