package source

import "time"

// MemoryLog is an in-process append-only Log
type MemoryLog struct {
	entries   []Entry
	minTime   time.Time
	listeners []Listener
}

// NewMemoryLog creates an empty log
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Len returns the number of entries
func (m *MemoryLog) Len() int {
	return len(m.entries)
}

// Entry returns the entry at idx. Out-of-range indices panic.
func (m *MemoryLog) Entry(idx int) *Entry {
	return &m.entries[idx]
}

// MinTime returns the earliest non-zero timestamp appended so far
func (m *MemoryLog) MinTime() time.Time {
	return m.minTime
}

// Subscribe registers a listener
func (m *MemoryLog) Subscribe(l Listener) {
	m.listeners = append(m.listeners, l)
}

// Append adds entries at the end and notifies listeners once for the batch
func (m *MemoryLog) Append(entries ...Entry) {
	if len(entries) == 0 {
		return
	}

	minChanged := false
	for _, e := range entries {
		if e.Stamp.IsZero() {
			continue
		}
		if m.minTime.IsZero() || e.Stamp.Before(m.minTime) {
			m.minTime = e.Stamp
			minChanged = true
		}
	}

	m.entries = append(m.entries, entries...)

	for _, l := range m.listeners {
		l.EntriesAppended()
	}
	if minChanged {
		for _, l := range m.listeners {
			l.MinTimeChanged()
		}
	}
}

// Nodes returns the distinct node names in order of first appearance
func (m *MemoryLog) Nodes() []string {
	seen := make(map[string]bool)
	var nodes []string
	for i := range m.entries {
		n := m.entries[i].Node
		if !seen[n] {
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	return nodes
}
