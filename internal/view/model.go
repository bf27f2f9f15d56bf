package view

import (
	"slices"
	"sort"

	"github.com/rs/zerolog"

	"github.com/TimelordUK/mconsole/internal/filter"
	"github.com/TimelordUK/mconsole/internal/source"
)

const (
	// BackwardChunk is the most entries one backward step examines
	BackwardChunk = 100
	// FlushThreshold is the pending size that must be exceeded before a
	// backward step publishes its results early
	FlushThreshold = 200
)

// Scheduler runs deferred work at the next cooperative opportunity on the
// same goroutine that owns the View
type Scheduler interface {
	Post(task func())
}

// scanState is everything a reset replaces
type scanState struct {
	generation uint64
	mapping    []int // accepted original indices, ascending
	pending    []int // backward results not yet in mapping, ascending
	earliest   int   // next index to scan backward is earliest-1
	latest     int   // next index to scan forward
}

// View is a filtered projection of a Log. New entries are classified as
// soon as the log reports them; entries that existed before the last reset
// are classified backward in small steps posted to a Scheduler.
//
// A View is not safe for concurrent use. The log's append notifications,
// the scheduler and all callers must share one goroutine.
type View struct {
	log    source.Log
	sched  Scheduler
	logger zerolog.Logger

	criteria filter.Criteria
	pred     *filter.Predicate

	state      scanState
	stepQueued bool

	displayTime  bool
	absoluteTime bool

	listeners []Listener
}

// Option configures a View
type Option func(*View)

// WithLogger sets the logger used for scan diagnostics
func WithLogger(l *zerolog.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.logger = l.With().Str("component", "view").Logger()
		}
	}
}

// WithCriteria sets the initial filter criteria
func WithCriteria(c filter.Criteria) Option {
	return func(v *View) {
		v.criteria = c.Clone()
	}
}

// WithDisplay sets the initial time display flags
func WithDisplay(showTime, absolute bool) Option {
	return func(v *View) {
		v.displayTime = showTime
		v.absoluteTime = absolute
	}
}

// New creates a view over log and starts classifying its existing entries
func New(log source.Log, sched Scheduler, opts ...Option) *View {
	v := &View{
		log:         log,
		sched:       sched,
		logger:      zerolog.Nop(),
		displayTime: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.pred = filter.NewPredicate(v.criteria)

	log.Subscribe(logListener{v})
	v.Reset()
	return v
}

// AddListener registers l for all subsequent events
func (v *View) AddListener(l Listener) {
	v.listeners = append(v.listeners, l)
}

func (v *View) emit(kind EventKind, start, end int) {
	ev := Event{Kind: kind, Start: start, End: end, Generation: v.state.generation}
	for _, l := range v.listeners {
		l(ev)
	}
}

// Reset discards the mapping and restarts classification from the current
// end of the log. Backward steps queued before the reset become no-ops.
func (v *View) Reset() {
	n := v.log.Len()
	v.state = scanState{
		generation: v.state.generation + 1,
		earliest:   n,
		latest:     n,
	}
	v.stepQueued = false

	v.logger.Debug().Uint64("generation", v.state.generation).Int("backlog", n).Msg("view reset")
	v.emit(EventReset, 0, 0)
	v.scheduleBackward()
}

// ProcessForward classifies entries appended since the last forward scan
// and appends the accepted ones as one batch
func (v *View) ProcessForward() {
	s := &v.state
	n := v.log.Len()

	var added []int
	for ; s.latest < n; s.latest++ {
		if v.pred.Accept(v.log.Entry(s.latest)) {
			added = append(added, s.latest)
		}
	}
	if len(added) == 0 {
		return
	}

	start := len(s.mapping)
	s.mapping = append(s.mapping, added...)
	v.emit(EventInserted, start, len(s.mapping))
}

// ProcessBackward runs one backward step: up to BackwardChunk entries
// below earliest are classified into the pending buffer, which is
// published once the start of the log is reached or it grows past
// FlushThreshold. Another step is scheduled while a backlog remains.
func (v *View) ProcessBackward() {
	s := &v.state

	var found []int // descending
	for i := 0; s.earliest > 0 && i < BackwardChunk; i++ {
		s.earliest--
		if v.pred.Accept(v.log.Entry(s.earliest)) {
			found = append(found, s.earliest)
		}
	}
	if len(found) > 0 {
		slices.Reverse(found)
		s.pending = append(found, s.pending...)
	}

	if (s.earliest == 0 && len(s.pending) > 0) || len(s.pending) > FlushThreshold {
		v.flushPending()
	}

	v.scheduleBackward()
}

// flushPending moves the pending buffer to the front of the mapping
func (v *View) flushPending() {
	s := &v.state
	n := len(s.pending)

	merged := make([]int, 0, n+len(s.mapping))
	merged = append(merged, s.pending...)
	merged = append(merged, s.mapping...)
	s.mapping = merged
	s.pending = nil

	v.logger.Debug().
		Uint64("generation", s.generation).
		Int("count", n).
		Int("earliest", s.earliest).
		Msg("flushed backward results")
	v.emit(EventInserted, 0, n)
}

func (v *View) scheduleBackward() {
	if v.state.earliest == 0 || v.stepQueued {
		return
	}
	v.stepQueued = true
	gen := v.state.generation
	v.sched.Post(func() {
		v.continueBackward(gen)
	})
}

// continueBackward is the scheduled form of ProcessBackward. It does
// nothing if a reset happened after it was posted.
func (v *View) continueBackward(gen uint64) {
	if gen != v.state.generation {
		v.logger.Debug().
			Uint64("issued", gen).
			Uint64("current", v.state.generation).
			Msg("dropped stale backward step")
		return
	}
	v.stepQueued = false
	v.ProcessBackward()
}

// Len returns the number of visible entries
func (v *View) Len() int {
	return len(v.state.mapping)
}

// Get returns the original index at position pos. pos must be in
// [0, Len()).
func (v *View) Get(pos int) int {
	return v.state.mapping[pos]
}

// Entry returns the entry at position pos. pos must be in [0, Len()).
func (v *View) Entry(pos int) *source.Entry {
	return v.log.Entry(v.state.mapping[pos])
}

// Position returns the position of the first visible entry whose original
// index is >= orig, and whether that entry is orig itself
func (v *View) Position(orig int) (int, bool) {
	m := v.state.mapping
	pos := sort.SearchInts(m, orig)
	return pos, pos < len(m) && m[pos] == orig
}

// Log returns the underlying log
func (v *View) Log() source.Log {
	return v.log
}

// Earliest returns the backward scan cursor
func (v *View) Earliest() int { return v.state.earliest }

// Latest returns the forward scan cursor
func (v *View) Latest() int { return v.state.latest }

// PendingLen returns the number of classified but unpublished entries
func (v *View) PendingLen() int { return len(v.state.pending) }

// Generation returns the reset counter
func (v *View) Generation() uint64 { return v.state.generation }

// Backlog returns how many entries remain to be scanned backward
func (v *View) Backlog() int { return v.state.earliest }

// Criteria returns a copy of the current criteria
func (v *View) Criteria() filter.Criteria {
	return v.criteria.Clone()
}

// SetCriteria replaces every filter setting at once and resets
func (v *View) SetCriteria(c filter.Criteria) {
	v.criteria = c.Clone()
	v.pred = filter.NewPredicate(v.criteria)
	v.Reset()
}

// SetNodeFilter selects the nodes to show
func (v *View) SetNodeFilter(names []string) {
	c := v.Criteria()
	c.Nodes = filter.NodeSet(names...)
	v.SetCriteria(c)
}

// SetSeverityFilter selects the levels to show
func (v *View) SetSeverityFilter(mask source.Level) {
	c := v.Criteria()
	c.Severity = mask
	v.SetCriteria(c)
}

// SetUseRegularExpressions switches between literal lists and patterns
func (v *View) SetUseRegularExpressions(use bool) {
	if use == v.criteria.UseRegexp {
		return
	}
	c := v.Criteria()
	c.UseRegexp = use
	v.SetCriteria(c)
}

// SetIncludeFilters sets the literal include list
func (v *View) SetIncludeFilters(list []string) {
	c := v.Criteria()
	c.IncludeStrings = slices.Clone(list)
	v.SetCriteria(c)
}

// SetExcludeFilters sets the literal exclude list
func (v *View) SetExcludeFilters(list []string) {
	c := v.Criteria()
	c.ExcludeStrings = slices.Clone(list)
	v.SetCriteria(c)
}

// SetIncludePattern sets the include regular expression
func (v *View) SetIncludePattern(pattern string) {
	c := v.Criteria()
	c.IncludePattern = pattern
	v.SetCriteria(c)
}

// SetExcludePattern sets the exclude regular expression
func (v *View) SetExcludePattern(pattern string) {
	c := v.Criteria()
	c.ExcludePattern = pattern
	v.SetCriteria(c)
}

// IsIncludeValid reports whether the include filter is usable
func (v *View) IsIncludeValid() bool {
	return v.pred.IncludeValid()
}

// IsExcludeValid reports whether the exclude filter is usable
func (v *View) IsExcludeValid() bool {
	return v.pred.ExcludeValid()
}

// DisplayTime reports whether timestamps are shown
func (v *View) DisplayTime() bool { return v.displayTime }

// AbsoluteTime reports whether timestamps are absolute
func (v *View) AbsoluteTime() bool { return v.absoluteTime }

// SetAbsoluteTime switches between absolute and relative timestamps
func (v *View) SetAbsoluteTime(absolute bool) {
	if absolute == v.absoluteTime {
		return
	}
	v.absoluteTime = absolute
	if v.displayTime {
		v.changedAll()
	}
}

// SetDisplayTime shows or hides timestamps
func (v *View) SetDisplayTime(show bool) {
	if show == v.displayTime {
		return
	}
	v.displayTime = show
	v.changedAll()
}

func (v *View) changedAll() {
	if len(v.state.mapping) == 0 {
		return
	}
	v.emit(EventChanged, 0, len(v.state.mapping))
}

// Relative stamps are measured from the log's minimum time
func (v *View) minTimeChanged() {
	if v.displayTime && !v.absoluteTime {
		v.changedAll()
	}
}

type logListener struct {
	v *View
}

func (l logListener) EntriesAppended() { l.v.ProcessForward() }

func (l logListener) MinTimeChanged() { l.v.minTimeChanged() }
