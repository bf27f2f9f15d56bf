package filter

import (
	"slices"
	"sort"

	"github.com/TimelordUK/mconsole/internal/match"
	"github.com/TimelordUK/mconsole/internal/source"
)

// Criteria is the full set of filter settings. A zero Criteria accepts
// nothing: no severity bits are set and no node is selected.
type Criteria struct {
	Severity       source.Level
	Nodes          map[string]bool
	UseRegexp      bool
	IncludeStrings []string
	ExcludeStrings []string
	IncludePattern string
	ExcludePattern string
}

// NodeSet builds a node set from names
func NodeSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// NodeNames returns the selected node names, sorted
func (c Criteria) NodeNames() []string {
	names := make([]string, 0, len(c.Nodes))
	for n, ok := range c.Nodes {
		if ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy that shares no slices or maps with c
func (c Criteria) Clone() Criteria {
	out := c
	out.Nodes = make(map[string]bool, len(c.Nodes))
	for n, ok := range c.Nodes {
		out.Nodes[n] = ok
	}
	out.IncludeStrings = slices.Clone(c.IncludeStrings)
	out.ExcludeStrings = slices.Clone(c.ExcludeStrings)
	return out
}

// Predicate decides whether an entry passes a Criteria
type Predicate struct {
	severity source.Level
	nodes    map[string]bool
	include  match.Matcher
	exclude  match.Matcher
}

// NewPredicate compiles criteria into a predicate. Literal lists are used
// unless UseRegexp is set, in which case the patterns are used.
func NewPredicate(c Criteria) *Predicate {
	p := &Predicate{
		severity: c.Severity,
		nodes:    c.Clone().Nodes,
	}
	if c.UseRegexp {
		p.include = match.Compile(c.IncludePattern)
		p.exclude = match.Compile(c.ExcludePattern)
	} else {
		p.include = match.NewLiterals(c.IncludeStrings)
		p.exclude = match.NewLiterals(c.ExcludeStrings)
	}
	return p
}

// Accept reports whether e passes severity, node, include and exclude tests
func (p *Predicate) Accept(e *source.Entry) bool {
	if e.Level&p.severity == 0 {
		return false
	}
	if !p.nodes[e.Node] {
		return false
	}
	if !p.includes(e.Message) {
		return false
	}
	return !p.excludes(e.Message)
}

// An empty include list or pattern lets everything through
func (p *Predicate) includes(msg string) bool {
	if p.include.Empty() {
		return true
	}
	return p.include.Match(msg)
}

// An empty exclude never rejects, even though an empty pattern matches
// everything
func (p *Predicate) excludes(msg string) bool {
	if p.exclude.Empty() {
		return false
	}
	return p.exclude.Match(msg)
}

// IncludeValid reports whether the include matcher is well formed
func (p *Predicate) IncludeValid() bool {
	return p.include.Valid()
}

// ExcludeValid reports whether the exclude matcher is well formed
func (p *Predicate) ExcludeValid() bool {
	return p.exclude.Valid()
}
