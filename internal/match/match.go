// Package match provides the text matching strategies used by filters.
// A literal list and a regular expression share one interface so filters
// can switch between them without knowing which is in use.
package match

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultTimeout bounds a single regular expression evaluation
const DefaultTimeout = 50 * time.Millisecond

// Matcher tests message text
type Matcher interface {
	// Match reports whether text matches
	Match(text string) bool

	// Valid reports whether the matcher is well formed
	Valid() bool

	// Empty reports whether the matcher has nothing to match with
	Empty() bool
}

// Literals matches if text contains any of a set of substrings, ignoring case
type Literals struct {
	needles []string
}

// NewLiterals creates a literal matcher
func NewLiterals(list []string) *Literals {
	needles := make([]string, len(list))
	for i, s := range list {
		needles[i] = strings.ToLower(s)
	}
	return &Literals{needles: needles}
}

// Match reports whether text contains at least one literal
func (l *Literals) Match(text string) bool {
	if len(l.needles) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, n := range l.needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// Valid is always true for literals
func (l *Literals) Valid() bool { return true }

// Empty reports whether the list has no entries
func (l *Literals) Empty() bool { return len(l.needles) == 0 }

// Pattern matches text against a regular expression anywhere in the text.
// The empty pattern matches everything.
type Pattern struct {
	source string
	re     *regexp2.Regexp
	err    error
}

// Compile builds a pattern. Compilation errors are kept and reported by
// Valid and Err rather than returned.
func Compile(pattern string) *Pattern {
	p := &Pattern{source: pattern}
	if pattern == "" {
		return p
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		p.err = err
		return p
	}
	re.MatchTimeout = DefaultTimeout
	p.re = re
	return p
}

// Match reports whether the pattern matches anywhere in text. An invalid
// pattern matches nothing; a timed out evaluation counts as no match.
func (p *Pattern) Match(text string) bool {
	if p.source == "" {
		return true
	}
	if p.re == nil {
		return false
	}
	ok, err := p.re.MatchString(text)
	return err == nil && ok
}

// Valid reports whether the pattern compiled
func (p *Pattern) Valid() bool { return p.err == nil }

// Empty reports whether the pattern is the empty string
func (p *Pattern) Empty() bool { return p.source == "" }

// Err returns the compile error, if any
func (p *Pattern) Err() error { return p.err }

// String returns the pattern source
func (p *Pattern) String() string { return p.source }
