package filter

import (
	"github.com/TimelordUK/mconsole/internal/config"
	"github.com/TimelordUK/mconsole/internal/source"
)

// FromConfig builds startup criteria. When the config names no nodes,
// every node in known is selected.
func FromConfig(fc config.FilterConfig, known []string) Criteria {
	nodes := fc.Nodes
	if len(nodes) == 0 {
		nodes = known
	}

	return Criteria{
		Severity:       source.ParseLevelMask(fc.Severity),
		Nodes:          NodeSet(nodes...),
		UseRegexp:      fc.UseRegexp,
		IncludeStrings: fc.Include,
		ExcludeStrings: fc.Exclude,
		IncludePattern: fc.IncludePattern,
		ExcludePattern: fc.ExcludePattern,
	}
}
