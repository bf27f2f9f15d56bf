package consolidate

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/TimelordUK/mconsole/internal/source"
	"github.com/TimelordUK/mconsole/pkg/logformat"
)

// ErrNoSources is returned when a collector is created without files
var ErrNoSources = errors.New("no source files provided")

// SourceWatcher tracks a single file feeding the collector
type SourceWatcher struct {
	source *source.FileSource
	node   string // node name for lines that do not carry one
}

// Collector merges several log files into one source log. Each poll
// appends the lines written since the previous poll, file by file.
type Collector struct {
	sources []*SourceWatcher
	log     *source.MemoryLog
	parser  *logformat.LineParser
	follow  bool
	seq     uint32
	logger  zerolog.Logger
}

// NodeName derives the node name for a file: its base name without
// extension
func NodeName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NewCollector opens every path. When follow is false, an unterminated
// last line is read as a complete entry.
func NewCollector(paths []string, log *source.MemoryLog, parser *logformat.LineParser, follow bool, logger *zerolog.Logger) (*Collector, error) {
	if len(paths) == 0 {
		return nil, ErrNoSources
	}

	var sources []*SourceWatcher
	for _, path := range paths {
		src, err := source.NewFileSource(path)
		if err != nil {
			// Clean up already opened sources
			for _, sw := range sources {
				sw.source.Close()
			}
			return nil, fmt.Errorf("failed to open source %s: %w", path, err)
		}

		sources = append(sources, &SourceWatcher{
			source: src,
			node:   NodeName(path),
		})
	}

	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "collector").Logger()
	}

	return &Collector{
		sources: sources,
		log:     log,
		parser:  parser,
		follow:  follow,
		logger:  l,
	}, nil
}

// Nodes returns the node name of every source, in argument order
func (c *Collector) Nodes() []string {
	nodes := make([]string, len(c.sources))
	for i, sw := range c.sources {
		nodes[i] = sw.node
	}
	return nodes
}

// Load appends everything currently in the files
func (c *Collector) Load() (int, error) {
	total := 0
	for _, sw := range c.sources {
		n, err := c.collect(sw)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Poll checks all sources for growth and appends new lines. A
// source that fails is logged and skipped so the others keep flowing.
func (c *Collector) Poll() int {
	total := 0
	for _, sw := range c.sources {
		if _, err := sw.source.Refresh(); err != nil {
			c.logger.Warn().Err(err).Str("path", sw.source.Path()).Msg("refresh failed")
			continue
		}

		n, err := c.collect(sw)
		total += n
		if err != nil {
			c.logger.Warn().Err(err).Str("path", sw.source.Path()).Msg("read failed")
		}
	}
	return total
}

// collect appends one source's unread lines as a single batch
func (c *Collector) collect(sw *SourceWatcher) (int, error) {
	lines, err := sw.source.ReadNew(!c.follow)
	if len(lines) > 0 {
		entries := make([]source.Entry, 0, len(lines))
		for _, line := range lines {
			if len(line) == 0 {
				continue
			}
			c.seq++
			entries = append(entries, c.parser.Parse(line, sw.node, c.seq))
		}
		c.log.Append(entries...)
		c.logger.Debug().Str("node", sw.node).Int("entries", len(entries)).Msg("collected")
		return len(entries), err
	}
	return 0, err
}

// SourceCount returns the number of source files
func (c *Collector) SourceCount() int {
	return len(c.sources)
}

// Close closes every source
func (c *Collector) Close() error {
	var errs []error
	for _, sw := range c.sources {
		if err := sw.source.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
