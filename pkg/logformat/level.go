package logformat

import (
	"bytes"

	"github.com/TimelordUK/mconsole/internal/config"
	"github.com/TimelordUK/mconsole/internal/source"
)

// LevelDetector detects log levels from plain text line content
type LevelDetector struct {
	order    []source.Level
	patterns map[source.Level][][]byte
}

// NewLevelDetector creates a detector from config
func NewLevelDetector(cfg *config.LogLevelConfig) *LevelDetector {
	toBytes := func(ps []string) [][]byte {
		out := make([][]byte, len(ps))
		for i, p := range ps {
			out[i] = []byte(p)
		}
		return out
	}

	return &LevelDetector{
		// Most severe first so "ERROR: retry WARN" is an error
		order: []source.Level{
			source.LevelFatal,
			source.LevelError,
			source.LevelWarn,
			source.LevelInfo,
			source.LevelDebug,
		},
		patterns: map[source.Level][][]byte{
			source.LevelDebug: toBytes(cfg.DebugPatterns),
			source.LevelInfo:  toBytes(cfg.InfoPatterns),
			source.LevelWarn:  toBytes(cfg.WarnPatterns),
			source.LevelError: toBytes(cfg.ErrorPatterns),
			source.LevelFatal: toBytes(cfg.FatalPatterns),
		},
	}
}

// Detect returns the log level for a line, or 0 if none matched
func (d *LevelDetector) Detect(content []byte) source.Level {
	for _, level := range d.order {
		for _, pattern := range d.patterns[level] {
			if bytes.Contains(content, pattern) {
				return level
			}
		}
	}
	return 0
}
