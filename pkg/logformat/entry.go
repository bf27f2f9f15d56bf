package logformat

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/TimelordUK/mconsole/internal/config"
	"github.com/TimelordUK/mconsole/internal/source"
)

// Key candidates for JSON lines, checked in order
var (
	stampKeys    = []string{"stamp", "ts", "time", "timestamp", "@timestamp"}
	levelKeys    = []string{"level", "severity", "lvl"}
	nodeKeys     = []string{"node", "name", "logger", "source"}
	messageKeys  = []string{"msg", "message"}
	fileKeys     = []string{"file"}
	functionKeys = []string{"function", "func"}
	lineKeys     = []string{"line"}
	seqKeys      = []string{"seq"}
)

// LineParser turns raw log lines into entries
type LineParser struct {
	levels       *LevelDetector
	stamps       *TimestampParser
	defaultLevel source.Level
}

// NewLineParser creates a parser using the configured level patterns
func NewLineParser(cfg *config.LogLevelConfig) *LineParser {
	return &LineParser{
		levels:       NewLevelDetector(cfg),
		stamps:       NewTimestampParser(),
		defaultLevel: source.LevelInfo,
	}
}

// Parse builds an entry from one line. JSON objects are decoded field by
// field; anything else is treated as plain text. node is used when the
// line does not name its own node.
func (p *LineParser) Parse(content []byte, node string, seq uint32) source.Entry {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var rec map[string]any
		if err := json.Unmarshal(trimmed, &rec); err == nil {
			return p.fromRecord(rec, node, seq)
		}
	}

	e := source.Entry{
		Seq:     seq,
		Node:    node,
		Message: string(content),
		Level:   p.levels.Detect(content),
	}
	if e.Level == 0 {
		e.Level = p.defaultLevel
	}
	if t, ok := p.stamps.Parse(content); ok {
		e.Stamp = t
	}
	return e
}

func (p *LineParser) fromRecord(rec map[string]any, node string, seq uint32) source.Entry {
	e := source.Entry{
		Seq:      seq,
		Node:     node,
		Level:    p.defaultLevel,
		Message:  stringField(rec, messageKeys),
		File:     stringField(rec, fileKeys),
		Function: stringField(rec, functionKeys),
	}

	if n := stringField(rec, nodeKeys); n != "" {
		e.Node = n
	}
	if l := levelField(rec, levelKeys); l != 0 {
		e.Level = l
	}
	if n, ok := intField(rec, lineKeys); ok {
		e.Line = int(n)
	}
	if n, ok := intField(rec, seqKeys); ok && n >= 0 {
		e.Seq = uint32(n)
	}
	e.Stamp = p.stampField(rec)

	return e
}

func (p *LineParser) stampField(rec map[string]any) time.Time {
	for _, k := range stampKeys {
		switch v := rec[k].(type) {
		case string:
			if t, ok := p.stamps.Parse([]byte(v)); ok {
				return t
			}
			if t, ok := ParseSecNsec(v); ok {
				return t
			}
		case float64:
			sec := int64(v)
			return time.Unix(sec, int64((v-float64(sec))*1e9))
		}
	}
	return time.Time{}
}

func stringField(rec map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func intField(rec map[string]any, keys []string) (int64, bool) {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case float64:
			return int64(v), true
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// levelField accepts level names as well as the numeric bit values
// written by the structured export
func levelField(rec map[string]any, keys []string) source.Level {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case string:
			if l := source.ParseLevel(strings.TrimSpace(v)); l != 0 {
				return l
			}
		case float64:
			l := source.Level(v)
			for _, known := range source.Levels {
				if l == known {
					return l
				}
			}
		}
	}
	return 0
}
