package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/TimelordUK/mconsole/internal/render"
	"github.com/TimelordUK/mconsole/internal/source"
	"github.com/TimelordUK/mconsole/internal/view"
)

// ErrUnknownFormat is returned for an unrecognised format name
var ErrUnknownFormat = errors.New("unknown export format")

// Format selects the output encoding
type Format int

const (
	// FormatText writes the current view as display lines
	FormatText Format = iota
	// FormatJSONL writes the whole log as one JSON object per line
	FormatJSONL
	// FormatYAML writes the whole log as a stream of YAML documents
	FormatYAML
)

// ParseFormat maps a format name to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "text", "txt":
		return FormatText, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFor picks a format from a file name's extension; anything
// unrecognised is text
func FormatFor(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatText
	}
	return f
}

// Record is the structured form of one entry
type Record struct {
	Stamp    string `json:"stamp" yaml:"stamp"`
	Seq      uint32 `json:"seq" yaml:"seq"`
	Level    string `json:"level" yaml:"level"`
	Node     string `json:"node" yaml:"node"`
	Message  string `json:"msg" yaml:"msg"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Function string `json:"function,omitempty" yaml:"function,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Exporter writes logs and views out
type Exporter struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewExporter creates an exporter. A nil logger discards.
func NewExporter(logger *zerolog.Logger) *Exporter {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "export").Logger()
	}
	return &Exporter{logger: l, now: time.Now}
}

// SaveToFile writes v to path in the format implied by the extension.
// Structured formats contain the whole source log, text contains only
// what the view shows.
func (x *Exporter) SaveToFile(path string, v *view.View) error {
	return x.SaveAs(path, FormatFor(path), v)
}

// SaveAs writes v to path in format f
func (x *Exporter) SaveAs(path string, f Format, v *view.View) error {
	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	w := bufio.NewWriter(outFile)
	switch f {
	case FormatJSONL:
		err = x.WriteJSONL(w, v.Log())
	case FormatYAML:
		err = x.WriteYAML(w, v.Log())
	default:
		err = WriteText(w, v)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := outFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteText writes every visible entry as its display line
func WriteText(w io.Writer, v *view.View) error {
	mode := render.TimeMode{
		Show:     v.DisplayTime(),
		Absolute: v.AbsoluteTime(),
		MinTime:  v.Log().MinTime(),
	}
	for pos := 0; pos < v.Len(); pos++ {
		if _, err := io.WriteString(w, render.DisplayLine(v.Entry(pos), mode)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSONL writes every entry in log as one JSON object per line
func (x *Exporter) WriteJSONL(w io.Writer, log source.Log) error {
	enc := json.NewEncoder(w)
	for i := 0; i < log.Len(); i++ {
		if err := enc.Encode(x.record(log.Entry(i))); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// WriteYAML writes every entry in log as its own YAML document
func (x *Exporter) WriteYAML(w io.Writer, log source.Log) error {
	enc := yaml.NewEncoder(w)
	for i := 0; i < log.Len(); i++ {
		if err := enc.Encode(x.record(log.Entry(i))); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return enc.Close()
}

// record converts an entry. Entries without a timestamp are written with
// the current time so every record carries a valid stamp.
func (x *Exporter) record(e *source.Entry) Record {
	stamp := e.Stamp
	if stamp.IsZero() {
		stamp = x.now()
		x.logger.Warn().
			Uint32("seq", e.Seq).
			Str("node", e.Node).
			Msg("entry has no timestamp, writing now instead")
	}

	return Record{
		Stamp:    render.FormatStamp(stamp, true, time.Time{}),
		Seq:      e.Seq,
		Level:    e.Level.String(),
		Node:     e.Node,
		Message:  e.Message,
		File:     e.File,
		Function: e.Function,
		Line:     e.Line,
	}
}
