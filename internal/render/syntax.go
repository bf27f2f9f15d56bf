package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/TimelordUK/mconsole/internal/source"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
)

// DetailRenderer renders the detail pane for one entry. Messages that
// carry a JSON payload are pretty-printed and syntax highlighted.
type DetailRenderer struct {
	syntaxTheme string
	formatter   string
	header      lipgloss.Style
}

// NewDetailRenderer creates a detail renderer
func NewDetailRenderer() *DetailRenderer {
	return &DetailRenderer{
		syntaxTheme: "monokai",
		formatter:   "terminal256",
		header:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Render returns the header block followed by the message
func (r *DetailRenderer) Render(e *source.Entry) string {
	var b strings.Builder
	b.WriteString(r.header.Render(strings.TrimRight(DetailHeader(e), "\n")))
	b.WriteString("\n\n")
	b.WriteString(r.message(e.Message))
	return b.String()
}

func (r *DetailRenderer) message(msg string) string {
	payload, lexer := jsonPayload(msg)
	if payload == "" {
		return msg
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, payload, lexer, r.formatter, r.syntaxTheme); err != nil {
		return msg
	}
	return buf.String()
}

// jsonPayload returns an indented copy of msg if msg is a JSON object or
// array, along with the chroma lexer to use for it
func jsonPayload(msg string) (string, string) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return "", ""
	}

	var out bytes.Buffer
	if err := json.Indent(&out, []byte(trimmed), "", "  "); err != nil {
		return "", ""
	}
	return out.String(), "json"
}
