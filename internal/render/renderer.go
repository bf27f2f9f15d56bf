package render

import (
	"github.com/TimelordUK/mconsole/internal/config"
	"github.com/TimelordUK/mconsole/internal/source"
	"github.com/charmbracelet/lipgloss"
)

// Renderer applies styling to a display line
type Renderer interface {
	Render(e *source.Entry, text string) string
}

// LogLevelRenderer colors lines based on log level
type LogLevelRenderer struct {
	styles map[source.Level]lipgloss.Style
}

// NewLogLevelRenderer creates a renderer with config
func NewLogLevelRenderer(cfg *config.Config) *LogLevelRenderer {
	levels := cfg.Theme.Levels
	return &LogLevelRenderer{
		styles: map[source.Level]lipgloss.Style{
			source.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color(levels.Debug)),
			source.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color(levels.Info)),
			source.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color(levels.Warn)),
			source.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color(levels.Error)),
			source.LevelFatal: lipgloss.NewStyle().Foreground(lipgloss.Color(levels.Fatal)).Bold(true),
		},
	}
}

// Render applies the entry's level style to text
func (r *LogLevelRenderer) Render(e *source.Entry, text string) string {
	style, ok := r.styles[e.Level]
	if !ok {
		return text
	}
	return style.Render(text)
}

// PlainRenderer renders without styling
type PlainRenderer struct{}

// NewPlainRenderer creates a plain renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// Render returns text as-is
func (r *PlainRenderer) Render(_ *source.Entry, text string) string {
	return text
}
