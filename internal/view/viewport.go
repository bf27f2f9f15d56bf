package view

import (
	"fmt"
	"strings"

	"github.com/TimelordUK/mconsole/internal/render"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Viewport manages the visible window over a View and keeps its scroll
// position and cursor stable as the View changes underneath it
type Viewport struct {
	rows     *View
	renderer render.Renderer

	// Dimensions
	width  int
	height int

	// Scroll position and selected row, both view positions
	scrollOffset int
	cursor       int

	// Stick to the newest entry as entries arrive
	following bool

	// Styling
	lineNumberStyle lipgloss.Style
	cursorStyle     lipgloss.Style

	showLineNumbers bool
}

// NewViewport creates a viewport over rows and subscribes it to changes
func NewViewport(rows *View, width, height int) *Viewport {
	vp := &Viewport{
		rows:            rows,
		width:           width,
		height:          height,
		renderer:        render.NewPlainRenderer(),
		lineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		cursorStyle:     lipgloss.NewStyle().Reverse(true),
	}
	rows.AddListener(vp.HandleEvent)
	return vp
}

// HandleEvent keeps position-keyed state in step with the view
func (v *Viewport) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventReset:
		v.scrollOffset = 0
		v.cursor = 0

	case EventInserted:
		if v.following {
			v.GotoBottom()
			return
		}
		// Entries inserted at or above the window push it down so the
		// same entries stay on screen
		if v.rows.Len() > ev.Len() {
			if v.scrollOffset >= ev.Start {
				v.scrollOffset += ev.Len()
			}
			if v.cursor >= ev.Start {
				v.cursor += ev.Len()
			}
		}
		v.clampScroll()

	case EventChanged:
		// Rendering reads the view directly
	}
}

// SetRenderer sets the line renderer
func (v *Viewport) SetRenderer(r render.Renderer) {
	v.renderer = r
}

// SetSize updates viewport dimensions
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// SetFollowing turns tail following on or off
func (v *Viewport) SetFollowing(following bool) {
	v.following = following
	if following {
		v.GotoBottom()
	}
}

// Following reports whether the viewport tracks the newest entry
func (v *Viewport) Following() bool {
	return v.following
}

// ScrollDown moves the cursor down by n rows
func (v *Viewport) ScrollDown(n int) {
	v.cursor += n
	v.clampScroll()
}

// ScrollUp moves the cursor up by n rows and stops following
func (v *Viewport) ScrollUp(n int) {
	v.following = false
	v.cursor -= n
	v.clampScroll()
}

// PageDown moves down by one page
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height - 1)
}

// PageUp moves up by one page
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height - 1)
}

// GotoTop moves to the first row
func (v *Viewport) GotoTop() {
	v.following = false
	v.cursor = 0
	v.clampScroll()
}

// GotoBottom moves to the last row
func (v *Viewport) GotoBottom() {
	v.cursor = v.rows.Len() - 1
	v.clampScroll()
}

// GotoLine moves the cursor to a view position
func (v *Viewport) GotoLine(pos int) {
	v.following = false
	v.cursor = pos
	v.clampScroll()
}

// GotoOriginal moves the cursor to the first visible entry at or after
// original index orig
func (v *Viewport) GotoOriginal(orig int) {
	pos, _ := v.rows.Position(orig)
	v.GotoLine(pos)
}

// Cursor returns the selected view position, or -1 when the view is empty
func (v *Viewport) Cursor() int {
	if v.rows.Len() == 0 {
		return -1
	}
	return v.cursor
}

// CurrentLine returns the top row position
func (v *Viewport) CurrentLine() int {
	return v.scrollOffset
}

// clampScroll keeps the cursor in range and inside the window
func (v *Viewport) clampScroll() {
	n := v.rows.Len()
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.height > 0 && v.cursor >= v.scrollOffset+v.height {
		v.scrollOffset = v.cursor - v.height + 1
	}

	maxScroll := n - v.height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if v.scrollOffset > maxScroll {
		v.scrollOffset = maxScroll
	}
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
}

// Render returns the viewport content as a string
func (v *Viewport) Render() string {
	var builder strings.Builder

	n := v.rows.Len()
	end := v.scrollOffset + v.height
	if end > n {
		end = n
	}

	mode := render.TimeMode{
		Show:     v.rows.DisplayTime(),
		Absolute: v.rows.AbsoluteTime(),
		MinTime:  v.rows.Log().MinTime(),
	}
	lineNumWidth := len(fmt.Sprintf("%d", v.rows.Log().Len()))

	for pos := v.scrollOffset; pos < end; pos++ {
		if pos > v.scrollOffset {
			builder.WriteString("\n")
		}

		entry := v.rows.Entry(pos)
		availableWidth := v.width

		if v.showLineNumbers {
			numStr := fmt.Sprintf("%*d ", lineNumWidth, v.rows.Get(pos)+1)
			builder.WriteString(v.lineNumberStyle.Render(numStr))
			availableWidth -= lineNumWidth + 1
		}

		text := render.DisplayLine(entry, mode)
		if availableWidth > 0 {
			text = ansi.Truncate(text, availableWidth, "…")
		}
		if pos == v.cursor {
			builder.WriteString(v.cursorStyle.Render(text))
		} else {
			builder.WriteString(v.renderer.Render(entry, text))
		}
	}

	// Pad with empty lines if needed
	for i := end - v.scrollOffset; i < v.height; i++ {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("~")
	}

	return builder.String()
}

// PercentScrolled returns how far through the view we are
func (v *Viewport) PercentScrolled() float64 {
	total := v.rows.Len()
	if total == 0 {
		return 0
	}
	if total <= v.height {
		return 100
	}
	return float64(v.scrollOffset) / float64(total-v.height) * 100
}

// SetShowLineNumbers toggles original index numbers
func (v *Viewport) SetShowLineNumbers(show bool) {
	v.showLineNumbers = show
}
