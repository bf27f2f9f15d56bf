package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/TimelordUK/mconsole/internal/config"
	"github.com/TimelordUK/mconsole/internal/consolidate"
	"github.com/TimelordUK/mconsole/internal/export"
	"github.com/TimelordUK/mconsole/internal/filter"
	"github.com/TimelordUK/mconsole/internal/render"
	"github.com/TimelordUK/mconsole/internal/sched"
	"github.com/TimelordUK/mconsole/internal/source"
	"github.com/TimelordUK/mconsole/internal/view"
	"github.com/TimelordUK/mconsole/pkg/logformat"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeInclude
	ModeExclude
	ModeNodes
	ModeSave
	ModeGoto
	ModeDetail
)

// idleMsg asks the model to run one queued background step
type idleMsg struct{}

// pollMsg asks the model to check the input files for growth
type pollMsg time.Time

// ModelOptions configures a new Model
type ModelOptions struct {
	Paths  []string
	Config *config.Config
	Logger *zerolog.Logger

	// Criteria overrides the criteria derived from Config when set
	Criteria *filter.Criteria
}

// Model is the main application model
type Model struct {
	cfg       *config.Config
	log       *source.MemoryLog
	collector *consolidate.Collector
	queue     *sched.Queue
	view      *view.View
	viewport  *view.Viewport
	detail    *render.DetailRenderer
	exporter  *export.Exporter
	logger    *zerolog.Logger

	keys  keyMap
	help  help.Model
	input textinput.Model

	mode      Mode
	width     int
	height    int
	idleArmed bool
	polling   bool

	status string
}

// NewModelWithOptions opens the input files and builds the model
func NewModelWithOptions(opts ModelOptions) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger

	log := source.NewMemoryLog()
	var collector *consolidate.Collector
	if len(opts.Paths) > 0 {
		parser := logformat.NewLineParser(&cfg.LogLevels)
		c, err := consolidate.NewCollector(opts.Paths, log, parser, cfg.Follow.Enabled, logger)
		if err != nil {
			return nil, err
		}
		if _, err := c.Load(); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to load logs: %w", err)
		}
		collector = c
	}

	criteria := filter.FromConfig(cfg.Filter, knownNodes(log, collector))
	if opts.Criteria != nil {
		criteria = *opts.Criteria
	}

	return NewModel(log, collector, cfg, criteria, logger), nil
}

// NewModel builds a model over an existing log. collector may be nil.
func NewModel(log *source.MemoryLog, collector *consolidate.Collector, cfg *config.Config, criteria filter.Criteria, logger *zerolog.Logger) *Model {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	queue := sched.NewQueue()
	v := view.New(log, queue,
		view.WithLogger(logger),
		view.WithCriteria(criteria),
		view.WithDisplay(cfg.Display.ShowTime, cfg.Display.AbsoluteTime),
	)

	vp := view.NewViewport(v, 80, 24)
	vp.SetRenderer(render.NewLogLevelRenderer(cfg))
	vp.SetShowLineNumbers(cfg.Display.ShowLineNumbers)
	vp.SetFollowing(cfg.Follow.Enabled)

	ti := textinput.New()
	ti.CharLimit = 512

	return &Model{
		cfg:       cfg,
		log:       log,
		collector: collector,
		queue:     queue,
		view:      v,
		viewport:  vp,
		detail:    render.NewDetailRenderer(),
		exporter:  export.NewExporter(logger),
		logger:    logger,
		keys:      newKeyMap(&cfg.Keybindings),
		help:      help.New(),
		input:     ti,
		mode:      ModeNormal,
		polling:   collector != nil && cfg.Follow.Enabled,
	}
}

func knownNodes(log *source.MemoryLog, collector *consolidate.Collector) []string {
	seen := make(map[string]bool)
	var nodes []string
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				nodes = append(nodes, n)
			}
		}
	}
	if collector != nil {
		add(collector.Nodes())
	}
	add(log.Nodes())
	return nodes
}

// FilteredView returns the filtered view
func (m *Model) FilteredView() *view.View {
	return m.view
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), m.idleCmd())
}

// idleCmd schedules one background step if work is queued and no step
// message is already in flight
func (m *Model) idleCmd() tea.Cmd {
	if m.idleArmed || m.queue.Pending() == 0 {
		return nil
	}
	m.idleArmed = true
	return func() tea.Msg { return idleMsg{} }
}

func (m *Model) pollCmd() tea.Cmd {
	if !m.polling {
		return nil
	}
	interval := time.Duration(m.cfg.Follow.PollIntervalMs) * time.Millisecond
	return tea.Tick(interval, func(t time.Time) tea.Msg { return pollMsg(t) })
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case idleMsg:
		m.idleArmed = false
		m.queue.RunOne()

	case pollMsg:
		if m.collector != nil {
			m.collector.Poll()
		}
		cmd = m.pollCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// Reserve 2 lines for status bar and help
		m.viewport.SetSize(msg.Width, msg.Height-2)

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}

	return m, tea.Batch(cmd, m.idleCmd())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case ModeNormal:
		return m.handleNormalKey(msg)
	case ModeDetail:
		m.mode = ModeNormal
		return nil
	default:
		return m.handleInputKey(msg)
	}
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	m.status = ""
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit

	case key.Matches(msg, k.ScrollDown):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, k.ScrollUp):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, k.PageDown):
		m.viewport.PageDown()
	case key.Matches(msg, k.PageUp):
		m.viewport.PageUp()
	case key.Matches(msg, k.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, k.Bottom):
		m.viewport.GotoBottom()

	case key.Matches(msg, k.Levels):
		// The nth level key toggles the nth level
		if i := slices.Index(m.cfg.Keybindings.Levels, msg.String()); i >= 0 && i < len(source.Levels) {
			c := m.view.Criteria()
			m.view.SetSeverityFilter(c.Severity ^ source.Levels[i])
		}

	case key.Matches(msg, k.ToggleRegexp):
		m.view.SetUseRegularExpressions(!m.view.Criteria().UseRegexp)
	case key.Matches(msg, k.ToggleTime):
		m.view.SetDisplayTime(!m.view.DisplayTime())
	case key.Matches(msg, k.ToggleAbs):
		m.view.SetAbsoluteTime(!m.view.AbsoluteTime())

	case key.Matches(msg, k.Follow):
		m.viewport.SetFollowing(!m.viewport.Following())

	case key.Matches(msg, k.Detail):
		if m.viewport.Cursor() >= 0 {
			m.mode = ModeDetail
		}

	case key.Matches(msg, k.Include):
		c := m.view.Criteria()
		if c.UseRegexp {
			return m.prompt(ModeInclude, "Include pattern...", c.IncludePattern)
		}
		return m.prompt(ModeInclude, "Include (comma separated)...", strings.Join(c.IncludeStrings, ", "))

	case key.Matches(msg, k.Exclude):
		c := m.view.Criteria()
		if c.UseRegexp {
			return m.prompt(ModeExclude, "Exclude pattern...", c.ExcludePattern)
		}
		return m.prompt(ModeExclude, "Exclude (comma separated)...", strings.Join(c.ExcludeStrings, ", "))

	case key.Matches(msg, k.Nodes):
		return m.prompt(ModeNodes, "Nodes (comma separated, * for all)...",
			strings.Join(m.view.Criteria().NodeNames(), ", "))

	case key.Matches(msg, k.Save):
		return m.prompt(ModeSave, "Save to (.jsonl/.yaml for full log, else view text)...", "")

	case key.Matches(msg, k.Goto):
		return m.prompt(ModeGoto, "Line number...", "")
	}

	return nil
}

func (m *Model) prompt(mode Mode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return textinput.Blink
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.apply(m.mode, m.input.Value())
		m.mode = ModeNormal
		m.input.Blur()
		return nil

	case "esc":
		m.mode = ModeNormal
		m.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// apply commits a prompt's value
func (m *Model) apply(mode Mode, value string) {
	switch mode {
	case ModeInclude:
		if m.view.Criteria().UseRegexp {
			m.view.SetIncludePattern(value)
		} else {
			m.view.SetIncludeFilters(splitList(value))
		}

	case ModeExclude:
		if m.view.Criteria().UseRegexp {
			m.view.SetExcludePattern(value)
		} else {
			m.view.SetExcludeFilters(splitList(value))
		}

	case ModeNodes:
		names := splitList(value)
		if len(names) == 1 && names[0] == "*" {
			names = knownNodes(m.log, m.collector)
		}
		m.view.SetNodeFilter(names)

	case ModeSave:
		path := strings.TrimSpace(value)
		if path == "" {
			return
		}
		if err := m.exporter.SaveToFile(path, m.view); err != nil {
			m.status = err.Error()
			m.logger.Error().Err(err).Str("path", path).Msg("save failed")
			return
		}
		m.status = "saved " + path

	case ModeGoto:
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
			m.viewport.GotoOriginal(n - 1) // Convert to 0-based
		}
	}
}

// splitList splits comma separated input, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// View implements tea.Model
func (m *Model) View() string {
	var builder strings.Builder

	if m.mode == ModeDetail {
		if pos := m.viewport.Cursor(); pos >= 0 {
			builder.WriteString(m.detail.Render(m.view.Entry(pos)))
		}
		builder.WriteString("\n\n")
		builder.WriteString(m.help.Styles.ShortDesc.Render("press any key to return"))
		return builder.String()
	}

	builder.WriteString(m.viewport.Render())
	builder.WriteString("\n")

	statusStyle := lipgloss.NewStyle().
		Background(lipgloss.Color(m.cfg.Theme.StatusBar)).
		Foreground(lipgloss.Color(m.cfg.Theme.StatusBarText)).
		Width(m.width)

	switch m.mode {
	case ModeNormal:
		builder.WriteString(statusStyle.Render(m.statusLine()))
		builder.WriteString("\n")
		builder.WriteString(m.help.View(m.keys))
	default:
		builder.WriteString(statusStyle.Render(m.statusLine()))
		builder.WriteString("\n")
		builder.WriteString(m.input.View())
	}

	return builder.String()
}

func (m *Model) statusLine() string {
	c := m.view.Criteria()
	invalid := lipgloss.NewStyle().Foreground(lipgloss.Color(m.cfg.Theme.Invalid))

	var levels strings.Builder
	for _, l := range source.Levels {
		if c.Severity&l != 0 {
			levels.WriteByte(l.Letter())
		} else {
			levels.WriteByte('-')
		}
	}

	parts := []string{
		fmt.Sprintf("%d/%d", m.view.Len(), m.log.Len()),
		levels.String(),
		fmt.Sprintf("nodes %d", len(c.NodeNames())),
	}
	if backlog := m.view.Backlog(); backlog > 0 {
		parts = append(parts, fmt.Sprintf("scanning %d", backlog))
	}
	if c.UseRegexp {
		parts = append(parts, "regexp")
	}
	if !m.view.IsIncludeValid() {
		parts = append(parts, invalid.Render("include invalid"))
	}
	if !m.view.IsExcludeValid() {
		parts = append(parts, invalid.Render("exclude invalid"))
	}
	if m.viewport.Following() {
		parts = append(parts, "follow")
	}
	parts = append(parts, fmt.Sprintf("%.0f%%", m.viewport.PercentScrolled()))
	if m.status != "" {
		parts = append(parts, m.status)
	}

	return " " + strings.Join(parts, "  ")
}

// Close cleans up resources
func (m *Model) Close() error {
	if m.collector != nil {
		return m.collector.Close()
	}
	return nil
}
