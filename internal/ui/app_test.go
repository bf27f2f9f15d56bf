package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/mconsole/internal/config"
	"github.com/TimelordUK/mconsole/internal/filter"
	"github.com/TimelordUK/mconsole/internal/source"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func enter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func newTestModel(t *testing.T, n int) (*Model, *source.MemoryLog) {
	t.Helper()
	return newTestModelWithConfig(t, n, config.DefaultConfig())
}

func newTestModelWithConfig(t *testing.T, n int, cfg *config.Config) (*Model, *source.MemoryLog) {
	t.Helper()
	log := source.NewMemoryLog()
	for i := 0; i < n; i++ {
		level := source.LevelInfo
		if i%10 == 0 {
			level = source.LevelError
		}
		node := "a"
		if i%2 == 1 {
			node = "b"
		}
		log.Append(source.Entry{Level: level, Node: node, Message: fmt.Sprintf("message %d", i)})
	}

	cfg.Follow.Enabled = false
	criteria := filter.FromConfig(cfg.Filter, log.Nodes())
	m := NewModel(log, nil, cfg, criteria, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 12})
	return m, log
}

// drain delivers idle messages until no background step is queued,
// whether the work was queued by a key press or a direct call
func drain(t *testing.T, m *Model) {
	t.Helper()
	for i := 0; i < 1000 && m.queue.Pending() > 0; i++ {
		m.Update(idleMsg{})
	}
	require.Equal(t, 0, m.queue.Pending())
	require.False(t, m.idleArmed)
}

func TestIdleMessagesRunBackwardScan(t *testing.T) {
	m, log := newTestModel(t, 450)
	require.True(t, m.idleArmed, "window size message arms the first step")
	assert.Equal(t, 0, m.FilteredView().Len())

	drain(t, m)

	assert.Equal(t, log.Len(), m.FilteredView().Len())
	assert.Equal(t, 0, m.queue.Pending())
	assert.Contains(t, m.statusLine(), "450/450")
}

func TestLevelKeysToggleSeverity(t *testing.T) {
	m, _ := newTestModel(t, 100)
	drain(t, m)

	m.Update(runes("2"))
	drain(t, m)
	assert.Equal(t, source.LevelAll&^source.LevelInfo, m.FilteredView().Criteria().Severity)
	assert.Equal(t, 10, m.FilteredView().Len())
	assert.Contains(t, m.statusLine(), "D-WEF")

	m.Update(runes("2"))
	drain(t, m)
	assert.Equal(t, 100, m.FilteredView().Len())
}

func TestConfiguredLevelAndGotoKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keybindings.Levels = []string{"!", "@", "#", "$", "%"}
	cfg.Keybindings.Goto = []string{"L"}
	m, _ := newTestModelWithConfig(t, 100, cfg)
	drain(t, m)

	m.Update(runes("2"))
	drain(t, m)
	assert.Equal(t, source.LevelAll, m.FilteredView().Criteria().Severity, "default level keys are unbound")

	m.Update(runes("@"))
	drain(t, m)
	assert.Equal(t, source.LevelAll&^source.LevelInfo, m.FilteredView().Criteria().Severity)

	m.Update(runes("%"))
	drain(t, m)
	assert.Equal(t, source.LevelDebug|source.LevelWarn|source.LevelError, m.FilteredView().Criteria().Severity)

	m.Update(runes(":"))
	assert.Equal(t, ModeNormal, m.mode)
	m.Update(runes("L"))
	assert.Equal(t, ModeGoto, m.mode)
	m.Update(runes("42"))
	m.Update(enter())
	assert.Equal(t, ModeNormal, m.mode)
}

func TestIncludePrompt(t *testing.T) {
	m, _ := newTestModel(t, 30)
	drain(t, m)

	m.Update(runes("/"))
	require.Equal(t, ModeInclude, m.mode)
	m.Update(runes("message 1, message 2"))
	m.Update(enter())
	drain(t, m)

	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, []string{"message 1", "message 2"}, m.FilteredView().Criteria().IncludeStrings)
	// message 1, 10..19, 2, 20..29
	assert.Equal(t, 22, m.FilteredView().Len())
}

func TestRegexpModeUsesPattern(t *testing.T) {
	m, _ := newTestModel(t, 30)
	drain(t, m)

	m.Update(runes("r"))
	require.True(t, m.FilteredView().Criteria().UseRegexp)

	m.Update(runes("\\"))
	require.Equal(t, ModeExclude, m.mode)
	m.Update(runes("(["))
	m.Update(enter())
	drain(t, m)

	assert.False(t, m.FilteredView().IsExcludeValid())
	assert.Contains(t, m.statusLine(), "exclude invalid")
	assert.Equal(t, 30, m.FilteredView().Len(), "an invalid exclude rejects nothing")
}

func TestNodePrompt(t *testing.T) {
	m, _ := newTestModel(t, 20)
	drain(t, m)

	m.apply(ModeNodes, "b")
	drain(t, m)
	assert.Equal(t, 10, m.FilteredView().Len())

	m.apply(ModeNodes, "*")
	drain(t, m)
	assert.Equal(t, 20, m.FilteredView().Len())
}

func TestEscapeCancelsPrompt(t *testing.T) {
	m, _ := newTestModel(t, 5)
	drain(t, m)

	m.Update(runes("/"))
	m.Update(runes("zzz"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.FilteredView().Criteria().IncludeStrings)
}

func TestDetailMode(t *testing.T) {
	m, _ := newTestModel(t, 5)
	drain(t, m)

	m.Update(enter())
	require.Equal(t, ModeDetail, m.mode)
	out := m.View()
	assert.Contains(t, out, "Node: a")
	assert.Contains(t, out, "message 0")

	m.Update(runes("x"))
	assert.Equal(t, ModeNormal, m.mode)
}

func TestSaveWritesView(t *testing.T) {
	m, _ := newTestModel(t, 20)
	drain(t, m)
	m.view.SetSeverityFilter(source.LevelError)
	drain(t, m)

	path := filepath.Join(t.TempDir(), "errors.txt")
	m.apply(ModeSave, path)
	assert.Equal(t, "saved "+path, m.status)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestGotoOriginalLine(t *testing.T) {
	m, _ := newTestModel(t, 50)
	drain(t, m)

	m.apply(ModeGoto, "31")
	assert.Equal(t, 30, m.FilteredView().Get(m.viewport.Cursor()))

	m.apply(ModeGoto, "nope")
	assert.Equal(t, 30, m.FilteredView().Get(m.viewport.Cursor()))
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, 1)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, splitList(" a, ,b c ,"))
	assert.Nil(t, splitList(""))
}
