package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Len(t, cfg.Filter.Severity, 5)
	assert.Empty(t, cfg.Filter.Nodes)
	assert.True(t, cfg.Display.ShowTime)
	assert.True(t, cfg.Follow.Enabled)
	assert.Equal(t, 250, cfg.Follow.PollIntervalMs)
	assert.Equal(t, []string{"/"}, cfg.Keybindings.Include)
	assert.Equal(t, []string{":"}, cfg.Keybindings.Goto)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, cfg.Keybindings.Levels)
}

func TestLoadFromKeybindings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[keybindings]
goto = ["ctrl+g"]
levels = ["f1", "f2", "f3", "f4", "f5"]
`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl+g"}, cfg.Keybindings.Goto)
	assert.Equal(t, []string{"f1", "f2", "f3", "f4", "f5"}, cfg.Keybindings.Levels)
	assert.Equal(t, []string{"q", "ctrl+c"}, cfg.Keybindings.Quit)
}

func TestLoadFromMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[filter]
severity = ["warn", "error"]
nodes = ["planner"]
use_regexp = true
include_pattern = "^nav"

[display]
absolute_time = true

[follow]
poll_interval_ms = 0
`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"warn", "error"}, cfg.Filter.Severity)
	assert.Equal(t, []string{"planner"}, cfg.Filter.Nodes)
	assert.True(t, cfg.Filter.UseRegexp)
	assert.Equal(t, "^nav", cfg.Filter.IncludePattern)
	assert.True(t, cfg.Display.AbsoluteTime)
	assert.True(t, cfg.Display.ShowTime, "unset keys keep their defaults")
	assert.Equal(t, 250, cfg.Follow.PollIntervalMs, "non-positive interval falls back")
	assert.Equal(t, DefaultConfig().Keybindings, cfg.Keybindings)
}

func TestLoadFromBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[filter\n"), 0644))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := DefaultConfig()
	cfg.Filter.Exclude = []string{"heartbeat"}
	require.NoError(t, Save(cfg))

	path := GetConfigPath()
	assert.Equal(t, filepath.Join(dir, "mconsole", "config.toml"), path)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"heartbeat"}, loaded.Filter.Exclude)
}
