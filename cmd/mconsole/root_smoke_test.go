package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{}, args...))
	return cmd.Execute()
}

func TestRootRequiresFiles(t *testing.T) {
	assert.Error(t, runRoot(t))
}

func TestExportFiltersText(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "planner.log")
	require.NoError(t, os.WriteFile(in, []byte("[INFO] start\n[ERROR] no path\n[INFO] heartbeat\n"), 0644))
	out := filepath.Join(dir, "out.txt")

	require.NoError(t, runRoot(t, "export", "-o", out, "-s", "error,info", "-x", "heartbeat", in))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[I -] [INFO] start")
	assert.Contains(t, lines[1], "no path")
}

func TestExportWholeLogAsJSONL(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.log")
	require.NoError(t, os.WriteFile(in, []byte(`{"stamp":"1.5","level":"warn","msg":"hi"}`+"\n"), 0644))
	out := filepath.Join(dir, "out.data")

	require.NoError(t, runRoot(t, "export", "-o", out, "--format", "jsonl", "-s", "error", in))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stamp":"1.500000000"`)
	assert.Contains(t, string(data), `"node":"a"`)
}

func TestExportRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.log")
	require.NoError(t, os.WriteFile(in, []byte("x\n"), 0644))

	assert.Error(t, runRoot(t, "export", in), "output is required")
	assert.Error(t, runRoot(t, "export", "-o", filepath.Join(dir, "o"), "--format", "csv", in))
	assert.Error(t, runRoot(t, "export", "-o", filepath.Join(dir, "o"), "-r", "--include-pattern", "([", in))
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, closer, err := newLogger(path)
	require.NoError(t, err)
	logger.Debug().Int("n", 1).Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"level":"debug"`)

	nop, closer, err := newLogger("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.Disabled, nop.GetLevel())
	assert.NoError(t, closer.Close())
}
