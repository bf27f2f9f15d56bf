package consolidate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/mconsole/internal/config"
	"github.com/TimelordUK/mconsole/internal/source"
	"github.com/TimelordUK/mconsole/pkg/logformat"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func newCollector(t *testing.T, paths []string, follow bool) (*Collector, *source.MemoryLog) {
	t.Helper()
	log := source.NewMemoryLog()
	c, err := NewCollector(paths, log, logformat.NewLineParser(&config.DefaultConfig().LogLevels), follow, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, log
}

func messages(log *source.MemoryLog) []string {
	out := make([]string, log.Len())
	for i := range out {
		out[i] = log.Entry(i).Message
	}
	return out
}

func TestNodeName(t *testing.T) {
	assert.Equal(t, "planner", NodeName("/var/log/planner.log"))
	assert.Equal(t, "driver", NodeName("driver"))
}

func TestNewCollectorWithoutSources(t *testing.T) {
	_, err := NewCollector(nil, source.NewMemoryLog(), nil, false, nil)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestNewCollectorMissingFile(t *testing.T) {
	dir := t.TempDir()
	ok := writeLog(t, dir, "a.log", "x\n")

	_, err := NewCollector([]string{ok, filepath.Join(dir, "nope.log")}, source.NewMemoryLog(), nil, false, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMergesSourcesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeLog(t, dir, "alpha.log", "[INFO] a1\n\n[ERROR] a2\n")
	b := writeLog(t, dir, "beta.log", "b1")

	c, log := newCollector(t, []string{a, b}, false)
	assert.Equal(t, []string{"alpha", "beta"}, c.Nodes())
	assert.Equal(t, 2, c.SourceCount())

	n, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, n, "blank lines are skipped")

	assert.Equal(t, []string{"[INFO] a1", "[ERROR] a2", "b1"}, messages(log))
	assert.Equal(t, source.LevelError, log.Entry(1).Level)
	assert.Equal(t, "beta", log.Entry(2).Node)
	assert.Equal(t, uint32(3), log.Entry(2).Seq)
}

func TestPollPicksUpAppendedLines(t *testing.T) {
	dir := t.TempDir()
	a := writeLog(t, dir, "alpha.log", "one\npart")

	c, log := newCollector(t, []string{a}, true)
	_, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, messages(log), "a followed file's partial line waits")

	assert.Equal(t, 0, c.Poll())

	appendLog(t, a, "ial\ntwo\n")
	assert.Equal(t, 2, c.Poll())
	assert.Equal(t, []string{"one", "partial", "two"}, messages(log))
}

func TestPollSkipsTruncatedSource(t *testing.T) {
	dir := t.TempDir()
	a := writeLog(t, dir, "alpha.log", "one\ntwo\n")
	b := writeLog(t, dir, "beta.log", "x\n")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	log := source.NewMemoryLog()
	c, err := NewCollector([]string{a, b}, log, logformat.NewLineParser(&config.DefaultConfig().LogLevels), true, &logger)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Load()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(a, []byte("z\n"), 0644))
	appendLog(t, b, "y\n")

	assert.Equal(t, 1, c.Poll())
	assert.Equal(t, "y", log.Entry(log.Len()-1).Message)
	assert.Contains(t, buf.String(), `"message":"refresh failed"`)
	assert.Contains(t, buf.String(), "alpha.log")
}
