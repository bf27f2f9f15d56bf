package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendFile(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func lineStrings(lines [][]byte) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}
	return out
}

func TestFileSourceReadNewFollowsGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthr"), 0644))

	src, err := NewFileSource(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 3, src.LineCount())

	lines, err := src.ReadNew(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lineStrings(lines), "partial line held back")

	appendFile(t, path, "ee\nfour\n")
	added, err := src.Refresh()
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	lines, err = src.ReadNew(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four"}, lineStrings(lines))

	added, err = src.Refresh()
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestFileSourceIncludePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	require.NoError(t, os.WriteFile(path, []byte("a\r\nb"), 0644))

	src, err := NewFileSource(path)
	require.NoError(t, err)
	defer src.Close()

	lines, err := src.ReadNew(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lineStrings(lines))

	lines, err = src.ReadNew(true)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFileSourceStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	src, err := NewFileSource(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 0, src.LineCount())

	appendFile(t, path, "hello\n")
	added, err := src.Refresh()
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	content, err := src.GetLine(0)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.log"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
