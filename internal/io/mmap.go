package io

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/mmap"
)

// ErrTruncated is returned by Refresh when a followed file shrank
var ErrTruncated = errors.New("file truncated")

// MappedFile provides memory-mapped read access to a growing file
type MappedFile struct {
	reader *mmap.ReaderAt
	size   int64
	path   string
}

// OpenMapped opens a file with memory mapping
func OpenMapped(path string) (*MappedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	m := &MappedFile{path: path}

	// mmap of an empty file fails on some platforms; map it once it grows
	if info.Size() == 0 {
		return m, nil
	}

	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	m.reader = reader
	m.size = int64(reader.Len())
	return m, nil
}

// ReadAt reads len(p) bytes at offset
func (m *MappedFile) ReadAt(p []byte, off int64) (int, error) {
	if m.reader == nil {
		return 0, nil
	}
	return m.reader.ReadAt(p, off)
}

// Size returns the mapped size
func (m *MappedFile) Size() int64 {
	return m.size
}

// Path returns the file path
func (m *MappedFile) Path() string {
	return m.path
}

// Close releases the mapping
func (m *MappedFile) Close() error {
	if m.reader == nil {
		return nil
	}
	return m.reader.Close()
}

// Refresh remaps the file if it has grown and reports whether it did
func (m *MappedFile) Refresh() (bool, error) {
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}

	newSize := info.Size()
	if newSize < m.size {
		return false, fmt.Errorf("%s: %w", m.path, ErrTruncated)
	}
	if newSize == m.size {
		return false, nil
	}

	reader, err := mmap.Open(m.path)
	if err != nil {
		return false, fmt.Errorf("remap %s: %w", m.path, err)
	}

	if m.reader != nil {
		m.reader.Close()
	}
	m.reader = reader
	m.size = int64(reader.Len())
	return true, nil
}

// ReadRange reads bytes from start to end
func (m *MappedFile) ReadRange(start, end int64) ([]byte, error) {
	if end > m.size {
		end = m.size
	}
	if start >= end {
		return nil, nil
	}

	buf := make([]byte, end-start)
	if _, err := m.ReadAt(buf, start); err != nil {
		return nil, err
	}
	return buf, nil
}
