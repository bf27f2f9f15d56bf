package index

import (
	"bytes"

	mcio "github.com/TimelordUK/mconsole/internal/io"
)

const chunkSize = 64 * 1024

// LineIndex stores the byte offset of each line start in a growing file
type LineIndex struct {
	offsets    []int64 // byte offset of each line start
	indexed    int64   // bytes scanned so far
	terminated bool    // last scanned byte was '\n'
	file       *mcio.MappedFile
}

// BuildLineIndex scans the file and builds a line offset index
func BuildLineIndex(file *mcio.MappedFile) (*LineIndex, error) {
	idx := &LineIndex{
		// Estimate initial capacity (assume ~100 bytes per line)
		offsets: make([]int64, 0, int(file.Size()/100)+1),
		file:    file,
	}
	if err := idx.Extend(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Extend indexes bytes appended since the last scan
func (idx *LineIndex) Extend() error {
	size := idx.file.Size()
	if size <= idx.indexed {
		return nil
	}

	// A line begins at the first new byte if the file was empty or the
	// previous scan ended on a newline.
	if idx.indexed == 0 || idx.terminated {
		idx.offsets = append(idx.offsets, idx.indexed)
	}

	buf := make([]byte, chunkSize)
	pos := idx.indexed
	for pos < size {
		readSize := int64(chunkSize)
		if pos+readSize > size {
			readSize = size - pos
		}

		n, err := idx.file.ReadAt(buf[:readSize], pos)
		if err != nil {
			return err
		}

		chunk := buf[:n]
		offset := 0
		for {
			i := bytes.IndexByte(chunk[offset:], '\n')
			if i == -1 {
				break
			}
			lineStart := pos + int64(offset) + int64(i) + 1
			if lineStart < size {
				idx.offsets = append(idx.offsets, lineStart)
			}
			offset += i + 1
		}

		idx.terminated = n > 0 && chunk[n-1] == '\n'
		pos += int64(n)
	}

	idx.indexed = size
	return nil
}

// LineCount returns the number of lines, including an unterminated last line
func (idx *LineIndex) LineCount() int {
	return len(idx.offsets)
}

// CompleteLineCount returns the number of newline-terminated lines
func (idx *LineIndex) CompleteLineCount() int {
	if len(idx.offsets) == 0 || idx.terminated {
		return len(idx.offsets)
	}
	return len(idx.offsets) - 1
}

// GetLine returns the content of line at given index (0-based) without
// its line terminator
func (idx *LineIndex) GetLine(lineNum int) ([]byte, error) {
	if lineNum < 0 || lineNum >= len(idx.offsets) {
		return nil, nil
	}

	start := idx.offsets[lineNum]
	end := idx.indexed
	if lineNum+1 < len(idx.offsets) {
		end = idx.offsets[lineNum+1]
	}

	content, err := idx.file.ReadRange(start, end)
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(content, "\r\n"), nil
}
