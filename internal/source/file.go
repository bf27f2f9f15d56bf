package source

import (
	"github.com/TimelordUK/mconsole/internal/index"
	mcio "github.com/TimelordUK/mconsole/internal/io"
)

// FileSource reads raw lines from a single, possibly growing, file
type FileSource struct {
	file      *mcio.MappedFile
	lineIndex *index.LineIndex
	path      string
	consumed  int // lines already handed out by ReadNew
}

// NewFileSource opens and indexes a file
func NewFileSource(path string) (*FileSource, error) {
	file, err := mcio.OpenMapped(path)
	if err != nil {
		return nil, err
	}

	lineIndex, err := index.BuildLineIndex(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &FileSource{
		file:      file,
		lineIndex: lineIndex,
		path:      path,
	}, nil
}

// LineCount returns total number of lines
func (s *FileSource) LineCount() int {
	return s.lineIndex.LineCount()
}

// GetLine returns the raw content of a line
func (s *FileSource) GetLine(idx int) ([]byte, error) {
	return s.lineIndex.GetLine(idx)
}

// ReadNew returns the lines not yet returned by a previous call. An
// unterminated last line is only returned when includePartial is set,
// since a followed file may still be writing it.
func (s *FileSource) ReadNew(includePartial bool) ([][]byte, error) {
	end := s.lineIndex.CompleteLineCount()
	if includePartial {
		end = s.lineIndex.LineCount()
	}

	var lines [][]byte
	for i := s.consumed; i < end; i++ {
		content, err := s.lineIndex.GetLine(i)
		if err != nil {
			return lines, err
		}
		lines = append(lines, content)
		s.consumed = i + 1
	}
	return lines, nil
}

// Close closes the file source
func (s *FileSource) Close() error {
	return s.file.Close()
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

// Refresh checks if the file has grown and indexes the new bytes. It
// returns the number of lines added.
func (s *FileSource) Refresh() (int, error) {
	oldLineCount := s.lineIndex.LineCount()

	changed, err := s.file.Refresh()
	if err != nil {
		return 0, err
	}
	if !changed {
		return 0, nil
	}

	if err := s.lineIndex.Extend(); err != nil {
		return 0, err
	}

	return s.lineIndex.LineCount() - oldLineCount, nil
}
