package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("sink closed")

// File writes one JSON line per record to an output file.
//
// Writes go through a bufio.Writer, so an I/O failure may surface on a later
// Emit or on Close. Either way it is returned to the engine and the run stops.
// Lines already flushed stay on disk.
type File struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	closed bool
}

// CreateFile creates (or truncates) path and returns a File sink writing to it.
func CreateFile(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &File{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the output file path.
func (s *File) Path() string {
	return s.path
}

// Emit writes r as one line.
func (s *File) Emit(_ context.Context, r Record) error {
	if s.closed {
		return fmt.Errorf("write %s: %w", s.path, ErrClosed)
	}
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Close flushes buffered output and releases the file handle.
// Only the first call does any work; later calls return nil.
func (s *File) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", s.path, closeErr)
	}
	return nil
}
