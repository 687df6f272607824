package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Buffer accumulates records in memory as JSON lines.
type Buffer struct {
	buf     bytes.Buffer
	records []Record
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Emit appends one JSON line.
func (b *Buffer) Emit(_ context.Context, r Record) error {
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("buffer sink: %w", err)
	}
	b.buf.Write(line)
	b.buf.WriteByte('\n')
	b.records = append(b.records, r)
	return nil
}

// String returns everything emitted so far.
func (b *Buffer) String() string {
	return b.buf.String()
}

// Records returns the emitted records in emission order.
func (b *Buffer) Records() []Record {
	return b.records
}

// Close is a no-op.
func (b *Buffer) Close() error {
	return nil
}
