package sink

import (
	"context"
	"sync"
	"sync/atomic"
)

// Counting counts emissions before passing them on.
type Counting struct {
	next  Sink
	count atomic.Int64
}

// NewCounting wraps next.
func NewCounting(next Sink) *Counting {
	return &Counting{next: next}
}

// Emit forwards r and counts it if next accepted it.
func (c *Counting) Emit(ctx context.Context, r Record) error {
	if err := c.next.Emit(ctx, r); err != nil {
		return err
	}
	c.count.Add(1)
	return nil
}

// Count returns the number of records accepted by the wrapped sink.
func (c *Counting) Count() int64 {
	return c.count.Load()
}

// Serialized guards a sink with a mutex so several goroutines can emit into it.
type Serialized struct {
	mu   sync.Mutex
	next Sink
}

// NewSerialized wraps next.
func NewSerialized(next Sink) *Serialized {
	return &Serialized{next: next}
}

// Emit forwards r while holding the lock.
func (s *Serialized) Emit(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.Emit(ctx, r)
}

// Tee emits each record to every sink in order and stops at the first error.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

type tee []Sink

func (t tee) Emit(ctx context.Context, r Record) error {
	for _, s := range t {
		if err := s.Emit(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
