package submit

import (
	"context"
	"slices"
	"sync"
)

// Queue stores entries for moderation.
type Queue interface {
	Append(ctx context.Context, e Entry) error
	Close() error
}

// MemoryQueue keeps entries in memory. It is safe for concurrent use.
type MemoryQueue struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue { return &MemoryQueue{} }

func (q *MemoryQueue) String() string { return "memory" }

func (q *MemoryQueue) Append(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, e)
	return nil
}

// Entries returns a copy of the queued entries in arrival order.
func (q *MemoryQueue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.entries)
}

func (q *MemoryQueue) Close() error { return nil }
