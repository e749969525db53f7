// Package queue holds pending snapshot reload requests.
//
// The queue is bounded and small: a request that arrives while the queue is
// full is coalesced into the one already waiting, since a single reload
// serves every caller that asked for it.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/stemmap/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1
)

// Reload reasons.
const (
	ReasonStartup  = "startup"
	ReasonManual   = "manual"
	ReasonSchedule = "schedule"
)

// Request asks the reload worker to rebuild the snapshot.
type Request struct {
	ID     uuid.UUID
	Reason string
	Queued time.Time
}

// NewRequest stamps a request for reason.
func NewRequest(reason string) Request {
	return Request{ID: uuid.New(), Reason: reason, Queued: time.Now()}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a request to the queue.
	// Returns false if the queue is full and the request was coalesced.
	Enqueue(ctx context.Context, r Request) bool

	// Dequeue returns a channel that will receive requests as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Request

	// Len returns the current number of pending requests.
	Len(ctx context.Context) int

	// Close stops accepting requests and closes the dequeue channel.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan Request
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.requests = make(chan Request, q.capacity)
	metrics.UpdateReloadQueueSize(0)

	return q
}

// Enqueue adds a request to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("reload_queue", "closed")
		return false
	}

	select {
	case q.requests <- r:
		metrics.RecordReloadRequest(r.Reason)
		metrics.UpdateReloadQueueSize(len(q.requests))
		return true
	case <-ctx.Done():
		metrics.RecordErrorByComponent("reload_queue", "context_cancelled")
		return false
	default:
		metrics.RecordReloadCoalesced()
		return false
	}
}

// Dequeue returns the request channel. Consumers share it; each request is
// delivered once.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Request {
	return q.requests
}

// Len returns the current number of pending requests.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.requests)
	metrics.UpdateReloadQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.requests)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
