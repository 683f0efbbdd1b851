// Package queue buffers interaction events between the HTTP surface and the
// ingest workers. The API acknowledges telemetry immediately; workers drain
// the queue and append to the store.
package queue

import (
	"context"
	"sync"

	"github.com/courtsidehq/courtside/internal/domain/model"
	"github.com/courtsidehq/courtside/pkg/metrics"
)

const defaultCapacity = 100000

// Event is the payload flowing through the queue.
type Event = model.InteractionEvent

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event. Returns false when the queue is full or closed;
	// the caller decides how to surface backpressure.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns the channel workers receive events on. The channel is
	// closed when the queue closes.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close stops the queue; no further enqueues succeed.
	Close() error
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	events chan Event
	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity bounds the queue.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	cfg := config{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}

	metrics.UpdateQueueCapacity(cfg.capacity)
	metrics.UpdateQueueSize(0)

	return &InMemoryQueue{events: make(chan Event, cfg.capacity)}
}

// Enqueue adds an event without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.events <- e:
		metrics.UpdateQueueSize(len(q.events))
		return true
	case <-ctx.Done():
		return false
	default:
		// Queue full; caller surfaces backpressure.
		return false
	}
}

// Dequeue returns the receive channel.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Event {
	return q.events
}

// Len returns the number of buffered events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.events)
}

// Close closes the queue. Safe to call once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.events)
	return nil
}
