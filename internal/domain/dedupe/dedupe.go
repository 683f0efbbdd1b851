// Package dedupe tracks seen interaction event ids for at-most-once ingest.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Deduper records seen event ids so telemetry retries do not double-count.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id from the seen set. Used when an event was marked
	// seen but could not be enqueued and should be retryable.
	Unrecord(ctx context.Context, id string)

	// Size returns the current number of tracked ids.
	Size() int64
}

// inMemoryDeduper implements Deduper with a map plus a FIFO ring of insertion
// order. When the cache is full the oldest slot is evicted. The map records
// which ring slot owns each id so that a slot orphaned by Unrecord cannot
// evict a later re-record of the same id. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // id -> owning ring slot, -1 when unbounded
	ring    []string
	head    int // next eviction slot
	tail    int // next insertion slot
	used    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	slot := -1
	if d.maxSize > 0 {
		if d.used == d.maxSize {
			d.evictOldest()
		}
		slot = d.tail
		d.ring[d.tail] = id
		d.tail = (d.tail + 1) % d.maxSize
		d.used++
	}

	d.seen[id] = slot
	d.size.Add(1)
	return false
}

// evictOldest frees the slot at the eviction head. The id is only dropped
// from the map when this slot still owns it; a slot orphaned by Unrecord or
// superseded by a re-record frees ring space without touching the map.
func (d *inMemoryDeduper) evictOldest() {
	slot := d.head
	evicted := d.ring[slot]
	d.ring[slot] = ""
	d.head = (d.head + 1) % d.maxSize
	d.used--

	if owner, ok := d.seen[evicted]; ok && owner == slot {
		delete(d.seen, evicted)
		d.size.Add(-1)
	}
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
	// The ring slot stays behind as an orphan; eviction skips it because it
	// no longer owns the id.
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
