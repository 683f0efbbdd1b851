// Package worker drains the interaction queue into the store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/courtsidehq/courtside/internal/domain/model"
	"github.com/courtsidehq/courtside/pkg/logger"
	"github.com/courtsidehq/courtside/pkg/metrics"
)

// Retry policy for transient store failures during ingest.
const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 25 * time.Millisecond
	workerStopTimeout    = 5 * time.Second
)

// Recorder appends interaction events to the signal log.
type Recorder interface {
	AppendInteraction(ctx context.Context, ev model.InteractionEvent) error
}

// Queue is how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.InteractionEvent
}

// Worker consumes interaction events until stopped.
type Worker struct {
	queue    Queue
	recorder Recorder
	name     string

	retryAttempts int
	retryBackoff  time.Duration
	transient     func(error) bool

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName names the worker for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
			w.logger = logger.Named(name)
		}
	}
}

// WithRetry sets the transient-failure retry policy.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(w *Worker) {
		if attempts > 0 {
			w.retryAttempts = attempts
		}
		if backoff > 0 {
			w.retryBackoff = backoff
		}
	}
}

// WithTransientCheck sets the predicate deciding whether an append error is
// retryable.
func WithTransientCheck(fn func(error) bool) Option {
	return func(w *Worker) {
		if fn != nil {
			w.transient = fn
		}
	}
}

// New creates a worker with configuration options.
func New(queue Queue, recorder Recorder, opts ...Option) *Worker {
	w := &Worker{
		queue:         queue,
		recorder:      recorder,
		name:          "ingest",
		retryAttempts: defaultRetryAttempts,
		retryBackoff:  defaultRetryBackoff,
		transient:     func(error) bool { return false },
		shutdown:      make(chan struct{}),
		done:          make(chan struct{}),
		logger:        logger.Named("ingest"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes events until ctx is cancelled, the queue closes, or Shutdown
// is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := w.ingest(ctx, ev); err != nil {
				metrics.RecordWorkerError()
				w.logger.Error(ctx, "interaction ingest failed",
					logger.String("event_id", ev.EventID),
					logger.String("item_id", ev.ItemID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for the current event to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// ingest appends one event, retrying transient store failures with doubling
// backoff. Capacity-style errors never occur on this path.
func (w *Worker) ingest(ctx context.Context, ev model.InteractionEvent) error {
	start := time.Now()
	defer func() {
		metrics.RecordIngestLatency(float64(time.Since(start).Milliseconds()))
	}()

	backoff := w.retryBackoff
	var err error
	for attempt := 0; attempt < w.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		err = w.recorder.AppendInteraction(ctx, ev)
		if err == nil {
			metrics.RecordInteractionAccepted()
			return nil
		}
		if !w.transient(err) {
			return err
		}
	}
	return fmt.Errorf("append interaction after %d attempts: %w", w.retryAttempts, err)
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates workerCount workers sharing queue and recorder.
func NewPool(workerCount int, queue Queue, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Named("ingest-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("ingest-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = New(queue, recorder, workerOpts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop shuts the pool down, bounding the wait per worker.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), workerStopTimeout)
	defer cancel()
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Warn(ctx, "worker did not stop cleanly", logger.String("worker", w.name), logger.Error(err))
		}
	}
}
