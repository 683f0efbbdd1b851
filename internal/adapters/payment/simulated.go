package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default simulation parameters.
const (
	defaultMinLatency = 20 * time.Millisecond
	defaultMaxLatency = 80 * time.Millisecond
	defaultSeed       = 7
)

// Option applies a configuration option to the SimulatedProcessor.
type Option func(*SimulatedProcessor)

// WithLatencyRange sets the simulated processor latency bounds.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(p *SimulatedProcessor) {
		if minLatency > 0 && maxLatency > minLatency {
			p.minLatency = minLatency
			p.maxLatency = maxLatency
		}
	}
}

// WithFailureRate injects ErrProcessor failures with the given probability
// in [0, 1).
func WithFailureRate(rate float64) Option {
	return func(p *SimulatedProcessor) {
		if rate >= 0 && rate < 1 {
			p.failRate = rate
		}
	}
}

// WithSeed fixes the latency and failure sequence for reproducible tests.
func WithSeed(seed int64) Option {
	return func(p *SimulatedProcessor) {
		p.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic simulation
	}
}

// SimulatedProcessor implements Processor with simulated latency and optional
// failure injection, standing in for the real processor in development and
// tests.
type SimulatedProcessor struct {
	mu         sync.Mutex
	minLatency time.Duration
	maxLatency time.Duration
	failRate   float64
	rng        *rand.Rand
}

// NewSimulatedProcessor creates a simulated processor with configuration
// options.
func NewSimulatedProcessor(opts ...Option) *SimulatedProcessor {
	p := &SimulatedProcessor{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic simulation
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateIntent simulates a processor round trip and mints a reference and a
// client secret.
func (p *SimulatedProcessor) CreateIntent(ctx context.Context, amount int64, customer string) (Intent, error) {
	if amount < 0 {
		return Intent{}, ErrInvalidAmount
	}

	p.mu.Lock()
	latency := p.minLatency + time.Duration(p.rng.Int63n(int64(p.maxLatency-p.minLatency)))
	fail := p.failRate > 0 && p.rng.Float64() < p.failRate
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return Intent{}, fmt.Errorf("charge intent cancelled: %w", ctx.Err())
	case <-time.After(latency):
	}

	if fail {
		return Intent{}, fmt.Errorf("charge intent for %s: %w", customer, ErrProcessor)
	}

	ref := "pi_" + uuid.NewString()
	return Intent{
		Reference:    ref,
		ClientSecret: ref + "_secret_" + uuid.NewString(),
	}, nil
}
