package repository

import (
	"math/rand"
	"time"
)

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithFailureRate injects transient ErrUnavailable failures with the given
// probability in [0, 1). Used to exercise the caller's retry path.
func WithFailureRate(rate float64) MemOption {
	return func(s *MemStore) {
		if rate >= 0 && rate < 1 {
			s.failRate = rate
		}
	}
}

// WithRandSeed fixes the failure-injection sequence.
func WithRandSeed(seed int64) MemOption {
	return func(s *MemStore) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic failure injection
	}
}

// WithClock overrides the time source for reservation timestamps.
func WithClock(now func() time.Time) MemOption {
	return func(s *MemStore) {
		if now != nil {
			s.nowFn = now
		}
	}
}
