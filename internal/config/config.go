// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory interaction queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of interaction ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the interaction idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxPageSize caps GET /feed?page_size.
	MaxPageSize int `koanf:"max_page_size"`

	// SessionCap bounds how many upcoming sessions each feed item carries.
	SessionCap int `koanf:"session_cap"`

	// RetryAttempts and RetryBackoffMS shape the transient-store retry policy.
	RetryAttempts  int `koanf:"retry_attempts"`
	RetryBackoffMS int `koanf:"retry_backoff_ms"`

	// ProcessorLatencyMinMS and ProcessorLatencyMaxMS simulate external
	// payment processor latency bounds.
	ProcessorLatencyMinMS int `koanf:"processor_latency_min_ms"`
	ProcessorLatencyMaxMS int `koanf:"processor_latency_max_ms"`

	// ProcessorFailureRate injects charge-intent failures, 0..1.
	ProcessorFailureRate float64 `koanf:"processor_failure_rate"`

	// StoreFailureRate injects transient store failures, 0..1.
	StoreFailureRate float64 `koanf:"store_failure_rate"`

	// SeedDemoData populates the store with a demo catalog on startup.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		QueueSize:             100_000,
		WorkerCount:           runtime.NumCPU() * 2,
		DedupeSize:            50_000,
		MaxPageSize:           50,
		SessionCap:            5,
		RetryAttempts:         3,
		RetryBackoffMS:        25,
		ProcessorLatencyMinMS: 20,
		ProcessorLatencyMaxMS: 80,
		ProcessorFailureRate:  0,
		StoreFailureRate:      0,
		SeedDemoData:          true,
	}
}
