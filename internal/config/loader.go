package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if COURTSIDE_CONFIG is set
//  3. env (prefix COURTSIDE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("COURTSIDE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: COURTSIDE_ADDR, COURTSIDE_QUEUE_SIZE, ...
	// Map env keys like COURTSIDE_QUEUE_SIZE -> queue_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("COURTSIDE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "courtside_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.MaxPageSize <= 0 {
		return fmt.Errorf("%w: max_page_size must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("%w: retry_attempts must be positive", ErrInvalidConfig)
	}
	if c.ProcessorFailureRate < 0 || c.ProcessorFailureRate > 1 {
		return fmt.Errorf("%w: processor_failure_rate must be within [0,1]", ErrInvalidConfig)
	}
	if c.StoreFailureRate < 0 || c.StoreFailureRate > 1 {
		return fmt.Errorf("%w: store_failure_rate must be within [0,1]", ErrInvalidConfig)
	}
	if c.ProcessorLatencyMinMS < 0 || c.ProcessorLatencyMaxMS < c.ProcessorLatencyMinMS {
		return fmt.Errorf("%w: processor latency bounds are inverted", ErrInvalidConfig)
	}
	return nil
}
