package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/courtsidehq/courtside/internal/smoketest"
	"github.com/courtsidehq/courtside/pkg/logger"
)

// Default configuration constants.
const (
	defaultInteractions = 1000
	defaultPageSize     = 10
	defaultTimeout      = 10 * time.Second
	defaultRunTimeout   = 5 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		interactions = flag.Int("interactions", defaultInteractions, "Number of interaction events to submit")
		workers      = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent workers")
		pageSize     = flag.Int("page-size", defaultPageSize, "Feed page size used when walking the feed")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &smoketest.Config{
		BaseURL:         *baseURL,
		NumInteractions: *interactions,
		Workers:         *workers,
		PageSize:        *pageSize,
		Timeout:         *timeout,
		Verbose:         *verbose,
	}

	if err := smoketest.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("smoke test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
