// Package smoketest drives a running booking service end to end: feed
// pagination, session pricing, interaction ingest, and both checkout paths.
package smoketest

import "time"

// Config controls a smoke test run.
type Config struct {
	// BaseURL of the running service, e.g. http://localhost:9080.
	BaseURL string

	// NumInteractions to generate and submit.
	NumInteractions int

	// Workers submitting interactions concurrently.
	Workers int

	// PageSize used when walking the feed.
	PageSize int

	// Timeout per HTTP request.
	Timeout time.Duration

	// Verbose enables per-request logging.
	Verbose bool
}

// Stats accumulates results across the run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	FeedPages        int
	FeedItems        int
	SessionsPriced   int
	EventsSubmitted  int
	EventsAccepted   int
	EventsDuplicate  int
	EventsThrottled  int
	EventsFailed     int
	CheckoutsCreated int
	SplitOrders      int
}
