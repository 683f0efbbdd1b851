package smoketest

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/courtsidehq/courtside/pkg/logger"
)

var interactionTypes = []string{"view", "tap", "book", "dismiss"}

type feedItem struct {
	Item struct {
		ID string `json:"id"`
	} `json:"item"`
	Score    float64 `json:"score"`
	Sessions []struct {
		Session struct {
			ID        string `json:"id"`
			Remaining int    `json:"remaining"`
		} `json:"session"`
		Price int64 `json:"price"`
	} `json:"sessions"`
}

type feedPage struct {
	Items      []feedItem `json:"items"`
	NextCursor string     `json:"next_cursor"`
	HasMore    bool       `json:"has_more"`
}

// Run drives the service end to end and reports statistics.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.Timeout)
	log := logger.Get()

	log.Info(ctx, "starting smoke test",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("interactions", cfg.NumInteractions),
		logger.Int("workers", cfg.Workers),
	)

	if err := checkHealth(ctx, c, cfg); err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	items, err := walkFeed(ctx, c, cfg, stats)
	if err != nil {
		return fmt.Errorf("feed walk: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("feed returned no items; is the demo catalog seeded?")
	}

	if err := priceSessions(ctx, c, cfg, items, stats); err != nil {
		return fmt.Errorf("session pricing: %w", err)
	}

	submitInteractions(ctx, c, cfg, items, stats)

	if err := runCheckouts(ctx, c, cfg, items, stats); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "smoke test completed",
		logger.Int("feed_pages", stats.FeedPages),
		logger.Int("feed_items", stats.FeedItems),
		logger.Int("sessions_priced", stats.SessionsPriced),
		logger.Int("events_submitted", stats.EventsSubmitted),
		logger.Int("events_accepted", stats.EventsAccepted),
		logger.Int("events_duplicate", stats.EventsDuplicate),
		logger.Int("events_throttled", stats.EventsThrottled),
		logger.Int("events_failed", stats.EventsFailed),
		logger.Int("checkouts_created", stats.CheckoutsCreated),
		logger.Int("split_orders", stats.SplitOrders),
		logger.Duration("duration", stats.Duration),
	)
	return nil
}

func checkHealth(ctx context.Context, c *client, cfg *Config) error {
	status, err := c.get(ctx, cfg.BaseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	return nil
}

// walkFeed pages through the whole feed using the returned cursors.
func walkFeed(ctx context.Context, c *client, cfg *Config, stats *Stats) ([]feedItem, error) {
	var all []feedItem
	cursor := ""
	for {
		u := cfg.BaseURL + "/feed?user_id=user-demo&skill=intermediate&page_size=" + strconv.Itoa(cfg.PageSize)
		if cursor != "" {
			u += "&cursor=" + url.QueryEscape(cursor)
		}
		var page feedPage
		status, err := c.get(ctx, u, &page)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", status)
		}
		stats.FeedPages++
		stats.FeedItems += len(page.Items)
		all = append(all, page.Items...)
		if !page.HasMore {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

func priceSessions(ctx context.Context, c *client, cfg *Config, items []feedItem, stats *Stats) error {
	for _, it := range items {
		var priced []struct {
			Price int64 `json:"price"`
		}
		status, err := c.get(ctx, cfg.BaseURL+"/products/"+url.PathEscape(it.Item.ID)+"/sessions", &priced)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("item %s: unexpected status %d", it.Item.ID, status)
		}
		stats.SessionsPriced += len(priced)
	}
	return nil
}

// submitInteractions fires interaction events concurrently, deliberately
// repeating some event ids to exercise the idempotency path.
func submitInteractions(ctx context.Context, c *client, cfg *Config, items []feedItem, stats *Stats) {
	type event struct {
		EventID string `json:"event_id"`
		ItemID  string `json:"item_id"`
		Type    string `json:"type"`
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	events := make([]event, 0, cfg.NumInteractions)
	for i := 0; i < cfg.NumInteractions; i++ {
		ev := event{
			EventID: uuid.NewString(),
			ItemID:  items[rng.Intn(len(items))].Item.ID,
			Type:    interactionTypes[rng.Intn(len(interactionTypes))],
		}
		events = append(events, ev)
		// Every tenth event is resubmitted with the same id.
		if i%10 == 9 {
			events = append(events, ev)
		}
	}

	var accepted, duplicate, throttled, failed int64
	ch := make(chan event, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range ch {
				var ack struct {
					Accepted  bool `json:"accepted"`
					Duplicate bool `json:"duplicate"`
				}
				status, err := c.post(ctx, cfg.BaseURL+"/interactions", ev, &ack)
				switch {
				case err != nil:
					atomic.AddInt64(&failed, 1)
				case status == http.StatusTooManyRequests:
					atomic.AddInt64(&throttled, 1)
				case status == http.StatusAccepted && ack.Duplicate:
					atomic.AddInt64(&duplicate, 1)
				case status == http.StatusAccepted:
					atomic.AddInt64(&accepted, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}
	for _, ev := range events {
		select {
		case <-ctx.Done():
			close(ch)
			wg.Wait()
			return
		case ch <- ev:
		}
	}
	close(ch)
	wg.Wait()

	stats.EventsSubmitted = len(events)
	stats.EventsAccepted = int(accepted)
	stats.EventsDuplicate = int(duplicate)
	stats.EventsThrottled = int(throttled)
	stats.EventsFailed = int(failed)
}

// runCheckouts books one seat on the first feed item with capacity, then runs
// a three-way split on the next.
func runCheckouts(ctx context.Context, c *client, cfg *Config, items []feedItem, stats *Stats) error {
	sessionID := pickSession(items, 1)
	if sessionID == "" {
		return fmt.Errorf("no open session with capacity")
	}

	var res struct {
		OrderID string `json:"order_id"`
		Amount  int64  `json:"amount"`
	}
	status, err := c.post(ctx, cfg.BaseURL+"/checkout", map[string]any{
		"session_id":    sessionID,
		"user_id":       "user-demo",
		"guest_count":   0,
		"membership_id": "mem-gold-1",
	}, &res)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("checkout status %d", status)
	}
	stats.CheckoutsCreated++

	splitSession := pickSession(items, 3)
	if splitSession == "" {
		// Not enough capacity left for a split; fine for a smoke run.
		return nil
	}
	var split struct {
		OrderIDs []string `json:"order_ids"`
	}
	status, err = c.post(ctx, cfg.BaseURL+"/checkout/split", map[string]any{
		"session_id":         splitSession,
		"organizer_id":       "user-demo",
		"participant_emails": []string{"a@example.com", "b@example.com", "c@example.com"},
	}, &split)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("split checkout status %d", status)
	}
	stats.SplitOrders += len(split.OrderIDs)
	return nil
}

// pickSession returns the first session across the feed with at least min
// seats remaining.
func pickSession(items []feedItem, min int) string {
	for _, it := range items {
		for _, s := range it.Sessions {
			if s.Session.Remaining >= min {
				return s.Session.ID
			}
		}
	}
	return ""
}
