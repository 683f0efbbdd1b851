// Package seed populates a store with a small demo catalog so the service is
// usable out of the box.
package seed

import (
	"context"
	"time"

	"github.com/courtsidehq/courtside/internal/adapters/repository"
	"github.com/courtsidehq/courtside/internal/domain/model"
	"github.com/courtsidehq/courtside/pkg/logger"
)

// Demo loads a demo catalog: four venues with upcoming sessions, peak-hour
// pricing rules, a membership, and a handful of interaction events.
func Demo(ctx context.Context, store *repository.MemStore) {
	now := time.Now().UTC()
	day := now.Truncate(24 * time.Hour)

	items := []model.CatalogItem{
		{ID: "item-court-a", Name: "Court A Rental", Kind: model.KindRental, Tags: []string{"indoor", "hardwood"}, Active: true, CreatedAt: now.Add(-90 * 24 * time.Hour)},
		{ID: "item-open-run", Name: "Tuesday Open Run", Kind: model.KindOpenSession, Tags: []string{"pickup", "intermediate"}, Active: true, CreatedAt: now.Add(-2 * 24 * time.Hour)},
		{ID: "item-coach-lee", Name: "1:1 Coaching with Lee", Kind: model.KindCoaching, Tags: []string{"advanced", "shooting"}, Active: true, CreatedAt: now.Add(-30 * 24 * time.Hour)},
		{ID: "item-youth-clinic", Name: "Youth Skills Clinic", Kind: model.KindClinic, Tags: []string{"beginner", "youth"}, Active: true, CreatedAt: now.Add(-10 * 24 * time.Hour)},
	}
	for _, it := range items {
		store.PutItem(it)
	}

	sessions := []model.Session{
		{ID: "sess-court-a-1", ItemID: "item-court-a", StartAt: day.Add(42 * time.Hour), EndAt: day.Add(43 * time.Hour), BasePrice: 5000, Capacity: 4, Remaining: 4, Status: model.SessionOpen},
		{ID: "sess-court-a-2", ItemID: "item-court-a", StartAt: day.Add(66 * time.Hour), EndAt: day.Add(67 * time.Hour), BasePrice: 5000, Capacity: 4, Remaining: 2, Status: model.SessionOpen},
		{ID: "sess-open-run-1", ItemID: "item-open-run", StartAt: now.Add(6 * time.Hour), EndAt: now.Add(8 * time.Hour), BasePrice: 1500, Capacity: 12, Remaining: 1, Status: model.SessionOpen},
		{ID: "sess-coach-lee-1", ItemID: "item-coach-lee", StartAt: day.Add(90 * time.Hour), EndAt: day.Add(91 * time.Hour), BasePrice: 9000, Capacity: 1, Remaining: 1, Status: model.SessionOpen},
		{ID: "sess-clinic-1", ItemID: "item-youth-clinic", StartAt: day.Add(120 * time.Hour), EndAt: day.Add(122 * time.Hour), BasePrice: 3000, Capacity: 20, Remaining: 20, Status: model.SessionOpen},
		{ID: "sess-clinic-0", ItemID: "item-youth-clinic", StartAt: day.Add(-24 * time.Hour), EndAt: day.Add(-22 * time.Hour), BasePrice: 3000, Capacity: 20, Remaining: 0, Status: model.SessionCompleted},
	}
	for _, s := range sessions {
		store.PutSession(s)
	}

	rules := []model.PricingRule{
		{ID: "rule-weekday-evening", Days: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, StartTime: "17:00", EndTime: "21:00", Multiplier: 1.33, Active: true},
		{ID: "rule-weekend", Days: []time.Weekday{time.Saturday, time.Sunday}, StartTime: "", EndTime: "", Multiplier: 1.15, Active: true},
		{ID: "rule-early-bird", Days: nil, StartTime: "06:00", EndTime: "08:00", Multiplier: 0.85, Active: true},
		{ID: "rule-retired", Days: nil, StartTime: "", EndTime: "", Multiplier: 2.0, Active: false},
	}
	for _, r := range rules {
		store.PutRule(r)
	}

	store.PutMembership(model.Membership{ID: "mem-gold-1", UserID: "user-demo", Active: true, DiscountPercent: 10, Tier: "gold"})
	store.PutMembership(model.Membership{ID: "mem-lapsed-1", UserID: "user-lapsed", Active: false, DiscountPercent: 15, Tier: "gold"})

	events := []model.InteractionEvent{
		{EventID: "seed-ev-1", ItemID: "item-open-run", Type: model.InteractionBook, At: now.Add(-16 * 24 * time.Hour)},
		{EventID: "seed-ev-2", ItemID: "item-open-run", Type: model.InteractionTap, At: now.Add(-3 * 24 * time.Hour)},
		{EventID: "seed-ev-3", ItemID: "item-court-a", Type: model.InteractionView, At: now.Add(-1 * 24 * time.Hour)},
		{EventID: "seed-ev-4", ItemID: "item-youth-clinic", Type: model.InteractionDismiss, At: now.Add(-40 * 24 * time.Hour)},
	}
	for _, ev := range events {
		_ = store.AppendInteraction(ctx, ev)
	}

	store.SetCollaborativeScore("user-demo", "item-coach-lee", 4.5)
	store.SetCollaborativeScore("user-demo", "item-open-run", 2.0)

	logger.Get().Info(ctx, "seeded demo catalog",
		logger.Int("items", len(items)),
		logger.Int("sessions", len(sessions)),
		logger.Int("rules", len(rules)),
	)
}
