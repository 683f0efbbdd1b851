package app_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtsidehq/courtside/internal/adapters/payment"
	"github.com/courtsidehq/courtside/internal/adapters/repository"
	"github.com/courtsidehq/courtside/internal/app"
	"github.com/courtsidehq/courtside/internal/domain/model"
	"github.com/courtsidehq/courtside/internal/domain/types"
	"github.com/courtsidehq/courtside/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func seededStore() *repository.MemStore {
	store := repository.NewMemStore()
	store.PutItem(model.CatalogItem{ID: "item-1", Name: "Court A", Kind: model.KindRental, Active: true, CreatedAt: now.Add(-3 * 24 * time.Hour)})
	store.PutItem(model.CatalogItem{ID: "item-2", Name: "Open Run", Kind: model.KindOpenSession, Active: true, CreatedAt: now.Add(-200 * 24 * time.Hour)})
	store.PutSession(model.Session{ID: "sess-1", ItemID: "item-1", StartAt: now.Add(48 * time.Hour), BasePrice: 5000, Capacity: 4, Remaining: 4, Status: model.SessionOpen})
	store.PutSession(model.Session{ID: "sess-2", ItemID: "item-2", StartAt: now.Add(72 * time.Hour), BasePrice: 1500, Capacity: 12, Remaining: 12, Status: model.SessionOpen})
	store.PutRule(model.PricingRule{ID: "surge", Multiplier: 1.5, Active: true})
	store.PutMembership(model.Membership{ID: "mem-1", UserID: "user-1", Active: true, DiscountPercent: 10, Tier: "gold"})
	return store
}

func startService(store repository.Store, opts ...app.Option) *app.Service {
	base := []app.Option{
		app.WithStore(store),
		app.WithProcessor(payment.NewSimulatedProcessor(payment.WithLatencyRange(time.Millisecond, 2*time.Millisecond))),
		app.WithClock(clock),
		app.WithRetryPolicy(3, time.Millisecond),
	}
	svc := app.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestServiceFeed(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service over a seeded store", t, func() {
		svc := startService(seededStore())
		Reset(svc.Stop)

		Convey("When the feed is requested", func() {
			page, err := svc.Feed(ctx, types.FeedRequest{UserID: "user-1", PageSize: 10})

			Convey("Then both items rank with rule-adjusted prices", func() {
				So(err, ShouldBeNil)
				So(page.Items, ShouldHaveLength, 2)
				// item-1 is new (recency 10) and item-2 is old.
				So(page.Items[0].Item.ID, ShouldEqual, "item-1")
				So(page.Items[0].Sessions[0].Price, ShouldEqual, 7500)
			})
		})

		Convey("When the feed is paginated", func() {
			first, err := svc.Feed(ctx, types.FeedRequest{PageSize: 1})
			So(err, ShouldBeNil)
			So(first.HasMore, ShouldBeTrue)

			second, err := svc.Feed(ctx, types.FeedRequest{PageSize: 1, Cursor: first.NextCursor})

			Convey("Then the second page picks up after the cursor", func() {
				So(err, ShouldBeNil)
				So(second.Items, ShouldHaveLength, 1)
				So(second.Items[0].Item.ID, ShouldNotEqual, first.Items[0].Item.ID)
			})
		})

		Convey("When the cursor is stale", func() {
			page, err := svc.Feed(ctx, types.FeedRequest{PageSize: 1, Cursor: "gone"})

			Convey("Then the feed restarts from the top", func() {
				So(err, ShouldBeNil)
				So(page.Items, ShouldHaveLength, 1)
				So(page.CursorMiss, ShouldBeTrue)
			})
		})

		Convey("When an unknown membership id is supplied", func() {
			page, err := svc.Feed(ctx, types.FeedRequest{PageSize: 10, MembershipID: "nope"})

			Convey("Then it is treated as no membership", func() {
				So(err, ShouldBeNil)
				So(page.Items, ShouldHaveLength, 2)
			})
		})
	})
}

func TestServiceProductSessions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := startService(seededStore())
		Reset(svc.Stop)

		Convey("When an item's sessions are requested", func() {
			priced, err := svc.ProductSessions(ctx, "item-1")

			Convey("Then each session carries its adjusted price", func() {
				So(err, ShouldBeNil)
				So(priced, ShouldHaveLength, 1)
				So(priced[0].Session.ID, ShouldEqual, "sess-1")
				So(priced[0].Price, ShouldEqual, 7500)
			})
		})

		Convey("When the item has no sessions", func() {
			priced, err := svc.ProductSessions(ctx, "unknown")

			Convey("Then the list is empty", func() {
				So(err, ShouldBeNil)
				So(priced, ShouldBeEmpty)
			})
		})
	})
}

func TestServiceCheckout(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		store := seededStore()
		svc := startService(store)
		Reset(svc.Stop)

		Convey("When a member checks out with one guest", func() {
			res, err := svc.Checkout(ctx, types.CheckoutRequest{
				SessionID:    "sess-1",
				UserID:       "user-1",
				GuestCount:   1,
				MembershipID: "mem-1",
			})

			Convey("Then the discounted amount is charged for two spots", func() {
				So(err, ShouldBeNil)
				// 7500 * 2 = 15000; 10% discount = 1500
				So(res.Amount, ShouldEqual, 13500)
				So(res.Discount, ShouldEqual, 1500)
				So(res.OrderID, ShouldNotBeEmpty)
				So(res.PaymentReference, ShouldNotBeEmpty)
			})

			Convey("And the seats are held", func() {
				sess, gerr := store.GetSession(ctx, "sess-1")
				So(gerr, ShouldBeNil)
				So(sess.Remaining, ShouldEqual, 2)
			})

			Convey("And the order is recorded as pending", func() {
				order, gerr := store.GetOrder(ctx, res.OrderID)
				So(gerr, ShouldBeNil)
				So(order.Status, ShouldEqual, model.OrderPending)
				So(order.MembershipID, ShouldEqual, "mem-1")
			})
		})

		Convey("When the session does not exist", func() {
			_, err := svc.Checkout(ctx, types.CheckoutRequest{SessionID: "nope", UserID: "user-1"})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the group exceeds remaining capacity", func() {
			_, err := svc.Checkout(ctx, types.CheckoutRequest{SessionID: "sess-1", UserID: "user-1", GuestCount: 4})

			Convey("Then the whole attempt is rejected and nothing is held", func() {
				So(errors.Is(err, repository.ErrSoldOut), ShouldBeTrue)
				sess, gerr := store.GetSession(ctx, "sess-1")
				So(gerr, ShouldBeNil)
				So(sess.Remaining, ShouldEqual, 4)
			})
		})
	})

	Convey("Given a processor that always fails", t, func() {
		store := seededStore()
		svc := startService(store, app.WithProcessor(payment.NewSimulatedProcessor(
			payment.WithLatencyRange(time.Millisecond, 2*time.Millisecond),
			payment.WithFailureRate(0.999999),
			payment.WithSeed(42),
		)))
		Reset(svc.Stop)

		Convey("When a checkout is attempted", func() {
			_, err := svc.Checkout(ctx, types.CheckoutRequest{SessionID: "sess-1", UserID: "user-1"})

			Convey("Then the processor failure surfaces distinctly", func() {
				So(errors.Is(err, payment.ErrProcessor), ShouldBeTrue)
			})

			Convey("And the reservation stays held for reconciliation", func() {
				sess, gerr := store.GetSession(ctx, "sess-1")
				So(gerr, ShouldBeNil)
				So(sess.Remaining, ShouldEqual, 3)
			})
		})
	})
}

func TestServiceSplitCheckout(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		store := seededStore()
		svc := startService(store)
		Reset(svc.Stop)

		Convey("When three friends split a session", func() {
			res, err := svc.SplitCheckout(ctx, types.SplitRequest{
				SessionID:         "sess-1",
				OrganizerID:       "user-1",
				ParticipantEmails: []string{"a@example.com", "b@example.com", "c@example.com"},
			})

			Convey("Then each pays the ceiling share of the adjusted price", func() {
				So(err, ShouldBeNil)
				// 7500 / 3 = 2500 even split
				So(res.PerPersonAmount, ShouldEqual, 2500)
				So(res.SplitGroupID, ShouldNotBeEmpty)
				So(res.PaymentReferences, ShouldHaveLength, 3)
				So(res.OrderIDs, ShouldHaveLength, 3)
			})

			Convey("And all three seats were taken in one reservation", func() {
				sess, gerr := store.GetSession(ctx, "sess-1")
				So(gerr, ShouldBeNil)
				So(sess.Remaining, ShouldEqual, 1)
			})

			Convey("And every order shares the split group id", func() {
				for _, id := range res.OrderIDs {
					order, gerr := store.GetOrder(ctx, id)
					So(gerr, ShouldBeNil)
					So(order.IsSplit, ShouldBeTrue)
					So(order.SplitGroupID, ShouldEqual, res.SplitGroupID)
					So(order.Discount, ShouldEqual, 0)
				}
			})
		})

		Convey("When the group is larger than remaining capacity", func() {
			emails := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
			_, err := svc.SplitCheckout(ctx, types.SplitRequest{SessionID: "sess-1", ParticipantEmails: emails})

			Convey("Then nobody gets a seat", func() {
				So(errors.Is(err, repository.ErrSoldOut), ShouldBeTrue)
				sess, gerr := store.GetSession(ctx, "sess-1")
				So(gerr, ShouldBeNil)
				So(sess.Remaining, ShouldEqual, 4)
			})
		})

		Convey("When the participant list is empty", func() {
			_, err := svc.SplitCheckout(ctx, types.SplitRequest{SessionID: "sess-1"})
			So(err, ShouldNotBeNil)
		})
	})
}

// flakyStore fails the first failures calls to Reserve, then delegates.
type flakyStore struct {
	*repository.MemStore
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyStore) Reserve(ctx context.Context, sessionID, userID string, spots int) (model.Reservation, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		return model.Reservation{}, repository.ErrUnavailable
	}
	return f.MemStore.Reserve(ctx, sessionID, userID, spots)
}

func TestServiceRetry(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store whose reservation path fails twice transiently", t, func() {
		store := &flakyStore{MemStore: seededStore(), failures: 2}
		svc := startService(store)
		Reset(svc.Stop)

		Convey("When a checkout is attempted", func() {
			res, err := svc.Checkout(ctx, types.CheckoutRequest{SessionID: "sess-1", UserID: "user-1"})

			Convey("Then the retry policy rides out the outage", func() {
				So(err, ShouldBeNil)
				So(res.OrderID, ShouldNotBeEmpty)
				So(store.calls, ShouldEqual, 3)
			})
		})
	})

	Convey("Given a store that stays down past every retry attempt", t, func() {
		store := &flakyStore{MemStore: seededStore(), failures: 10}
		svc := startService(store)
		Reset(svc.Stop)

		Convey("When a checkout is attempted", func() {
			_, err := svc.Checkout(ctx, types.CheckoutRequest{SessionID: "sess-1", UserID: "user-1"})

			Convey("Then the unavailable error surfaces after the attempts", func() {
				So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)
				So(store.calls, ShouldEqual, 3)
			})
		})
	})
}

// blockingStore parks AppendInteraction until released, keeping the queue full.
type blockingStore struct {
	*repository.MemStore
	release chan struct{}
}

func (b *blockingStore) AppendInteraction(ctx context.Context, ev model.InteractionEvent) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.MemStore.AppendInteraction(ctx, ev)
}

func TestServiceLogInteraction(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		store := seededStore()
		svc := startService(store)
		Reset(svc.Stop)

		Convey("When an event is logged", func() {
			accepted, duplicate := svc.LogInteraction(ctx, model.InteractionEvent{
				EventID: "e1", ItemID: "item-1", Type: model.InteractionTap,
			})

			Convey("Then it is accepted", func() {
				So(accepted, ShouldBeTrue)
				So(duplicate, ShouldBeFalse)
			})

			Convey("And logging the same id again is a duplicate ack", func() {
				accepted, duplicate := svc.LogInteraction(ctx, model.InteractionEvent{
					EventID: "e1", ItemID: "item-1", Type: model.InteractionTap,
				})
				So(accepted, ShouldBeTrue)
				So(duplicate, ShouldBeTrue)
			})

			Convey("And it eventually lands in the signal log", func() {
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					events, err := store.ListInteractions(ctx)
					So(err, ShouldBeNil)
					if len(events) == 1 {
						break
					}
					time.Sleep(5 * time.Millisecond)
				}
				events, err := store.ListInteractions(ctx)
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 1)
			})
		})

		Convey("When no event id is supplied", func() {
			accepted, duplicate := svc.LogInteraction(ctx, model.InteractionEvent{
				ItemID: "item-1", Type: model.InteractionView,
			})

			Convey("Then one is minted and the event is accepted", func() {
				So(accepted, ShouldBeTrue)
				So(duplicate, ShouldBeFalse)
			})
		})
	})

	Convey("Given a service whose single worker is parked on a slow store", t, func() {
		release := make(chan struct{})
		var releaseOnce sync.Once
		unblock := func() { releaseOnce.Do(func() { close(release) }) }

		store := &blockingStore{MemStore: seededStore(), release: release}
		svc := startService(store, app.WithQueueSize(1), app.WithWorkerCount(1))
		Reset(func() {
			unblock()
			svc.Stop()
		})

		Convey("When events keep arriving", func() {
			// With the worker blocked and a one-slot queue, acceptance must
			// stop within a few events.
			var accepted, duplicate bool
			var rejectedID string
			for i := 0; i < 100; i++ {
				id := "sat-" + strconv.Itoa(i)
				accepted, duplicate = svc.LogInteraction(ctx, model.InteractionEvent{
					EventID: id, ItemID: "item-1", Type: model.InteractionTap,
				})
				if !accepted {
					rejectedID = id
					break
				}
			}

			Convey("Then backpressure rejects one and keeps its id retryable", func() {
				So(accepted, ShouldBeFalse)
				So(duplicate, ShouldBeFalse)
				So(rejectedID, ShouldNotBeEmpty)

				// Once the pipeline drains, the same id goes through.
				unblock()
				var ok bool
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					ok, _ = svc.LogInteraction(ctx, model.InteractionEvent{
						EventID: rejectedID, ItemID: "item-1", Type: model.InteractionTap,
					})
					if ok {
						break
					}
					time.Sleep(5 * time.Millisecond)
				}
				So(ok, ShouldBeTrue)
			})
		})
	})
}

func TestServiceStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(seededStore())
		Reset(svc.Stop)

		Convey("When stats are read", func() {
			stats := svc.GetStats()

			Convey("Then they report the pipeline and store counts", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["sessions"], ShouldEqual, 2)
				So(stats["items"], ShouldEqual, 2)
				So(stats, ShouldContainKey, "queue_length")
				So(stats, ShouldContainKey, "dedupe_entries")
			})
		})
	})
}
