package feed_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtsidehq/courtside/internal/domain/feed"
	"github.com/courtsidehq/courtside/internal/domain/model"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func item(id string, age time.Duration) model.CatalogItem {
	return model.CatalogItem{ID: id, Name: id, Kind: model.KindRental, CreatedAt: now.Add(-age)}
}

func session(id, itemID string, startIn time.Duration) model.Session {
	return model.Session{
		ID:        id,
		ItemID:    itemID,
		StartAt:   now.Add(startIn),
		BasePrice: 1000,
		Capacity:  10,
		Remaining: 10,
		Status:    model.SessionOpen,
	}
}

func TestAssemble(t *testing.T) {
	Convey("Given a catalog with sessions", t, func() {
		assembler := feed.NewAssembler()
		old := 200 * 24 * time.Hour

		Convey("When an item has no sessions", func() {
			ranked := assembler.Assemble(feed.AssembleInput{
				Items:    []model.CatalogItem{item("a", old), item("b", old)},
				Sessions: []model.Session{session("s1", "a", 48*time.Hour)},
				Now:      now,
			})

			Convey("Then it is dropped from the feed", func() {
				So(ranked, ShouldHaveLength, 1)
				So(ranked[0].Item.ID, ShouldEqual, "a")
			})
		})

		Convey("When items have different scores", func() {
			ranked := assembler.Assemble(feed.AssembleInput{
				Items: []model.CatalogItem{item("a", old), item("b", old)},
				Sessions: []model.Session{
					session("s1", "a", 48*time.Hour),
					session("s2", "b", 48*time.Hour),
				},
				Collaborative: map[string]float64{"b": 3.0},
				Now:           now,
			})

			Convey("Then higher scores come first", func() {
				So(ranked[0].Item.ID, ShouldEqual, "b")
				So(ranked[1].Item.ID, ShouldEqual, "a")
				So(ranked[0].Score, ShouldBeGreaterThan, ranked[1].Score)
			})
		})

		Convey("When two items tie on score", func() {
			ranked := assembler.Assemble(feed.AssembleInput{
				Items: []model.CatalogItem{item("late", old), item("early", old)},
				Sessions: []model.Session{
					session("s1", "late", 72*time.Hour),
					session("s2", "early", 48*time.Hour),
				},
				Now: now,
			})

			Convey("Then the earlier next session wins the tie", func() {
				So(ranked[0].Item.ID, ShouldEqual, "early")
				So(ranked[1].Item.ID, ShouldEqual, "late")
			})
		})

		Convey("When an item has more sessions than the cap", func() {
			capped := feed.NewAssembler(feed.WithSessionCap(2))
			ranked := capped.Assemble(feed.AssembleInput{
				Items: []model.CatalogItem{item("a", old)},
				Sessions: []model.Session{
					session("s1", "a", 48*time.Hour),
					session("s2", "a", 72*time.Hour),
					session("s3", "a", 96*time.Hour),
				},
				Now: now,
			})

			Convey("Then only the first sessions are carried, in order", func() {
				So(ranked[0].Sessions, ShouldHaveLength, 2)
				So(ranked[0].Sessions[0].Session.ID, ShouldEqual, "s1")
				So(ranked[0].Sessions[1].Session.ID, ShouldEqual, "s2")
			})
		})

		Convey("When pricing rules are in effect", func() {
			rules := []model.PricingRule{{ID: "surge", Multiplier: 1.5, Active: true}}
			ranked := assembler.Assemble(feed.AssembleInput{
				Items:    []model.CatalogItem{item("a", old)},
				Sessions: []model.Session{session("s1", "a", 48*time.Hour)},
				Rules:    rules,
				Now:      now,
			})

			Convey("Then carried sessions show the rule-adjusted price", func() {
				So(ranked[0].Sessions[0].Price, ShouldEqual, 1500)
			})
		})

		Convey("When the catalog is empty", func() {
			ranked := assembler.Assemble(feed.AssembleInput{Now: now})

			Convey("Then the feed is empty", func() {
				So(ranked, ShouldBeEmpty)
			})
		})
	})
}
