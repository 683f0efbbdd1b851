package pricing_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtsidehq/courtside/internal/domain/model"
	"github.com/courtsidehq/courtside/internal/domain/pricing"
)

// mustTime parses an RFC3339 timestamp or panics.
func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestApply(t *testing.T) {
	Convey("Given a weekday evening multiplier rule", t, func() {
		rules := []model.PricingRule{
			{
				ID:         "evening",
				Days:       []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
				StartTime:  "17:00",
				EndTime:    "21:00",
				Multiplier: 1.33,
				Active:     true,
			},
		}

		Convey("When a session starts Wednesday at 18:00 UTC", func() {
			// 2026-01-07 is a Wednesday.
			start := mustTime("2026-01-07T18:00:00Z")

			Convey("Then the price is multiplied and rounded half-up", func() {
				So(pricing.Apply(5000, start, rules), ShouldEqual, 6650)
			})

			Convey("And a half-unit product rounds up, not down", func() {
				// 333 * 1.33 = 442.89 -> 443
				So(pricing.Apply(333, start, rules), ShouldEqual, 443)
			})
		})

		Convey("When a session starts outside the time window", func() {
			start := mustTime("2026-01-07T12:00:00Z")

			Convey("Then the base price is unchanged", func() {
				So(pricing.Apply(5000, start, rules), ShouldEqual, 5000)
			})
		})

		Convey("When a session starts on a weekend", func() {
			// 2026-01-10 is a Saturday.
			start := mustTime("2026-01-10T18:00:00Z")

			Convey("Then the rule does not match", func() {
				So(pricing.Apply(5000, start, rules), ShouldEqual, 5000)
			})
		})

		Convey("When the session start is in a non-UTC zone", func() {
			// 23:00+05:00 is 18:00 UTC, inside the window.
			loc := time.FixedZone("UTC+5", 5*3600)
			start := time.Date(2026, 1, 7, 23, 0, 0, 0, loc)

			Convey("Then matching happens against the UTC wall clock", func() {
				So(pricing.Apply(5000, start, rules), ShouldEqual, 6650)
			})
		})
	})

	Convey("Given multiple matching rules", t, func() {
		start := mustTime("2026-01-07T18:00:00Z")
		surge := model.PricingRule{ID: "surge", Multiplier: 1.5, Active: true}
		promo := model.PricingRule{ID: "promo", Multiplier: 0.9, Active: true}

		Convey("When both rules match", func() {
			Convey("Then they compound in input order with per-step rounding", func() {
				// 1001 * 1.5 = 1501.5 -> 1502; 1502 * 0.9 = 1351.8 -> 1352
				So(pricing.Apply(1001, start, []model.PricingRule{surge, promo}), ShouldEqual, 1352)
				// 1001 * 0.9 = 900.9 -> 901; 901 * 1.5 = 1351.5 -> 1352
				So(pricing.Apply(1001, start, []model.PricingRule{promo, surge}), ShouldEqual, 1352)
			})

			Convey("And order can change the result", func() {
				a := model.PricingRule{ID: "a", Multiplier: 1.005, Active: true}
				b := model.PricingRule{ID: "b", Multiplier: 3, Active: true}
				// 100 * 1.005 = 100.5 -> 101; 101 * 3 = 303
				So(pricing.Apply(100, start, []model.PricingRule{a, b}), ShouldEqual, 303)
				// 100 * 3 = 300; 300 * 1.005 = 301.5 -> 302
				So(pricing.Apply(100, start, []model.PricingRule{b, a}), ShouldEqual, 302)
			})
		})

		Convey("When one rule is inactive", func() {
			inactive := model.PricingRule{ID: "off", Multiplier: 2, Active: false}

			Convey("Then it is skipped", func() {
				So(pricing.Apply(1000, start, []model.PricingRule{inactive, promo}), ShouldEqual, 900)
			})
		})
	})

	Convey("Given no rules", t, func() {
		Convey("Then the base price passes through", func() {
			So(pricing.Apply(4200, mustTime("2026-01-07T18:00:00Z"), nil), ShouldEqual, 4200)
		})
	})

	Convey("Given a zero multiplier", t, func() {
		rules := []model.PricingRule{{ID: "free", Multiplier: 0, Active: true}}

		Convey("Then the price clamps at zero", func() {
			So(pricing.Apply(5000, mustTime("2026-01-07T18:00:00Z"), rules), ShouldEqual, 0)
		})
	})
}

func TestMatches(t *testing.T) {
	Convey("Given a rule with empty predicates", t, func() {
		r := model.PricingRule{ID: "always", Multiplier: 1.1, Active: true}

		Convey("Then it matches any session start", func() {
			So(pricing.Matches(r, mustTime("2026-01-07T03:00:00Z")), ShouldBeTrue)
			So(pricing.Matches(r, mustTime("2026-01-11T23:59:00Z")), ShouldBeTrue)
		})
	})

	Convey("Given an inclusive time window", t, func() {
		r := model.PricingRule{StartTime: "17:00", EndTime: "21:00"}

		Convey("Then both boundaries match", func() {
			So(pricing.Matches(r, mustTime("2026-01-07T17:00:00Z")), ShouldBeTrue)
			So(pricing.Matches(r, mustTime("2026-01-07T21:00:00Z")), ShouldBeTrue)
		})

		Convey("And one minute past the end does not", func() {
			So(pricing.Matches(r, mustTime("2026-01-07T21:01:00Z")), ShouldBeFalse)
		})
	})

	Convey("Given a rule with only one time bound set", t, func() {
		r := model.PricingRule{StartTime: "17:00"}

		Convey("Then the window is ignored and every time of day matches", func() {
			So(pricing.Matches(r, mustTime("2026-01-07T03:00:00Z")), ShouldBeTrue)
			So(pricing.Matches(model.PricingRule{EndTime: "08:00"}, mustTime("2026-01-07T23:00:00Z")), ShouldBeTrue)
		})
	})
}
