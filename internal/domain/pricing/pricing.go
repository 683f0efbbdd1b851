// Package pricing applies ordered multiplier rules to session base prices.
//
// Rules compound: each matching rule multiplies the running price and the
// result is rounded half-up to a whole minor unit before the next rule is
// applied. Rule order therefore changes the result and is preserved from the
// input. Day-of-week and time-of-day matching happen in UTC.
package pricing

import (
	"math"
	"time"

	"github.com/courtsidehq/courtside/internal/domain/model"
	"github.com/courtsidehq/courtside/pkg/metrics"
)

// timeLayout is the zero-padded wall-clock form rules are compared in.
const timeLayout = "15:04"

// Apply runs every active, matching rule against basePrice in input order and
// returns the final price in minor units. An empty rule list is the identity.
// The result is never negative.
func Apply(basePrice int64, sessionStart time.Time, rules []model.PricingRule) int64 {
	price := basePrice
	for _, r := range rules {
		if !r.Active {
			continue
		}
		if !Matches(r, sessionStart) {
			continue
		}
		price = roundHalfUp(float64(price) * r.Multiplier)
		metrics.RecordPricingRuleApplied()
	}
	if price < 0 {
		price = 0
	}
	if basePrice > 0 && price != basePrice {
		metrics.RecordPricingAdjustment(float64(price) / float64(basePrice))
	}
	return price
}

// Matches reports whether a rule's predicate covers the given session start.
// An empty day set matches every day. The time range is inclusive on both
// ends and only constrains when both bounds are set; a rule missing either
// bound matches every time of day.
func Matches(r model.PricingRule, sessionStart time.Time) bool {
	utc := sessionStart.UTC()

	if len(r.Days) > 0 {
		day := utc.Weekday()
		found := false
		for _, d := range r.Days {
			if d == day {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if r.StartTime != "" && r.EndTime != "" {
		tod := utc.Format(timeLayout)
		if tod < r.StartTime || tod > r.EndTime {
			return false
		}
	}

	return true
}

// roundHalfUp rounds to the nearest whole minor unit, with .5 rounding up.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
