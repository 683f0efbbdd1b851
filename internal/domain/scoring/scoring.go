// Package scoring computes multi-factor relevance scores for catalog items.
//
// A score is the sum of six independent terms: interaction history with time
// decay, skill-tag affinity, an externally supplied collaborative signal,
// item recency, session urgency, and membership affinity. The final sum is
// rounded to two decimal places.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/courtsidehq/courtside/internal/domain/model"
)

// Interaction weights by event type. Unknown types count zero.
const (
	weightBook    = 10.0
	weightTap     = 5.0
	weightView    = 1.0
	weightDismiss = -3.0
)

// Time-decay factors over event age.
const (
	decayWeek    = 1.0
	decayMonth   = 0.5
	decayQuarter = 0.2
	decayStale   = 0.05
)

// Skill-match and urgency term values.
const (
	skillExactMatch    = 15.0
	skillAdjacentMatch = 5.0
	urgencyAlmostFull  = 8.0
	urgencySoon        = 5.0
)

// Recency term values.
const (
	recencyNewItem    = 10.0
	recencyRecentItem = 5.0
)

const membershipAffinity = 5.0

const (
	week    = 7 * 24 * time.Hour
	month   = 30 * 24 * time.Hour
	quarter = 90 * 24 * time.Hour
	day     = 24 * time.Hour
)

// almostFullThreshold marks a session as urgent when fewer seats remain.
const almostFullThreshold = 3

// skillScale orders recognized skill levels. "competitive" is an alias for
// the top level.
var skillScale = map[string]int{
	"beginner":     0,
	"intermediate": 1,
	"advanced":     2,
	"pro":          3,
	"competitive":  3,
}

// Input carries everything needed to score one catalog item.
type Input struct {
	Item          model.CatalogItem
	Sessions      []model.PricedSession
	Interactions  []model.InteractionEvent
	UserSkill     string
	Collaborative float64
	Membership    *model.Membership
	Now           time.Time
}

// Score computes the relevance score for one item. It is a pure function of
// its input: the same input always yields the same score.
func Score(in Input) float64 {
	sum := interactionTerm(in.Item.ID, in.Interactions, in.Now) +
		skillTerm(in.Item.Tags, in.UserSkill) +
		in.Collaborative +
		recencyTerm(in.Item.CreatedAt, in.Now) +
		urgencyTerm(in.Sessions, in.Now) +
		membershipTerm(in.Sessions, in.Membership)
	return math.Round(sum*100) / 100
}

// interactionTerm sums type-weighted, time-decayed signals for the item.
func interactionTerm(itemID string, events []model.InteractionEvent, now time.Time) float64 {
	var term float64
	for _, ev := range events {
		if ev.ItemID != itemID {
			continue
		}
		term += typeWeight(ev.Type) * decayFactor(now.Sub(ev.At))
	}
	return term
}

func typeWeight(t model.InteractionType) float64 {
	switch t {
	case model.InteractionBook:
		return weightBook
	case model.InteractionTap:
		return weightTap
	case model.InteractionView:
		return weightView
	case model.InteractionDismiss:
		return weightDismiss
	default:
		return 0
	}
}

func decayFactor(age time.Duration) float64 {
	switch {
	case age <= week:
		return decayWeek
	case age <= month:
		return decayMonth
	case age <= quarter:
		return decayQuarter
	default:
		return decayStale
	}
}

// skillTerm awards 15 on an exact level match and returns immediately; an
// adjacent level (best distance exactly 1) is worth 5. No recognized user
// skill or tags means 0.
func skillTerm(tags []string, userSkill string) float64 {
	userLevel, ok := skillScale[strings.ToLower(strings.TrimSpace(userSkill))]
	if !ok {
		return 0
	}

	best := -1
	for _, tag := range tags {
		level, ok := skillScale[strings.ToLower(strings.TrimSpace(tag))]
		if !ok {
			continue
		}
		dist := level - userLevel
		if dist < 0 {
			dist = -dist
		}
		if dist == 0 {
			return skillExactMatch
		}
		if best == -1 || dist < best {
			best = dist
		}
	}

	if best == 1 {
		return skillAdjacentMatch
	}
	return 0
}

func recencyTerm(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	switch {
	case age <= week:
		return recencyNewItem
	case age <= month:
		return recencyRecentItem
	default:
		return 0
	}
}

// urgencyTerm scans sessions and short-circuits on the almost-full case,
// which dominates soon-starting availability.
func urgencyTerm(sessions []model.PricedSession, now time.Time) float64 {
	var term float64
	for _, ps := range sessions {
		s := ps.Session
		if s.Remaining > 0 && s.Remaining < almostFullThreshold {
			return urgencyAlmostFull
		}
		if s.Remaining > 0 && s.StartAt.After(now) && s.StartAt.Sub(now) <= day {
			term = urgencySoon
		}
	}
	return term
}

// membershipTerm awards the bonus only when the discount would actually
// lower at least one session's rule-adjusted price.
func membershipTerm(sessions []model.PricedSession, m *model.Membership) float64 {
	if m == nil || !m.Active || m.DiscountPercent <= 0 {
		return 0
	}
	for _, ps := range sessions {
		discount := math.Floor(float64(ps.Price)*m.DiscountPercent/100 + 0.5)
		if discount >= 1 {
			return membershipAffinity
		}
	}
	return 0
}
