// Package feed assembles and paginates the personalized ranked feed.
package feed

import (
	"sort"
	"time"

	"github.com/courtsidehq/courtside/internal/domain/model"
	"github.com/courtsidehq/courtside/internal/domain/pricing"
	"github.com/courtsidehq/courtside/internal/domain/scoring"
)

// defaultSessionCap bounds the sessions shown per feed item.
const defaultSessionCap = 5

// RankedItem is one feed entry: the item, its relevance score, and up to the
// session cap of rule-priced sessions in their original order. The first
// session is the item's "next session".
type RankedItem struct {
	Item     model.CatalogItem     `json:"item"`
	Score    float64               `json:"score"`
	Sessions []model.PricedSession `json:"sessions"`
}

// AssembleInput carries the inputs for one feed assembly.
type AssembleInput struct {
	Items         []model.CatalogItem
	Sessions      []model.Session
	Interactions  []model.InteractionEvent
	Rules         []model.PricingRule
	UserSkill     string
	Collaborative map[string]float64
	Membership    *model.Membership
	Now           time.Time
}

// Assembler builds ranked feeds.
type Assembler struct {
	sessionCap int
}

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithSessionCap sets the maximum sessions carried per item.
func WithSessionCap(cap int) Option {
	return func(a *Assembler) {
		if cap > 0 {
			a.sessionCap = cap
		}
	}
}

// NewAssembler creates an Assembler with configuration options.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{sessionCap: defaultSessionCap}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble groups sessions by item, prices each session with the rule engine,
// scores every item that still has sessions, and returns the list sorted by
// score descending. Ties break on ascending next-session start; an item
// without a next session orders last.
func (a *Assembler) Assemble(in AssembleInput) []RankedItem {
	byItem := make(map[string][]model.PricedSession, len(in.Items))
	for _, s := range in.Sessions {
		priced := model.PricedSession{
			Session: s,
			Price:   pricing.Apply(s.BasePrice, s.StartAt, in.Rules),
		}
		byItem[s.ItemID] = append(byItem[s.ItemID], priced)
	}

	ranked := make([]RankedItem, 0, len(in.Items))
	for _, item := range in.Items {
		sessions := byItem[item.ID]
		if len(sessions) == 0 {
			// No bookable availability; never shown.
			continue
		}
		if len(sessions) > a.sessionCap {
			sessions = sessions[:a.sessionCap]
		}
		score := scoring.Score(scoring.Input{
			Item:          item,
			Sessions:      sessions,
			Interactions:  in.Interactions,
			UserSkill:     in.UserSkill,
			Collaborative: in.Collaborative[item.ID],
			Membership:    in.Membership,
			Now:           in.Now,
		})
		ranked = append(ranked, RankedItem{Item: item, Score: score, Sessions: sessions})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return nextStart(ranked[i]).Before(nextStart(ranked[j]))
	})

	return ranked
}

// nextStart returns the start of the item's next session, or the far future
// when the item has none.
func nextStart(r RankedItem) time.Time {
	if len(r.Sessions) == 0 {
		return time.Unix(1<<62, 0)
	}
	return r.Sessions[0].Session.StartAt
}
