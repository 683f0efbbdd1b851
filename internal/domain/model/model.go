// Package model contains domain models passed between layers.
package model

import "time"

// ItemKind tags a catalog item with its offering type.
type ItemKind string

// Known item kinds. The set is open-ended; unknown kinds are carried as-is.
const (
	KindRental      ItemKind = "rental"
	KindOpenSession ItemKind = "open_session"
	KindCoaching    ItemKind = "coaching"
	KindClinic      ItemKind = "clinic"
)

// SessionStatus is the lifecycle state of a bookable session.
type SessionStatus string

const (
	SessionOpen       SessionStatus = "open"
	SessionFull       SessionStatus = "full"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// InteractionType classifies a telemetry signal on a catalog item.
type InteractionType string

const (
	InteractionView    InteractionType = "view"
	InteractionTap     InteractionType = "tap"
	InteractionBook    InteractionType = "book"
	InteractionDismiss InteractionType = "dismiss"
)

// OrderStatus is the payment lifecycle state of an order.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderPaid     OrderStatus = "paid"
	OrderRefunded OrderStatus = "refunded"
	OrderFailed   OrderStatus = "failed"
)

// CatalogItem is a bookable offering. Owned by the catalog; read-only here.
type CatalogItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      ItemKind  `json:"kind"`
	Tags      []string  `json:"tags"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one scheduled, capacity-limited occurrence of a catalog item.
// Prices are in minor currency units. Remaining only changes through the
// store's atomic reservation operation.
type Session struct {
	ID        string        `json:"id"`
	ItemID    string        `json:"item_id"`
	StartAt   time.Time     `json:"start_at"`
	EndAt     time.Time     `json:"end_at"`
	BasePrice int64         `json:"base_price"`
	Capacity  int           `json:"capacity"`
	Remaining int           `json:"remaining"`
	Status    SessionStatus `json:"status"`
}

// PricedSession pairs a session with its rule-adjusted display price.
type PricedSession struct {
	Session Session `json:"session"`
	Price   int64   `json:"price"`
}

// InteractionEvent is one append-only telemetry signal. EventID is a
// client-supplied idempotency key.
type InteractionEvent struct {
	EventID string          `json:"event_id"`
	ItemID  string          `json:"item_id"`
	Type    InteractionType `json:"type"`
	At      time.Time       `json:"at"`
}

// Membership is a user's discount plan. Read-only input to pricing and
// scoring; never mutated by this service.
type Membership struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	Active          bool    `json:"active"`
	DiscountPercent float64 `json:"discount_percent"`
	Tier            string  `json:"tier"`
}

// PricingRule is an ordered multiplier rule. An empty day set matches every
// day. The time window only applies when both StartTime and EndTime are set;
// a rule with one bound empty is treated as having no time window at all.
// Times are zero-padded "HH:MM" strings compared lexicographically,
// inclusive on both ends.
type PricingRule struct {
	ID         string         `json:"id"`
	Days       []time.Weekday `json:"days"`
	StartTime  string         `json:"start_time"`
	EndTime    string         `json:"end_time"`
	Multiplier float64        `json:"multiplier"`
	Active     bool           `json:"active"`
}

// Reservation records a successful capacity claim on a session.
type Reservation struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Spots     int       `json:"spots"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is the payable record produced by a checkout attempt. Status
// transitions are the only mutation path; orders are never deleted. An empty
// MembershipID means no membership was applied.
type Order struct {
	ID            string      `json:"id"`
	ReservationID string      `json:"reservation_id"`
	SessionID     string      `json:"session_id"`
	PurchaserID   string      `json:"purchaser_id"`
	Amount        int64       `json:"amount"`
	Discount      int64       `json:"discount"`
	MembershipID  string      `json:"membership_id,omitempty"`
	SplitGroupID  string      `json:"split_group_id,omitempty"`
	IsSplit       bool        `json:"is_split"`
	ProcessorRef  string      `json:"processor_ref"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}
