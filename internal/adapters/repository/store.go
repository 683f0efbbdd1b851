// Package repository defines the durable-store contract and an in-memory
// implementation with atomic capacity reservation.
package repository

import (
	"context"

	"github.com/courtsidehq/courtside/internal/domain/model"
)

// Store provides the reads and the single capacity-mutating operation the
// core needs. Everything except Reserve, AppendInteraction, and the order
// writes is a plain read.
type Store interface {
	// Catalog reads.
	ListItems(ctx context.Context) ([]model.CatalogItem, error)
	ListSessions(ctx context.Context) ([]model.Session, error)
	SessionsByItem(ctx context.Context, itemID string) ([]model.Session, error)
	GetSession(ctx context.Context, id string) (model.Session, error)
	ListRules(ctx context.Context) ([]model.PricingRule, error)
	GetMembership(ctx context.Context, id string) (model.Membership, error)
	ListInteractions(ctx context.Context) ([]model.InteractionEvent, error)
	CollaborativeScores(ctx context.Context, userID string) (map[string]float64, error)

	// AppendInteraction appends one telemetry event to the signal log.
	AppendInteraction(ctx context.Context, ev model.InteractionEvent) error

	// Reserve atomically checks and decrements a session's remaining
	// capacity. The check and the decrement are one indivisible unit with
	// respect to every concurrent Reserve on the same session. Returns
	// ErrNotFound for unknown sessions, ErrSessionNotOpen when the session
	// does not accept reservations, and ErrSoldOut when fewer than spots
	// seats remain. No partial state is left on failure.
	Reserve(ctx context.Context, sessionID, userID string, spots int) (model.Reservation, error)

	// Order writes. Orders are created once and only their status mutates.
	CreateOrder(ctx context.Context, o model.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
	GetOrder(ctx context.Context, id string) (model.Order, error)

	// Counts returns row counts for monitoring.
	Counts(ctx context.Context) map[string]int
}
