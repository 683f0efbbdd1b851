package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrNotFound: the referenced row does not exist. Fatal, never retried.
	ErrNotFound = errors.New("not found")

	// ErrSessionNotOpen: the session is full, cancelled, completed, or in
	// progress. A normal business outcome, surfaced as sold out.
	ErrSessionNotOpen = errors.New("session not open for booking")

	// ErrSoldOut: fewer seats remain than were requested.
	ErrSoldOut = errors.New("insufficient remaining capacity")

	// ErrInvalidSpots: a reservation for less than one seat.
	ErrInvalidSpots = errors.New("spots must be at least 1")

	// ErrUnavailable: transient store failure; safe to retry with backoff.
	ErrUnavailable = errors.New("store temporarily unavailable")
)
