package billing

import "errors"

// Sentinel kinds for billing errors.
var (
	ErrNoParticipants = errors.New("split requires at least one participant")
	ErrNegativePrice  = errors.New("total price must not be negative")
)
