package payment

import "errors"

// Sentinel kinds for processor errors.
var (
	// ErrProcessor: the processor call failed. Surfaced distinctly from
	// capacity errors because the seat is already held when it happens.
	ErrProcessor = errors.New("payment processor failed")

	// ErrInvalidAmount: a charge intent for a negative amount.
	ErrInvalidAmount = errors.New("charge amount must not be negative")
)
