// Package payment defines the narrow charge-intent contract the core needs
// from the payment processor. Capture, webhooks, and refunds live elsewhere.
package payment

import "context"

// Intent is the processor's answer to a charge request: a reference the
// order records and a client-facing secret the purchaser completes payment
// with.
type Intent struct {
	Reference    string `json:"reference"`
	ClientSecret string `json:"client_secret"`
}

// Processor creates charge intents. Implementations may call a real
// processor; the core only records the returned reference.
type Processor interface {
	// CreateIntent requests a charge of amount minor units against customer,
	// honoring ctx for cancellation.
	CreateIntent(ctx context.Context, amount int64, customer string) (Intent, error)
}
