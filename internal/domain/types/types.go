// Package types contains request and result shapes shared between the HTTP
// layer and the service.
package types

// FeedRequest is one personalized feed page request.
type FeedRequest struct {
	UserID       string
	UserSkill    string
	MembershipID string
	Cursor       string
	PageSize     int
}

// CheckoutRequest is one checkout attempt.
type CheckoutRequest struct {
	SessionID    string
	UserID       string
	GuestCount   int
	MembershipID string
}

// CheckoutResult is the payable outcome of a checkout.
type CheckoutResult struct {
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Discount         int64  `json:"discount"`
	PaymentReference string `json:"payment_reference"`
	ClientSecret     string `json:"client_secret"`
}

// SplitRequest is one split-checkout attempt.
type SplitRequest struct {
	SessionID         string
	OrganizerID       string
	ParticipantEmails []string
}

// SplitResult is the outcome of a split checkout.
type SplitResult struct {
	PerPersonAmount   int64    `json:"per_person_amount"`
	SplitGroupID      string   `json:"split_group_id"`
	PaymentReferences []string `json:"payment_references"`
	OrderIDs          []string `json:"order_ids"`
}
