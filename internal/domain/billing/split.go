package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/courtsidehq/courtside/internal/domain/model"
)

// ComputeSplit divides totalPrice across participantCount payers, rounding
// up. The sum collected is always >= totalPrice and the overage is strictly
// less than participantCount minor units; the venue never loses to rounding.
func ComputeSplit(totalPrice int64, participantCount int) (int64, error) {
	if participantCount < 1 {
		return 0, ErrNoParticipants
	}
	if totalPrice < 0 {
		return 0, ErrNegativePrice
	}
	n := int64(participantCount)
	return (totalPrice + n - 1) / n, nil
}

// NewSplitGroupID mints the shared id linking all orders of one split.
func NewSplitGroupID() string {
	return uuid.NewString()
}

// NewSplitOrder builds one participant's order in a split group. Split orders
// carry no membership discount.
func NewSplitOrder(res model.Reservation, participantID string, perPerson int64, splitGroupID, processorRef string, now time.Time) model.Order {
	return model.Order{
		ID:            uuid.NewString(),
		ReservationID: res.ID,
		SessionID:     res.SessionID,
		PurchaserID:   participantID,
		Amount:        perPerson,
		Discount:      0,
		SplitGroupID:  splitGroupID,
		IsSplit:       true,
		ProcessorRef:  processorRef,
		Status:        model.OrderPending,
		CreatedAt:     now,
	}
}
