// Package billing computes checkout totals and builds payable order records.
package billing

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/courtsidehq/courtside/internal/domain/model"
)

const percentDivisor = 100

// Checkout is the computed total for one purchaser plus guests.
type Checkout struct {
	TotalSpots int
	Amount     int64
	Discount   int64
}

// ComputeCheckout computes the amount due for a purchaser and guestCount
// guests at sessionPrice per spot. An active membership's discount percent is
// applied to the raw amount and rounded half-up; an inactive or absent
// membership means no discount.
func ComputeCheckout(sessionPrice int64, guestCount int, membership *model.Membership) Checkout {
	totalSpots := 1 + guestCount
	raw := sessionPrice * int64(totalSpots)

	var discount int64
	if membership != nil && membership.Active {
		discount = int64(math.Floor(float64(raw)*membership.DiscountPercent/percentDivisor + 0.5))
	}

	return Checkout{
		TotalSpots: totalSpots,
		Amount:     raw - discount,
		Discount:   discount,
	}
}

// NewOrder builds the pending order record for a completed checkout
// computation. An empty membership id is carried as no membership.
func NewOrder(res model.Reservation, c Checkout, membershipID, processorRef string, now time.Time) model.Order {
	return model.Order{
		ID:            uuid.NewString(),
		ReservationID: res.ID,
		SessionID:     res.SessionID,
		PurchaserID:   res.UserID,
		Amount:        c.Amount,
		Discount:      c.Discount,
		MembershipID:  membershipID,
		ProcessorRef:  processorRef,
		Status:        model.OrderPending,
		CreatedAt:     now,
	}
}
