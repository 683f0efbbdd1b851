package api

import (
	"encoding/json"
	"net/http"

	"github.com/courtsidehq/courtside/internal/domain/types"
)

type checkoutRequest struct {
	SessionID    string `json:"session_id"    validate:"required"`
	UserID       string `json:"user_id"       validate:"required"`
	GuestCount   int    `json:"guest_count"   validate:"gte=0"`
	MembershipID string `json:"membership_id"`
}

// CheckoutHandler serves single-user checkout.
type CheckoutHandler struct {
	deps Dependencies
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(deps Dependencies) *CheckoutHandler {
	return &CheckoutHandler{deps: deps}
}

// HandleCheckout handles POST /checkout requests.
func (h *CheckoutHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.deps.Checkout(r.Context(), types.CheckoutRequest{
		SessionID:    req.SessionID,
		UserID:       req.UserID,
		GuestCount:   req.GuestCount,
		MembershipID: req.MembershipID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
