package api

import (
	"encoding/json"
	"net/http"

	"github.com/courtsidehq/courtside/internal/domain/types"
)

type splitRequest struct {
	SessionID         string   `json:"session_id"         validate:"required"`
	OrganizerID       string   `json:"organizer_id"`
	ParticipantEmails []string `json:"participant_emails" validate:"required,min=1,dive,email"`
}

// SplitHandler serves group split checkout.
type SplitHandler struct {
	deps Dependencies
}

// NewSplitHandler creates a new split-checkout handler.
func NewSplitHandler(deps Dependencies) *SplitHandler {
	return &SplitHandler{deps: deps}
}

// HandleSplitCheckout handles POST /checkout/split requests.
func (h *SplitHandler) HandleSplitCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.deps.SplitCheckout(r.Context(), types.SplitRequest{
		SessionID:         req.SessionID,
		OrganizerID:       req.OrganizerID,
		ParticipantEmails: req.ParticipantEmails,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
