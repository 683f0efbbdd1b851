package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/courtsidehq/courtside/internal/domain/model"
)

type interactionRequest struct {
	EventID string `json:"event_id"`
	ItemID  string `json:"item_id" validate:"required"`
	Type    string `json:"type"    validate:"required,oneof=view tap book dismiss"`
}

type interactionResponse struct {
	EventID   string `json:"event_id"`
	Accepted  bool   `json:"accepted"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// InteractionsHandler ingests user interaction events.
type InteractionsHandler struct {
	deps Dependencies
}

// NewInteractionsHandler creates a new interactions handler.
func NewInteractionsHandler(deps Dependencies) *InteractionsHandler {
	return &InteractionsHandler{deps: deps}
}

// HandlePostInteraction handles POST /interactions requests. Events are
// acknowledged with 202 and persisted asynchronously; duplicates by event_id
// are acked without re-recording, and a full queue yields 429.
func (h *InteractionsHandler) HandlePostInteraction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Mint the id here so the ack can echo it back to the client.
	if req.EventID == "" {
		req.EventID = uuid.NewString()
	}

	ev := model.InteractionEvent{
		EventID: req.EventID,
		ItemID:  req.ItemID,
		Type:    model.InteractionType(req.Type),
		At:      time.Now().UTC(),
	}
	accepted, duplicate := h.deps.LogInteraction(r.Context(), ev)
	if !accepted && !duplicate {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, interactionResponse{
		EventID:   ev.EventID,
		Accepted:  accepted,
		Duplicate: duplicate,
	})
}
