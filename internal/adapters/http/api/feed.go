package api

import (
	"net/http"
	"strconv"

	"github.com/courtsidehq/courtside/internal/domain/types"
)

const defaultPageSize = 20

// FeedHandler serves the personalized ranked feed.
type FeedHandler struct {
	deps Dependencies
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(deps Dependencies) *FeedHandler {
	return &FeedHandler{deps: deps}
}

// HandleGetFeed handles GET /feed requests. Query parameters: cursor,
// page_size, user_id, skill, membership_id. The cursor is opaque; clients
// pass back the next_cursor of the previous page unmodified.
func (h *FeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	pageSize := defaultPageSize
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		// Out-of-range values are clamped server-side, not rejected.
		pageSize = n
	}

	page, err := h.deps.Feed(r.Context(), types.FeedRequest{
		UserID:       q.Get("user_id"),
		UserSkill:    q.Get("skill"),
		MembershipID: q.Get("membership_id"),
		Cursor:       q.Get("cursor"),
		PageSize:     pageSize,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
