// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/courtsidehq/courtside/internal/adapters/payment"
	"github.com/courtsidehq/courtside/internal/adapters/repository"
	"github.com/courtsidehq/courtside/internal/domain/billing"
	"github.com/courtsidehq/courtside/internal/domain/feed"
	"github.com/courtsidehq/courtside/internal/domain/model"
	"github.com/courtsidehq/courtside/internal/domain/types"
)

// Dependencies bundles the service operations the handlers need. An
// interface keeps the handler layer loosely coupled to the app package.
type Dependencies interface {
	Feed(ctx context.Context, req types.FeedRequest) (feed.Page, error)
	ProductSessions(ctx context.Context, itemID string) ([]model.PricedSession, error)
	Checkout(ctx context.Context, req types.CheckoutRequest) (types.CheckoutResult, error)
	SplitCheckout(ctx context.Context, req types.SplitRequest) (types.SplitResult, error)
	LogInteraction(ctx context.Context, ev model.InteractionEvent) (accepted, duplicate bool)
}

// validate checks inbound request structs. Shared across handlers.
var validate = validator.New() //nolint:gochecknoglobals // one validator instance for all handlers

// Server wires HTTP routes for the booking API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	feedHandler         *FeedHandler
	sessionsHandler     *SessionsHandler
	checkoutHandler     *CheckoutHandler
	splitHandler        *SplitHandler
	interactionsHandler *InteractionsHandler
}

// NewServer creates the API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		feedHandler:         NewFeedHandler(deps),
		sessionsHandler:     NewSessionsHandler(deps),
		checkoutHandler:     NewCheckoutHandler(deps),
		splitHandler:        NewSplitHandler(deps),
		interactionsHandler: NewInteractionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/feed", MetricsMiddleware(s.feedHandler.HandleGetFeed, "feed"))
	mux.HandleFunc("/products/", MetricsMiddleware(s.sessionsHandler.HandleGetSessions, "product_sessions"))
	mux.HandleFunc("/checkout", MetricsMiddleware(s.checkoutHandler.HandleCheckout, "checkout"))
	mux.HandleFunc("/checkout/split", MetricsMiddleware(s.splitHandler.HandleSplitCheckout, "split_checkout"))
	mux.HandleFunc("/interactions", MetricsMiddleware(s.interactionsHandler.HandlePostInteraction, "interactions"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates service errors to the HTTP taxonomy: capacity
// rejections are 404/409, transient store trouble is 503, a processor
// failure after the seat is held is 502, anything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrSoldOut), errors.Is(err, repository.ErrSessionNotOpen):
		writeError(w, http.StatusConflict, "sold_out", err)
	case errors.Is(err, repository.ErrInvalidSpots),
		errors.Is(err, billing.ErrNoParticipants),
		errors.Is(err, billing.ErrNegativePrice):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", err)
	case errors.Is(err, payment.ErrProcessor):
		writeError(w, http.StatusBadGateway, "payment_failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
