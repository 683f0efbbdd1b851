package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courtsidehq/courtside/internal/domain/model"
)

// MemStore implements Store in memory. A single mutex serializes Reserve's
// check-and-decrement against all concurrent callers, which is what keeps
// `0 <= remaining <= total` true under any interleaving.
//
// Rules and sessions keep their insertion order: pricing-rule order is
// significant and session order within an item decides the "next session".
type MemStore struct {
	mu sync.RWMutex

	items         []model.CatalogItem
	sessions      []model.Session
	sessionIdx    map[string]int
	rules         []model.PricingRule
	memberships   map[string]model.Membership
	interactions  []model.InteractionEvent
	collaborative map[string]map[string]float64 // userID -> itemID -> score
	reservations  map[string]model.Reservation
	orders        map[string]model.Order

	// Transient failure injection for exercising the retry path.
	failRate float64
	rng      *rand.Rand

	nowFn func() time.Time
}

// NewMemStore creates an empty in-memory store with configuration options.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		sessionIdx:    make(map[string]int),
		memberships:   make(map[string]model.Membership),
		collaborative: make(map[string]map[string]float64),
		reservations:  make(map[string]model.Reservation),
		orders:        make(map[string]model.Order),
		rng:           rand.New(rand.NewSource(1)), //nolint:gosec // deterministic failure injection
		nowFn:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// maybeFail simulates a transient store outage. Must be called with the
// write lock held so rng access stays serialized.
func (s *MemStore) maybeFail() error {
	if s.failRate > 0 && s.rng.Float64() < s.failRate {
		return ErrUnavailable
	}
	return nil
}

// readFail is maybeFail behind the write lock for read paths.
func (s *MemStore) readFail() error {
	if s.failRate == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maybeFail()
}

// Seed writes. These populate the store at startup or in tests; the
// administrative console that owns these rows is out of scope.

// PutItem inserts or replaces a catalog item.
func (s *MemStore) PutItem(item model.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.items {
		if existing.ID == item.ID {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}

// PutSession inserts or replaces a session.
func (s *MemStore) PutSession(sess model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.sessionIdx[sess.ID]; ok {
		s.sessions[i] = sess
		return
	}
	s.sessionIdx[sess.ID] = len(s.sessions)
	s.sessions = append(s.sessions, sess)
}

// PutRule appends a pricing rule, preserving application order.
func (s *MemStore) PutRule(r model.PricingRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, r)
}

// PutMembership inserts or replaces a membership record.
func (s *MemStore) PutMembership(m model.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[m.ID] = m
}

// SetCollaborativeScore records a precomputed collaborative score.
func (s *MemStore) SetCollaborativeScore(userID, itemID string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collaborative[userID] == nil {
		s.collaborative[userID] = make(map[string]float64)
	}
	s.collaborative[userID][itemID] = score
}

// Reads.

func (s *MemStore) ListItems(_ context.Context) ([]model.CatalogItem, error) {
	if err := s.readFail(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CatalogItem, 0, len(s.items))
	for _, item := range s.items {
		if item.Active {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *MemStore) ListSessions(_ context.Context) ([]model.Session, error) {
	if err := s.readFail(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Session, len(s.sessions))
	copy(out, s.sessions)
	return out, nil
}

func (s *MemStore) SessionsByItem(_ context.Context, itemID string) ([]model.Session, error) {
	if err := s.readFail(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Session
	for _, sess := range s.sessions {
		if sess.ItemID == itemID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *MemStore) GetSession(_ context.Context, id string) (model.Session, error) {
	if err := s.readFail(); err != nil {
		return model.Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.sessionIdx[id]
	if !ok {
		return model.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s.sessions[i], nil
}

func (s *MemStore) ListRules(_ context.Context) ([]model.PricingRule, error) {
	if err := s.readFail(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PricingRule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

func (s *MemStore) GetMembership(_ context.Context, id string) (model.Membership, error) {
	if err := s.readFail(); err != nil {
		return model.Membership{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[id]
	if !ok {
		return model.Membership{}, fmt.Errorf("membership %s: %w", id, ErrNotFound)
	}
	return m, nil
}

func (s *MemStore) ListInteractions(_ context.Context) ([]model.InteractionEvent, error) {
	if err := s.readFail(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.InteractionEvent, len(s.interactions))
	copy(out, s.interactions)
	return out, nil
}

func (s *MemStore) CollaborativeScores(_ context.Context, userID string) (map[string]float64, error) {
	if err := s.readFail(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.collaborative[userID]))
	for itemID, score := range s.collaborative[userID] {
		out[itemID] = score
	}
	return out, nil
}

// Writes.

func (s *MemStore) AppendInteraction(_ context.Context, ev model.InteractionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.maybeFail(); err != nil {
		return err
	}
	s.interactions = append(s.interactions, ev)
	return nil
}

func (s *MemStore) Reserve(_ context.Context, sessionID, userID string, spots int) (model.Reservation, error) {
	if spots < 1 {
		return model.Reservation{}, ErrInvalidSpots
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.maybeFail(); err != nil {
		return model.Reservation{}, err
	}

	i, ok := s.sessionIdx[sessionID]
	if !ok {
		return model.Reservation{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	sess := s.sessions[i]

	if sess.Status != model.SessionOpen {
		return model.Reservation{}, fmt.Errorf("session %s is %s: %w", sessionID, sess.Status, ErrSessionNotOpen)
	}
	if sess.Remaining < spots {
		return model.Reservation{}, fmt.Errorf("session %s has %d of %d requested seats: %w",
			sessionID, sess.Remaining, spots, ErrSoldOut)
	}

	sess.Remaining -= spots
	if sess.Remaining == 0 {
		sess.Status = model.SessionFull
	}
	s.sessions[i] = sess

	res := model.Reservation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		Spots:     spots,
		CreatedAt: s.nowFn(),
	}
	s.reservations[res.ID] = res
	return res, nil
}

func (s *MemStore) CreateOrder(_ context.Context, o model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.maybeFail(); err != nil {
		return err
	}
	s.orders[o.ID] = o
	return nil
}

func (s *MemStore) UpdateOrderStatus(_ context.Context, id string, status model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	o.Status = status
	s.orders[id] = o
	return nil
}

func (s *MemStore) GetOrder(_ context.Context, id string) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return o, nil
}

func (s *MemStore) Counts(_ context.Context) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"items":        len(s.items),
		"sessions":     len(s.sessions),
		"rules":        len(s.rules),
		"memberships":  len(s.memberships),
		"interactions": len(s.interactions),
		"reservations": len(s.reservations),
		"orders":       len(s.orders),
	}
}
