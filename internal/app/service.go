// Package app wires the booking engine together and implements the
// operations the HTTP API depends on.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courtsidehq/courtside/internal/adapters/mq/queue"
	"github.com/courtsidehq/courtside/internal/adapters/mq/worker"
	"github.com/courtsidehq/courtside/internal/adapters/payment"
	"github.com/courtsidehq/courtside/internal/adapters/repository"
	"github.com/courtsidehq/courtside/internal/domain/billing"
	"github.com/courtsidehq/courtside/internal/domain/dedupe"
	"github.com/courtsidehq/courtside/internal/domain/feed"
	"github.com/courtsidehq/courtside/internal/domain/model"
	"github.com/courtsidehq/courtside/internal/domain/pricing"
	"github.com/courtsidehq/courtside/internal/domain/types"
	"github.com/courtsidehq/courtside/pkg/logger"
	"github.com/courtsidehq/courtside/pkg/metrics"
)

// Defaults for the service configuration.
const (
	defaultWorkerCount   = 4
	defaultQueueSize     = 100000
	defaultDedupeSize    = 50000
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 25 * time.Millisecond
)

// Service implements the booking engine operations.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	processor payment.Processor
	deduper   dedupe.Deduper
	queue     queue.Queue
	pool      *worker.Pool
	assembler *feed.Assembler
	paginator *feed.Paginator

	workerCount   int
	queueSize     int
	dedupeSize    int
	sessionCap    int
	maxPageSize   int
	retryAttempts int
	retryBackoff  time.Duration

	started bool

	logger logger.Logger
	nowFn  func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithProcessor sets the payment processor client.
func WithProcessor(p payment.Processor) Option {
	return func(s *Service) {
		if p != nil {
			s.processor = p
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkerCount sets the number of interaction ingest workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the interaction queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the interaction idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSessionCap sets the maximum sessions shown per feed item.
func WithSessionCap(cap int) Option {
	return func(s *Service) {
		if cap > 0 {
			s.sessionCap = cap
		}
	}
}

// WithMaxPageSize sets the server-side clamp on feed page sizes.
func WithMaxPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxPageSize = size
		}
	}
}

// WithRetryPolicy sets the transient-store retry policy.
func WithRetryPolicy(attempts int, backoff time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.retryAttempts = attempts
		}
		if backoff > 0 {
			s.retryBackoff = backoff
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   defaultWorkerCount,
		queueSize:     defaultQueueSize,
		dedupeSize:    defaultDedupeSize,
		retryAttempts: defaultRetryAttempts,
		retryBackoff:  defaultRetryBackoff,
		nowFn:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes components and launches the ingest workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.processor == nil {
		s.processor = payment.NewSimulatedProcessor()
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.queue = q

	var assemblerOpts []feed.Option
	if s.sessionCap > 0 {
		assemblerOpts = append(assemblerOpts, feed.WithSessionCap(s.sessionCap))
	}
	s.assembler = feed.NewAssembler(assemblerOpts...)

	var paginatorOpts []feed.PaginatorOption
	if s.maxPageSize > 0 {
		paginatorOpts = append(paginatorOpts, feed.WithMaxPageSize(s.maxPageSize))
	}
	s.paginator = feed.NewPaginator(paginatorOpts...)

	s.pool = worker.NewPool(s.workerCount, q, s.store,
		worker.WithRetry(s.retryAttempts, s.retryBackoff),
		worker.WithTransientCheck(func(err error) bool {
			return errors.Is(err, repository.ErrUnavailable)
		}),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "booking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping booking service...")

	if q, ok := s.queue.(*queue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "booking service stopped")
}

// withRetry runs fn, retrying transient store failures with doubling backoff.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	backoff := s.retryBackoff
	var err error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if attempt > 0 {
			metrics.RecordReservationRetry()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		err = fn()
		if err == nil || !errors.Is(err, repository.ErrUnavailable) {
			return err
		}
	}
	return err
}

// Feed assembles the ranked feed for the requesting user and returns the
// requested page.
func (s *Service) Feed(ctx context.Context, req types.FeedRequest) (feed.Page, error) {
	start := time.Now()

	var (
		items        []model.CatalogItem
		sessions     []model.Session
		rules        []model.PricingRule
		interactions []model.InteractionEvent
		collab       map[string]float64
	)
	err := s.withRetry(ctx, func() error {
		var err error
		if items, err = s.store.ListItems(ctx); err != nil {
			return err
		}
		if sessions, err = s.store.ListSessions(ctx); err != nil {
			return err
		}
		if rules, err = s.store.ListRules(ctx); err != nil {
			return err
		}
		if interactions, err = s.store.ListInteractions(ctx); err != nil {
			return err
		}
		collab, err = s.store.CollaborativeScores(ctx, req.UserID)
		return err
	})
	if err != nil {
		return feed.Page{}, err
	}

	membership, err := s.lookupMembership(ctx, req.MembershipID)
	if err != nil {
		return feed.Page{}, err
	}

	ranked := s.assembler.Assemble(feed.AssembleInput{
		Items:         items,
		Sessions:      sessions,
		Interactions:  interactions,
		Rules:         rules,
		UserSkill:     req.UserSkill,
		Collaborative: collab,
		Membership:    membership,
		Now:           s.nowFn(),
	})

	page := s.paginator.Paginate(ranked, req.Cursor, req.PageSize)

	metrics.RecordFeedRequest()
	metrics.RecordFeedItemsRanked(len(ranked))
	metrics.RecordFeedAssemblyTime(float64(time.Since(start).Milliseconds()))
	if len(page.Items) == 0 {
		metrics.RecordFeedEmptyResult()
	}
	if page.CursorMiss {
		metrics.RecordFeedCursorMiss()
		s.logger.Debug(ctx, "stale feed cursor; restarting from top", logger.String("cursor", req.Cursor))
	}
	return page, nil
}

// ProductSessions returns an item's sessions with rule-adjusted prices.
func (s *Service) ProductSessions(ctx context.Context, itemID string) ([]model.PricedSession, error) {
	var (
		sessions []model.Session
		rules    []model.PricingRule
	)
	err := s.withRetry(ctx, func() error {
		var err error
		if sessions, err = s.store.SessionsByItem(ctx, itemID); err != nil {
			return err
		}
		rules, err = s.store.ListRules(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	priced := make([]model.PricedSession, len(sessions))
	for i, sess := range sessions {
		priced[i] = model.PricedSession{
			Session: sess,
			Price:   pricing.Apply(sess.BasePrice, sess.StartAt, rules),
		}
	}
	return priced, nil
}

// lookupMembership resolves an optional membership id. Empty and unknown ids
// both mean no membership.
func (s *Service) lookupMembership(ctx context.Context, id string) (*model.Membership, error) {
	if id == "" {
		return nil, nil
	}
	var m model.Membership
	err := s.withRetry(ctx, func() error {
		var err error
		m, err = s.store.GetMembership(ctx, id)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Checkout reserves 1+guestCount seats, computes the total with any
// membership discount, creates a charge intent, and records the pending
// order. If the processor fails after the seat is held, a failed order is
// recorded and the error is surfaced distinctly; the reservation is not
// rolled back here.
func (s *Service) Checkout(ctx context.Context, req types.CheckoutRequest) (types.CheckoutResult, error) {
	sess, rules, err := s.sessionWithRules(ctx, req.SessionID)
	if err != nil {
		return types.CheckoutResult{}, err
	}
	price := pricing.Apply(sess.BasePrice, sess.StartAt, rules)

	membership, err := s.lookupMembership(ctx, req.MembershipID)
	if err != nil {
		return types.CheckoutResult{}, err
	}

	chk := billing.ComputeCheckout(price, req.GuestCount, membership)

	res, err := s.reserve(ctx, req.SessionID, req.UserID, chk.TotalSpots)
	if err != nil {
		metrics.RecordCheckoutFailed()
		return types.CheckoutResult{}, err
	}

	membershipID := ""
	if membership != nil {
		membershipID = membership.ID
	}

	intent, err := s.createIntent(ctx, chk.Amount, req.UserID)
	if err != nil {
		// Seat is held; record the failed attempt so reconciliation can
		// release it.
		failedOrder := billing.NewOrder(res, chk, membershipID, "", s.nowFn())
		failedOrder.Status = model.OrderFailed
		_ = s.withRetry(ctx, func() error { return s.store.CreateOrder(ctx, failedOrder) })
		metrics.RecordCheckoutFailed()
		return types.CheckoutResult{}, err
	}

	order := billing.NewOrder(res, chk, membershipID, intent.Reference, s.nowFn())
	if err := s.withRetry(ctx, func() error { return s.store.CreateOrder(ctx, order) }); err != nil {
		metrics.RecordCheckoutFailed()
		return types.CheckoutResult{}, err
	}

	metrics.RecordCheckoutCompleted()
	if chk.Discount > 0 {
		metrics.RecordDiscountApplied()
	}
	s.logger.Info(ctx, "checkout completed",
		logger.String("order_id", order.ID),
		logger.String("session_id", req.SessionID),
		logger.Int("spots", chk.TotalSpots),
		logger.Int64("amount", chk.Amount),
		logger.Int64("discount", chk.Discount),
	)

	return types.CheckoutResult{
		OrderID:          order.ID,
		Amount:           chk.Amount,
		Discount:         chk.Discount,
		PaymentReference: intent.Reference,
		ClientSecret:     intent.ClientSecret,
	}, nil
}

// SplitCheckout reserves one seat per participant in a single atomic call,
// splits the rule-adjusted price with ceiling rounding, and creates one
// pending order per participant sharing a split group id.
func (s *Service) SplitCheckout(ctx context.Context, req types.SplitRequest) (types.SplitResult, error) {
	n := len(req.ParticipantEmails)

	sess, rules, err := s.sessionWithRules(ctx, req.SessionID)
	if err != nil {
		return types.SplitResult{}, err
	}
	price := pricing.Apply(sess.BasePrice, sess.StartAt, rules)

	perPerson, err := billing.ComputeSplit(price, n)
	if err != nil {
		return types.SplitResult{}, err
	}

	organizer := req.OrganizerID
	if organizer == "" {
		organizer = req.ParticipantEmails[0]
	}

	// One reservation covers the whole group: the capacity check and the
	// decrement stay atomic for all n seats.
	res, err := s.reserve(ctx, req.SessionID, organizer, n)
	if err != nil {
		return types.SplitResult{}, err
	}

	groupID := billing.NewSplitGroupID()
	refs := make([]string, 0, n)
	orderIDs := make([]string, 0, n)
	for _, email := range req.ParticipantEmails {
		intent, err := s.createIntent(ctx, perPerson, email)
		if err != nil {
			failed := billing.NewSplitOrder(res, email, perPerson, groupID, "", s.nowFn())
			failed.Status = model.OrderFailed
			_ = s.withRetry(ctx, func() error { return s.store.CreateOrder(ctx, failed) })
			return types.SplitResult{}, err
		}
		order := billing.NewSplitOrder(res, email, perPerson, groupID, intent.Reference, s.nowFn())
		if err := s.withRetry(ctx, func() error { return s.store.CreateOrder(ctx, order) }); err != nil {
			return types.SplitResult{}, err
		}
		refs = append(refs, intent.Reference)
		orderIDs = append(orderIDs, order.ID)
	}

	metrics.RecordSplitCompleted()
	s.logger.Info(ctx, "split checkout completed",
		logger.String("split_group_id", groupID),
		logger.String("session_id", req.SessionID),
		logger.Int("participants", n),
		logger.Int64("per_person", perPerson),
	)

	return types.SplitResult{
		PerPersonAmount:   perPerson,
		SplitGroupID:      groupID,
		PaymentReferences: refs,
		OrderIDs:          orderIDs,
	}, nil
}

// sessionWithRules loads a session and the pricing rules, retrying transient
// failures.
func (s *Service) sessionWithRules(ctx context.Context, sessionID string) (model.Session, []model.PricingRule, error) {
	var (
		sess  model.Session
		rules []model.PricingRule
	)
	err := s.withRetry(ctx, func() error {
		var err error
		if sess, err = s.store.GetSession(ctx, sessionID); err != nil {
			return err
		}
		rules, err = s.store.ListRules(ctx)
		return err
	})
	if err != nil {
		return model.Session{}, nil, err
	}
	return sess, rules, nil
}

// reserve performs the atomic capacity reservation with retry on transient
// failures only; capacity rejections surface immediately.
func (s *Service) reserve(ctx context.Context, sessionID, userID string, spots int) (model.Reservation, error) {
	start := time.Now()
	var res model.Reservation
	err := s.withRetry(ctx, func() error {
		var err error
		res, err = s.store.Reserve(ctx, sessionID, userID, spots)
		return err
	})
	metrics.RecordReservationLatency(float64(time.Since(start).Milliseconds()))

	switch {
	case err == nil:
		metrics.RecordReservationAccepted()
	case errors.Is(err, repository.ErrNotFound):
		metrics.RecordReservationNotFound()
	case errors.Is(err, repository.ErrSoldOut), errors.Is(err, repository.ErrSessionNotOpen):
		metrics.RecordReservationSoldOut()
	}
	return res, err
}

// createIntent calls the payment processor and tracks its latency.
func (s *Service) createIntent(ctx context.Context, amount int64, customer string) (payment.Intent, error) {
	start := time.Now()
	intent, err := s.processor.CreateIntent(ctx, amount, customer)
	metrics.RecordProcessorLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordProcessorError()
		s.logger.Error(ctx, "charge intent failed", logger.String("customer", customer), logger.Error(err))
	}
	return intent, err
}

// LogInteraction acknowledges one telemetry event for asynchronous ingest.
// Returns (accepted, duplicate).
func (s *Service) LogInteraction(ctx context.Context, ev model.InteractionEvent) (bool, bool) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = s.nowFn()
	}

	if s.deduper.SeenAndRecord(ctx, ev.EventID) {
		metrics.RecordInteractionDuplicate()
		return true, true
	}

	if !s.queue.Enqueue(ctx, ev) {
		// Backpressure: allow a retry of the same event id.
		s.deduper.Unrecord(ctx, ev.EventID)
		metrics.RecordInteractionDropped()
		return false, false
	}
	return true, false
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
	}
	if s.started {
		stats["queue_length"] = s.queue.Len(ctx)
		stats["dedupe_entries"] = s.deduper.Size()
		for k, v := range s.store.Counts(ctx) {
			stats[k] = v
		}
	}
	return stats
}
