// Package metrics provides Prometheus metrics for the Courtside booking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Feed metrics
	feedRequests      prometheus.Counter
	feedItemsRanked   prometheus.Histogram
	feedAssemblyTime  prometheus.Histogram
	feedEmptyResults  prometheus.Counter
	feedCursorMisses  prometheus.Counter

	// Pricing metrics
	pricingRulesApplied prometheus.Counter
	pricingAdjustments  prometheus.Histogram

	// Reservation metrics
	reservationsAccepted  prometheus.Counter
	reservationsSoldOut   prometheus.Counter
	reservationsNotFound  prometheus.Counter
	reservationRetries    prometheus.Counter
	reservationLatency    prometheus.Histogram

	// Billing metrics
	checkoutsCompleted   prometheus.Counter
	checkoutsFailed      prometheus.Counter
	splitsCompleted      prometheus.Counter
	discountAppliedTotal prometheus.Counter
	processorErrors      prometheus.Counter
	processorLatency     prometheus.Histogram

	// Interaction pipeline metrics
	interactionsAccepted  prometheus.Counter
	interactionsDuplicate prometheus.Counter
	interactionsDropped   prometheus.Counter
	queueSize             prometheus.Gauge
	queueCapacity         prometheus.Gauge
	workerCount           prometheus.Gauge
	workerErrors          prometheus.Counter
	ingestLatency         prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry so the default Go collectors stay out of our namespace.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtside",
		subsystem:        "booking",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // registers every collector in one place
	auto := promauto.With(m.registry)

	m.feedRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_requests_total",
		Help:      "Total number of feed pages served",
	})

	m.feedItemsRanked = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_items_ranked",
		Help:      "Number of items ranked per feed assembly",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})

	m.feedAssemblyTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_assembly_milliseconds",
		Help:      "Feed assembly duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.feedEmptyResults = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_empty_results_total",
		Help:      "Total number of feed requests that produced no items",
	})

	m.feedCursorMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_cursor_misses_total",
		Help:      "Total number of pagination cursors that no longer matched a ranked item",
	})

	m.pricingRulesApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pricing_rules_applied_total",
		Help:      "Total number of pricing rules applied to session prices",
	})

	m.pricingAdjustments = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pricing_adjustment_ratio",
		Help:      "Final price divided by base price after rule application",
		Buckets:   []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 2, 3, 5},
	})

	m.reservationsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reservations_accepted_total",
		Help:      "Total number of successful capacity reservations",
	})

	m.reservationsSoldOut = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reservations_sold_out_total",
		Help:      "Total number of reservations rejected for insufficient capacity",
	})

	m.reservationsNotFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reservations_not_found_total",
		Help:      "Total number of reservations against unknown sessions",
	})

	m.reservationRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reservation_retries_total",
		Help:      "Total number of reservation retries after transient store errors",
	})

	m.reservationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reservation_latency_milliseconds",
		Help:      "Capacity reservation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.checkoutsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "checkouts_completed_total",
		Help:      "Total number of completed checkouts",
	})

	m.checkoutsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "checkouts_failed_total",
		Help:      "Total number of failed checkouts",
	})

	m.splitsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "split_checkouts_completed_total",
		Help:      "Total number of completed split checkouts",
	})

	m.discountAppliedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "discount_applied_total",
		Help:      "Total number of checkouts with a membership discount applied",
	})

	m.processorErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "processor_errors_total",
		Help:      "Total number of payment processor failures after a seat was held",
	})

	m.processorLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "processor_latency_milliseconds",
		Help:      "Payment processor call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.interactionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_accepted_total",
		Help:      "Total number of interaction events accepted for ingestion",
	})

	m.interactionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_duplicate_total",
		Help:      "Total number of duplicate interaction events detected",
	})

	m.interactionsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_dropped_total",
		Help:      "Total number of interaction events dropped by backpressure",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interaction_queue_size",
		Help:      "Current size of the interaction ingest queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interaction_queue_capacity",
		Help:      "Maximum capacity of the interaction ingest queue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_worker_count",
		Help:      "Number of interaction ingest workers",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_worker_errors_total",
		Help:      "Total number of interaction ingest worker errors",
	})

	m.ingestLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_latency_milliseconds",
		Help:      "Interaction ingest latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method, and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordFeedRequest increments the feed request counter.
func RecordFeedRequest() {
	globalManager.feedRequests.Inc()
}

// RecordFeedItemsRanked records the number of items ranked in one assembly.
func RecordFeedItemsRanked(count int) {
	globalManager.feedItemsRanked.Observe(float64(count))
}

// RecordFeedAssemblyTime records feed assembly duration in milliseconds.
func RecordFeedAssemblyTime(ms float64) {
	globalManager.feedAssemblyTime.Observe(ms)
}

// RecordFeedEmptyResult increments the empty feed counter.
func RecordFeedEmptyResult() {
	globalManager.feedEmptyResults.Inc()
}

// RecordFeedCursorMiss increments the cursor miss counter.
func RecordFeedCursorMiss() {
	globalManager.feedCursorMisses.Inc()
}

// RecordPricingRuleApplied increments the applied pricing rule counter.
func RecordPricingRuleApplied() {
	globalManager.pricingRulesApplied.Inc()
}

// RecordPricingAdjustment records the final/base price ratio for a session.
func RecordPricingAdjustment(ratio float64) {
	globalManager.pricingAdjustments.Observe(ratio)
}

// RecordReservationAccepted increments the accepted reservations counter.
func RecordReservationAccepted() {
	globalManager.reservationsAccepted.Inc()
}

// RecordReservationSoldOut increments the sold-out rejections counter.
func RecordReservationSoldOut() {
	globalManager.reservationsSoldOut.Inc()
}

// RecordReservationNotFound increments the unknown-session rejections counter.
func RecordReservationNotFound() {
	globalManager.reservationsNotFound.Inc()
}

// RecordReservationRetry increments the transient retry counter.
func RecordReservationRetry() {
	globalManager.reservationRetries.Inc()
}

// RecordReservationLatency records reservation latency in milliseconds.
func RecordReservationLatency(ms float64) {
	globalManager.reservationLatency.Observe(ms)
}

// RecordCheckoutCompleted increments the completed checkout counter.
func RecordCheckoutCompleted() {
	globalManager.checkoutsCompleted.Inc()
}

// RecordCheckoutFailed increments the failed checkout counter.
func RecordCheckoutFailed() {
	globalManager.checkoutsFailed.Inc()
}

// RecordSplitCompleted increments the completed split checkout counter.
func RecordSplitCompleted() {
	globalManager.splitsCompleted.Inc()
}

// RecordDiscountApplied increments the membership discount counter.
func RecordDiscountApplied() {
	globalManager.discountAppliedTotal.Inc()
}

// RecordProcessorError increments the payment processor failure counter.
func RecordProcessorError() {
	globalManager.processorErrors.Inc()
}

// RecordProcessorLatency records processor call latency in milliseconds.
func RecordProcessorLatency(ms float64) {
	globalManager.processorLatency.Observe(ms)
}

// RecordInteractionAccepted increments the accepted interactions counter.
func RecordInteractionAccepted() {
	globalManager.interactionsAccepted.Inc()
}

// RecordInteractionDuplicate increments the duplicate interactions counter.
func RecordInteractionDuplicate() {
	globalManager.interactionsDuplicate.Inc()
}

// RecordInteractionDropped increments the dropped interactions counter.
func RecordInteractionDropped() {
	globalManager.interactionsDropped.Inc()
}

// UpdateQueueSize sets the current interaction queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the interaction queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateWorkerCount sets the ingest worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the ingest worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordIngestLatency records interaction ingest latency in milliseconds.
func RecordIngestLatency(ms float64) {
	globalManager.ingestLatency.Observe(ms)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
