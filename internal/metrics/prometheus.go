package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exposes Recorder metrics through a Prometheus registry.
type PrometheusRecorder struct {
	checkoutOpens           *prometheus.CounterVec
	clientTokensIssued      *prometheus.CounterVec
	sessionsVerified        *prometheus.CounterVec
	identityEventsProcessed *prometheus.CounterVec
	eventsPublished         *prometheus.CounterVec
	eventsProcessed         *prometheus.CounterVec
	batchSize               prometheus.Histogram
	batchDuration           prometheus.Histogram
	queueDepth              prometheus.Gauge
	ingestLag               prometheus.Histogram
}

// NewPrometheus builds a PrometheusRecorder and registers its collectors.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		checkoutOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepjet_checkout_opens_total",
			Help: "Checkout open attempts by outcome status.",
		}, []string{"status"}),
		clientTokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepjet_client_tokens_issued_total",
			Help: "Billing client token issuance attempts by result.",
		}, []string{"result"}),
		sessionsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepjet_sessions_verified_total",
			Help: "Session token verifications by result.",
		}, []string{"result"}),
		identityEventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepjet_identity_events_total",
			Help: "Identity sync webhook events by result.",
		}, []string{"result"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepjet_checkout_events_published_total",
			Help: "Checkout events published to the stream by status.",
		}, []string{"status"}),
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepjet_checkout_events_processed_total",
			Help: "Checkout events processed by the worker by status.",
		}, []string{"status"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "prepjet_checkout_batch_size",
			Help:    "Number of events per persisted batch.",
			Buckets: []float64{1, 5, 10, 50, 100, 250, 500},
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "prepjet_checkout_batch_duration_seconds",
			Help:    "Duration of batch persistence.",
			Buckets: prometheus.DefBuckets,
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prepjet_checkout_queue_depth",
			Help: "Pending plus unread entries in the checkout event stream.",
		}),
		ingestLag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "prepjet_checkout_ingest_lag_seconds",
			Help:    "Time between checkout request and persistence.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
	}

	reg.MustRegister(
		r.checkoutOpens,
		r.clientTokensIssued,
		r.sessionsVerified,
		r.identityEventsProcessed,
		r.eventsPublished,
		r.eventsProcessed,
		r.batchSize,
		r.batchDuration,
		r.queueDepth,
		r.ingestLag,
	)

	return r
}

// IncCheckoutOpen increments the checkout open counter for a status.
func (r *PrometheusRecorder) IncCheckoutOpen(status string) {
	r.checkoutOpens.WithLabelValues(status).Inc()
}

// IncClientTokenIssued increments the token issuance counter for a result.
func (r *PrometheusRecorder) IncClientTokenIssued(result string) {
	r.clientTokensIssued.WithLabelValues(result).Inc()
}

// IncSessionVerified increments the session verification counter.
func (r *PrometheusRecorder) IncSessionVerified(result string) {
	r.sessionsVerified.WithLabelValues(result).Inc()
}

// IncIdentityEventProcessed increments the identity sync counter.
func (r *PrometheusRecorder) IncIdentityEventProcessed(result string) {
	r.identityEventsProcessed.WithLabelValues(result).Inc()
}

// IncCheckoutEventPublished increments the publish counter for a status.
func (r *PrometheusRecorder) IncCheckoutEventPublished(status string) {
	r.eventsPublished.WithLabelValues(status).Inc()
}

// IncCheckoutEventProcessed increments the processed counter for a status.
func (r *PrometheusRecorder) IncCheckoutEventProcessed(status string) {
	r.eventsProcessed.WithLabelValues(status).Inc()
}

// ObserveCheckoutBatchSize records the size of a persisted batch.
func (r *PrometheusRecorder) ObserveCheckoutBatchSize(size int) {
	r.batchSize.Observe(float64(size))
}

// ObserveCheckoutBatchDuration records batch persistence duration.
func (r *PrometheusRecorder) ObserveCheckoutBatchDuration(duration time.Duration) {
	r.batchDuration.Observe(duration.Seconds())
}

// SetCheckoutQueueDepth records the current stream backlog.
func (r *PrometheusRecorder) SetCheckoutQueueDepth(depth int64) {
	r.queueDepth.Set(float64(depth))
}

// ObserveCheckoutIngestLag records end-to-end ingest lag.
func (r *PrometheusRecorder) ObserveCheckoutIngestLag(lag time.Duration) {
	r.ingestLag.Observe(lag.Seconds())
}
