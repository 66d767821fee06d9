package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/prepjet/prepjet/internal/metrics"
)

// MetricsHandler exposes in-memory metrics in text exposition format.
// Deployments that register the Prometheus recorder serve promhttp
// instead; this handler is the fallback for the in-memory recorder.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeLabeled(w, "prepjet_checkout_opens_total", "status", snap.CheckoutOpens)
	writeLabeled(w, "prepjet_client_tokens_issued_total", "result", snap.ClientTokensIssued)
	writeLabeled(w, "prepjet_sessions_verified_total", "result", snap.SessionsVerified)
	writeLabeled(w, "prepjet_identity_events_total", "result", snap.IdentityEventsProcessed)
	writeLabeled(w, "prepjet_checkout_events_published_total", "status", snap.EventsPublished)
	writeLabeled(w, "prepjet_checkout_events_processed_total", "status", snap.EventsProcessed)

	writeMetric(w, "prepjet_checkout_batches_total %d\n", snap.BatchCount)
	writeMetric(w, "prepjet_checkout_batch_duration_seconds_sum %.6f\n", float64(snap.BatchDurationTotalNs)/1e9)
	writeMetric(w, "prepjet_checkout_queue_depth %d\n", snap.QueueDepth)
}

func writeLabeled(w http.ResponseWriter, name, label string, counts map[string]uint64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, counts[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
