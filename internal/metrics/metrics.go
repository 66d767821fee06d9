// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Checkout metrics
	IncCheckoutOpen(status string)      // status: "opened", "not_ready", "price_not_configured"
	IncClientTokenIssued(result string) // result: "success" or "failure"

	// Session metrics
	IncSessionVerified(result string) // result: "success", "failure", "revoked"

	// Identity sync metrics
	IncIdentityEventProcessed(result string) // result: "applied", "duplicate", "rejected"

	// Checkout event pipeline metrics
	IncCheckoutEventPublished(status string) // status: "success" or "dropped"
	IncCheckoutEventProcessed(status string) // status: "success", "failed", "dead_lettered"
	ObserveCheckoutBatchSize(size int)
	ObserveCheckoutBatchDuration(duration time.Duration)
	SetCheckoutQueueDepth(depth int64)
	ObserveCheckoutIngestLag(lag time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
