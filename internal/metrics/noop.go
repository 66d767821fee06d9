package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCheckoutOpen is a no-op.
func (n *NoopRecorder) IncCheckoutOpen(status string) {}

// IncClientTokenIssued is a no-op.
func (n *NoopRecorder) IncClientTokenIssued(result string) {}

// IncSessionVerified is a no-op.
func (n *NoopRecorder) IncSessionVerified(result string) {}

// IncIdentityEventProcessed is a no-op.
func (n *NoopRecorder) IncIdentityEventProcessed(result string) {}

// IncCheckoutEventPublished is a no-op.
func (n *NoopRecorder) IncCheckoutEventPublished(status string) {}

// IncCheckoutEventProcessed is a no-op.
func (n *NoopRecorder) IncCheckoutEventProcessed(status string) {}

// ObserveCheckoutBatchSize is a no-op.
func (n *NoopRecorder) ObserveCheckoutBatchSize(size int) {}

// ObserveCheckoutBatchDuration is a no-op.
func (n *NoopRecorder) ObserveCheckoutBatchDuration(duration time.Duration) {}

// SetCheckoutQueueDepth is a no-op.
func (n *NoopRecorder) SetCheckoutQueueDepth(depth int64) {}

// ObserveCheckoutIngestLag is a no-op.
func (n *NoopRecorder) ObserveCheckoutIngestLag(lag time.Duration) {}
