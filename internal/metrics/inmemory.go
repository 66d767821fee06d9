package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CheckoutOpens           map[string]uint64
	ClientTokensIssued      map[string]uint64
	SessionsVerified        map[string]uint64
	IdentityEventsProcessed map[string]uint64
	EventsPublished         map[string]uint64
	EventsProcessed         map[string]uint64
	BatchCount              uint64
	BatchDurationTotalNs    int64
	QueueDepth              int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                      sync.Mutex
	checkoutOpens           map[string]uint64
	clientTokensIssued      map[string]uint64
	sessionsVerified        map[string]uint64
	identityEventsProcessed map[string]uint64
	eventsPublished         map[string]uint64
	eventsProcessed         map[string]uint64
	batchCount              uint64
	batchDurationTotalNs    int64
	queueDepth              int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		checkoutOpens:           make(map[string]uint64),
		clientTokensIssued:      make(map[string]uint64),
		sessionsVerified:        make(map[string]uint64),
		identityEventsProcessed: make(map[string]uint64),
		eventsPublished:         make(map[string]uint64),
		eventsProcessed:         make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		CheckoutOpens:           copyCounts(m.checkoutOpens),
		ClientTokensIssued:      copyCounts(m.clientTokensIssued),
		SessionsVerified:        copyCounts(m.sessionsVerified),
		IdentityEventsProcessed: copyCounts(m.identityEventsProcessed),
		EventsPublished:         copyCounts(m.eventsPublished),
		EventsProcessed:         copyCounts(m.eventsProcessed),
		BatchCount:              m.batchCount,
		BatchDurationTotalNs:    m.batchDurationTotalNs,
		QueueDepth:              m.queueDepth,
	}
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// IncCheckoutOpen increments the checkout open counter for a status.
func (m *InMemoryRecorder) IncCheckoutOpen(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkoutOpens[status]++
}

// IncClientTokenIssued increments the client token counter for a result.
func (m *InMemoryRecorder) IncClientTokenIssued(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientTokensIssued[result]++
}

// IncSessionVerified increments the session verification counter.
func (m *InMemoryRecorder) IncSessionVerified(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsVerified[result]++
}

// IncIdentityEventProcessed increments the identity sync counter.
func (m *InMemoryRecorder) IncIdentityEventProcessed(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identityEventsProcessed[result]++
}

// IncCheckoutEventPublished increments the publish counter for a status.
func (m *InMemoryRecorder) IncCheckoutEventPublished(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublished[status]++
}

// IncCheckoutEventProcessed increments the processed counter for a status.
func (m *InMemoryRecorder) IncCheckoutEventProcessed(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsProcessed[status]++
}

// ObserveCheckoutBatchSize is tracked via the batch counter.
func (m *InMemoryRecorder) ObserveCheckoutBatchSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCount++
}

// ObserveCheckoutBatchDuration records batch processing duration.
func (m *InMemoryRecorder) ObserveCheckoutBatchDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchDurationTotalNs += duration.Nanoseconds()
}

// SetCheckoutQueueDepth records the current queue depth.
func (m *InMemoryRecorder) SetCheckoutQueueDepth(depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueDepth = depth
}

// ObserveCheckoutIngestLag is not tracked in memory.
func (m *InMemoryRecorder) ObserveCheckoutIngestLag(lag time.Duration) {}
