// Package events provides checkout event capture and processing.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prepjet/prepjet/internal/metrics"
)

const (
	// StreamKey is the Redis stream for checkout events.
	StreamKey = "stream:checkout_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:checkout_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// CheckoutEventPayload is the compressed event format for the Redis stream.
type CheckoutEventPayload struct {
	PriceID       string `json:"pid,omitempty"` // price_id
	CustomerEmail string `json:"ce,omitempty"`  // customer_email
	Status        string `json:"s"`             // checkout outcome
	RequestedAt   int64  `json:"t"`             // Unix milliseconds
}

// Publisher enqueues checkout events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new checkout event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish adds a checkout event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event CheckoutEventPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishAsync(event CheckoutEventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish checkout event",
				"status", event.Status,
				"error", err,
			)
			p.metrics.IncCheckoutEventPublished("dropped")
			return
		}

		p.logger.Debug("checkout event published",
			"status", event.Status,
			"stream_id", streamID,
		)
		p.metrics.IncCheckoutEventPublished("success")
	}()
}
