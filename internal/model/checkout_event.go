// Package model defines domain entities for the application.
package model

import "time"

// CheckoutStatus is the outcome of a checkout open attempt.
type CheckoutStatus string

const (
	// CheckoutOpened means the billing overlay was invoked.
	CheckoutOpened CheckoutStatus = "opened"
	// CheckoutNotReady means the billing capability was absent or uninitialized.
	CheckoutNotReady CheckoutStatus = "not_ready"
	// CheckoutPriceNotConfigured means no price identifier was configured.
	CheckoutPriceNotConfigured CheckoutStatus = "price_not_configured"
)

// ValidCheckoutStatuses contains all valid checkout statuses.
var ValidCheckoutStatuses = []CheckoutStatus{
	CheckoutOpened,
	CheckoutNotReady,
	CheckoutPriceNotConfigured,
}

// IsValidCheckoutStatus checks if a status is a known value.
func IsValidCheckoutStatus(s CheckoutStatus) bool {
	for _, v := range ValidCheckoutStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CheckoutEvent records a single checkout open attempt.
// Events are append-only; the overlay lifecycle itself is owned by the
// external billing widget and is not tracked here.
type CheckoutEvent struct {
	ID      string `json:"id"`       // ULID (time-sortable)
	EventID string `json:"event_id"` // Idempotency key (Redis stream ID)

	PriceID       string         `json:"price_id,omitempty"`
	CustomerEmail string         `json:"customer_email,omitempty"`
	Status        CheckoutStatus `json:"status"`

	RequestedAt time.Time `json:"requested_at"` // Event timestamp
	CreatedAt   time.Time `json:"created_at"`   // DB insertion time
}
