// Package events provides checkout event capture and processing.
package events

import (
	"fmt"
	"strings"

	"github.com/prepjet/prepjet/internal/model"
)

const (
	maxPriceIDLength = 200
	maxEmailLength   = 320
)

// ValidateCheckoutEventPayload validates checkout event payload fields.
func ValidateCheckoutEventPayload(payload CheckoutEventPayload) error {
	if !model.IsValidCheckoutStatus(model.CheckoutStatus(payload.Status)) {
		return fmt.Errorf("unknown status %q", payload.Status)
	}
	if payload.RequestedAt <= 0 {
		return fmt.Errorf("requested_at must be set")
	}
	if len(payload.PriceID) > maxPriceIDLength {
		return fmt.Errorf("price_id too long")
	}
	if len(payload.CustomerEmail) > maxEmailLength {
		return fmt.Errorf("customer_email too long")
	}
	if payload.CustomerEmail != "" && !strings.Contains(payload.CustomerEmail, "@") {
		return fmt.Errorf("customer_email malformed")
	}
	return nil
}
