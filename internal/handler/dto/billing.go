// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// CheckoutRequest represents the request body for opening a checkout.
type CheckoutRequest struct {
	// PriceID optionally overrides the configured subscription price.
	PriceID string `json:"price_id,omitempty"`
}

// CheckoutResponse reports the outcome of a checkout open attempt.
type CheckoutResponse struct {
	Status  string `json:"status"`
	PriceID string `json:"price_id,omitempty"`
}

// ClientTokenResponse carries a freshly issued billing client token.
type ClientTokenResponse struct {
	Token string `json:"token"`
}

// PlanResponse describes a subscription plan on the pricing page.
type PlanResponse struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Interval string   `json:"interval"`
	PriceID  string   `json:"price_id,omitempty"`
	Features []string `json:"features"`
	Trial    string   `json:"trial,omitempty"`
}

// PricingResponse is the pricing page content.
type PricingResponse struct {
	Plans []PlanResponse `json:"plans"`
}
