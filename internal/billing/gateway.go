// Package billing provides the checkout bootstrap and the hosted billing
// provider integration.
package billing

// Environment modes for the billing provider.
const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

// CheckoutItem is a single line item in a checkout request.
type CheckoutItem struct {
	PriceID  string `json:"priceId"`
	Quantity int    `json:"quantity"`
}

// CheckoutCustomer is the customer identity hint for a checkout.
type CheckoutCustomer struct {
	Email string `json:"email,omitempty"`
}

// CheckoutRequest is the payload for the gateway's checkout-open operation.
// Customer is a pointer so the field is absent entirely when no signed-in
// user is known; the billing widget then falls back to its own prompt.
type CheckoutRequest struct {
	Items    []CheckoutItem    `json:"items"`
	Customer *CheckoutCustomer `json:"customer,omitempty"`
}

// Gateway is the billing provider capability. In production it is bound to
// the hosted billing API; tests substitute a spy.
//
// None of the operations return errors: the provider contract is
// fire-and-forget, failures are observable only through logs.
type Gateway interface {
	// SetEnvironment selects the provider environment mode.
	SetEnvironment(env string)
	// Initialize configures the gateway with a client-side token.
	Initialize(token string)
	// OpenCheckout invokes the checkout overlay.
	OpenCheckout(req CheckoutRequest)
}

// GatewaySource reports gateway availability and delivers the one-shot
// load notification. It models the page's billing script element: the
// gateway may already be present, or it may appear after the load signal
// fires. The load signal fires at most once; there is no polling.
type GatewaySource interface {
	// Gateway returns the capability, or nil while it is unavailable.
	Gateway() Gateway
	// OnLoad registers a callback invoked at most once, when the load
	// signal fires. Callbacks registered after the signal are never
	// invoked.
	OnLoad(fn func())
}
