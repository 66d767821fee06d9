package billing

import (
	"log/slog"
	"sync"

	"github.com/prepjet/prepjet/internal/model"
)

// State of the checkout bootstrap.
type State int

const (
	// StateUnconfigured is the initial state.
	StateUnconfigured State = iota
	// StateWaitingForScript means the gateway was absent at mount time and
	// a one-shot load callback has been registered.
	StateWaitingForScript
	// StateConfigured means the gateway has been initialized and checkout
	// may proceed.
	StateConfigured
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateWaitingForScript:
		return "waiting_for_script"
	case StateConfigured:
		return "configured"
	default:
		return "unknown"
	}
}

// Config holds the bootstrap's configuration values.
type Config struct {
	// ClientToken is the client-side access token. Required: without it
	// the bootstrap logs an error and never becomes ready.
	ClientToken string
	// Environment is the provider environment mode. Defaults to sandbox.
	Environment string
	// PriceID is the sellable price opened at checkout.
	PriceID string
}

// OpenResult is the outcome of an OpenCheckout call. OpenCheckout never
// panics and never returns a Go error; failures are reported as statuses.
type OpenResult struct {
	Status  model.CheckoutStatus
	PriceID string
}

// Opened reports whether the checkout overlay was invoked.
func (r OpenResult) Opened() bool {
	return r.Status == model.CheckoutOpened
}

// Bootstrap brings the billing gateway from "not yet available" to "ready
// to invoke", once per process lifetime, and exposes the checkout action.
type Bootstrap struct {
	mu     sync.Mutex
	source GatewaySource
	cfg    Config
	logger *slog.Logger

	state State
	ready bool
}

// NewBootstrap creates a Bootstrap in the unconfigured state.
func NewBootstrap(source GatewaySource, cfg Config, logger *slog.Logger) *Bootstrap {
	if cfg.Environment == "" {
		cfg.Environment = EnvironmentSandbox
	}
	return &Bootstrap{
		source: source,
		cfg:    cfg,
		logger: logger.With("component", "billing.bootstrap"),
		state:  StateUnconfigured,
	}
}

// Mount starts the bootstrap. If the gateway is already present it is
// configured immediately; otherwise a one-shot load callback is registered
// and Mount returns without blocking. Mount is idempotent.
func (b *Bootstrap) Mount() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateUnconfigured {
		return
	}

	if gw := b.source.Gateway(); gw != nil {
		b.configureLocked(gw)
		return
	}

	b.state = StateWaitingForScript
	b.source.OnLoad(b.onLoad)
}

// onLoad handles the one-shot load signal. If the gateway is still absent
// at that moment the bootstrap stays not-ready; there is no retry.
func (b *Bootstrap) onLoad() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateConfigured {
		return
	}

	gw := b.source.Gateway()
	if gw == nil {
		b.logger.Error("billing script loaded but gateway is still absent")
		return
	}

	b.configureLocked(gw)
}

// configureLocked runs the configuration step. Caller holds b.mu.
//
// A missing client token logs an error and leaves the bootstrap stalled in
// its current state. That matches the shipped behavior: checkout silently
// never becomes available. TODO: surface a user-visible misconfiguration
// signal once product confirms the intended behavior.
func (b *Bootstrap) configureLocked(gw Gateway) {
	if b.cfg.ClientToken == "" {
		b.logger.Error("billing client token not configured")
		return
	}

	gw.SetEnvironment(b.cfg.Environment)
	gw.Initialize(b.cfg.ClientToken)
	b.ready = true
	b.state = StateConfigured

	b.logger.Info("billing gateway configured",
		slog.String("environment", b.cfg.Environment),
	)
}

// Ready reports whether initialization has completed successfully.
func (b *Bootstrap) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// State returns the current bootstrap state.
func (b *Bootstrap) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// OpenCheckout opens the checkout overlay for the configured price with a
// single line item of quantity 1. If customerEmail is non-empty it is
// attached as the customer identity hint; otherwise the customer field is
// omitted entirely.
func (b *Bootstrap) OpenCheckout(customerEmail string) OpenResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	gw := b.source.Gateway()
	if gw == nil || !b.ready {
		b.logger.Error("billing gateway is not ready")
		return OpenResult{Status: model.CheckoutNotReady}
	}

	if b.cfg.PriceID == "" {
		b.logger.Error("price ID not configured")
		return OpenResult{Status: model.CheckoutPriceNotConfigured}
	}

	req := CheckoutRequest{
		Items: []CheckoutItem{{PriceID: b.cfg.PriceID, Quantity: 1}},
	}
	if customerEmail != "" {
		req.Customer = &CheckoutCustomer{Email: customerEmail}
	}

	gw.OpenCheckout(req)

	return OpenResult{Status: model.CheckoutOpened, PriceID: b.cfg.PriceID}
}
