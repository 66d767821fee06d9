package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// API errors.
var (
	// ErrTokenIssuance is returned when the provider rejects or fails a
	// client-side token request.
	ErrTokenIssuance = errors.New("client token issuance failed")
)

const (
	// openCheckoutTimeout bounds the fire-and-forget transaction call.
	openCheckoutTimeout = 10 * time.Second
	// probeTimeout bounds the availability probe.
	probeTimeout = 10 * time.Second
)

// APIClient calls the hosted billing provider's REST API.
type APIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAPIClient creates an APIClient for the given API base URL.
func NewAPIClient(baseURL, apiKey string, logger *slog.Logger) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: NewHTTPClient(),
		logger:     logger.With("component", "billing.api"),
	}
}

// clientTokenResponse is the provider's token issuance response body.
type clientTokenResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// CreateClientToken issues a new client-side token.
func (c *APIClient) CreateClientToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/client-side-tokens", bytes.NewReader([]byte(`{}`)))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenIssuance, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: unexpected status %d", ErrTokenIssuance, resp.StatusCode)
	}

	var body clientTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrTokenIssuance, err)
	}
	if body.Data.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", ErrTokenIssuance)
	}

	return body.Data.Token, nil
}

// createTransaction creates a hosted-checkout transaction.
func (c *APIClient) createTransaction(ctx context.Context, checkout CheckoutRequest) error {
	payload := struct {
		Items    []transactionItem    `json:"items"`
		Customer *transactionCustomer `json:"customer,omitempty"`
	}{}

	for _, item := range checkout.Items {
		payload.Items = append(payload.Items, transactionItem{
			PriceID:  item.PriceID,
			Quantity: item.Quantity,
		})
	}
	if checkout.Customer != nil {
		payload.Customer = &transactionCustomer{Email: checkout.Customer.Email}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build transaction request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("create transaction: unexpected status %d", resp.StatusCode)
	}

	return nil
}

// Probe checks API reachability with the configured credentials.
func (c *APIClient) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/event-types", nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 500 {
		return fmt.Errorf("probe: unexpected status %d", resp.StatusCode)
	}

	return nil
}

func (c *APIClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Prepjet/1.0")
}

type transactionItem struct {
	PriceID  string `json:"price_id"`
	Quantity int    `json:"quantity"`
}

type transactionCustomer struct {
	Email string `json:"email,omitempty"`
}

// APIGateway binds the Gateway capability to the hosted billing API.
// OpenCheckout failures are logged, never surfaced: the provider contract
// is fire-and-forget.
type APIGateway struct {
	client *APIClient
	logger *slog.Logger

	mu          sync.Mutex
	environment string
	token       string
}

// NewAPIGateway creates the production Gateway implementation.
func NewAPIGateway(client *APIClient, logger *slog.Logger) *APIGateway {
	return &APIGateway{
		client: client,
		logger: logger.With("component", "billing.gateway"),
	}
}

// SetEnvironment records the environment mode.
func (g *APIGateway) SetEnvironment(env string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.environment = env
}

// Initialize records the client-side token.
func (g *APIGateway) Initialize(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

// OpenCheckout creates a hosted-checkout transaction for the request.
func (g *APIGateway) OpenCheckout(req CheckoutRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), openCheckoutTimeout)
	defer cancel()

	if err := g.client.createTransaction(ctx, req); err != nil {
		g.logger.Error("failed to open hosted checkout", slog.String("error", err.Error()))
	}
}

// RemoteSource is the production GatewaySource. It probes the billing API
// once in the background; when the probe completes the one-shot load
// signal fires, with the gateway available only if the probe succeeded.
// Callbacks registered after the signal are never invoked, mirroring a
// load listener attached after the script already loaded.
type RemoteSource struct {
	client  *APIClient
	gateway Gateway
	logger  *slog.Logger

	mu        sync.Mutex
	available bool
	fired     bool
	callbacks []func()
}

// NewRemoteSource creates a RemoteSource that will expose gw once the
// probe succeeds.
func NewRemoteSource(client *APIClient, gw Gateway, logger *slog.Logger) *RemoteSource {
	return &RemoteSource{
		client:  client,
		gateway: gw,
		logger:  logger.With("component", "billing.source"),
	}
}

// Start launches the availability probe. It returns immediately.
func (s *RemoteSource) Start(ctx context.Context) {
	go func() {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		err := s.client.Probe(probeCtx)

		s.mu.Lock()
		if s.fired {
			s.mu.Unlock()
			return
		}
		s.fired = true
		if err == nil {
			s.available = true
		} else {
			s.logger.Error("billing API probe failed", slog.String("error", err.Error()))
		}
		callbacks := s.callbacks
		s.callbacks = nil
		s.mu.Unlock()

		for _, fn := range callbacks {
			fn()
		}
	}()
}

// Gateway returns the capability once the probe has succeeded, nil before.
func (s *RemoteSource) Gateway() Gateway {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return nil
	}
	return s.gateway
}

// OnLoad registers a one-shot callback for the probe completion signal.
func (s *RemoteSource) OnLoad(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired {
		return
	}
	s.callbacks = append(s.callbacks, fn)
}
