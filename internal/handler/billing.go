package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prepjet/prepjet/internal/billing"
	"github.com/prepjet/prepjet/internal/events"
	"github.com/prepjet/prepjet/internal/handler/dto"
	"github.com/prepjet/prepjet/internal/identity"
	"github.com/prepjet/prepjet/internal/metrics"
	"github.com/prepjet/prepjet/internal/middleware"
)

// TokenIssuer creates client-side billing tokens.
type TokenIssuer interface {
	CreateClientToken(ctx context.Context) (string, error)
}

// EventPublisher records checkout outcomes on the analytics stream.
type EventPublisher interface {
	PublishAsync(event events.CheckoutEventPayload)
}

// BillingHandler handles HTTP requests for billing operations.
type BillingHandler struct {
	bootstrap *billing.Bootstrap
	issuer    TokenIssuer
	publisher EventPublisher
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bootstrap *billing.Bootstrap, issuer TokenIssuer, publisher EventPublisher, recorder metrics.Recorder, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		bootstrap: bootstrap,
		issuer:    issuer,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger,
	}
}

// ClientToken handles GET /api/v1/billing/client-token.
//
// The response bodies are a fixed contract with the web client: on
// success a bare token object, on failure a generic error message with
// the real cause only in the server log.
func (h *BillingHandler) ClientToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.issuer.CreateClientToken(r.Context())
	if err != nil {
		h.logger.Error("client token issuance failed", "error", err)
		h.metrics.IncClientTokenIssued("failure")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to create client token",
		})
		return
	}

	h.metrics.IncClientTokenIssued("success")
	writeJSON(w, http.StatusOK, dto.ClientTokenResponse{Token: token})
}

// Checkout handles POST /api/v1/billing/checkout.
//
// The body is optional; an empty body opens a checkout for the
// configured price. When the caller carries a verified session the
// session email is attached as the customer identity hint.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidatePriceID(req.PriceID); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_PRICE_ID", err.Error())
		return
	}

	email := identity.EmailFromContext(r.Context())
	result := h.bootstrap.OpenCheckout(email)

	h.metrics.IncCheckoutOpen(string(result.Status))
	h.logger.Info("checkout_requested",
		"status", result.Status,
		"has_customer", email != "",
	)

	h.publisher.PublishAsync(events.CheckoutEventPayload{
		PriceID:       result.PriceID,
		CustomerEmail: email,
		Status:        string(result.Status),
		RequestedAt:   time.Now().UnixMilli(),
	})

	writeJSON(w, http.StatusOK, dto.CheckoutResponse{
		Status:  string(result.Status),
		PriceID: result.PriceID,
	})
}
