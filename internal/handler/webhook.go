package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prepjet/prepjet/internal/identity"
	"github.com/prepjet/prepjet/internal/metrics"
	"github.com/prepjet/prepjet/internal/middleware"
	"github.com/prepjet/prepjet/internal/model"
	"github.com/prepjet/prepjet/internal/repository"
)

// maxWebhookBodySize caps the sync webhook payload.
const maxWebhookBodySize = 1 << 20

// WebhookHandler ingests identity-provider sync webhooks and mirrors
// user records into Postgres.
type WebhookHandler struct {
	repo    *repository.Repository
	secret  string
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(repo *repository.Repository, secret string, recorder metrics.Recorder, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		repo:    repo,
		secret:  secret,
		metrics: recorder,
		logger:  logger.With("handler", "identity_webhook"),
	}
}

// IdentitySync handles POST /api/v1/webhooks/identity.
//
// Signature and timestamp verification happen before any parsing so a
// forged payload never reaches the decoder. Replays of an already
// processed event ID are acknowledged without a second upsert.
func (h *WebhookHandler) IdentitySync(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_BODY", "Could not read request body")
		return
	}

	signature := r.Header.Get(identity.HeaderWebhookSignature)
	timestampRaw := r.Header.Get(identity.HeaderWebhookTimestamp)
	timestamp, err := strconv.ParseInt(timestampRaw, 10, 64)
	if err != nil || signature == "" {
		h.metrics.IncIdentityEventProcessed("rejected")
		writeErrorJSON(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid webhook signature")
		return
	}

	if err := identity.ValidateWebhookSignature(h.secret, signature, timestamp, body, identity.DefaultReplayWindow); err != nil {
		h.logger.Warn("webhook signature rejected", "error", err)
		h.metrics.IncIdentityEventProcessed("rejected")
		writeErrorJSON(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid webhook signature")
		return
	}

	var event model.IdentityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.metrics.IncIdentityEventProcessed("malformed")
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if event.ID == "" {
		h.metrics.IncIdentityEventProcessed("malformed")
		writeErrorJSON(w, http.StatusBadRequest, "MISSING_EVENT_ID", "Event ID is required")
		return
	}

	if !model.IsValidIdentityEventType(event.Type) {
		// Providers deliver event types we do not consume; acknowledge
		// them so they are not redelivered.
		h.logger.Debug("ignoring identity event", "type", event.Type, "event_id", event.ID)
		h.metrics.IncIdentityEventProcessed("skipped")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.validatePayload(&event.Data); err != nil {
		h.metrics.IncIdentityEventProcessed("malformed")
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}

	ctx := r.Context()

	fresh, err := h.repo.MarkIdentityEventProcessed(ctx, event.ID)
	if err != nil {
		h.logger.Error("event dedupe check failed", "error", err, "event_id", event.ID)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process event")
		return
	}
	if !fresh {
		h.logger.Debug("duplicate identity event", "event_id", event.ID)
		h.metrics.IncIdentityEventProcessed("duplicate")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	user, err := h.repo.UpsertUserFromIdentity(ctx, &event.Data)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			h.metrics.IncIdentityEventProcessed("conflict")
			writeErrorJSON(w, http.StatusConflict, "EMAIL_EXISTS", "Email belongs to another user")
			return
		}
		h.logger.Error("user upsert failed", "error", err, "event_id", event.ID)
		// Make room for the provider's retry.
		if unmarkErr := h.repo.UnmarkIdentityEventProcessed(ctx, event.ID); unmarkErr != nil {
			h.logger.Error("event unmark failed", "error", unmarkErr, "event_id", event.ID)
		}
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process event")
		return
	}

	h.logger.Info("identity event processed",
		"event_id", event.ID,
		"type", event.Type,
		"user_id", user.ID,
	)
	h.metrics.IncIdentityEventProcessed("success")

	w.WriteHeader(http.StatusNoContent)
}

func (h *WebhookHandler) validatePayload(data *model.IdentityUserPayload) error {
	if data.ID == "" {
		return errors.New("user ID is required")
	}
	if data.Email == "" {
		return errors.New("email is required")
	}
	if err := middleware.ValidateCustomerEmail(data.Email); err != nil {
		return err
	}
	if data.FirstName != nil {
		if err := middleware.ValidateName(*data.FirstName); err != nil {
			return err
		}
	}
	if data.LastName != nil {
		if err := middleware.ValidateName(*data.LastName); err != nil {
			return err
		}
	}
	if data.AvatarURL != nil && *data.AvatarURL != "" {
		if err := middleware.ValidateAvatarURL(*data.AvatarURL); err != nil {
			return err
		}
	}
	return nil
}
