package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prepjet/prepjet/internal/handler/dto"
	"github.com/prepjet/prepjet/internal/model"
)

// AdminUserLister defines the interface for the mirrored-user listing.
type AdminUserLister interface {
	ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, bool, error)
}

// AdminKeyLister defines the interface for listing API keys.
type AdminKeyLister interface {
	ListAPIKeysByOwnerID(ctx context.Context, ownerID string) ([]*model.APIKey, error)
}

// AdminCheckoutReader defines the interface for checkout analytics reads.
type AdminCheckoutReader interface {
	CountByStatus(ctx context.Context, from, to time.Time) (map[model.CheckoutStatus]int64, error)
	ListRecent(ctx context.Context, limit int) ([]*model.CheckoutEvent, error)
}

// AdminHandler provides admin-only endpoints for debugging and operations.
type AdminHandler struct {
	userRepo     AdminUserLister
	keyRepo      AdminKeyLister
	checkoutRepo AdminCheckoutReader
	logger       *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userRepo AdminUserLister, keyRepo AdminKeyLister, checkoutRepo AdminCheckoutReader, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		userRepo:     userRepo,
		keyRepo:      keyRepo,
		checkoutRepo: checkoutRepo,
		logger:       logger,
	}
}

const (
	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

// ListUsers handles GET /api/v1/admin/users?cursor={id}&limit={n}
// Lists mirrored users, cursor-paginated by (created_at, id).
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > maxUserPageSize {
		limit = defaultUserPageSize
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, hasMore, err := h.userRepo.ListUsers(ctx, cursor, limit)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list users")
		return
	}

	response := dto.UserListResponse{
		Data:       make([]dto.UserResponse, 0, len(users)),
		Pagination: &dto.Pagination{HasMore: hasMore},
	}
	for _, u := range users {
		response.Data = append(response.Data, toUserResponse(u))
	}
	if hasMore && len(users) > 0 {
		response.Pagination.NextCursor = users[len(users)-1].ID
	}

	writeJSON(w, http.StatusOK, response)
}

// AdminAPIKeyListResponse represents the response for API key listing.
type AdminAPIKeyListResponse struct {
	Keys  []model.APIKeyResponse `json:"keys"`
	Total int                    `json:"total"`
}

// ListAPIKeysByOwner handles GET /api/v1/admin/api-keys?owner_id={id}
// Lists all API keys for a specific owner (admin only).
func (h *AdminHandler) ListAPIKeysByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "MISSING_OWNER_ID", "query parameter 'owner_id' is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	keys, err := h.keyRepo.ListAPIKeysByOwnerID(ctx, ownerID)
	if err != nil {
		h.logger.Error("failed to list API keys",
			"error", err,
			"owner_id", ownerID,
		)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list API keys")
		return
	}

	response := AdminAPIKeyListResponse{
		Keys:  make([]model.APIKeyResponse, 0, len(keys)),
		Total: len(keys),
	}
	for _, key := range keys {
		response.Keys = append(response.Keys, key.ToResponse())
	}

	writeJSON(w, http.StatusOK, response)
}

// CheckoutStatsResponse represents checkout funnel statistics.
type CheckoutStatsResponse struct {
	From   time.Time                      `json:"from"`
	To     time.Time                      `json:"to"`
	Counts map[model.CheckoutStatus]int64 `json:"counts"`
	Recent []*model.CheckoutEvent         `json:"recent"`
}

// CheckoutStats handles GET /api/v1/admin/checkout-stats?hours={n}
// Returns checkout attempt counts per status plus the latest attempts.
func (h *AdminHandler) CheckoutStats(w http.ResponseWriter, r *http.Request) {
	hours, _ := strconv.Atoi(r.URL.Query().Get("hours"))
	if hours < 1 || hours > 24*30 {
		hours = 24
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	to := time.Now().UTC()
	from := to.Add(-time.Duration(hours) * time.Hour)

	counts, err := h.checkoutRepo.CountByStatus(ctx, from, to)
	if err != nil {
		h.logger.Error("failed to count checkout events", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load checkout stats")
		return
	}

	recent, err := h.checkoutRepo.ListRecent(ctx, 20)
	if err != nil {
		h.logger.Error("failed to list recent checkout events", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load checkout stats")
		return
	}

	writeJSON(w, http.StatusOK, CheckoutStatsResponse{
		From:   from,
		To:     to,
		Counts: counts,
		Recent: recent,
	})
}

// StatsResponse represents operational statistics.
type StatsResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// Stats handles GET /api/v1/admin/stats
// Returns basic operational statistics.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response := StatsResponse{
		Timestamp: time.Now().UTC(),
		Service:   "prepjet",
		Version:   "1.0.0", // TODO: inject at build time
	}
	writeJSON(w, http.StatusOK, response)
}
