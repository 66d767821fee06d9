package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prepjet/prepjet/internal/handler/dto"
	"github.com/prepjet/prepjet/internal/identity"
	"github.com/prepjet/prepjet/internal/model"
	"github.com/prepjet/prepjet/internal/repository"
)

// UserGetter defines the interface for looking up mirrored users.
type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// SessionRevoker defines the interface for logout blocklisting.
type SessionRevoker interface {
	RevokeSession(ctx context.Context, tokenHash string, remaining time.Duration) error
}

// DashboardHandler serves the signed-in dashboard and sign-out.
type DashboardHandler struct {
	repo     UserGetter
	cache    SessionRevoker
	verifier *identity.Verifier
	logger   *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(repo UserGetter, c SessionRevoker, verifier *identity.Verifier, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		repo:     repo,
		cache:    c,
		verifier: verifier,
		logger:   logger,
	}
}

// Dashboard handles GET /dashboard. Unauthenticated visitors are
// redirected to the landing page rather than shown an error.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session := identity.SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	response := dto.DashboardResponse{
		Greeting: "Welcome to your dashboard!",
	}

	user, err := h.repo.GetUserByID(r.Context(), session.UserID)
	switch {
	case err == nil:
		response.User = toUserResponse(user)
	case errors.Is(err, repository.ErrUserNotFound):
		// The sync webhook has not delivered this user yet; fall back
		// to the session claims.
		response.User = dto.UserResponse{
			ID:    session.UserID,
			Email: session.Email,
			Role:  string(model.RoleUser),
		}
	default:
		h.logger.Error("dashboard user lookup failed", "error", err, "user_id", session.UserID)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}

	if response.User.FirstName != "" {
		response.Greeting = fmt.Sprintf("Welcome back, %s!", response.User.FirstName)
	}

	writeJSON(w, http.StatusOK, response)
}

// Me handles GET /api/v1/me and returns the signed-in user's profile.
// Requires the session middleware chain; unauthenticated requests are
// rejected before reaching here.
func (h *DashboardHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := identity.SessionFromContext(r.Context())
	if session == nil {
		writeErrorJSON(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required")
		return
	}

	user, err := h.repo.GetUserByID(r.Context(), session.UserID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toUserResponse(user))
	case errors.Is(err, repository.ErrUserNotFound):
		writeJSON(w, http.StatusOK, dto.UserResponse{
			ID:    session.UserID,
			Email: session.Email,
			Role:  string(model.RoleUser),
		})
	default:
		h.logger.Error("profile lookup failed", "error", err, "user_id", session.UserID)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}

// Logout handles POST /logout. The cached session is dropped and the
// token hash blocklisted for its remaining lifetime, then the visitor
// is sent back to the landing page.
func (h *DashboardHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := identity.TokenFromRequest(r)
	if token != "" {
		remaining := time.Duration(0)
		if session, err := h.verifier.Verify(token); err == nil && !session.ExpiresAt.IsZero() {
			remaining = time.Until(session.ExpiresAt)
		}
		if err := h.cache.RevokeSession(r.Context(), identity.TokenHash(token), remaining); err != nil {
			h.logger.Warn("session revocation failed", "error", err)
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func toUserResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.FirstName != nil {
		resp.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		resp.LastName = *u.LastName
	}
	if u.AvatarURL != nil {
		resp.AvatarURL = *u.AvatarURL
	}
	return resp
}
