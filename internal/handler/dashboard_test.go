package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prepjet/prepjet/internal/handler/dto"
	"github.com/prepjet/prepjet/internal/identity"
	"github.com/prepjet/prepjet/internal/model"
	"github.com/prepjet/prepjet/internal/repository"
)

type stubUserGetter struct {
	user *model.User
	err  error
}

func (s *stubUserGetter) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type recordingRevoker struct {
	tokenHash string
	remaining time.Duration
	calls     int
}

func (r *recordingRevoker) RevokeSession(ctx context.Context, tokenHash string, remaining time.Duration) error {
	r.tokenHash = tokenHash
	r.remaining = remaining
	r.calls++
	return nil
}

func sessionRequest(method, target string, session *identity.Session) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(identity.ContextWithSession(req.Context(), session))
}

// makeSessionToken signs a session token the way the identity provider does.
func makeSessionToken(t *testing.T, secret, subject, email string, expiresIn time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestDashboardHandler_UnauthenticatedRedirect(t *testing.T) {
	h := NewDashboardHandler(nil, nil, identity.NewVerifier("secret"), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()

	h.Dashboard(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Errorf("Location = %q, want /", got)
	}
	// No dashboard content may leak to unauthenticated visitors.
	if body := rec.Body.String(); len(body) > 0 && body != "<a href=\"/\">Found</a>.\n\n" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestDashboardHandler_AuthenticatedWithProfile(t *testing.T) {
	first := "Grace"
	repo := &stubUserGetter{user: &model.User{
		ID:        "user_1",
		Email:     "a@b.com",
		FirstName: &first,
		Role:      model.RoleUser,
	}}
	h := NewDashboardHandler(repo, nil, identity.NewVerifier("secret"), discardLogger())

	req := sessionRequest(http.MethodGet, "/dashboard", &identity.Session{UserID: "user_1", Email: "a@b.com"})
	rec := httptest.NewRecorder()

	h.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp dto.DashboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Greeting != "Welcome back, Grace!" {
		t.Errorf("Greeting = %q", resp.Greeting)
	}
	if resp.User.ID != "user_1" || resp.User.Email != "a@b.com" {
		t.Errorf("unexpected user: %+v", resp.User)
	}
}

func TestDashboardHandler_AuthenticatedBeforeSync(t *testing.T) {
	// The webhook mirror may lag the identity provider; the session
	// claims stand in until the user row arrives.
	repo := &stubUserGetter{err: repository.ErrUserNotFound}
	h := NewDashboardHandler(repo, nil, identity.NewVerifier("secret"), discardLogger())

	req := sessionRequest(http.MethodGet, "/dashboard", &identity.Session{UserID: "user_2", Email: "new@b.com"})
	rec := httptest.NewRecorder()

	h.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp dto.DashboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Greeting != "Welcome to your dashboard!" {
		t.Errorf("Greeting = %q", resp.Greeting)
	}
	if resp.User.Email != "new@b.com" || resp.User.Role != string(model.RoleUser) {
		t.Errorf("unexpected fallback user: %+v", resp.User)
	}
}

func TestDashboardHandler_MeReturnsProfile(t *testing.T) {
	repo := &stubUserGetter{user: &model.User{ID: "user_1", Email: "a@b.com", Role: model.RoleAdmin}}
	h := NewDashboardHandler(repo, nil, identity.NewVerifier("secret"), discardLogger())

	req := sessionRequest(http.MethodGet, "/api/v1/me", &identity.Session{UserID: "user_1", Email: "a@b.com"})
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp dto.UserResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != string(model.RoleAdmin) {
		t.Errorf("Role = %q", resp.Role)
	}
}

func TestDashboardHandler_LogoutRevokesRemainingLifetime(t *testing.T) {
	verifier := identity.NewVerifier("logout-secret")
	token := makeSessionToken(t, "logout-secret", "user_1", "a@b.com", time.Hour)

	revoker := &recordingRevoker{}
	h := NewDashboardHandler(nil, revoker, verifier, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}
	if revoker.calls != 1 {
		t.Fatalf("expected one revocation, got %d", revoker.calls)
	}
	if revoker.tokenHash != identity.TokenHash(token) {
		t.Errorf("revoked hash does not match token hash")
	}
	if revoker.remaining <= 0 || revoker.remaining > time.Hour {
		t.Errorf("remaining = %v, want within (0, 1h]", revoker.remaining)
	}
}

func TestDashboardHandler_LogoutWithoutSession(t *testing.T) {
	h := NewDashboardHandler(nil, nil, identity.NewVerifier("secret"), discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Errorf("Location = %q, want /", got)
	}
}
