package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prepjet/prepjet/internal/identity"
)

const sessionTestSecret = "test-session-secret"

func makeSessionToken(t *testing.T, subject, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(sessionTestSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func sessionTestConfig() SessionConfig {
	return SessionConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Verifier: identity.NewVerifier(sessionTestSecret),
	}
}

func TestSession_ValidToken(t *testing.T) {
	var got *identity.Session
	handler := Session(sessionTestConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = identity.SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: identity.SessionCookieName, Value: makeSessionToken(t, "user_1", "a@b.com")})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected session in context")
	}
	if got.UserID != "user_1" {
		t.Errorf("UserID = %q, want user_1", got.UserID)
	}
	if got.Email != "a@b.com" {
		t.Errorf("Email = %q, want a@b.com", got.Email)
	}
}

func TestSession_MissingToken(t *testing.T) {
	called := false
	handler := Session(sessionTestConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if identity.SessionFromContext(r.Context()) != nil {
			t.Error("expected no session in context")
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Fatal("request should proceed without a token")
	}
}

func TestSession_InvalidToken(t *testing.T) {
	called := false
	handler := Session(sessionTestConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if identity.SessionFromContext(r.Context()) != nil {
			t.Error("invalid token should not produce a session")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: identity.SessionCookieName, Value: "garbage"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("request should proceed with an invalid token")
	}
}

func TestSession_BearerHeader(t *testing.T) {
	var got *identity.Session
	handler := Session(sessionTestConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = identity.SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/checkout", nil)
	req.Header.Set("Authorization", "Bearer "+makeSessionToken(t, "user_2", ""))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.UserID != "user_2" {
		t.Fatalf("expected session for user_2, got %+v", got)
	}
}

func TestRequireSession_Unauthenticated(t *testing.T) {
	handler := RequireSession()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/billing/checkout", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRequireSession_Authenticated(t *testing.T) {
	called := false
	handler := RequireSession()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/checkout", nil)
	ctx := identity.ContextWithSession(req.Context(), &identity.Session{UserID: "user_1"})
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	if !called {
		t.Fatal("handler should run for authenticated request")
	}
}
