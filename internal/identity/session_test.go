package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "session-secret"

// makeToken signs a session token the way the identity provider does.
func makeToken(t *testing.T, secret, subject, email string, expiresIn time.Duration) string {
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

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(testSecret)

	token := makeToken(t, testSecret, "user_1", "a@b.com", time.Hour)

	sess, err := v.Verify(token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.UserID != "user_1" {
		t.Errorf("expected user_1, got %s", sess.UserID)
	}
	if sess.Email != "a@b.com" {
		t.Errorf("expected a@b.com, got %s", sess.Email)
	}
}

func TestVerifier_Verify_NoEmail(t *testing.T) {
	v := NewVerifier(testSecret)

	token := makeToken(t, testSecret, "user_1", "", time.Hour)

	sess, err := v.Verify(token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.Email != "" {
		t.Errorf("expected empty email, got %s", sess.Email)
	}
}

func TestVerifier_Verify_Failures(t *testing.T) {
	v := NewVerifier(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", makeToken(t, testSecret, "user_1", "a@b.com", -time.Hour)},
		{"wrong secret", makeToken(t, "wrong-secret", "user_1", "a@b.com", time.Hour)},
		{"missing subject", makeToken(t, testSecret, "", "a@b.com", time.Hour)},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			if !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestVerifier_Verify_RejectsNonHMAC(t *testing.T) {
	v := NewVerifier(testSecret)

	// alg=none tokens must be rejected outright.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user_1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := v.Verify(signed); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for alg=none, got %v", err)
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{
			name: "session cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
			},
			want: "cookie-token",
		},
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer header-token")
			},
			want: "header-token",
		},
		{
			name: "cookie wins over header",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
				r.Header.Set("Authorization", "Bearer header-token")
			},
			want: "cookie-token",
		},
		{
			name:  "absent",
			setup: func(r *http.Request) {},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			tt.setup(r)

			if got := TokenFromRequest(r); got != tt.want {
				t.Errorf("TokenFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenHash(t *testing.T) {
	h1 := TokenHash("token-a")
	h2 := TokenHash("token-a")
	h3 := TokenHash("token-b")

	if h1 != h2 {
		t.Error("hash is not deterministic")
	}
	if h1 == h3 {
		t.Error("different tokens should produce different hashes")
	}
	if len(h1) != 32 {
		t.Errorf("hash length = %d, want 32", len(h1))
	}
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()

	if SessionFromContext(ctx) != nil {
		t.Error("expected nil session for empty context")
	}
	if EmailFromContext(ctx) != "" {
		t.Error("expected empty email for empty context")
	}

	ctx = ContextWithSession(ctx, &Session{UserID: "user_1", Email: "a@b.com"})

	sess := SessionFromContext(ctx)
	if sess == nil || sess.UserID != "user_1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if EmailFromContext(ctx) != "a@b.com" {
		t.Errorf("unexpected email: %s", EmailFromContext(ctx))
	}
}
