// Package identity integrates the external identity provider: session
// token verification and sync webhook validation.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie the identity provider sets on sign-in.
const SessionCookieName = "__session"

var (
	// ErrUnauthenticated is returned for absent, expired, or invalid
	// session tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Session identifies a signed-in user.
type Session struct {
	// UserID is the identity-provider-issued user identifier.
	UserID string
	// Email is the user's primary email address, empty when the provider
	// did not include it.
	Email string
	// ExpiresAt is the token expiry, zero when the token carries none.
	ExpiresAt time.Time
}

// sessionClaims are the JWT claims the provider issues.
type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates provider-issued session tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier with the shared session secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a session token. Any failure, including
// expiry, yields ErrUnauthenticated; the underlying cause is wrapped for
// logging.
func (v *Verifier) Verify(tokenString string) (*Session, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrUnauthenticated)
	}

	session := &Session{
		UserID: claims.Subject,
		Email:  claims.Email,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// TokenFromRequest extracts the session token from the request.
// The session cookie takes precedence; "Authorization: Bearer" is the
// fallback for non-browser clients. Returns "" when absent.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// TokenHash returns a SHA256-derived cache key for a session token.
// This is NOT for credential storage, only for cache key derivation.
func TokenHash(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:16])
}
