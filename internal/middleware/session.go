package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prepjet/prepjet/internal/cache"
	"github.com/prepjet/prepjet/internal/identity"
	"github.com/prepjet/prepjet/internal/metrics"
)

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger   *slog.Logger
	Verifier *identity.Verifier
	Cache    *cache.Cache
	Metrics  metrics.Recorder
	CacheTTL time.Duration
}

// Session returns middleware that resolves an optional session from the
// request. A missing or invalid token is not an error; the request simply
// proceeds unauthenticated. Handlers that need a session check the context.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := identity.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenHash := identity.TokenHash(token)

			if cfg.Cache != nil && cfg.Cache.IsSessionRevoked(r.Context(), tokenHash) {
				recorder.IncSessionVerified("revoked")
				cfg.Logger.Debug("session token revoked",
					slog.String("token_hash", tokenHash),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			// Check cache before paying for signature verification
			if cfg.Cache != nil {
				if session, _ := cfg.Cache.GetSession(r.Context(), tokenHash); session != nil {
					recorder.IncSessionVerified("success")
					ctx := identity.ContextWithSession(r.Context(), session)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			session, err := cfg.Verifier.Verify(token)
			if err != nil {
				recorder.IncSessionVerified("failure")
				cfg.Logger.Debug("session verification failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			if cfg.Cache != nil && cfg.CacheTTL > 0 {
				_ = cfg.Cache.SetSession(r.Context(), tokenHash, session, cfg.CacheTTL)
			}

			recorder.IncSessionVerified("success")
			ctx := identity.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession returns middleware that rejects unauthenticated API
// requests. Must be applied after Session middleware.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity.SessionFromContext(r.Context()) == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Sign in required"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
