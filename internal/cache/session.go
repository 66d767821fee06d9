package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prepjet/prepjet/internal/identity"
)

const (
	// sessionCachePrefix is the Redis key prefix for verified sessions.
	sessionCachePrefix = "session:ctx:"
	// sessionRevokedPrefix is the Redis key prefix for revoked session tokens.
	sessionRevokedPrefix = "session:revoked:"
)

// CachedSession represents a verified session stored in Redis.
type CachedSession struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// GetSession retrieves a cached session by token hash.
// Returns nil on cache miss.
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*identity.Session, error) {
	key := sessionCachePrefix + tokenHash

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &identity.Session{
		UserID: cached.UserID,
		Email:  cached.Email,
	}, nil
}

// SetSession caches a verified session keyed by token hash.
func (c *Cache) SetSession(ctx context.Context, tokenHash string, session *identity.Session, ttl time.Duration) error {
	key := sessionCachePrefix + tokenHash

	data, err := json.Marshal(CachedSession{
		UserID: session.UserID,
		Email:  session.Email,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// RevokeSession drops the cached session and blocklists the token hash
// until the token itself would have expired. Used on logout.
func (c *Cache) RevokeSession(ctx context.Context, tokenHash string, remaining time.Duration) error {
	if err := c.client.Del(ctx, sessionCachePrefix+tokenHash).Err(); err != nil {
		return err
	}
	if remaining <= 0 {
		return nil
	}
	return c.client.Set(ctx, sessionRevokedPrefix+tokenHash, "1", remaining).Err()
}

// IsSessionRevoked reports whether a token hash is on the logout blocklist.
// Fails open on Redis errors so a cache outage cannot lock everyone out.
func (c *Cache) IsSessionRevoked(ctx context.Context, tokenHash string) bool {
	n, err := c.client.Exists(ctx, sessionRevokedPrefix+tokenHash).Result()
	if err != nil {
		return false
	}
	return n > 0
}
