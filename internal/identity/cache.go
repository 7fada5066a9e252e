package identity

import (
	"context"
	"time"

	pkgredis "github.com/narekgrig/shopfront-backend/pkg/redis"
)

type claimsStore interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
}

type cachedClaims struct {
	EmailVerified bool `json:"email_verified"`
}

// Cached wraps a Provider with a short-lived cache so repeated quotes do not
// hammer the identity service. A stale entry only delays the discount until
// the TTL expires; the commit-time flag re-check is unaffected.
type Cached struct {
	next  Provider
	store claimsStore
	ttl   time.Duration
}

// NewCached builds the caching layer. A non-positive TTL falls back to a
// minute.
func NewCached(next Provider, store claimsStore, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cached{next: next, store: store, ttl: ttl}
}

func (c *Cached) EmailVerified(ctx context.Context, userID string) (bool, error) {
	key := pkgredis.IdentityClaimsKey(userID)

	var claims cachedClaims
	if err := c.store.GetJSON(ctx, key, &claims); err == nil {
		return claims.EmailVerified, nil
	}

	verified, err := c.next.EmailVerified(ctx, userID)
	if err != nil {
		return false, err
	}

	// Cache failures are not worth failing the lookup over.
	_ = c.store.SetJSON(ctx, key, cachedClaims{EmailVerified: verified}, c.ttl)
	return verified, nil
}
