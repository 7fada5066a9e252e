package cart

import (
	"context"
	"errors"
	"time"

	"github.com/narekgrig/shopfront-backend/pkg/redis"
)

// GuestState is the anonymous-session snapshot kept in Redis until the
// session signs in and the snapshot is folded into the account.
type GuestState struct {
	Lines    []Line   `json:"lines"`
	Wishlist []string `json:"wishlist"`
}

type guestStore interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	Del(ctx context.Context, keys ...string) error
}

// GuestStore keeps guest carts and wishlists in Redis with a rolling TTL.
type GuestStore struct {
	store guestStore
	ttl   time.Duration
}

func NewGuestStore(store guestStore, ttl time.Duration) *GuestStore {
	return &GuestStore{store: store, ttl: ttl}
}

// Load returns the guest snapshot, or an empty one when the session has no
// saved state.
func (g *GuestStore) Load(ctx context.Context, sessionID string) (*GuestState, error) {
	state := &GuestState{}

	var lines []Line
	if err := g.store.GetJSON(ctx, redis.GuestCartKey(sessionID), &lines); err != nil {
		if !errors.Is(err, redis.ErrNotFound) {
			return nil, err
		}
	} else {
		state.Lines = lines
	}

	var wishlist []string
	if err := g.store.GetJSON(ctx, redis.GuestWishlistKey(sessionID), &wishlist); err != nil {
		if !errors.Is(err, redis.ErrNotFound) {
			return nil, err
		}
	} else {
		state.Wishlist = wishlist
	}

	return state, nil
}

// SaveCart overwrites the guest cart and refreshes its TTL.
func (g *GuestStore) SaveCart(ctx context.Context, sessionID string, lines []Line) error {
	return g.store.SetJSON(ctx, redis.GuestCartKey(sessionID), lines, g.ttl)
}

// SaveWishlist overwrites the guest wishlist and refreshes its TTL.
func (g *GuestStore) SaveWishlist(ctx context.Context, sessionID string, productIDs []string) error {
	return g.store.SetJSON(ctx, redis.GuestWishlistKey(sessionID), productIDs, g.ttl)
}

// Clear removes every guest key for the session.
func (g *GuestStore) Clear(ctx context.Context, sessionID string) error {
	return g.store.Del(ctx, redis.GuestCartKey(sessionID), redis.GuestWishlistKey(sessionID))
}
