package identity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memClaimsStore struct {
	values map[string][]byte
}

func newMemClaimsStore() *memClaimsStore {
	return &memClaimsStore{values: map[string][]byte{}}
}

func (m *memClaimsStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memClaimsStore) GetJSON(ctx context.Context, key string, dest any) error {
	raw, ok := m.values[key]
	if !ok {
		return errors.New("not found")
	}
	return json.Unmarshal(raw, dest)
}

type countingProvider struct {
	verified bool
	err      error
	calls    int
}

func (p *countingProvider) EmailVerified(ctx context.Context, userID string) (bool, error) {
	p.calls++
	return p.verified, p.err
}

func TestCachedHitsUpstreamOnce(t *testing.T) {
	t.Parallel()

	upstream := &countingProvider{verified: true}
	cached := NewCached(upstream, newMemClaimsStore(), time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		verified, err := cached.EmailVerified(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, verified)
	}
	assert.Equal(t, 1, upstream.calls)
}

func TestCachedPropagatesUpstreamError(t *testing.T) {
	t.Parallel()

	upstream := &countingProvider{err: errors.New("identity down")}
	cached := NewCached(upstream, newMemClaimsStore(), time.Minute)

	_, err := cached.EmailVerified(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, 1, upstream.calls)
}

func TestCachedIsolatesUsers(t *testing.T) {
	t.Parallel()

	store := newMemClaimsStore()
	ctx := context.Background()

	verifiedUser := NewCached(&countingProvider{verified: true}, store, time.Minute)
	gotVerified, err := verifiedUser.EmailVerified(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, gotVerified)

	unverifiedUser := NewCached(&countingProvider{verified: false}, store, time.Minute)
	gotUnverified, err := unverifiedUser.EmailVerified(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, gotUnverified)
}
