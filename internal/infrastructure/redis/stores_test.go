package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangov/sso/internal/domain/models"
)

func newTestClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func newTestGrant(code string, ttl time.Duration) *models.AuthorizationGrant {
	return models.NewAuthorizationGrant(
		code, "subj-1", "svc-acme", "https://acme.example.com/callback",
		"openid profile", "nonce-1", "org-1", ttl,
	)
}

func TestGrantStore_PutAndConsume(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewGrantStore(client)
	ctx := context.Background()

	grant := newTestGrant("c0ffee", 10*time.Minute)
	require.NoError(t, store.Put(ctx, grant))

	got, err := store.Consume(ctx, "c0ffee")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "subj-1", got.SubjectID)
	assert.Equal(t, "svc-acme", got.ClientID)
	assert.Equal(t, "openid profile", got.Scope)
	assert.Equal(t, "nonce-1", got.Nonce)
}

func TestGrantStore_ConsumeIsSingleUse(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewGrantStore(client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newTestGrant("c0ffee", 10*time.Minute)))

	first, err := store.Consume(ctx, "c0ffee")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := store.Consume(ctx, "c0ffee")
	require.NoError(t, err)
	assert.Nil(t, second, "second consumption must find nothing")
}

func TestGrantStore_ConcurrentConsume(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewGrantStore(client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newTestGrant("c0ffee", 10*time.Minute)))

	const attempts = 16
	var wg sync.WaitGroup
	results := make([]*models.AuthorizationGrant, attempts)
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.Consume(ctx, "c0ffee")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i] != nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one redemption may succeed")
}

func TestGrantStore_UnknownCode(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewGrantStore(client)

	got, err := store.Consume(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGrantStore_ExpiresWithTTL(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewGrantStore(client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newTestGrant("c0ffee", time.Minute)))

	mr.FastForward(2 * time.Minute)

	got, err := store.Consume(ctx, "c0ffee")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGrantStore_RejectsExpiredGrant(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewGrantStore(client)

	grant := newTestGrant("c0ffee", 10*time.Minute)
	grant.ExpiresAt = time.Now().UTC().Add(-time.Second)

	assert.Error(t, store.Put(context.Background(), grant))
}

func TestPendingAuthStore_SaveAndConsume(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewPendingAuthStore(client)
	ctx := context.Background()

	now := time.Now().UTC()
	pending := &models.PendingAuthorization{
		RequestID:   "req-1",
		ClientID:    "svc-acme",
		RedirectURI: "https://acme.example.com/callback",
		Scope:       "openid",
		State:       "xyz",
		AuthState:   models.StateAwaitingUserAuthentication,
		CreatedAt:   now,
		ExpiresAt:   now.Add(15 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, pending))

	got, err := store.Consume(ctx, "req-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "svc-acme", got.ClientID)
	assert.Equal(t, "xyz", got.State)
	assert.Equal(t, models.StateAwaitingUserAuthentication, got.AuthState)

	// One-shot: a second consume finds nothing.
	again, err := store.Consume(ctx, "req-1")
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestTokenDenylist(t *testing.T) {
	client, mr := newTestClient(t)
	denylist := NewTokenDenylist(client)
	ctx := context.Background()

	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, denylist.Revoke(ctx, "jti-1", time.Now().UTC().Add(time.Hour)))

	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// The entry lapses with the token it shadows.
	mr.FastForward(2 * time.Hour)
	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylist_ExpiredTokenIsNoop(t *testing.T) {
	client, _ := newTestClient(t)
	denylist := NewTokenDenylist(client)
	ctx := context.Background()

	require.NoError(t, denylist.Revoke(ctx, "jti-old", time.Now().UTC().Add(-time.Minute)))

	revoked, err := denylist.IsRevoked(ctx, "jti-old")
	require.NoError(t, err)
	assert.False(t, revoked)
}
