package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedIdentity struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewService(client)
}

func TestIdentityRoundTrip(t *testing.T) {
	mr, svc := newMiniredis(t)
	ctx := context.Background()

	require.NoError(t, svc.SetIdentity(ctx, "secret-token", cachedIdentity{UserID: 7, Email: "a@b.c"}, time.Minute))

	var got cachedIdentity
	require.NoError(t, svc.GetIdentity(ctx, "secret-token", &got))
	assert.Equal(t, uint64(7), got.UserID)

	for _, key := range mr.Keys() {
		assert.True(t, strings.HasPrefix(key, DefaultKeyPrefix+"identity:"))
		assert.NotContains(t, key, "secret-token")
	}

	require.NoError(t, svc.InvalidateIdentity(ctx, "secret-token"))
	assert.ErrorIs(t, svc.GetIdentity(ctx, "secret-token", &got), ErrMiss)
}

func TestIdentityTTLIsCapped(t *testing.T) {
	mr, svc := newMiniredis(t)
	ctx := context.Background()

	require.NoError(t, svc.SetIdentity(ctx, "tok", cachedIdentity{UserID: 1}, time.Hour))
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, DefaultIdentityTTL, mr.TTL(keys[0]))

	mr.FastForward(DefaultIdentityTTL + time.Second)
	var got cachedIdentity
	assert.ErrorIs(t, svc.GetIdentity(ctx, "tok", &got), ErrMiss)
}

func TestNonPositiveTTLIsNotStored(t *testing.T) {
	mr, svc := newMiniredis(t)
	require.NoError(t, svc.SetIdentity(context.Background(), "tok", cachedIdentity{}, -time.Second))
	assert.Empty(t, mr.Keys())
}

func TestNilClientIsNoop(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	assert.False(t, svc.IsAvailable())
	assert.NoError(t, svc.SetIdentity(ctx, "tok", cachedIdentity{}, time.Minute))
	var got cachedIdentity
	assert.ErrorIs(t, svc.GetIdentity(ctx, "tok", &got), ErrMiss)
	assert.Error(t, svc.Ping(ctx))
}

func TestOptions(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(client, WithIdentityTTL(30*time.Second), WithKeyPrefix("test:"))

	require.NoError(t, svc.SetIdentity(context.Background(), "tok", cachedIdentity{UserID: 1}, time.Hour))
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "test:identity:"))
	assert.Equal(t, 30*time.Second, mr.TTL(keys[0]))
}
