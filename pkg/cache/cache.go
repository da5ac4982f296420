// Package cache stores short-lived verification results in redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultIdentityTTL bounds how long a verified provider token is trusted without re-checking
	DefaultIdentityTTL = 5 * time.Minute
	// DefaultKeyPrefix namespaces every key written by this service
	DefaultKeyPrefix = "memo:"

	identitySegment = "identity:"
)

// ErrMiss is returned when the key is absent or redis is disabled
var ErrMiss = errors.New("cache miss")

// Service caches identity verifications. A Service built from a nil client is
// a no-op: reads miss and writes are dropped.
type Service interface {
	GetIdentity(ctx context.Context, token string, dest interface{}) error
	SetIdentity(ctx context.Context, token string, value interface{}, ttl time.Duration) error
	InvalidateIdentity(ctx context.Context, token string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

// Option customizes a Service
type Option func(*redisCache)

// WithIdentityTTL caps identity entries at ttl; non-positive values keep the default
func WithIdentityTTL(ttl time.Duration) Option {
	return func(c *redisCache) {
		if ttl > 0 {
			c.identityTTL = ttl
		}
	}
}

// WithKeyPrefix replaces DefaultKeyPrefix
func WithKeyPrefix(prefix string) Option {
	return func(c *redisCache) { c.prefix = prefix }
}

type redisCache struct {
	client      *redis.Client
	identityTTL time.Duration
	prefix      string
}

// NewService creates a Service on top of client, which may be nil
func NewService(client *redis.Client, opts ...Option) Service {
	c := &redisCache{client: client, identityTTL: DefaultIdentityTTL, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis disabled")
	}
	return c.client.Ping(ctx).Err()
}

// identityKey never stores the raw bearer token
func (c *redisCache) identityKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + identitySegment + hex.EncodeToString(sum[:])
}

func (c *redisCache) GetIdentity(ctx context.Context, token string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}
	data, err := c.client.Get(ctx, c.identityKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetIdentity stores value for ttl, capped at the configured identity TTL.
// Non-positive ttls, i.e. tokens that already expired, are not stored.
func (c *redisCache) SetIdentity(ctx context.Context, token string, value interface{}, ttl time.Duration) error {
	if c.client == nil || ttl <= 0 {
		return nil
	}
	if ttl > c.identityTTL {
		ttl = c.identityTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return c.client.Set(ctx, c.identityKey(token), data, ttl).Err()
}

func (c *redisCache) InvalidateIdentity(ctx context.Context, token string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.identityKey(token)).Err()
}
