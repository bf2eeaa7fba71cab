package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelichko/contactkeeper/internal/models"
)

const (
	defaultCacheTTL    = 300 * time.Second
	defaultCachePrefix = "user"
)

var errCacheEntryCorrupt = errors.New("cache entry corrupt")

// Read-through cache for authenticated user snapshots
// The database stays authoritative: entries expire after the TTL and a
// corrupt entry must surface as an error, never as a user
type UserCache interface {
	// Get returns (user, true) on hit and (zero, false) on miss
	Get(ctx context.Context, email string) (models.User, bool, error)
	Set(ctx context.Context, user models.User) error
	Delete(ctx context.Context, email string) error
}

type RedisUserCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

func NewRedisUserCache(client redis.UniversalClient, ttl time.Duration) *RedisUserCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		prefix: defaultCachePrefix,
	}
}

func (c *RedisUserCache) Get(ctx context.Context, email string) (models.User, bool, error) {
	var user models.User

	data, err := c.client.Get(ctx, c.key(email)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return user, false, nil
	case err != nil:
		return user, false, fmt.Errorf("cache error: %w", err)
	}

	// Snapshots are plain JSON field mappings, nothing executable.
	// A snapshot that does not decode is dropped and reported.
	if err := json.Unmarshal(data, &user); err != nil {
		_ = c.client.Del(ctx, c.key(email)).Err()
		return user, false, fmt.Errorf("%w: %w", errCacheEntryCorrupt, err)
	}

	return user, true, nil
}

func (c *RedisUserCache) Set(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("cache encode error: %w", err)
	}

	if err := c.client.Set(ctx, c.key(user.Email), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache error: %w", err)
	}

	return nil
}

func (c *RedisUserCache) Delete(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, c.key(email)).Err(); err != nil {
		return fmt.Errorf("cache error: %w", err)
	}

	return nil
}

func (c *RedisUserCache) key(email string) string {
	return c.prefix + ":" + email
}
