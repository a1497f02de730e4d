// Package cache keeps fetched source payloads in Redis so repeated runs within the TTL do
// not hit the source again.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "index-symbols:payload:"

type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// CachedFetcher wraps another fetcher with a Redis read-through cache. Redis failures are logged
// and the wrapped fetcher is used directly.
type CachedFetcher struct {
	rdb    *redis.Client
	next   Fetcher
	ttl    time.Duration
	logger *slog.Logger
}

func New(rdb *redis.Client, next Fetcher, ttl time.Duration, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{
		rdb:    rdb,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

// Connect creates a Redis client and checks it answers.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func Key(location string) string {
	return keyPrefix + location
}

func (c *CachedFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	key := Key(location)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.logger.Debug("payload cache hit", slog.String("location", location), slog.Int("bytes", len(cached)))
		return cached, nil
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("payload cache read failed", slog.String("location", location), slog.Any("error", err))
	}

	payload, err := c.next.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("payload cache write failed", slog.String("location", location), slog.Any("error", err))
	}
	return payload, nil
}

// Forget drops the cached payload for location.
func (c *CachedFetcher) Forget(ctx context.Context, location string) error {
	return c.rdb.Del(ctx, Key(location)).Err()
}
