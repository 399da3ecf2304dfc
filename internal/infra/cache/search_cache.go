// Package cache keeps encoded live-search responses in Redis for a short
// time, so repeated queries do not fan out to every feed again.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/utils/text"
)

// DefaultTTL matches the typical refresh rate of news feeds.
const DefaultTTL = 2 * time.Minute

const keyPrefix = "haber-radar:search:"

// store is the subset of *redis.Client the cache uses.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// SearchCache stores response bodies by query key. Redis failures are
// logged and treated as misses.
type SearchCache struct {
	rdb    store
	ttl    time.Duration
	logger *slog.Logger
}

// NewSearchCache wraps rdb. A non-positive ttl selects DefaultTTL.
func NewSearchCache(rdb store, ttl time.Duration, logger *slog.Logger) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Open connects to the Redis server at addr and pings it.
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// Get returns the cached body for key.
func (c *SearchCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.RecordCacheLookup("hit")
		return body, true
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup("miss")
	default:
		metrics.RecordCacheLookup("error")
		c.logger.Warn("search cache read failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
	return nil, false
}

// Set stores body under key for the configured TTL.
func (c *SearchCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.logger.Warn("search cache write failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

// Ping reports whether Redis is reachable.
func (c *SearchCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SearchKey builds the cache key of a live search. Keywords are folded so
// "Dolar" and "dolar" share an entry.
func SearchKey(keyword, category string, limit int, searchEngine *bool) string {
	se := "default"
	if searchEngine != nil {
		se = strconv.FormatBool(*searchEngine)
	}
	parts := []string{
		url.QueryEscape(text.Fold(strings.TrimSpace(keyword))),
		url.QueryEscape(strings.ToLower(strings.TrimSpace(category))),
		strconv.Itoa(limit),
		se,
	}
	return keyPrefix + strings.Join(parts, ":")
}
