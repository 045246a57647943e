// Package report serves turnover rows with a Redis cache in front of the
// engine's read-only computation.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inventra/inventra/internal/ledger"
)

const cachePrefix = "inventra:turnover"

// Cache wraps Redis-based caching of turnover rows.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key composes the cache key for a reporting window. Safe on a nil cache so
// callers can key singleflight groups even with caching disabled.
func (c *Cache) Key(from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s", cachePrefix, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// Get returns cached rows, reporting a miss via ok=false.
func (c *Cache) Get(ctx context.Context, key string) ([]ledger.TurnoverRow, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("report: cache get: %w", err)
	}
	var rows []ledger.TurnoverRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false, fmt.Errorf("report: cache decode: %w", err)
	}
	return rows, true, nil
}

// Set stores rows under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, rows []ledger.TurnoverRow) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("report: cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("report: cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached rows for a window key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("report: cache del: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached window. Called after mutations so reads
// inside the TTL never serve pre-write rows.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, cachePrefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.Invalidate(ctx, iter.Val()); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("report: cache scan: %w", err)
	}
	return nil
}
