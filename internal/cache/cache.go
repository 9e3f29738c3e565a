package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jihaego327-source/oz1210/internal/stats"
	"github.com/jihaego327-source/oz1210/internal/telemetry"
)

// Aggregates are cached for an hour to bound the O(regions × categories)
// fan-out cost of a recompute. Each axis is keyed separately.
const defaultTTL = time.Hour

const (
	keyRegionStats = "stats:regions"
	keyTypeStats   = "stats:types"
	keySummary     = "stats:summary"
)

// Cache wraps a Redis client with typed get/set for stats aggregates.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with a 1-hour TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// getJSON retrieves and decodes a cached value. A miss is nil, nil.
func getJSON[T any](ctx context.Context, c *Cache, key string) (*T, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			telemetry.CacheMisses.WithLabelValues(key).Inc()
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	telemetry.CacheHits.WithLabelValues(key).Inc()

	var out T
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return nil, fmt.Errorf("unmarshaling cached %s: %w", key, err)
	}
	return &out, nil
}

func (c *Cache) setJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) GetRegionStats(ctx context.Context) ([]stats.RegionStat, error) {
	out, err := getJSON[[]stats.RegionStat](ctx, c, keyRegionStats)
	if err != nil || out == nil {
		return nil, err
	}
	return *out, nil
}

func (c *Cache) SetRegionStats(ctx context.Context, s []stats.RegionStat) error {
	return c.setJSON(ctx, keyRegionStats, s)
}

func (c *Cache) GetTypeStats(ctx context.Context) ([]stats.TypeStat, error) {
	out, err := getJSON[[]stats.TypeStat](ctx, c, keyTypeStats)
	if err != nil || out == nil {
		return nil, err
	}
	return *out, nil
}

func (c *Cache) SetTypeStats(ctx context.Context, s []stats.TypeStat) error {
	return c.setJSON(ctx, keyTypeStats, s)
}

func (c *Cache) GetSummary(ctx context.Context) (*stats.Summary, error) {
	return getJSON[stats.Summary](ctx, c, keySummary)
}

func (c *Cache) SetSummary(ctx context.Context, s *stats.Summary) error {
	if s == nil {
		return nil
	}
	return c.setJSON(ctx, keySummary, s)
}

// Invalidate drops every cached aggregate, forcing the next read to
// recompute.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, keyRegionStats, keyTypeStats, keySummary).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
