// Package cache stores assembled bureau reports in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dan9191/bureau-service/internal/models"
)

// ErrCacheMiss is returned when no report is cached for the key.
var ErrCacheMiss = errors.New("report not cached")

const keyPrefix = "bureau_report:"

// Key returns the cache key of a customer's report for an analysis period.
func Key(crn int64, period string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, crn, period)
}

// ReportCache keeps serialized reports in Redis with a fixed TTL.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a cache over client. A zero ttl keeps entries until invalidated.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

// Get returns the cached report or ErrCacheMiss.
func (c *ReportCache) Get(ctx context.Context, crn int64, period string) (*models.BureauReport, error) {
	data, err := c.client.Get(ctx, Key(crn, period)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report models.BureauReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, nil
}

// Set stores report under its customer and period.
func (c *ReportCache) Set(ctx context.Context, period string, report *models.BureauReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, Key(report.Meta.CustomerID, period), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// InvalidateAll deletes every cached report and returns how many were removed.
func (c *ReportCache) InvalidateAll(ctx context.Context) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan cached reports: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete cached reports: %w", err)
			}
			removed += n
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Ping checks connectivity.
func (c *ReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
