package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crm-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

const statsKey = "crm:stats"

// CacheStats stores the aggregate stats snapshot with a TTL
func (c *Client) CacheStats(ctx context.Context, stats *models.Stats, ttl time.Duration) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return c.rdb.Set(ctx, statsKey, payload, ttl).Err()
}

// GetCachedStats retrieves the cached stats snapshot. Returns
// (nil, nil) on a cache miss.
func (c *Client) GetCachedStats(ctx context.Context) (*models.Stats, error) {
	payload, err := c.rdb.Get(ctx, statsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats models.Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached stats: %w", err)
	}
	return &stats, nil
}

// InvalidateStats drops the cached stats snapshot after a mutation
func (c *Client) InvalidateStats(ctx context.Context) error {
	return c.rdb.Del(ctx, statsKey).Err()
}

// AcquireJobLock acquires the distributed lock backing a job's
// at-most-one-in-flight guarantee across processes. Returns false when
// another run holds the lock.
func (c *Client) AcquireJobLock(ctx context.Context, jobName string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:job:%s", jobName), "1", ttl).Result()
}

// ReleaseJobLock releases a job lock
func (c *Client) ReleaseJobLock(ctx context.Context, jobName string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:job:%s", jobName)).Err()
}
