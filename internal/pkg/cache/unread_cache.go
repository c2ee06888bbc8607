// Package cache provides a short-lived Redis cache in front of the unread
// summary queries. Staff dashboards poll the unread endpoint every few
// seconds; the cache absorbs that fan-out without changing any semantics,
// since every write path invalidates the affected recipients.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/redis/go-redis/v9"
)

// UnreadCache stores computed unread summaries per user with a short TTL.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewUnreadCache creates a cache from a Redis address. The connection is
// verified before returning.
func NewUnreadCache(addr, password string, db int, ttl time.Duration) (*UnreadCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewUnreadCacheWithClient(client, ttl), nil
}

// NewUnreadCacheWithClient creates a cache from an existing Redis client.
func NewUnreadCacheWithClient(client *redis.Client, ttl time.Duration) *UnreadCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &UnreadCache{
		client: client,
		ttl:    ttl,
		prefix: "unread:",
	}
}

func (c *UnreadCache) key(userID int64) string {
	return fmt.Sprintf("%s%d", c.prefix, userID)
}

// Get returns the cached summary for a user, or (nil, nil) on a miss.
func (c *UnreadCache) Get(ctx context.Context, userID int64) (*dto.UnreadSummaryResponse, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get unread summary: %w", err)
	}

	var summary dto.UnreadSummaryResponse
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal unread summary: %w", err)
	}
	return &summary, nil
}

// Set stores a summary for a user with the configured TTL.
func (c *UnreadCache) Set(ctx context.Context, userID int64, summary *dto.UnreadSummaryResponse) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal unread summary: %w", err)
	}

	if err := c.client.Set(ctx, c.key(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set unread summary: %w", err)
	}
	return nil
}

// Invalidate drops the cached summaries for the given users. Missing keys
// are not an error.
func (c *UnreadCache) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.key(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate unread summaries: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (c *UnreadCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *UnreadCache) Close() error {
	return c.client.Close()
}
