// Package cache provides a Redis-backed store for rendered public feeds.
// Entries are keyed by a feed stamp that changes on every moderation write,
// so they are never invalidated explicitly; they expire after a TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/testify-backend/internal/domain"
)

// FeedCache stores public feeds in Redis.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to addr and verifies the connection with a PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewFeedCache wraps client. A non-positive ttl defaults to one minute.
func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &FeedCache{client: client, ttl: ttl}
}

// GetFeed returns the feed stored under key. hit is false on a miss.
func (c *FeedCache) GetFeed(ctx context.Context, key string) ([]domain.Testimonial, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get feed from cache: %w", err)
	}

	var items []domain.Testimonial
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal feed: %w", err)
	}
	return items, true, nil
}

// SetFeed stores items under key with the configured TTL.
func (c *FeedCache) SetFeed(ctx context.Context, key string, items []domain.Testimonial) error {
	if items == nil {
		items = []domain.Testimonial{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal feed: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set feed in cache: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *FeedCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *FeedCache) Close() error {
	return c.client.Close()
}
