package style

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache stores extracted (non-built-in) profiles in Redis under a
// caller-chosen key (cmd/extract-style uses the profile name), mirroring
// queue.Queue's connection-and-ping-on-construct pattern.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

const keyPrefix = "personagen:style_profile:"

// NewCache connects to Redis at redisURL and verifies the connection.
func NewCache(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("style: failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("style: failed to connect to redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Get returns the cached profile for key, if present.
func (c *Cache) Get(ctx context.Context, key string) (Profile, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return Profile{}, false, nil
	}
	if err != nil {
		return Profile{}, false, fmt.Errorf("style: cache get: %w", err)
	}
	p, err := Load(data)
	if err != nil {
		return Profile{}, false, err
	}
	return p, true, nil
}

// Set stores p under key with the cache's configured TTL.
func (c *Cache) Set(ctx context.Context, key string, p Profile) error {
	data, err := p.Save()
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err()
}
