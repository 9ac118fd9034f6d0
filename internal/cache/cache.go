// Package cache is the Redis key space shared by the service. Every key is namespaced by a prefix.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options selects the Redis server and the key namespace.
type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Client is a namespaced Redis client. A nil *Client is a usable, always-empty cache that accepts writes
// without storing them, which is how a deployment without Redis runs.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// New connects lazily to opts.Addr. An empty address returns nil.
func New(opts Options) *Client {
	if opts.Addr == "" {
		return nil
	}
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		prefix: opts.KeyPrefix,
	}
}

// Enabled reports whether writes actually reach Redis.
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Ping reports whether Redis answers.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Lookup reads a key. found is false for a missing key. err is set only when Redis fails.
func (c *Client) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	val, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Put writes a key that expires after ttl.
func (c *Client) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.rdb.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
