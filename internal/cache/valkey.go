// Package cache keeps small, slow-changing query results in valkey.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/OldStager01/sdn-telemetry/internal/logger"
	"github.com/OldStager01/sdn-telemetry/internal/metrics"
	"github.com/OldStager01/sdn-telemetry/pkg/config"
)

type Client struct {
	client valkey.Client
	prefix string
}

func New(ctx context.Context, cfg config.CacheConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{cfg.Address},
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey: %w", err)
	}

	logger.Infof("Connected to valkey at %s", cfg.Address)

	return &Client{client: client, prefix: cfg.KeyPrefix}, nil
}

// GetJSON decodes the value stored under key into dest. It reports false
// without error when the key does not exist.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(c.prefix+key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		metrics.Get().CacheMiss(key)
		return false, nil
	}
	if err != nil {
		metrics.Get().CacheError(key)
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.Get().CacheError(key)
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}

	metrics.Get().CacheHit(key)
	return true, nil
}

func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := c.client.B().Setex().Key(c.prefix + key).Seconds(seconds).Value(string(raw)).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		metrics.Get().CacheError(key)
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Client) deleteKeys(ctx context.Context, keys ...string) error {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.prefix+k)
	}
	return c.client.Do(ctx, c.client.B().Del().Key(full...).Build()).Error()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

func (c *Client) Close() {
	c.client.Close()
}
