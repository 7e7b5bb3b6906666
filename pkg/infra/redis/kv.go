package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KV is a plain string key/value store on redis. It backs the altered-order
// markers so every dashboard instance of a tenant sees the same set.
type KV struct {
	client *redis.Client
}

// NewKV creates a KV on an existing client.
func NewKV(client *redis.Client) *KV {
	return &KV{client: client}
}

// Get returns the value at key. A missing key is not an error.
func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := k.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value at key without expiry.
func (k *KV) Set(ctx context.Context, key, value string) error {
	if err := k.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
