package formcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/job-applier/internal/types"
)

// RedisKeyPrefix namespaces cache keys.
const RedisKeyPrefix = "formschema:"

// Redis is a Cache stored in Redis, one string key per URL with no expiry.
type Redis struct {
	client redis.Cmdable
}

// NewRedis wraps an existing client.
func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, url string) (*types.FormSchema, bool, error) {
	data, err := r.client.Get(ctx, RedisKeyPrefix+url).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get form schema for %s: %w", url, err)
	}

	var schema types.FormSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, false, fmt.Errorf("failed to decode form schema for %s: %w", url, err)
	}
	return &schema, true, nil
}

// Put implements Cache.
func (r *Redis) Put(ctx context.Context, url string, schema types.FormSchema) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to marshal form schema: %w", err)
	}
	if err := r.client.Set(ctx, RedisKeyPrefix+url, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save form schema for %s: %w", url, err)
	}
	return nil
}
