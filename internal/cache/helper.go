package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads key and unmarshals it into dest.
// Returns (true, nil) on a hit and (false, nil) on a miss or when caching is disabled.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside returns the cached value for key in dest. On a miss it calls fetch,
// which must populate dest, then stores dest with ttl.
// Cache read and write failures fall through to fetch; only fetch errors are returned.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) (hit bool, err error) {
	found, getErr := GetJSON(ctx, key, dest)
	if getErr == nil && found {
		return true, nil
	}

	if err := fetch(); err != nil {
		return false, err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return false, nil
}

// Invalidate deletes key. It is a no-op when caching is disabled.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}
