// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"giftshare/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis initializes the Redis client with the given address or URL.
// An empty address or an unreachable server leaves caching disabled.
func InitRedis(addr string) {
	if strings.TrimSpace(addr) == "" {
		middleware.Logger.Info("Redis not configured, caching and rate limiting disabled")
		client = nil
		return
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL, continuing without cache",
				slog.String("addr", addr), slog.String("error", err.Error()))
			client = nil
			return
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis connection failed, continuing without cache",
			slog.String("error", err.Error()))
		_ = c.Close()
		client = nil
		return
	}
	middleware.Logger.Info("Redis connected successfully")
	client = c
}

// SetClient replaces the package client. Passing nil disables caching.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the current Redis client instance, or nil.
func GetClient() *redis.Client {
	return client
}

// Close closes the client if one is configured.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
