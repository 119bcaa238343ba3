// Package bootstrap acquires the process-wide resources the server runs on.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"giftshare/internal/cache"
	"giftshare/internal/config"
	"giftshare/internal/database"
	"giftshare/internal/middleware"
	"giftshare/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// Runtime holds the handles acquired at start. ReadDB and Redis may be nil.
type Runtime struct {
	DB     *gorm.DB
	ReadDB *gorm.DB
	Redis  *redis.Client
}

// InitRuntime connects to the primary database, the optional read replica and
// Redis, then optionally seeds the demo wishlist.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)

	rt := &Runtime{
		DB:     db,
		ReadDB: database.ConnectRead(cfg),
		Redis:  cache.GetClient(),
	}

	if opts.SeedDemo {
		if err := seed.Demo(db); err != nil {
			if closeErr := rt.Close(); closeErr != nil {
				middleware.Logger.Warn("failed to release runtime", slog.String("error", closeErr.Error()))
			}
			return nil, fmt.Errorf("failed to seed demo wishlist: %w", err)
		}
		middleware.Logger.Info("demo wishlist ensured", slog.String("token", seed.DemoToken))
	}

	return rt, nil
}

// Close releases the database handles and the Redis client.
func (rt *Runtime) Close() error {
	return errors.Join(database.Close(), cache.Close())
}
