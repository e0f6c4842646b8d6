// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/cache"
	"github.com/minasenanami/wonderful-editor/internal/config"
	"github.com/minasenanami/wonderful-editor/internal/database"
	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
	Seed     seed.Options
}

// DefaultDemoSeed is used when SeedDemo is set without explicit counts.
var DefaultDemoSeed = seed.Options{Users: 10, Articles: 30, MaxLikesPerArticle: 5}

// InitRuntime connects to the database and Redis. Redis is optional: an
// unreachable server yields a nil client and the app runs without cache.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if opts.SeedDemo {
		if err := seedDemo(cfg, db, opts.Seed); err != nil {
			return nil, nil, fmt.Errorf("demo seeding failed: %w", err)
		}
	}

	return db, rdb, nil
}

// seedDemo runs only in development and only on a database without users.
func seedDemo(cfg *config.Config, db *gorm.DB, opts seed.Options) error {
	if cfg.Env != "development" {
		middleware.Logger.Warn("demo seeding skipped outside development", slog.String("env", cfg.Env))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	if opts.Users == 0 && opts.Articles == 0 {
		opts = DefaultDemoSeed
	}
	_, err := seed.NewSeeder(db, opts).Run(ctx)
	return err
}
