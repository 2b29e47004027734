package app

import (
	"context"
	"fmt"

	"recipe-finder/internal/cache"
	"recipe-finder/internal/config"
	"recipe-finder/internal/database"
	"recipe-finder/internal/mealdb"
	"recipe-finder/internal/source"

	"github.com/rs/zerolog"
)

// Open builds an App from cfg: the SQLite database, the lookup cache
// (Redis when configured, in-process otherwise) and the catalog client.
// The returned cleanup releases them.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, func(), error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var store cache.Store
	if cfg.RedisAddr != "" {
		rs, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "recipe-finder:",
		})
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis lookup cache")
		store = rs
	} else {
		store = cache.NewMemoryStore(cfg.CacheSize, cfg.CacheTTL)
	}

	client := mealdb.NewClient(cfg, mealdb.WithLogger(logger))
	catalog := mealdb.NewCachingClient(client, store, cfg.CacheTTL, logger)

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close cache")
		}
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}
	return NewApp(catalog, db.SQL, source.NewPreviewer(nil), logger), cleanup, nil
}
