package mealdb

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"recipe-finder/internal/cache"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/recipe"

	"github.com/rs/zerolog"
)

// CachingClient decorates a Client with a lookup cache. Failed calls and
// random draws are never cached.
type CachingClient struct {
	next   Client
	store  cache.Store
	ttl    time.Duration
	logger zerolog.Logger
}

var _ Client = (*CachingClient)(nil)

// NewCachingClient wraps next with store.
func NewCachingClient(next Client, store cache.Store, ttl time.Duration, logger zerolog.Logger) *CachingClient {
	return &CachingClient{next: next, store: store, ttl: ttl, logger: logger}
}

func cacheKey(op, arg string) string {
	return "mealdb:" + op + ":" + strings.ToLower(strings.TrimSpace(arg))
}

func cached[T any](ctx context.Context, c *CachingClient, key string, fetch func() (T, error)) (T, error) {
	if raw, err := c.store.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.CacheHit()
			return v, nil
		}
		c.logger.Warn().Str("key", key).Msg("dropping undecodable cache entry")
		_ = c.store.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrMiss) {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	metrics.CacheMiss()

	v, err := fetch()
	if err != nil {
		return v, err
	}

	if raw, err := json.Marshal(v); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return v, nil
}

func (c *CachingClient) LookupByIngredient(ctx context.Context, ingredient string) ([]recipe.Recipe, error) {
	return cached(ctx, c, cacheKey("ingredient", ingredient), func() ([]recipe.Recipe, error) {
		return c.next.LookupByIngredient(ctx, ingredient)
	})
}

func (c *CachingClient) SearchByName(ctx context.Context, name string) ([]recipe.Recipe, error) {
	return cached(ctx, c, cacheKey("name", name), func() ([]recipe.Recipe, error) {
		return c.next.SearchByName(ctx, name)
	})
}

func (c *CachingClient) LookupByCategory(ctx context.Context, category string) ([]recipe.Recipe, error) {
	return cached(ctx, c, cacheKey("category", category), func() ([]recipe.Recipe, error) {
		return c.next.LookupByCategory(ctx, category)
	})
}

func (c *CachingClient) LookupByArea(ctx context.Context, area string) ([]recipe.Recipe, error) {
	return cached(ctx, c, cacheKey("area", area), func() ([]recipe.Recipe, error) {
		return c.next.LookupByArea(ctx, area)
	})
}

func (c *CachingClient) FetchByID(ctx context.Context, id string) (recipe.Recipe, error) {
	return cached(ctx, c, cacheKey("id", id), func() (recipe.Recipe, error) {
		return c.next.FetchByID(ctx, id)
	})
}

func (c *CachingClient) FetchRandom(ctx context.Context) (recipe.Recipe, error) {
	return c.next.FetchRandom(ctx)
}

func (c *CachingClient) ListCategories(ctx context.Context) ([]Category, error) {
	return cached(ctx, c, cacheKey("categories", ""), func() ([]Category, error) {
		return c.next.ListCategories(ctx)
	})
}

func (c *CachingClient) ListAreas(ctx context.Context) ([]string, error) {
	return cached(ctx, c, cacheKey("areas", ""), func() ([]string, error) {
		return c.next.ListAreas(ctx)
	})
}
