// Package mealdb is the client for TheMealDB recipe catalog.
package mealdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recipe-finder/internal/config"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/recipe"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Category is one entry of the catalog's category list.
type Category struct {
	ID          string `json:"idCategory"`
	Name        string `json:"strCategory"`
	Thumbnail   string `json:"strCategoryThumb"`
	Description string `json:"strCategoryDescription"`
}

// Client is the recipe catalog API. List lookups return an empty slice,
// not an error, when nothing matches.
type Client interface {
	LookupByIngredient(ctx context.Context, ingredient string) ([]recipe.Recipe, error)
	SearchByName(ctx context.Context, name string) ([]recipe.Recipe, error)
	LookupByCategory(ctx context.Context, category string) ([]recipe.Recipe, error)
	LookupByArea(ctx context.Context, area string) ([]recipe.Recipe, error)
	FetchByID(ctx context.Context, id string) (recipe.Recipe, error)
	FetchRandom(ctx context.Context) (recipe.Recipe, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListAreas(ctx context.Context) ([]string, error)
}

type mealsResponse struct {
	Meals []recipe.Recipe `json:"meals"`
}

// httpClient is the concrete implementation of the catalog client.
type httpClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// Option configures the HTTP client.
type Option func(*httpClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) { h.httpClient = c }
}

// WithLimiter replaces the outbound rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(h *httpClient) { h.limiter = l }
}

// WithLogger sets the logger used for call tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(h *httpClient) { h.logger = l }
}

// NewClient creates a new catalog client.
func NewClient(cfg *config.Config, opts ...Option) Client {
	timeout := cfg.MealDBTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limit := rate.Inf
	if cfg.MealDBRateLimit > 0 {
		limit = rate.Limit(cfg.MealDBRateLimit)
	}
	burst := cfg.MealDBRateBurst
	if burst <= 0 {
		burst = 1
	}

	baseURL := cfg.MealDBURL
	if baseURL == "" {
		baseURL = config.DefaultMealDBURL
	}

	c := &httpClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(limit, burst),
		logger:     log.With().Str("component", "mealdb").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupByIngredient lists recipes using the given main ingredient.
func (c *httpClient) LookupByIngredient(ctx context.Context, ingredient string) ([]recipe.Recipe, error) {
	return c.list(ctx, "lookupByIngredient", "filter.php", url.Values{"i": {ingredient}})
}

// SearchByName searches recipes whose name contains name.
func (c *httpClient) SearchByName(ctx context.Context, name string) ([]recipe.Recipe, error) {
	return c.list(ctx, "searchByName", "search.php", url.Values{"s": {name}})
}

// LookupByCategory lists recipes in a catalog category.
func (c *httpClient) LookupByCategory(ctx context.Context, category string) ([]recipe.Recipe, error) {
	return c.list(ctx, "lookupByCategory", "filter.php", url.Values{"c": {category}})
}

// LookupByArea lists recipes of a cuisine.
func (c *httpClient) LookupByArea(ctx context.Context, area string) ([]recipe.Recipe, error) {
	return c.list(ctx, "lookupByArea", "filter.php", url.Values{"a": {area}})
}

// FetchByID fetches the detailed record for id.
func (c *httpClient) FetchByID(ctx context.Context, id string) (recipe.Recipe, error) {
	const op = "fetchByID"
	meals, err := c.list(ctx, op, "lookup.php", url.Values{"i": {id}})
	if err != nil {
		return recipe.Recipe{}, err
	}
	if len(meals) == 0 {
		return recipe.Recipe{}, &LookupError{Kind: KindNotFound, Op: op}
	}
	return meals[0], nil
}

// FetchRandom fetches one random detailed record.
func (c *httpClient) FetchRandom(ctx context.Context) (recipe.Recipe, error) {
	const op = "fetchRandom"
	meals, err := c.list(ctx, op, "random.php", nil)
	if err != nil {
		return recipe.Recipe{}, err
	}
	if len(meals) == 0 || meals[0].ID == "" {
		return recipe.Recipe{}, &LookupError{Kind: KindMalformed, Op: op}
	}
	return meals[0], nil
}

// ListCategories lists the catalog categories.
func (c *httpClient) ListCategories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := c.get(ctx, "listCategories", "categories.php", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// ListAreas lists the cuisines known to the catalog.
func (c *httpClient) ListAreas(ctx context.Context) ([]string, error) {
	var resp struct {
		Meals []struct {
			Area string `json:"strArea"`
		} `json:"meals"`
	}
	if err := c.get(ctx, "listAreas", "list.php", url.Values{"a": {"list"}}, &resp); err != nil {
		return nil, err
	}
	areas := make([]string, 0, len(resp.Meals))
	for _, m := range resp.Meals {
		if m.Area != "" {
			areas = append(areas, m.Area)
		}
	}
	return areas, nil
}

func (c *httpClient) list(ctx context.Context, op, endpoint string, query url.Values) ([]recipe.Recipe, error) {
	var resp mealsResponse
	if err := c.get(ctx, op, endpoint, query, &resp); err != nil {
		return nil, err
	}
	if resp.Meals == nil {
		return []recipe.Recipe{}, nil
	}
	return resp.Meals, nil
}

func (c *httpClient) get(ctx context.Context, op, endpoint string, query url.Values, out any) error {
	start := time.Now()
	err := c.do(ctx, op, endpoint, query, out)

	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	metrics.ObserveCatalogCall(endpoint, outcome, time.Since(start))
	c.logger.Debug().
		Str("op", op).
		Str("query", query.Encode()).
		Str("outcome", outcome).
		Dur("elapsed", time.Since(start)).
		Msg("catalog call")
	return err
}

func (c *httpClient) do(ctx context.Context, op, endpoint string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return &LookupError{Kind: KindCanceled, Op: op, Err: err}
		}
		return &LookupError{Kind: KindTimeout, Op: op, Err: err}
	}

	u := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &LookupError{Kind: KindUnknown, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(op, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &LookupError{Kind: KindMalformed, Op: op, Err: err}
	}
	return nil
}
