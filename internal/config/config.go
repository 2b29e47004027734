package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultMealDBURL is the public TheMealDB v1 endpoint with the shared test key.
const DefaultMealDBURL = "https://www.themealdb.com/api/json/v1/1"

// Config holds the configuration for the application.
type Config struct {
	MealDBURL       string
	MealDBTimeout   time.Duration
	MealDBRateLimit float64
	MealDBRateBurst int

	// Lookup cache. Redis is used when RedisAddr is set, an in-process cache otherwise.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	// CacheSize bounds the in-process cache.
	CacheSize     int

	DatabasePath string
	Env          string
	LogLevel     string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	Port                   string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	timeout, err := durationEnv("MEALDB_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	rateLimit, err := floatEnv("MEALDB_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	rateBurst, err := intEnv("MEALDB_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := durationEnv("CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	cacheSize, err := intEnv("CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	allowed, err := parseUserIDs(os.Getenv("TELEGRAM_ALLOW_USER_IDS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		MealDBURL:              strings.TrimRight(stringEnv("MEALDB_BASE_URL", DefaultMealDBURL), "/"),
		MealDBTimeout:          timeout,
		MealDBRateLimit:        rateLimit,
		MealDBRateBurst:        rateBurst,
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                redisDB,
		CacheTTL:               cacheTTL,
		CacheSize:              cacheSize,
		DatabasePath:           stringEnv("DATABASE_PATH", "data/recipe-finder.db"),
		Env:                    stringEnv("APP_ENV", "production"),
		LogLevel:               stringEnv("LOG_LEVEL", "info"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		Port:                   stringEnv("PORT", "8080"),
	}, nil
}

// ValidateBot checks the settings only the Telegram bot needs.
func (c *Config) ValidateBot() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// IsAllowed reports whether a Telegram user may talk to the bot.
// An empty allow list admits everyone.
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func parseUserIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOW_USER_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
