package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-finder/internal/app"
	"recipe-finder/internal/config"
	"recipe-finder/internal/logging"
	"recipe-finder/internal/telegram"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// metricsRetentionDays bounds the search metrics kept in the database.
const metricsRetentionDays = 30

func main() {
	// .env is optional.
	_ = godotenv.Load()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatal().Err(err).Msg("invalid bot config")
	}

	logger := logging.Init("recipe-finder-bot", cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize database, cache and catalog
	finder, cleanup, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize app")
	}
	defer cleanup()

	if n, err := finder.Metrics().Cleanup(ctx, metricsRetentionDays); err != nil {
		logger.Warn().Err(err).Msg("metrics cleanup failed")
	} else if n > 0 {
		logger.Info().Int64("removed", n).Msg("old search metrics removed")
	}

	// 3. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, finder, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}

	// 4. Start Server with Graceful Shutdown
	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("telegram bot server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	logger.Info().Msg("server exiting")
}
