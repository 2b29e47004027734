// Package main implements the recipe-finder command line client.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"recipe-finder/internal/app"
	"recipe-finder/internal/config"
	"recipe-finder/internal/logging"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// localOwner is the session owner of the command line user.
const localOwner = "local"

var (
	version = "dev"

	outputJSON bool

	cfg     *config.Config
	finder  *app.App
	cleanup func()
	logger  zerolog.Logger
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run executes the command line and releases the app afterwards, whether
// the command failed or not.
func run(args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:   "recipe-finder",
	Short: "Find recipes from TheMealDB",
	Long: `recipe-finder searches TheMealDB by ingredient, dish name or loose
description, and keeps favorites, search history and a shopping list.

Examples:
  recipe-finder search chicken rice
  recipe-finder show 52772 --scale 2
  recipe-finder favorites add 52772
  recipe-finder shopping --export`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output results as JSON")
}

func setup(cmd *cobra.Command, _ []string) error {
	// .env is optional.
	_ = godotenv.Load()

	var err error
	cfg, err = config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	env := cfg.Env
	if env == "production" {
		// The CLI talks to a terminal unless asked otherwise.
		env = "development"
	}
	logger = logging.Init("recipe-finder", env, cfg.LogLevel)

	finder, cleanup, err = app.Open(cmd.Context(), cfg, logger)
	return err
}

func session(ctx context.Context) *app.Session {
	return finder.Session(ctx, localOwner)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
