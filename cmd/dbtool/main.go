package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"vrp-solver-service/internal/adapters/repositories"
	"vrp-solver-service/internal/config"
	"vrp-solver-service/internal/platform/db"
	"vrp-solver-service/internal/platform/obs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	obs.SetupLogger(cfg.LogLevel, "console")

	seedPath := flag.String("seed", cfg.SeedPath, "YAML fixtures file to load")
	skipSeed := flag.Bool("schema-only", false, "create the schema without loading fixtures")
	flag.Parse()

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer database.Close()

	if err := initAndSeed(ctx, database, *seedPath, *skipSeed); err != nil {
		log.Error().Err(err).Msg("dbtool failed")
		database.Close()
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, database *sql.DB, seedPath string, schemaOnly bool) error {
	log.Info().Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, database); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info().Msg("schema ready")

	if schemaOnly {
		return nil
	}

	log.Info().Str("path", seedPath).Msg("seeding database")
	if err := repositories.SeedFromYAML(ctx, database, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info().Msg("seeding complete")

	return nil
}
