package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"vrp-solver-service/internal/adapters/cache"
	"vrp-solver-service/internal/adapters/distance"
	"vrp-solver-service/internal/adapters/repositories"
	"vrp-solver-service/internal/adapters/solver"
	"vrp-solver-service/internal/api"
	"vrp-solver-service/internal/config"
	"vrp-solver-service/internal/platform/db"
	"vrp-solver-service/internal/platform/metrics"
	"vrp-solver-service/internal/platform/obs"
	"vrp-solver-service/internal/ports"
	"vrp-solver-service/internal/services"
	"vrp-solver-service/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires Postgres, the distance matrix client and the solver behind ports,
// then runs the HTTP server and the solve worker until SIGINT or SIGTERM.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	obs.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := repositories.InitSchema(ctx, database); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress, Password: cfg.RedisPassword})
	defer rdb.Close()

	matrix, err := distance.NewGoogleMatrixClient(distance.GoogleConfig{
		APIKey:      cfg.GoogleAPIKey,
		BaseURL:     cfg.DistanceMatrixURL,
		Units:       cfg.DistanceMatrixUnits,
		MaxElements: cfg.DistanceMatrixMaxElements,
		Timeout:     cfg.DistanceMatrixTimeout,
		QPS:         cfg.DistanceMatrixQPS,
	}, distanceCache(cfg, database, rdb))
	if err != nil {
		return err
	}

	batches := repositories.NewPostgresBatchRepository(database)
	vehicles := repositories.NewPostgresVehicleRepository(database)
	solutions := repositories.NewPostgresSolutionRepository(database)

	batchSolver, err := services.NewBatchSolver(services.BatchSolverDeps{
		Batches:   batches,
		Vehicles:  vehicles,
		Solutions: solutions,
		Matrix:    matrix,
		Solver:    solver.NewCheapestArc(),
		Depot:     cfg.Depot,
	})
	if err != nil {
		return err
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddress, Password: cfg.RedisPassword}
	distributor := worker.NewRedisTaskDistributor(redisOpt)
	defer distributor.Close()
	processor := worker.NewRedisTaskProcessor(redisOpt, cfg.WorkerConcurrency, batchSolver)

	metrics.RegisterDefault()
	router := api.NewRouter(api.RouterDeps{
		Batches:      batches,
		Vehicles:     vehicles,
		Solutions:    solutions,
		Distributor:  distributor,
		MaxTimeLimit: cfg.MaxTimeLimit,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("solve worker starting")
		if err := processor.Start(); err != nil {
			return fmt.Errorf("task processor: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		processor.Shutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// distanceCache returns the configured cache backend, or nil when caching is disabled.
func distanceCache(cfg config.Config, database *sql.DB, rdb *redis.Client) ports.DistanceCache {
	switch cfg.DistanceCache {
	case config.CacheRedis:
		return cache.NewRedisDistanceCache(rdb, cfg.DistanceCacheTTL)
	case config.CachePostgres:
		return cache.NewSQLDistanceCache(database)
	default:
		return nil
	}
}
