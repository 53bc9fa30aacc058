package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/actuallystonmai/restaurant-recommender/internal/cache"
	"github.com/actuallystonmai/restaurant-recommender/internal/config"
	"github.com/actuallystonmai/restaurant-recommender/internal/embedding"
	"github.com/actuallystonmai/restaurant-recommender/internal/handler"
	"github.com/actuallystonmai/restaurant-recommender/internal/logging"
	"github.com/actuallystonmai/restaurant-recommender/internal/metrics"
	"github.com/actuallystonmai/restaurant-recommender/internal/model"
	"github.com/actuallystonmai/restaurant-recommender/internal/repository"
	"github.com/actuallystonmai/restaurant-recommender/internal/router"
	"github.com/actuallystonmai/restaurant-recommender/internal/service"
	"github.com/actuallystonmai/restaurant-recommender/seeds"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.With("main")
	metrics.Init()

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse database config")
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("database not ready")
	}
	log.Info().Msg("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := migrateDown(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate down")
		}
		return
	}

	if err := migrateUp(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate up")
	}

	// ------------ Setup Seed Data ---------------
	if err := checkSeed(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to check seed")
	}

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse redis url")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	resultCache := cache.NewCache(rdb, cfg.CacheTTL)
	if err := resultCache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, results will not be cached until it recovers")
	}

	// ------------ Engine ---------------
	encoder := newEncoder(cfg.Embedding)
	opts := cfg.Engine
	opts.OnEncoderFailure = func(err *model.EncoderError) {
		metrics.EncoderFailures.WithLabelValues(err.Feature).Inc()
	}
	engine, err := model.NewEngine(encoder, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build engine")
	}
	log.Info().
		Str("model", encoder.ModelID()).
		Int("dimension", encoder.Dimension()).
		Str("text_mode", string(opts.TextMode)).
		Str("menu_strategy", string(opts.MenuStrategy)).
		Str("tags_strategy", string(opts.TagsStrategy)).
		Msg("recommendation engine ready")

	// ---------------- Server --------------------
	svc := service.NewService(
		repository.NewRepository(pool),
		resultCache,
		engine,
		service.WithTopKBounds(cfg.DefaultTopK, cfg.MaxTopK),
		service.WithModelID(encoder.ModelID()),
	)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(handler.NewHandler(svc), cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func newEncoder(cfg config.EmbeddingConfig) embedding.Encoder {
	var inner embedding.Encoder
	switch cfg.Backend {
	case "ollama":
		inner = embedding.NewOllamaEncoder(embedding.OllamaConfig{
			BaseURL:           cfg.OllamaURL,
			Model:             cfg.Model,
			Dimension:         cfg.Dimension,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	default:
		inner = embedding.NewHashingEncoder(cfg.Dimension)
	}
	return embedding.NewCachedEncoder(inner, cfg.CacheSize, cfg.CacheTTL, nil)
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	log := logging.With("main")
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Info().Int("attempt", i+1).Msg("waiting for database")
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	return runMigration(ctx, pool, "migrations/create_tables.down.sql")
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	return runMigration(ctx, pool, "migrations/create_tables.up.sql")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	logging.Info().Str("file", path).Msg("migration applied")
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM searches").Scan(&count); err != nil {
		return fmt.Errorf("check searches count: %w", err)
	}
	if count > 0 {
		logging.Info().Int("searches", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool)
}
