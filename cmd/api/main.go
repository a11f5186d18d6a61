// Copyright (c) 2026 PMR Atlas. All rights reserved.

// Command api is the entry point of the PMR Atlas content API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) when DATABASE_URL is set.
//  4. Connect to Redis when REDIS_URL is set.
//  5. Run database migrations (idempotent).
//  6. Wire the translator, document service and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/carolinavmo/pmr-atlas/internal/api"
	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/platform/config"
	"github.com/carolinavmo/pmr-atlas/internal/platform/constants"
	"github.com/carolinavmo/pmr-atlas/internal/platform/migration"
	pgstore "github.com/carolinavmo/pmr-atlas/internal/platform/postgres"
	redisstore "github.com/carolinavmo/pmr-atlas/internal/platform/redis"
	"github.com/carolinavmo/pmr-atlas/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("postgres", cfg.UsesPostgres()),
		slog.Bool("redis", cfg.UsesRedis()),
		slog.Bool("translator", cfg.TranslatorEnabled()),
	)

	// Misconfiguration should fail startup quickly rather than hang.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	healthDeps := api.HealthDependencies{Translator: cfg.TranslatorEnabled()}

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	var repository document.Repository = document.NewMemoryRepository()
	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		pool, err = pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("postgres_pool_closing")
			pool.Close()
		}()

		// ── 5. Migrations ─────────────────────────────────────────────────
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, cfg.Debug, log), "run migrations")

		repository = document.NewPostgresRepository(pool)
		healthDeps.CheckDatabase = func() error { return pgstore.Ping(context.Background(), pool) }
	} else {
		log.Warn("memory_store_selected", slog.String("reason", "DATABASE_URL not set"))
	}

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.UsesRedis() {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("redis_client_closing")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
		healthDeps.CheckCache = func() error { return redisstore.Ping(context.Background(), rdb) }
	}

	// ── 6. Identity ───────────────────────────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, cfg.JWTIssuer)
	must(log, err, "initialize token verifier")

	// ── 7. Translation ────────────────────────────────────────────────────
	translator := newTranslator(cfg, rdb, log)
	orchestrator := translation.NewOrchestrator(translator, document.NewTranslationSource(repository), cfg.TranslatorParallel, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	documentService := document.NewService(repository, orchestrator, log)
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	handlers := api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Documents:   document.NewHandler(documentService),
		Languages:   language.NewHandler(),
		Translation: translation.NewHandler(translator),
	}

	// Root context for background workers (rate limiter eviction).
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	server := api.NewServer(rootCtx, cfg, log, verifier, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newTranslator picks the machine translator. Without an API key every
// translation fails with SERVICE_UNAVAILABLE; reads and single-language
// saves keep working.
func newTranslator(cfg *config.Config, rdb *goredis.Client, log *slog.Logger) translation.Translator {
	if !cfg.TranslatorEnabled() {
		log.Warn("translator_disabled", slog.String("reason", "ANTHROPIC_API_KEY not set"))
		return translation.Unavailable{}
	}

	anthropic, err := translation.NewAnthropicTranslator(translation.AnthropicConfig{
		APIKey:            cfg.AnthropicAPIKey,
		Model:             cfg.TranslatorModel,
		MaxTokens:         cfg.TranslatorMaxTokens,
		RequestsPerSecond: cfg.TranslatorRPS,
	}, log)
	must(log, err, "initialize translator")

	if rdb == nil {
		return anthropic
	}
	return translation.NewCachedTranslator(anthropic, translation.NewRedisCache(rdb), cfg.TranslationCacheTTL, log)
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
