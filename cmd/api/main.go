// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

// Command api is the entry point for the Chorostat HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
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

	"github.com/chorostat/chorostat/internal/api"
	"github.com/chorostat/chorostat/internal/core/dataset"
	"github.com/chorostat/chorostat/internal/core/geocode"
	"github.com/chorostat/chorostat/internal/core/geomap"
	"github.com/chorostat/chorostat/internal/core/support"
	"github.com/chorostat/chorostat/internal/platform/config"
	"github.com/chorostat/chorostat/internal/platform/constants"
	"github.com/chorostat/chorostat/internal/platform/mail"
	"github.com/chorostat/chorostat/internal/platform/migration"
	"github.com/chorostat/chorostat/internal/platform/objectstore"
	pgstore "github.com/chorostat/chorostat/internal/platform/postgres"
	redisstore "github.com/chorostat/chorostat/internal/platform/redis"
	"github.com/chorostat/chorostat/internal/platform/sec"
	"github.com/chorostat/chorostat/internal/users/account"
	"github.com/chorostat/chorostat/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "chorostat"))
	slog.SetDefault(log)

	log.Info("[Chorostat] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "chorostat"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security & Infrastructure Services ─────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	mailer := mail.NewLogMailer(log, cfg.MailFromAddress)
	thumbnails := objectstore.NewMemoryStore(cfg.PublicBaseURL + "/static")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	verificationTokenRepository := auth.NewVerificationTokenRepository(rdb)
	authService := auth.NewService(
		userRepository,
		sessionRepository,
		resetTokenRepository,
		verificationTokenRepository,
		jwtSvc,
		mailer,
		cfg.PublicBaseURL,
		log,
	)
	authHandler := auth.NewHandler(authService)

	contentRepository := account.NewContentRepository(pool)
	accountSessionRepository := account.NewSessionRepository(pool)
	accountService := account.NewService(userRepository, contentRepository, accountSessionRepository, log)
	accountHandler := account.NewHandler(accountService)

	geoCodeRepository := geocode.NewPostgresRepository(pool)
	geoCodeService := geocode.NewService(geoCodeRepository, log)
	geoCodeHandler := geocode.NewHandler(geoCodeService)

	datasetRepository := dataset.NewRepository(pool)
	datasetService := dataset.NewService(datasetRepository, geoCodeRepository, log)
	datasetHandler := dataset.NewHandler(datasetService)

	mapRepository := geomap.NewRepository(pool)
	mapService := geomap.NewService(mapRepository, thumbnails, log)
	mapHandler := geomap.NewHandler(mapService)

	supportRepository := support.NewRepository(pool)
	supportService := support.NewService(supportRepository, log)
	supportHandler := support.NewHandler(supportService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Account:   accountHandler,
		GeoCode:   geoCodeHandler,
		Dataset:   datasetHandler,
		Map:       mapHandler,
		Support:   supportHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
