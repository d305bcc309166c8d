// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the EduStream HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Open the object storage bucket.
//  7. Wire domain services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/api"
	"github.com/taibuivan/edustream/internal/catalog/course"
	"github.com/taibuivan/edustream/internal/catalog/video"
	"github.com/taibuivan/edustream/internal/learning"
	"github.com/taibuivan/edustream/internal/platform/config"
	"github.com/taibuivan/edustream/internal/platform/constants"
	"github.com/taibuivan/edustream/internal/platform/middleware"
	"github.com/taibuivan/edustream/internal/platform/migration"
	pgstore "github.com/taibuivan/edustream/internal/platform/postgres"
	redisstore "github.com/taibuivan/edustream/internal/platform/redis"
	"github.com/taibuivan/edustream/internal/platform/sec"
	"github.com/taibuivan/edustream/internal/platform/storage"
	"github.com/taibuivan/edustream/internal/users/account"
	"github.com/taibuivan/edustream/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", "edustream"))
	slog.SetDefault(log)

	log.Info("[EduStream] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "edustream"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Startup deadline so misconfiguration fails fast instead of hanging.
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
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log, cfg.Debug), "run migrations")

	// ── 6. Object Storage ─────────────────────────────────────────────────
	objects, err := storage.NewGCS(startupCtx, storage.Config{
		Bucket:          cfg.GCSBucket,
		CredentialsFile: cfg.GCSCredentialsFile,
		CDNBaseURL:      cfg.CDNBaseURL,
		CDNKeyName:      cfg.CDNKeyName,
		CDNSigningKey:   cfg.CDNSigningKey,
	}, log)
	must(log, err, "open object storage")
	defer func() {
		if cerr := objects.Close(); cerr != nil {
			log.Error("storage close error", slog.Any("error", cerr))
		}
	}()

	// ── 7. Tokens ─────────────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	must(log, err, "initialize token service")

	// ── 8. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
		CheckStorage: objects.Ping,
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	courseRepository := course.NewRepository(pool)
	courseCache := course.NewCourseCache(rdb, cfg.CourseCacheTTL)

	learningService := learning.NewService(learning.NewRepository(pool), courseCache)
	policy := access.NewPolicy(learningService)

	courseService := course.NewService(courseRepository, courseCache, objects, policy, log)
	videoService := video.NewService(video.NewRepository(pool), courseRepository, objects, learningService, video.Options{
		PlaybackTTL: cfg.PlaybackURLTTL,
		UploadTTL:   cfg.UploadURLTTL,
	}, log)

	authService := auth.NewService(auth.NewUserRepository(pool), tokens, auth.Options{
		ResetTTL:         cfg.PasswordResetTTL,
		ExposeResetToken: cfg.ExposeResetToken,
	})
	accountService := account.NewService(account.NewAccountRepository(pool), learningService, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()
	go limiter.Cleanup(rootCtx)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
		Course:    course.NewHandler(courseService),
		Video:     video.NewHandler(videoService),
	}

	server := api.NewServer(cfg, log, api.Security{
		Verifier: tokens,
		Loader:   authService,
		Limiter:  limiter,
	}, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
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
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
