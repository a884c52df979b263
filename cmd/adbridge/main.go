package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/radiusdt/adbridge/internal/config"
	"github.com/radiusdt/adbridge/internal/database"
	"github.com/radiusdt/adbridge/internal/httpserver"
	"github.com/radiusdt/adbridge/internal/metrics"
	"github.com/radiusdt/adbridge/internal/middleware"
	"github.com/radiusdt/adbridge/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	defer logger.Sync()

	logger.Info("starting adbridge",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
	)

	ctx := context.Background()

	// Try to connect to PostgreSQL
	db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Warn("PostgreSQL not available, using in-memory storage", zap.Error(err))
		db = nil
	} else {
		defer db.Close()
		if err := storage.Migrate(ctx, db.Pool); err != nil {
			logger.Fatal("schema migration failed", zap.Error(err))
		}
	}

	// Try to connect to Redis
	redis, err := database.NewRedisDB(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis not available, using local throttle", zap.Error(err))
		redis = nil
	} else {
		defer redis.Close()
	}

	// Try to connect to ClickHouse
	var clickhouse *database.ClickHouseDB
	if cfg.ClickHouse.Enabled {
		clickhouse, err = database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			logger.Warn("ClickHouse not available, using in-memory audit store", zap.Error(err))
			clickhouse = nil
		} else {
			defer clickhouse.Close()
		}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics("adbridge")
	}

	deps := &httpserver.Dependencies{
		DB:         db,
		Redis:      redis,
		ClickHouse: clickhouse,
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
	}

	handler := httpserver.NewServer(deps)

	// Middleware chain: recovery outermost, then logging, rate limit, auth.
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimit, logger)
	rateLimit.SetMetrics(m)
	handler = middleware.NewAuthMiddleware(cfg.Auth, logger).Handler(handler)
	handler = rateLimit.Handler(handler)
	handler = middleware.NewLoggingMiddleware(logger).Handler(handler)
	handler = middleware.NewRecoveryMiddleware(logger).Handler(handler)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func setupLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config

	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch cfg.Log.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}

	return logger
}
