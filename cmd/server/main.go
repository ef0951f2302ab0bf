// Package main is the entry point for the tradebook API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"tradebook/internal/domain/auth"
	v1 "tradebook/internal/infrastructure/http/v1"
	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/internal/infrastructure/storage/postgres/auth_repo"
	"tradebook/pkg/logger"
	"tradebook/pkg/numerator"
)

var version = "dev"

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting tradebook server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// --- Migrations ---
	if getEnv("MIGRATE_ON_START", "true") == "true" {
		log.Info("running database migrations")
		migrate := exec.Command("goose", "-dir", "db/migrations", "postgres", dsn, "up")
		migrate.Stdout = os.Stdout
		migrate.Stderr = os.Stderr
		if err := migrate.Run(); err != nil {
			log.Fatalw("migrations failed", "error", err)
		}
	}

	txManager := postgres.NewTxManager(pool)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- JWT ---
	jwtSecret := getEnv("JWT_SECRET", "change-me-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Auth ---
	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Numerator ---
	numeratorService := numerator.New(postgres.NewNumeratorQuerier(txManager))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		TxManager:          txManager,
		Logger:             log,
		JWTValidator:       jwtService,
		AuthService:        authService,
		Numerator:          numeratorService,
		Audit:              auditService,
		IdempotencyEnabled: getEnv("IDEMPOTENCY_ENABLED", "true") == "true",
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		Version:            version,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port, "version", version)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
