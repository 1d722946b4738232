package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"askdocs/internal/adapter/repository"
	"askdocs/internal/di"
	"askdocs/internal/infra"
	"askdocs/internal/infra/config"
	"askdocs/internal/infra/logger"
)

func main() {
	// .env is optional; container environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New()
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbPool, err := infra.NewPostgresDB(ctx, cfg.DB.DSN()+"?sslmode=disable")
	if err != nil {
		log.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := repository.EnsureSchema(ctx, dbPool, cfg.EmbeddingDim); err != nil {
		log.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	redisClient, err := infra.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	components, err := di.NewApplicationComponents(cfg, dbPool, redisClient, log)
	if err != nil {
		log.Error("failed to wire application", "error", err)
		os.Exit(1)
	}

	components.Worker.Start()
	defer func() {
		log.Info("stopping worker")
		components.Worker.Stop()
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	components.Handler.Register(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if err := dbPool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db down", "error": err.Error()})
		}
		if err := redisClient.Ping(c.Request().Context()).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "redis down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Fatal(err)
	}
}
