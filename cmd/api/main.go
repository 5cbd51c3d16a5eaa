// Package main is the entry point for the Tenki weather API server.
//
// It loads the configuration, connects the Postgres pool, wires the provider
// clients and recommendation engines into the weather service, mounts the
// HTTP routes on the core chassis, and serves with graceful shutdown on
// SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenki/internal/api/handlers"
	"tenki/internal/config"
	"tenki/internal/core"
	"tenki/internal/db"
	"tenki/internal/external"
	"tenki/internal/recommend"
	"tenki/internal/types"
	"tenki/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can exit cleanly on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("tenki API starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"default_locale", cfg.DefaultLocale,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	// Repositories share the pool; the hourly repository needs Begin for its
	// transactional replace.
	regionRepo := db.NewRegionRepository(pool)
	snapshotRepo := db.NewSnapshotRepository(pool)
	hourlyRepo := db.NewHourlyRepository(pool)

	// Provider clients, each with its own timeout budget.
	weatherClient := external.NewOpenWeatherClient(
		&http.Client{Timeout: cfg.OpenWeather.Timeout},
		external.OpenWeatherConfig{
			APIKey:  cfg.OpenWeather.APIKey,
			BaseURL: cfg.OpenWeather.BaseURL,
			Logger:  logger,
		})
	restaurantClient := external.NewHotpepperClient(
		&http.Client{Timeout: cfg.Hotpepper.Timeout},
		external.HotpepperConfig{
			APIKey:  cfg.Hotpepper.APIKey,
			BaseURL: cfg.Hotpepper.BaseURL,
			Logger:  logger,
		})
	placesClient := external.NewGooglePlacesClient(
		&http.Client{Timeout: cfg.Places.Timeout},
		external.PlacesConfig{
			APIKey:  cfg.Places.APIKey,
			BaseURL: cfg.Places.BaseURL,
			Logger:  logger,
		})

	restaurantEngine := recommend.NewRestaurantEngine(restaurantClient, logger)
	facilityEngine := recommend.NewFacilityEngine(placesClient, cfg.Places.RequestPause, logger)

	weatherService := weather.NewService(
		regionRepo,
		snapshotRepo,
		hourlyRepo,
		weatherClient,
		restaurantEngine,
		facilityEngine,
		logger,
	)

	srv, err := core.NewServer(cfg, logger,
		core.PingProbe{ProbeName: "database", Ping: pool.Ping})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	weatherHandler := handlers.NewWeatherHandler(
		weatherService,
		types.NormalizeLocale(cfg.DefaultLocale),
		logger,
	)
	srv.MountRoutes(func(r chi.Router) {
		weatherHandler.RegisterRoutes(r)
	})

	return serveHTTP(srv, cfg, logger)
}

// newPool builds the pgx connection pool from the database configuration and
// verifies connectivity before startup proceeds.
func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// serveHTTP runs the HTTP server until a shutdown signal or server error,
// then drains in-flight requests with a 10-second deadline.
func serveHTTP(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a JSON structured logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
