// Package main provides the entrypoint for the flashdirex API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashdirex/flashdirex/internal/api"
	"github.com/flashdirex/flashdirex/internal/api/middleware"
	"github.com/flashdirex/flashdirex/internal/config"
	"github.com/flashdirex/flashdirex/internal/osm"
	"github.com/flashdirex/flashdirex/internal/provider/resilience"
	"github.com/flashdirex/flashdirex/internal/routing"
	"github.com/flashdirex/flashdirex/internal/routing/osrm"
	"github.com/flashdirex/flashdirex/internal/telemetry"
	"github.com/flashdirex/flashdirex/internal/tilestore"
	"github.com/flashdirex/flashdirex/internal/warm"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "flashdirex-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting flashdirex API")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	tileMetrics, err := tilestore.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize tile metrics")
		os.Exit(1)
	}

	// Provider health registry, shared by both upstream clients
	registry := resilience.NewRegistry()

	overpassClient := osm.NewClient(osm.ClientConfig{
		BaseURL:  cfg.OverpassURL,
		Timeout:  cfg.OverpassTimeout,
		Registry: registry,
		Logger:   log,
	})

	tiles, err := tilestore.New(tilestore.Config{
		Dir:          cfg.TilesDir,
		MinNodes:     cfg.TileMinNodes,
		ForceRebuild: cfg.TileForceRebuild,
		Fetcher:      overpassClient,
		Logger:       log,
		Metrics:      tileMetrics,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tile store")
	}
	log.Info().Str("dir", cfg.TilesDir).Msg("tile store initialized")

	osrmClient := osrm.NewClient(osrm.ClientConfig{
		BaseURL:  cfg.OSRMURL,
		Timeout:  cfg.OSRMTimeout,
		Registry: registry,
		Logger:   log,
	})

	routeService := routing.NewService(routing.ServiceConfig{
		Remote: osrmClient,
		Graphs: tiles,
		Logger: log,
	})
	log.Info().Str("osrm_url", cfg.OSRMURL).Msg("routing service initialized")

	// Optional warm pass before serving, so first requests hit warm tiles
	if cfg.WarmOnStart {
		plan, planErr := loadWarmPlan(cfg.WarmPlan)
		if planErr != nil {
			log.Fatal().Err(planErr).Str("path", cfg.WarmPlan).Msg("failed to load warm plan")
		}

		job := warm.NewJob(warm.JobConfig{
			Plan:   plan,
			Graphs: tiles,
			Logger: log,
		})
		result := job.Run(ctx)
		log.Info().
			Int("corridors", result.Corridors).
			Int("successful", result.Successful).
			Int("failed", result.Failed).
			Dur("duration", result.Duration).
			Msg("startup warm pass complete")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		ServiceName:  serviceName,
		Logger:       log,
		Metrics:      metrics,
		RouteService: routeService,
		OSRMBaseURL:  cfg.OSRMURL,
		TileStats:    tiles,
		Registry:     registry,
	})

	// Create HTTP server. Cold-tile route requests block on an Overpass
	// fetch plus graph build, so the write timeout is generous.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OverpassTimeout + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func loadWarmPlan(path string) (*warm.Plan, error) {
	if path == "" {
		return warm.DefaultPlan(), nil
	}
	return warm.LoadPlan(path)
}
