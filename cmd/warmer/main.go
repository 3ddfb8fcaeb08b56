// Package main provides the entrypoint for the flashdirex tile warmer.
//
// With no Pub/Sub configuration it runs the warm plan once and exits,
// suitable for cron or a manual pre-deploy pass. When PUBSUB_PROJECT_ID and
// PUBSUB_SUBSCRIPTION are set it subscribes for warm job messages and runs
// the plan on each one.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashdirex/flashdirex/internal/config"
	"github.com/flashdirex/flashdirex/internal/osm"
	"github.com/flashdirex/flashdirex/internal/provider/resilience"
	"github.com/flashdirex/flashdirex/internal/tilestore"
	"github.com/flashdirex/flashdirex/internal/warm"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "flashdirex-warmer"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting flashdirex warmer")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

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
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tile store")
	}

	plan := warm.DefaultPlan()
	if cfg.WarmPlan != "" {
		plan, err = warm.LoadPlan(cfg.WarmPlan)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.WarmPlan).Msg("failed to load warm plan")
		}
	}

	job := warm.NewJob(warm.JobConfig{
		Plan:   plan,
		Graphs: tiles,
		Logger: log,
	})

	if cfg.PubSubProjectID != "" && cfg.PubSubSubscription != "" {
		runSubscriber(log, cfg, job)
		return
	}

	// One-shot mode
	result := job.Run(context.Background())
	log.Info().
		Int("corridors", result.Corridors).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("warm run complete")

	if result.Successful == 0 && result.Failed > 0 {
		os.Exit(1)
	}
}

// runSubscriber processes warm job messages until interrupted. It also
// serves a health endpoint so Cloud Run can probe the worker.
func runSubscriber(log zerolog.Logger, cfg *config.Config, job *warm.Job) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, err := warm.NewPubSubHandler(ctx, warm.PubSubConfig{
		ProjectID:        cfg.PubSubProjectID,
		SubscriptionName: cfg.PubSubSubscription,
		Job:              job,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if closeErr := handler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub handler")
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	go func() {
		if err := handler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("pubsub receive stopped")
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down warmer")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("warmer stopped")
}
