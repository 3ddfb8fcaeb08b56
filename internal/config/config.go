// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all service configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string `validate:"required,numeric"`

	// Env is the deployment environment (development, production, ...).
	Env string `validate:"required"`

	// OSRMURL is the remote routing service base URL.
	OSRMURL string `validate:"required,url"`

	// OSRMTimeout bounds each remote routing request.
	OSRMTimeout time.Duration `validate:"gt=0"`

	// OverpassURL is the Overpass API base URL.
	OverpassURL string `validate:"required,url"`

	// OverpassTimeout bounds each Overpass extract.
	OverpassTimeout time.Duration `validate:"gt=0"`

	// TilesDir is where built tiles persist.
	TilesDir string `validate:"required"`

	// TileMinNodes triggers the undersized-fetch repair.
	TileMinNodes int `validate:"gt=0"`

	// TileForceRebuild bypasses the tile caches.
	TileForceRebuild bool

	// OTelEnabled turns on trace/metric export.
	OTelEnabled bool

	// OTLPEndpoint is the OTLP gRPC collector endpoint.
	OTLPEndpoint string

	// WarmPlan is an optional YAML warm plan path.
	WarmPlan string

	// WarmOnStart runs a warm pass before serving.
	WarmOnStart bool

	// PubSubProjectID and PubSubSubscription configure the warm trigger.
	PubSubProjectID    string
	PubSubSubscription string
}

// FromEnv builds a Config from environment variables, applying defaults,
// then validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               envOr("APP_PORT", "8080"),
		Env:                envOr("APP_ENV", "development"),
		OSRMURL:            envOr("OSRM_URL", "https://router.project-osrm.org"),
		OSRMTimeout:        8 * time.Second,
		OverpassURL:        envOr("OVERPASS_URL", "https://overpass-api.de"),
		OverpassTimeout:    180 * time.Second,
		TilesDir:           envOr("TILES_DIR", "data/graphs/tiles"),
		TileMinNodes:       400,
		TileForceRebuild:   envBool("TILE_FORCE_REBUILD"),
		OTelEnabled:        envBool("OTEL_ENABLED"),
		OTLPEndpoint:       envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		WarmPlan:           os.Getenv("WARM_PLAN"),
		WarmOnStart:        envBool("WARM_ON_START"),
		PubSubProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription: os.Getenv("PUBSUB_SUBSCRIPTION"),
	}

	var err error
	if cfg.OSRMTimeout, err = envDuration("OSRM_TIMEOUT", cfg.OSRMTimeout); err != nil {
		return nil, err
	}
	if cfg.OverpassTimeout, err = envDuration("OVERPASS_TIMEOUT", cfg.OverpassTimeout); err != nil {
		return nil, err
	}
	if cfg.TileMinNodes, err = envInt("TILE_MIN_NODES", cfg.TileMinNodes); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	return os.Getenv(key) == "true"
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return v, nil
}
