package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdirex/flashdirex/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "https://router.project-osrm.org", cfg.OSRMURL)
	assert.Equal(t, 8*time.Second, cfg.OSRMTimeout)
	assert.Equal(t, "https://overpass-api.de", cfg.OverpassURL)
	assert.Equal(t, 180*time.Second, cfg.OverpassTimeout)
	assert.Equal(t, "data/graphs/tiles", cfg.TilesDir)
	assert.Equal(t, 400, cfg.TileMinNodes)
	assert.False(t, cfg.TileForceRebuild)
	assert.False(t, cfg.OTelEnabled)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("OSRM_URL", "http://localhost:5000")
	t.Setenv("OSRM_TIMEOUT", "2s")
	t.Setenv("TILE_MIN_NODES", "50")
	t.Setenv("TILE_FORCE_REBUILD", "true")
	t.Setenv("WARM_ON_START", "true")
	t.Setenv("PUBSUB_PROJECT_ID", "proj")
	t.Setenv("PUBSUB_SUBSCRIPTION", "tile-warm-sub")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.OSRMURL)
	assert.Equal(t, 2*time.Second, cfg.OSRMTimeout)
	assert.Equal(t, 50, cfg.TileMinNodes)
	assert.True(t, cfg.TileForceRebuild)
	assert.True(t, cfg.WarmOnStart)
	assert.Equal(t, "proj", cfg.PubSubProjectID)
	assert.Equal(t, "tile-warm-sub", cfg.PubSubSubscription)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "APP_PORT", "not-a-port"},
		{"bad osrm url", "OSRM_URL", "::::"},
		{"bad timeout", "OSRM_TIMEOUT", "eight seconds"},
		{"bad min nodes", "TILE_MIN_NODES", "many"},
		{"zero min nodes", "TILE_MIN_NODES", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.FromEnv()
			assert.Error(t, err)
		})
	}
}
