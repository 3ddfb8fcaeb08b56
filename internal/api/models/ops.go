package models

import "github.com/flashdirex/flashdirex/internal/tilestore"

// Health represents the health status of the service.
type Health struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	OSRM      string           `json:"osrm"`
	TileCache *tilestore.Stats `json:"tile_cache,omitempty"`
	Providers []ProviderStatus `json:"providers,omitempty"`
	Version   string           `json:"version,omitempty"`
}

// ProviderStatus represents the status of an external provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}

// ServiceInfo is the root endpoint payload.
type ServiceInfo struct {
	Service   string   `json:"service"`
	Version   string   `json:"version,omitempty"`
	Endpoints []string `json:"endpoints"`
	Example   string   `json:"example"`
}
