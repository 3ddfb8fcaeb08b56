package handler

import (
	"net/http"
	"time"

	"github.com/flashdirex/flashdirex/internal/api/models"
	"github.com/flashdirex/flashdirex/internal/api/response"
	"github.com/flashdirex/flashdirex/internal/provider/resilience"
	"github.com/flashdirex/flashdirex/internal/tilestore"
)

// TileStats reports tile cache occupancy. Implemented by tilestore.Store.
type TileStats interface {
	Stats() tilestore.Stats
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version  string
	osrmURL  string
	tiles    TileStats
	registry *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, osrmURL string, tiles TileStats, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:  version,
		osrmURL:  osrmURL,
		tiles:    tiles,
		registry: registry,
	}
}

// Health handles GET /health - liveness plus dependency summaries.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:  models.HealthStatusOK,
		Time:    models.Timestamp(time.Now()),
		OSRM:    h.osrmURL,
		Version: h.version,
	}

	if h.tiles != nil {
		stats := h.tiles.Stats()
		health.TileCache = &stats
	}

	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			status := models.HealthStatusOK
			switch {
			case ph.IsUnhealthy():
				status = models.HealthStatusFail
				health.Status = models.HealthStatusDegraded
			case ph.IsDegraded():
				status = models.HealthStatusDegraded
			}

			ps := models.ProviderStatus{
				Provider:     ph.Name,
				Status:       status,
				CircuitState: ph.CircuitState.String(),
			}
			if ph.LastSuccessAt != nil {
				ts := models.Timestamp(*ph.LastSuccessAt)
				ps.LastSuccessAt = &ts
			}
			if ph.LastFailureAt != nil {
				ts := models.Timestamp(*ph.LastFailureAt)
				ps.LastFailureAt = &ts
			}
			if ph.LastError != "" {
				msg := ph.LastError
				ps.Message = &msg
			}
			health.Providers = append(health.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// Index handles GET / - service metadata and example usage.
func (h *OpsHandler) Index(w http.ResponseWriter, r *http.Request) {
	info := models.ServiceInfo{
		Service:   "flashdirex API",
		Version:   h.version,
		Endpoints: []string{"/health", "/route"},
		Example:   "/route?start_lat=32.781&start_lng=-96.798&end_lat=32.790&end_lng=-96.810",
	}
	response.JSON(w, r, http.StatusOK, info)
}
