// Package api provides the HTTP API for flashdirex.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/flashdirex/flashdirex/internal/api/handler"
	"github.com/flashdirex/flashdirex/internal/api/middleware"
	"github.com/flashdirex/flashdirex/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	ServiceName string
	Logger      zerolog.Logger
	Metrics     *middleware.Metrics

	// RouteService computes routes (required).
	RouteService handler.RouteComputer

	// OSRMBaseURL is reported by the health endpoint.
	OSRMBaseURL string

	// TileStats reports tile cache occupancy (optional).
	TileStats handler.TileStats

	// Registry exposes provider circuit state (optional).
	Registry *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "flashdirex-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.OSRMBaseURL, cfg.TileStats, cfg.Registry)
	routeHandler := handler.NewRouteHandler(cfg.RouteService)

	r.Get("/", opsHandler.Index)
	r.Get("/health", opsHandler.Health)
	r.Get("/route", routeHandler.GetRoute)

	return r
}
