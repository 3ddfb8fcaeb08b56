package routing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/roadgraph"
)

// bufferMultipliers are the corridor escalation steps: a failed local
// attempt retries with a progressively wider corridor before giving up.
var bufferMultipliers = [...]float64{1.0, 1.6, 2.3}

// maxBufferKm caps every corridor buffer, multiplied or not.
const maxBufferKm = 60.0

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Remote is the hosted routing service (optional; local-only when nil).
	Remote Remote

	// Graphs supplies corridor road graphs (required).
	Graphs GraphSource

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service computes routes, trying the remote service before falling back
// to locally built corridor graphs at escalating sizes.
type Service struct {
	remote Remote
	graphs GraphSource
	logger zerolog.Logger
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		remote: cfg.Remote,
		graphs: cfg.Graphs,
		logger: cfg.Logger,
	}
}

// Route computes a drive route per the request's engine. It never returns
// an error: failures surface as soft-failure codes on the result, and a
// panic anywhere below is recovered into a server_error result.
func (s *Service) Route(ctx context.Context, req Request) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Float64("start_lat", req.Start.Lat).
				Float64("start_lng", req.Start.Lng).
				Msg("routing panicked")
			result = serverErrorResult(fmt.Sprintf("%v", r))
		}
	}()

	engine := req.Engine
	if engine == "" {
		engine = EngineAuto
	}

	if engine == EngineAuto || engine == EngineOSRM {
		if res := s.routeRemote(ctx, req); res != nil {
			return res
		}
		if engine == EngineOSRM {
			// Remote-only requests do not fall back to local graphs.
			return noPathResult()
		}
	}

	return s.routeLocalTiers(ctx, req)
}

// routeRemote asks the remote service; nil means "no remote route" and the
// caller decides whether local tiers follow.
func (s *Service) routeRemote(ctx context.Context, req Request) *Result {
	if s.remote == nil {
		return nil
	}

	route, err := s.remote.Route(ctx, req.Start, req.End)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", s.remote.Name()).Msg("remote routing failed")
		return nil
	}

	polyline := route.Geometry
	if polyline == nil {
		polyline = []geo.Coordinate{}
	}
	return &Result{
		Polyline: polyline,
		Meters:   float64Ptr(route.Meters),
		Seconds:  float64Ptr(route.Seconds),
		Source:   s.remote.Name(),
	}
}

// routeLocalTiers runs the local corridor attempts at escalating buffer
// sizes; the first success wins.
func (s *Service) routeLocalTiers(ctx context.Context, req Request) *Result {
	base := req.BufferKm
	if base <= 0 {
		base = geo.BufferKm(req.Start, req.End)
	}

	for _, m := range bufferMultipliers {
		bufferKm := base * m
		if bufferKm > maxBufferKm {
			bufferKm = maxBufferKm
		}

		res, err := s.routeLocal(ctx, req.Start, req.End, bufferKm)
		if err != nil {
			s.logger.Warn().Err(err).
				Float64("buffer_km", bufferKm).
				Msg("local corridor attempt failed; escalating")
			continue
		}
		if res != nil {
			return res
		}

		s.logger.Debug().
			Float64("buffer_km", bufferKm).
			Msg("no path in corridor; escalating")
	}

	return noPathResult()
}

// routeLocal attempts one corridor: snap both endpoints, gate on
// undirected connectivity, then search by the best available weight.
func (s *Service) routeLocal(ctx context.Context, start, end geo.Coordinate, bufferKm float64) (*Result, error) {
	g, err := s.buildCorridor(ctx, start, end, bufferKm)
	if err != nil {
		return nil, err
	}

	from, fromDist, ok := g.Nearest(start)
	if !ok {
		return nil, nil
	}
	to, toDist, ok := g.Nearest(end)
	if !ok {
		return nil, nil
	}

	s.logger.Debug().
		Int64("from", from).
		Int64("to", to).
		Float64("snap_start_m", fromDist).
		Float64("snap_end_m", toDist).
		Msg("endpoints snapped to graph")

	// Cheap pre-check: if the endpoints are not even connected ignoring
	// direction, no weighted search can succeed either.
	if !roadgraph.Reachable(g, from, to) {
		return nil, nil
	}

	if g.HasTravelTimes() {
		if path, ok := roadgraph.ShortestPath(g, from, to, roadgraph.WeightTravelTime); ok {
			coords, meters := roadgraph.PathPolyline(g, path, true)
			seconds := roadgraph.PathTravelSeconds(g, path)
			return localResult(coords, meters, seconds), nil
		}
	}

	if path, ok := roadgraph.ShortestPath(g, from, to, roadgraph.WeightLength); ok {
		coords, meters := roadgraph.PathPolyline(g, path, true)
		return localResult(coords, meters, meters/roadgraph.DefaultSpeedMS), nil
	}

	// Last resort: ignore direction and edge weights entirely.
	if path, ok := roadgraph.ShortestPath(g, from, to, roadgraph.WeightHops); ok {
		coords, meters := roadgraph.PathPolyline(g, path, false)
		return localResult(coords, meters, meters/roadgraph.DefaultSpeedMS), nil
	}

	return nil, nil
}

func localResult(coords []geo.Coordinate, meters, seconds float64) *Result {
	if coords == nil {
		coords = []geo.Coordinate{}
	}
	return &Result{
		Polyline: coords,
		Meters:   float64Ptr(meters),
		Seconds:  float64Ptr(seconds),
		Source:   "local",
	}
}
