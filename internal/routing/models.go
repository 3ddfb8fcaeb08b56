// Package routing computes driving routes: remote service first, locally
// built corridor graphs as fallback.
package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/roadgraph"
)

// Remote is a hosted routing service (OSRM-compatible).
type Remote interface {
	// Route computes a drive route between two points.
	Route(ctx context.Context, start, end geo.Coordinate) (*RemoteRoute, error)
	// Name returns the provider identifier for logging and health checks.
	Name() string
}

// RemoteRoute is a route as returned by a remote service, taken verbatim.
type RemoteRoute struct {
	Geometry []geo.Coordinate
	Meters   float64
	Seconds  float64
}

// GraphSource supplies corridor road graphs. Implemented by
// tilestore.Store.
type GraphSource interface {
	LoadOrBuild(ctx context.Context, b geo.BoundingBox) (*roadgraph.Graph, error)
}

// Engine selects which route sources a request may use.
type Engine string

const (
	// EngineAuto tries the remote service first, then local graphs.
	EngineAuto Engine = "auto"
	// EngineOSRM uses only the remote service.
	EngineOSRM Engine = "osrm"
	// EngineLocal uses only locally built corridor graphs.
	EngineLocal Engine = "local"
)

// ErrUnknownEngine is returned by ParseEngine for unrecognized values.
var ErrUnknownEngine = errors.New("unknown engine")

// ParseEngine validates an engine query value. Empty means auto.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case "":
		return EngineAuto, nil
	case EngineAuto, EngineOSRM, EngineLocal:
		return Engine(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

// Sentinel errors for routing operations.
var (
	// ErrNoRoute indicates every configured source was exhausted without a path.
	ErrNoRoute = errors.New("no route found")

	// ErrRemoteUnavailable indicates the remote routing service could not be
	// reached or returned an unusable response.
	ErrRemoteUnavailable = errors.New("remote routing service unavailable")
)

// Error wraps a routing failure with its source and a stable code.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Provider, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Provider, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Request is a single route computation.
type Request struct {
	Start geo.Coordinate
	End   geo.Coordinate

	// BufferKm overrides the distance-based corridor buffer when > 0.
	BufferKm float64

	// Engine defaults to EngineAuto when empty.
	Engine Engine
}

// Soft-failure codes carried on Result.Error.
const (
	// CodeNoPath means no source produced a route.
	CodeNoPath = "no_path"
	// CodeServerError means routing failed unexpectedly.
	CodeServerError = "server_error"
)

// Result is the wire-shaped route response. Soft failures (no path,
// internal fault) are expressed in Error/Detail with a 200 status, not as
// transport errors.
type Result struct {
	// Polyline is the route geometry, start to end. Always present,
	// possibly empty, never null.
	Polyline []geo.Coordinate `json:"polyline"`

	// Meters is the route length; null when no route was found.
	Meters *float64 `json:"meters"`

	// Seconds is the estimated drive time; null when unavailable.
	Seconds *float64 `json:"seconds"`

	// Error is a soft-failure code (no_path, server_error), empty on
	// success.
	Error string `json:"error,omitempty"`

	// Detail elaborates on server_error failures.
	Detail string `json:"detail,omitempty"`

	// Source names what produced the route (osrm, local), empty on
	// failure.
	Source string `json:"source,omitempty"`
}

// noPathResult is the canonical exhaustion response.
func noPathResult() *Result {
	return &Result{Polyline: []geo.Coordinate{}, Error: CodeNoPath}
}

// serverErrorResult is the canonical internal-fault response.
func serverErrorResult(detail string) *Result {
	return &Result{Polyline: []geo.Coordinate{}, Error: CodeServerError, Detail: detail}
}

func float64Ptr(v float64) *float64 {
	return &v
}
