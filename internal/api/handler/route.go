// Package handler provides HTTP handlers for the flashdirex API.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/flashdirex/flashdirex/internal/api/models"
	"github.com/flashdirex/flashdirex/internal/api/response"
	"github.com/flashdirex/flashdirex/internal/routing"
)

// RouteComputer computes routes. Implemented by routing.Service.
type RouteComputer interface {
	Route(ctx context.Context, req routing.Request) *routing.Result
}

// RouteHandler handles route computation requests.
type RouteHandler struct {
	service RouteComputer
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service RouteComputer) *RouteHandler {
	return &RouteHandler{service: service}
}

// GetRoute handles GET /route.
//
// Required query parameters: start_lat, start_lng, end_lat, end_lng.
// Optional: buffer_km (corridor override, km), engine (auto|osrm|local).
// Malformed parameters get a 400 problem; routing failures are soft and
// come back as 200 with an error code in the body.
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var fieldErrors []models.FieldError

	coord := func(name string) float64 {
		raw := q.Get(name)
		if raw == "" {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: name, Message: "required", Code: "required",
			})
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: name, Message: "must be a number", Code: "invalid",
			})
			return 0
		}
		return v
	}

	req := routing.Request{}
	req.Start.Lat = coord("start_lat")
	req.Start.Lng = coord("start_lng")
	req.End.Lat = coord("end_lat")
	req.End.Lng = coord("end_lng")

	if raw := q.Get("buffer_km"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: "buffer_km", Message: "must be a positive number", Code: "invalid",
			})
		} else {
			req.BufferKm = v
		}
	}

	engine, err := routing.ParseEngine(q.Get("engine"))
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "engine", Message: "must be one of auto, osrm, local", Code: "invalid",
		})
	}
	req.Engine = engine

	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid route parameters", fieldErrors)
		return
	}

	result := h.service.Route(r.Context(), req)
	response.JSON(w, r, http.StatusOK, result)
}
