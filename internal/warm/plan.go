// Package warm pre-builds corridor tiles so first requests do not pay the
// fetch-and-build cost.
package warm

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/flashdirex/flashdirex/internal/geo"
)

// Point is a YAML-friendly coordinate.
type Point struct {
	Lat float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `yaml:"lng" validate:"gte=-180,lte=180"`
}

// Coordinate converts to the domain coordinate type.
func (p Point) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: p.Lat, Lng: p.Lng}
}

// Corridor is one start/end pair to pre-build.
type Corridor struct {
	// Name is the human-readable corridor name.
	Name string `yaml:"name" validate:"required"`

	Start Point `yaml:"start"`
	End   Point `yaml:"end"`

	// BufferKm is the corridor buffer; the route-time heuristic applies
	// when zero.
	BufferKm float64 `yaml:"buffer_km" validate:"gte=0,lte=60"`
}

// Bounds returns the tile bounding box this corridor warms.
func (c Corridor) Bounds() geo.BoundingBox {
	buffer := c.BufferKm
	if buffer <= 0 {
		buffer = geo.BufferKm(c.Start.Coordinate(), c.End.Coordinate())
	}
	return geo.CorridorBounds(c.Start.Coordinate(), c.End.Coordinate(), buffer)
}

// Plan is the warm configuration.
type Plan struct {
	Corridors []Corridor `yaml:"corridors" validate:"required,min=1,dive"`

	// Concurrency is the number of corridors built in parallel.
	// Default: 2.
	Concurrency int `yaml:"concurrency" validate:"gte=0,lte=16"`
}

// DefaultPlan warms the downtown Dallas to Plano commuter corridor.
func DefaultPlan() *Plan {
	return &Plan{
		Corridors: []Corridor{
			{
				Name:     "dallas-plano",
				Start:    Point{Lat: 32.781, Lng: -96.798},
				End:      Point{Lat: 33.000, Lng: -96.700},
				BufferKm: 12,
			},
		},
		Concurrency: 2,
	}
}

// LoadPlan reads and validates a YAML warm plan.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading warm plan: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing warm plan %s: %w", path, err)
	}

	if err := validator.New().Struct(&plan); err != nil {
		return nil, fmt.Errorf("invalid warm plan %s: %w", path, err)
	}
	return &plan, nil
}
