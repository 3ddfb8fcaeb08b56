package routing

import (
	"context"

	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/roadgraph"
)

// buildCorridor loads (or builds) the road graph for the padded bounding
// box spanning a start/end pair.
func (s *Service) buildCorridor(ctx context.Context, start, end geo.Coordinate, bufferKm float64) (*roadgraph.Graph, error) {
	return s.graphs.LoadOrBuild(ctx, geo.CorridorBounds(start, end, bufferKm))
}
