package roadgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdirex/flashdirex/internal/geo"
)

func TestNearest_PicksClosestNode(t *testing.T) {
	g := lineGraph(5)

	query := geo.Coordinate{Lat: 32.7801, Lng: -96.797}
	id, dist, ok := g.Nearest(query)

	require.True(t, ok)
	assert.Equal(t, int64(3), id)
	want := geo.Haversine(query, mustCoord(g, 3))
	assert.InDelta(t, want, dist, 1e-9)
}

func TestNearest_EmptyGraph(t *testing.T) {
	g := New()
	_, _, ok := g.Nearest(geo.Coordinate{Lat: 32.78, Lng: -96.80})
	assert.False(t, ok)
}

func TestNearest_ScanFallbackForDistantQuery(t *testing.T) {
	// A single node far outside the bounded ring search still resolves via
	// the linear-scan fallback.
	g := New()
	g.AddNode(Node{ID: 7, Lat: 32.78, Lng: -96.80})

	id, dist, ok := g.Nearest(geo.Coordinate{Lat: 35.0, Lng: -90.0})
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
	assert.Greater(t, dist, 100_000.0)
}

func TestNearest_CellBoundary(t *testing.T) {
	// Two nodes straddling a grid cell boundary: the boundary ring pass must
	// still return the true closest.
	g := New()
	g.AddNode(Node{ID: 1, Lat: 32.7849, Lng: -96.800})
	g.AddNode(Node{ID: 2, Lat: 32.7851, Lng: -96.800})

	id, _, ok := g.Nearest(geo.Coordinate{Lat: 32.78505, Lng: -96.800})
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
}
