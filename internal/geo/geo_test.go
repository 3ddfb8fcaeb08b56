package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine_Symmetry(t *testing.T) {
	a := Coordinate{Lat: 32.781, Lng: -96.798}
	b := Coordinate{Lat: 33.000, Lng: -96.700}

	assert.Equal(t, Haversine(a, b), Haversine(b, a))
}

func TestHaversine_ZeroDistance(t *testing.T) {
	a := Coordinate{Lat: 52.3676, Lng: 4.9041}
	assert.Zero(t, Haversine(a, a))
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Dallas downtown to Plano, roughly 25.6 km.
	a := Coordinate{Lat: 32.781, Lng: -96.798}
	b := Coordinate{Lat: 33.000, Lng: -96.700}

	d := Haversine(a, b)
	assert.InDelta(t, 25900, d, 400)
}

func TestDegreeBuffer(t *testing.T) {
	dLat, dLng := DegreeBuffer(0, 10)
	assert.InDelta(t, 10/110.574, dLat, 1e-9)
	assert.InDelta(t, 10/111.320, dLng, 1e-9)

	// At 60N the longitude delta roughly doubles.
	_, dLng60 := DegreeBuffer(60, 10)
	assert.InDelta(t, 2*dLng, dLng60, 1e-3)
}

func TestDegreeBuffer_PolarClamp(t *testing.T) {
	_, dLng := DegreeBuffer(89.9, 10)
	// cos(89.9 deg) < 0.1, so the clamp applies.
	assert.InDelta(t, 10/(111.320*0.1), dLng, 1e-9)
}

func TestBufferKm_Clamped(t *testing.T) {
	near := Coordinate{Lat: 32.781, Lng: -96.798}

	// Zero-distance trip clamps to the floor.
	assert.Equal(t, 8.0, BufferKm(near, near))

	// Antipodal-scale trip clamps to the ceiling.
	far := Coordinate{Lat: -32.0, Lng: 96.0}
	assert.Equal(t, 60.0, BufferKm(near, far))
}

func TestBufferKm_MonotonicWithinClamp(t *testing.T) {
	start := Coordinate{Lat: 32.0, Lng: -96.0}
	prev := 0.0
	for dLat := 0.0; dLat <= 10.0; dLat += 0.25 {
		got := BufferKm(start, Coordinate{Lat: 32.0 + dLat, Lng: -96.0})
		require.GreaterOrEqual(t, got, prev, "buffer must be non-decreasing in trip distance")
		require.GreaterOrEqual(t, got, 8.0)
		require.LessOrEqual(t, got, 60.0)
		prev = got
	}
}

func TestTileKey_StableUnderSmallPerturbation(t *testing.T) {
	base := BoundingBox{North: 33.100, South: 32.700, East: -96.600, West: -96.900}
	perturbed := BoundingBox{
		North: base.North + 0.0004,
		South: base.South - 0.0004,
		East:  base.East + 0.0004,
		West:  base.West - 0.0004,
	}

	assert.Equal(t, base.TileKey(), perturbed.TileKey())
}

func TestTileKey_DistinctAcrossRoundingBoundary(t *testing.T) {
	base := BoundingBox{North: 33.100, South: 32.700, East: -96.600, West: -96.900}
	shifted := base
	shifted.North += 0.001

	assert.NotEqual(t, base.TileKey(), shifted.TileKey())
	assert.Equal(t, "33.100_32.700_-96.600_-96.900", base.TileKey())
}

func TestCorridorBounds(t *testing.T) {
	start := Coordinate{Lat: 32.781, Lng: -96.798}
	end := Coordinate{Lat: 33.000, Lng: -96.700}

	box := CorridorBounds(start, end, 12)

	midLat := (start.Lat + end.Lat) / 2.0
	dLat, dLng := DegreeBuffer(midLat, 12)

	assert.InDelta(t, 33.000+dLat, box.North, 1e-12)
	assert.InDelta(t, 32.781-dLat, box.South, 1e-12)
	assert.InDelta(t, -96.700+dLng, box.East, 1e-12)
	assert.InDelta(t, -96.798-dLng, box.West, 1e-12)

	assert.Greater(t, box.North, box.South)
	assert.Greater(t, box.East, box.West)
	assert.True(t, box.Contains(start))
	assert.True(t, box.Contains(end))
}

func TestBoundingBox_Polygon(t *testing.T) {
	box := BoundingBox{North: 33.0, South: 32.0, East: -96.0, West: -97.0}
	ring := box.Polygon()

	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4], "ring must be closed")
	for _, c := range ring[:4] {
		assert.True(t, math.Abs(c.Lat-32.0) < 1e-9 || math.Abs(c.Lat-33.0) < 1e-9)
	}
}
