// Package geo provides the geographic primitives used across the routing
// service: coordinates, corridor bounding boxes, tile keys, and the
// distance/buffer heuristics that size a corridor fetch.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusM is the mean Earth radius in meters.
const EarthRadiusM = 6371000.0

// Coordinate represents a geographic point in WGS84 degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is a geographic extent. North > South and East > West always
// hold when derived from CorridorBounds with valid inputs; the bounds are not
// validated at construction.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// TileKey returns the cache key for this box with each bound rounded to three
// decimal places (~111 m at the equator). Boxes whose bounds agree to three
// decimals share a key and therefore a cached tile.
func (b BoundingBox) TileKey() string {
	return fmt.Sprintf("%.3f_%.3f_%.3f_%.3f", b.North, b.South, b.East, b.West)
}

// Polygon returns the box as a closed five-point ring, first point repeated
// last. Used by the polygon-based repair fetch.
func (b BoundingBox) Polygon() []Coordinate {
	return []Coordinate{
		{Lat: b.South, Lng: b.West},
		{Lat: b.South, Lng: b.East},
		{Lat: b.North, Lng: b.East},
		{Lat: b.North, Lng: b.West},
		{Lat: b.South, Lng: b.West},
	}
}

// Contains reports whether the coordinate lies within the box.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lng >= b.West && c.Lng <= b.East
}

// Haversine returns the great-circle distance between two coordinates in
// meters.
func Haversine(a, b Coordinate) float64 {
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lng - a.Lng)
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusM * math.Asin(math.Sqrt(h))
}

// DegreeBuffer converts a linear buffer distance in kilometers into latitude
// and longitude degree deltas at the given latitude. The longitude conversion
// clamps cos(lat) at 0.1 to avoid blowing up near the poles.
func DegreeBuffer(lat, km float64) (dLat, dLng float64) {
	dLat = km / 110.574
	dLng = km / (111.320 * math.Max(0.1, math.Cos(radians(lat))))
	return dLat, dLng
}

// BufferKm returns the default corridor half-width for a trip: 5% of the
// great-circle distance, clamped to [8, 60] km. Proportional to trip length
// but bounded so short trips don't build oversized graphs and long trips
// don't build unbounded ones.
func BufferKm(start, end Coordinate) float64 {
	distKm := Haversine(start, end) / 1000.0
	return math.Max(8.0, math.Min(60.0, distKm*0.05))
}

// CorridorBounds computes the corridor bounding box for a start/end pair: the
// degree buffer is taken at the midpoint latitude and applied outward from
// the coordinate extremes.
func CorridorBounds(start, end Coordinate, bufferKm float64) BoundingBox {
	midLat := (start.Lat + end.Lat) / 2.0
	dLat, dLng := DegreeBuffer(midLat, bufferKm)
	return BoundingBox{
		North: math.Max(start.Lat, end.Lat) + dLat,
		South: math.Min(start.Lat, end.Lat) - dLat,
		East:  math.Max(start.Lng, end.Lng) + dLng,
		West:  math.Min(start.Lng, end.Lng) - dLng,
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
