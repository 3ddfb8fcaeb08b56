package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flashdirex/flashdirex/internal/geo"
)

func TestBBoxQuery(t *testing.T) {
	b := geo.BoundingBox{North: 32.9, South: 32.7, East: -96.6, West: -96.9}

	q := bboxQuery(b, 180)

	assert.Contains(t, q, "[out:json][timeout:180];")
	// Overpass bbox clause order is south,west,north,east.
	assert.Contains(t, q, "(32.700000,-96.900000,32.900000,-96.600000)")
	assert.Contains(t, q, `["highway"]`)
	assert.Contains(t, q, ">;")
	assert.Contains(t, q, "out body;")
}

func TestPolygonQuery_DropsClosingPoint(t *testing.T) {
	ring := []geo.Coordinate{
		{Lat: 32.7, Lng: -96.9},
		{Lat: 32.7, Lng: -96.6},
		{Lat: 32.9, Lng: -96.6},
		{Lat: 32.9, Lng: -96.9},
		{Lat: 32.7, Lng: -96.9}, // closing repeat
	}

	q := polygonQuery(ring, 60)

	assert.Contains(t, q, "[timeout:60]")
	assert.Contains(t, q, `poly:"32.700000 -96.900000 32.700000 -96.600000 32.900000 -96.600000 32.900000 -96.900000"`)
	assert.NotContains(t, q, "-96.900000 32.700000 -96.900000\"", "closing point must not repeat")
}

func TestDriveFilterExcludesFootways(t *testing.T) {
	assert.Contains(t, driveFilter, "footway")
	assert.Contains(t, driveFilter, "cycleway")
	assert.Contains(t, driveFilter, `["motor_vehicle"!~"no"]`)
}
