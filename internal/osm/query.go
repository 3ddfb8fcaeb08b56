package osm

import (
	"fmt"
	"strings"

	"github.com/flashdirex/flashdirex/internal/geo"
)

// driveFilter selects the drivable road network: ways with a highway tag,
// minus foot/cycle infrastructure, private service roads, and unbuilt ways.
const driveFilter = `["highway"]` +
	`["area"!~"yes"]` +
	`["highway"!~"abandoned|bridleway|bus_guideway|construction|corridor|cycleway|elevator|escalator|footway|path|pedestrian|planned|platform|proposed|raceway|steps|track"]` +
	`["motor_vehicle"!~"no"]` +
	`["motorcar"!~"no"]` +
	`["service"!~"alley|driveway|emergency_access|parking|parking_aisle|private"]`

// bboxQuery renders the Overpass QL for a bounding-box fetch of the drive
// network, recursing down to the member nodes.
func bboxQuery(b geo.BoundingBox, timeoutSec int) string {
	return fmt.Sprintf("[out:json][timeout:%d];(way%s(%.6f,%.6f,%.6f,%.6f);>;);out body;",
		timeoutSec, driveFilter, b.South, b.West, b.North, b.East)
}

// polygonQuery renders the equivalent fetch clipped to an explicit polygon
// ring. Overpass wants "lat lng lat lng ..." with an open ring.
func polygonQuery(ring []geo.Coordinate, timeoutSec int) string {
	// Drop the closing point if the ring repeats it.
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	pts := make([]string, len(ring))
	for i, c := range ring {
		pts[i] = fmt.Sprintf("%.6f %.6f", c.Lat, c.Lng)
	}
	return fmt.Sprintf(`[out:json][timeout:%d];(way%s(poly:"%s");>;);out body;`,
		timeoutSec, driveFilter, strings.Join(pts, " "))
}
