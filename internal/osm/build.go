package osm

import (
	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/roadgraph"
)

// buildGraph assembles a directed road graph from raw Overpass elements.
//
// Ways are split at intersections: a node shared by two or more ways, or
// repeated within a single way, becomes a graph node, as do way endpoints.
// Interior nodes between split points survive only as edge geometry. A
// two-way street yields one edge per direction with mirrored geometry, so
// parallel edges between the same pair of nodes are expected.
func buildGraph(elements []overpassElement) *roadgraph.Graph {
	coords := make(map[int64]geo.Coordinate)
	var ways []overpassElement

	for _, el := range elements {
		switch el.Type {
		case "node":
			coords[el.ID] = geo.Coordinate{Lat: el.Lat, Lng: el.Lon}
		case "way":
			if len(el.Nodes) >= 2 {
				ways = append(ways, el)
			}
		}
	}

	// Count how many ways reference each node. Endpoints and shared nodes
	// become intersections.
	usage := make(map[int64]int)
	for _, w := range ways {
		seen := make(map[int64]struct{}, len(w.Nodes))
		for _, id := range w.Nodes {
			if _, dup := seen[id]; dup {
				// Self-intersecting way (loops); force a split.
				usage[id]++
				continue
			}
			seen[id] = struct{}{}
			usage[id]++
		}
	}

	g := roadgraph.New()

	for _, w := range ways {
		addWay(g, w, coords, usage)
	}

	return g
}

// addWay splits one way at its intersection nodes and adds the resulting
// edges in the directions its tags allow.
func addWay(g *roadgraph.Graph, w overpassElement, coords map[int64]geo.Coordinate, usage map[int64]int) {
	forward, backward := wayDirections(w.Tags)
	if !forward && !backward {
		return
	}
	highway := w.Tags["highway"]
	maxspeed := w.Tags["maxspeed"]

	segStart := 0
	for i := 1; i < len(w.Nodes); i++ {
		last := i == len(w.Nodes)-1
		if usage[w.Nodes[i]] < 2 && !last {
			continue
		}

		segment := w.Nodes[segStart : i+1]
		segStart = i

		geometry, ok := segmentGeometry(segment, coords)
		if !ok {
			// A member node was clipped out of the extract; drop the
			// segment rather than invent geometry.
			continue
		}
		lengthM := segmentLength(geometry)

		from, to := segment[0], segment[len(segment)-1]
		ensureNode(g, from, coords)
		ensureNode(g, to, coords)

		if forward {
			g.AddEdge(roadgraph.Edge{
				From:     from,
				To:       to,
				LengthM:  lengthM,
				Highway:  highway,
				Maxspeed: maxspeed,
				Geometry: geometry,
			})
		}
		if backward {
			g.AddEdge(roadgraph.Edge{
				From:     to,
				To:       from,
				LengthM:  lengthM,
				Highway:  highway,
				Maxspeed: maxspeed,
				Geometry: reversed(geometry),
			})
		}
	}
}

// wayDirections interprets oneway tagging. Roundabouts are implicitly
// one-way; oneway=-1 runs against node order.
func wayDirections(tags map[string]string) (forward, backward bool) {
	switch tags["oneway"] {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return false, true
	case "no", "false", "0":
		return true, true
	}
	switch tags["junction"] {
	case "roundabout", "circular":
		return true, false
	}
	return true, true
}

func ensureNode(g *roadgraph.Graph, id int64, coords map[int64]geo.Coordinate) {
	c := coords[id]
	g.AddNode(roadgraph.Node{ID: id, Lat: c.Lat, Lng: c.Lng})
}

func segmentGeometry(ids []int64, coords map[int64]geo.Coordinate) ([]geo.Coordinate, bool) {
	geometry := make([]geo.Coordinate, len(ids))
	for i, id := range ids {
		c, ok := coords[id]
		if !ok {
			return nil, false
		}
		geometry[i] = c
	}
	return geometry, true
}

func segmentLength(geometry []geo.Coordinate) float64 {
	var total float64
	for i := 1; i < len(geometry); i++ {
		total += geo.Haversine(geometry[i-1], geometry[i])
	}
	return total
}

func reversed(geometry []geo.Coordinate) []geo.Coordinate {
	out := make([]geo.Coordinate, len(geometry))
	for i, c := range geometry {
		out[len(geometry)-1-i] = c
	}
	return out
}
