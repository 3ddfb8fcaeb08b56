package roadgraph

import (
	"github.com/flashdirex/flashdirex/internal/geo"
)

// PathPolyline converts a node path into a geographic polyline and a total
// length in meters.
//
// For each consecutive pair the fastest parallel edge supplies the geometry
// (travel time, or length at the default speed when unannotated). In
// directed mode a missing u->v edge falls back to the reverse edge with its
// coordinates reversed. In undirected mode the same checks apply, and when
// neither direction has an edge the segment degenerates to a straight line
// between the node coordinates.
//
// Each edge after the first drops its leading coordinate before appending,
// so consecutive joins never repeat a point. The accumulated length uses the
// minimum length among the pair's parallel edges, a conservative
// approximation independent of which geometry was chosen.
func PathPolyline(g *Graph, path []int64, directed bool) ([]geo.Coordinate, float64) {
	var (
		poly   []geo.Coordinate
		meters float64
	)

	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]

		var seg []geo.Coordinate
		var segLen float64

		switch {
		case g.HasEdge(u, v):
			e, _ := fastestEdge(g, u, v)
			seg = edgeCoords(g, e)
			segLen = minLength(g, u, v)
		case g.HasEdge(v, u):
			e, _ := fastestEdge(g, v, u)
			seg = reverseCoords(edgeCoords(g, e))
			segLen = minLength(g, v, u)
		case !directed:
			seg = straightSegment(g, u, v)
			segLen = nodeDistance(g, u, v)
		default:
			// Directed path over a pruned graph can momentarily lack both
			// directions; degrade the same way.
			seg = straightSegment(g, u, v)
			segLen = nodeDistance(g, u, v)
		}

		if i > 0 && len(seg) > 0 {
			seg = seg[1:]
		}
		poly = append(poly, seg...)
		meters += segLen
	}

	return poly, meters
}

// PathTravelSeconds recomputes the travel time of a node path as the sum of
// the per-pair minimum estimated travel time, independent of the edges
// PathPolyline chose for display. Pairs with no edge in either direction
// fall back to the node distance at the default speed.
func PathTravelSeconds(g *Graph, path []int64) float64 {
	var seconds float64
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		switch {
		case g.HasEdge(u, v):
			seconds += minTravelTime(g, u, v)
		case g.HasEdge(v, u):
			seconds += minTravelTime(g, v, u)
		default:
			seconds += nodeDistance(g, u, v) / DefaultSpeedMS
		}
	}
	return seconds
}

// fastestEdge picks the parallel edge u->v with the lowest estimated travel
// time.
func fastestEdge(g *Graph, u, v int64) (Edge, bool) {
	parallels := g.EdgesBetween(u, v)
	if len(parallels) == 0 {
		return Edge{}, false
	}
	best := parallels[0]
	bestT := best.EstimatedTravelTime()
	for _, e := range parallels[1:] {
		if t := e.EstimatedTravelTime(); t < bestT {
			best, bestT = e, t
		}
	}
	return best, true
}

// edgeCoords returns the edge geometry, or the two node endpoints when none
// is stored.
func edgeCoords(g *Graph, e Edge) []geo.Coordinate {
	if len(e.Geometry) > 0 {
		seg := make([]geo.Coordinate, len(e.Geometry))
		copy(seg, e.Geometry)
		return seg
	}
	return straightSegment(g, e.From, e.To)
}

func straightSegment(g *Graph, u, v int64) []geo.Coordinate {
	un, _ := g.Node(u)
	vn, _ := g.Node(v)
	return []geo.Coordinate{un.Coordinate(), vn.Coordinate()}
}

func reverseCoords(coords []geo.Coordinate) []geo.Coordinate {
	for i, j := 0, len(coords)-1; i < j; i, j = i+1, j-1 {
		coords[i], coords[j] = coords[j], coords[i]
	}
	return coords
}

// minLength returns the minimum length among the parallel edges u->v,
// falling back to the node distance when no edge carries a length.
func minLength(g *Graph, u, v int64) float64 {
	var (
		best  float64
		found bool
	)
	for _, e := range g.EdgesBetween(u, v) {
		if e.LengthM <= 0 {
			continue
		}
		if !found || e.LengthM < best {
			best, found = e.LengthM, true
		}
	}
	if !found {
		return nodeDistance(g, u, v)
	}
	return best
}

func minTravelTime(g *Graph, u, v int64) float64 {
	parallels := g.EdgesBetween(u, v)
	best := parallels[0].EstimatedTravelTime()
	for _, e := range parallels[1:] {
		if t := e.EstimatedTravelTime(); t < best {
			best = t
		}
	}
	return best
}

func nodeDistance(g *Graph, u, v int64) float64 {
	un, _ := g.Node(u)
	vn, _ := g.Node(v)
	return geo.Haversine(un.Coordinate(), vn.Coordinate())
}
