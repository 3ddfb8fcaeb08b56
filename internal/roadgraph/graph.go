// Package roadgraph implements the directed road-network multigraph that
// local routing runs on: parallel edges keyed by (from, to, key), weighted
// shortest paths and connectivity via gonum views, nearest-node lookup, and
// path-to-polyline extraction.
package roadgraph

import (
	"sync"

	"github.com/flashdirex/flashdirex/internal/geo"
)

// DefaultSpeedMS is the assumed speed (~45 km/h) used when an edge carries no
// travel time: seconds = meters / DefaultSpeedMS.
const DefaultSpeedMS = 12.5

// Node is a graph node at a road intersection or way endpoint.
type Node struct {
	ID  int64
	Lat float64
	Lng float64
}

// Coordinate returns the node position.
func (n Node) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: n.Lat, Lng: n.Lng}
}

// Edge is one road segment between two nodes. Real intersections can have
// multiple distinct segments between the same ordered pair (divided
// highways, merged ways); those parallel edges share (From, To) and differ
// in Key.
type Edge struct {
	From int64
	To   int64
	Key  int

	LengthM       float64
	SpeedKPH      float64
	TravelTimeS   float64
	HasTravelTime bool

	Highway  string
	Maxspeed string

	// Geometry is the segment polyline including both endpoints. May be
	// empty, in which case the segment degenerates to a straight line
	// between the node coordinates.
	Geometry []geo.Coordinate
}

// EstimatedTravelTime returns the edge travel time in seconds, falling back
// to LengthM / DefaultSpeedMS when no travel time was annotated.
func (e Edge) EstimatedTravelTime() float64 {
	if e.HasTravelTime {
		return e.TravelTimeS
	}
	return e.LengthM / DefaultSpeedMS
}

// Graph is a directed road-network multigraph. It is built once (by the OSM
// fetcher or the tile codec), optionally annotated and pruned, and then
// treated as immutable by everything downstream.
type Graph struct {
	nodes map[int64]Node
	order []int64

	// out[u][v] holds the parallel edges u->v ordered by Key.
	out map[int64]map[int64][]Edge
	// in[v] holds predecessors of v, for the directed To() view.
	in map[int64]map[int64]struct{}

	edgeCount      int
	hasTravelTimes bool

	indexOnce sync.Once
	index     *gridIndex
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[int64]Node),
		out:   make(map[int64]map[int64][]Edge),
		in:    make(map[int64]map[int64]struct{}),
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n Node) {
	if _, ok := g.nodes[n.ID]; !ok {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

// AddEdge appends a parallel edge between e.From and e.To. The edge Key is
// assigned from the current parallel count; both endpoints must already
// exist as nodes.
func (g *Graph) AddEdge(e Edge) {
	if g.out[e.From] == nil {
		g.out[e.From] = make(map[int64][]Edge)
	}
	e.Key = len(g.out[e.From][e.To])
	g.out[e.From][e.To] = append(g.out[e.From][e.To], e)

	if g.in[e.To] == nil {
		g.in[e.To] = make(map[int64]struct{})
	}
	g.in[e.To][e.From] = struct{}{}

	g.edgeCount++
}

// Node returns the node with the given id.
func (g *Graph) Node(id int64) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []int64 {
	ids := make([]int64, len(g.order))
	copy(ids, g.order)
	return ids
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, counting parallels individually.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// EdgesBetween returns the parallel edges u->v ordered by Key, or nil when
// no such edge exists.
func (g *Graph) EdgesBetween(u, v int64) []Edge {
	return g.out[u][v]
}

// HasEdge reports whether at least one directed edge u->v exists.
func (g *Graph) HasEdge(u, v int64) bool {
	return len(g.out[u][v]) > 0
}

// HasTravelTimes reports whether speed annotation produced travel times for
// at least part of the graph. When false, travel-time-weighted search is
// pointless and callers go straight to length weighting.
func (g *Graph) HasTravelTimes() bool {
	return g.hasTravelTimes
}

// SetHasTravelTimes records the annotation outcome. Used by ApplySpeeds and
// by the tile codec when restoring a persisted graph.
func (g *Graph) SetHasTravelTimes(v bool) {
	g.hasTravelTimes = v
}

// Edges calls fn for every edge in the graph, in node insertion order. A
// false return stops the walk.
func (g *Graph) Edges(fn func(Edge) bool) {
	for _, u := range g.order {
		for _, parallels := range g.out[u] {
			for _, e := range parallels {
				if !fn(e) {
					return
				}
			}
		}
	}
}

// updateEdge replaces the stored edge matching (From, To, Key). Annotation
// uses this; the graph is not mutated after finalization otherwise.
func (g *Graph) updateEdge(e Edge) {
	parallels := g.out[e.From][e.To]
	for i := range parallels {
		if parallels[i].Key == e.Key {
			parallels[i] = e
			return
		}
	}
}

// Subgraph returns a copy containing only the given nodes and the edges
// whose endpoints both survive.
func (g *Graph) Subgraph(keep map[int64]bool) *Graph {
	sub := New()
	sub.hasTravelTimes = g.hasTravelTimes
	for _, id := range g.order {
		if keep[id] {
			sub.AddNode(g.nodes[id])
		}
	}
	for _, u := range g.order {
		if !keep[u] {
			continue
		}
		for v, parallels := range g.out[u] {
			if !keep[v] {
				continue
			}
			for _, e := range parallels {
				sub.AddEdge(e)
			}
		}
	}
	return sub
}

// undirectedNeighbors returns the neighbor set of id ignoring direction.
func (g *Graph) undirectedNeighbors(id int64) map[int64]struct{} {
	neighbors := make(map[int64]struct{})
	for v := range g.out[id] {
		neighbors[v] = struct{}{}
	}
	for u := range g.in[id] {
		neighbors[u] = struct{}{}
	}
	return neighbors
}
