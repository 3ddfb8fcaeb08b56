package roadgraph

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
)

// Weight selects the edge-cost function for a shortest-path search.
type Weight int

const (
	// WeightTravelTime searches by annotated travel time, falling back to
	// length / DefaultSpeedMS for edges without one.
	WeightTravelTime Weight = iota
	// WeightLength searches by edge length in meters.
	WeightLength
	// WeightHops searches the undirected view with unit edge cost.
	WeightHops
)

// gnode adapts a node id to gonum's graph.Node.
type gnode int64

func (n gnode) ID() int64 { return int64(n) }

// wedge is a weighted edge view over the cheapest parallel edge between two
// nodes for the active weight function.
type wedge struct {
	f, t int64
	w    float64
}

func (e wedge) From() graph.Node         { return gnode(e.f) }
func (e wedge) To() graph.Node           { return gnode(e.t) }
func (e wedge) ReversedEdge() graph.Edge { return wedge{f: e.t, t: e.f, w: e.w} }
func (e wedge) Weight() float64          { return e.w }

func nodeIterator(ids []int64) graph.Nodes {
	if len(ids) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = gnode(id)
	}
	return iterator.NewOrderedNodes(nodes)
}

// directedView exposes the multigraph as a gonum weighted directed graph.
// The weight between a node pair collapses parallel edges to the minimum
// cost for the chosen weight function.
type directedView struct {
	g      *Graph
	weight Weight
}

var _ graph.WeightedDirected = directedView{}

func (v directedView) Node(id int64) graph.Node {
	if _, ok := v.g.nodes[id]; !ok {
		return nil
	}
	return gnode(id)
}

func (v directedView) Nodes() graph.Nodes {
	return nodeIterator(v.g.order)
}

func (v directedView) From(id int64) graph.Nodes {
	succ := make([]int64, 0, len(v.g.out[id]))
	for to := range v.g.out[id] {
		succ = append(succ, to)
	}
	return nodeIterator(succ)
}

func (v directedView) To(id int64) graph.Nodes {
	pred := make([]int64, 0, len(v.g.in[id]))
	for from := range v.g.in[id] {
		pred = append(pred, from)
	}
	return nodeIterator(pred)
}

func (v directedView) HasEdgeBetween(xid, yid int64) bool {
	return v.g.HasEdge(xid, yid) || v.g.HasEdge(yid, xid)
}

func (v directedView) HasEdgeFromTo(uid, vid int64) bool {
	return v.g.HasEdge(uid, vid)
}

func (v directedView) Edge(uid, vid int64) graph.Edge {
	return v.WeightedEdge(uid, vid)
}

func (v directedView) WeightedEdge(uid, vid int64) graph.WeightedEdge {
	w, ok := v.Weight(uid, vid)
	if !ok || uid == vid {
		return nil
	}
	return wedge{f: uid, t: vid, w: w}
}

func (v directedView) Weight(xid, yid int64) (float64, bool) {
	if xid == yid {
		return 0, true
	}
	parallels := v.g.EdgesBetween(xid, yid)
	if len(parallels) == 0 {
		return 0, false
	}
	return minEdgeWeight(parallels, v.weight), true
}

// undirectedView exposes the multigraph as a gonum weighted undirected graph
// with unit edge cost. Used for connectivity checks, component pruning, and
// the unweighted last-resort path search.
type undirectedView struct {
	g *Graph
}

var _ graph.WeightedUndirected = undirectedView{}

func (v undirectedView) Node(id int64) graph.Node {
	if _, ok := v.g.nodes[id]; !ok {
		return nil
	}
	return gnode(id)
}

func (v undirectedView) Nodes() graph.Nodes {
	return nodeIterator(v.g.order)
}

func (v undirectedView) From(id int64) graph.Nodes {
	neighbors := v.g.undirectedNeighbors(id)
	ids := make([]int64, 0, len(neighbors))
	for n := range neighbors {
		ids = append(ids, n)
	}
	return nodeIterator(ids)
}

func (v undirectedView) HasEdgeBetween(xid, yid int64) bool {
	return v.g.HasEdge(xid, yid) || v.g.HasEdge(yid, xid)
}

func (v undirectedView) Edge(uid, vid int64) graph.Edge {
	return v.WeightedEdge(uid, vid)
}

func (v undirectedView) EdgeBetween(xid, yid int64) graph.Edge {
	return v.WeightedEdge(xid, yid)
}

func (v undirectedView) WeightedEdge(uid, vid int64) graph.WeightedEdge {
	if uid == vid || !v.HasEdgeBetween(uid, vid) {
		return nil
	}
	return wedge{f: uid, t: vid, w: 1}
}

func (v undirectedView) WeightedEdgeBetween(xid, yid int64) graph.WeightedEdge {
	return v.WeightedEdge(xid, yid)
}

func (v undirectedView) Weight(xid, yid int64) (float64, bool) {
	if xid == yid {
		return 0, true
	}
	if !v.HasEdgeBetween(xid, yid) {
		return 0, false
	}
	return 1, true
}

// minEdgeWeight collapses parallel edges to the minimum cost under the given
// weight function.
func minEdgeWeight(parallels []Edge, w Weight) float64 {
	best := 0.0
	for i, e := range parallels {
		var cost float64
		switch w {
		case WeightLength:
			cost = e.LengthM
		default:
			cost = e.EstimatedTravelTime()
		}
		if i == 0 || cost < best {
			best = cost
		}
	}
	return best
}
