package roadgraph

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/topo"
)

// ShortestPath computes the cheapest node path from one node to another
// under the given weight. Travel-time and length weights search the directed
// graph; WeightHops searches the undirected view. Returns false when either
// endpoint is missing or no path exists.
func ShortestPath(g *Graph, from, to int64, w Weight) ([]int64, bool) {
	if _, ok := g.Node(from); !ok {
		return nil, false
	}
	if _, ok := g.Node(to); !ok {
		return nil, false
	}

	var shortest path.Shortest
	if w == WeightHops {
		shortest = path.DijkstraFrom(gnode(from), undirectedView{g: g})
	} else {
		shortest = path.DijkstraFrom(gnode(from), directedView{g: g, weight: w})
	}

	nodes, weight := shortest.To(to)
	if len(nodes) < 2 || math.IsInf(weight, 1) {
		return nil, false
	}

	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	return ids, true
}

// Reachable reports whether two nodes are connected on the undirected view.
// The orchestrator uses this as a cheap gate before any weighted search.
func Reachable(g *Graph, from, to int64) bool {
	if _, ok := g.Node(from); !ok {
		return false
	}
	if _, ok := g.Node(to); !ok {
		return false
	}
	return topo.PathExistsIn(undirectedView{g: g}, gnode(from), gnode(to))
}

// LargestComponent reduces the graph to its largest undirected connected
// component, dropping geometrically present but unreachable islands. The
// original graph is returned unchanged when it is already one component or
// has no nodes.
func LargestComponent(g *Graph) *Graph {
	comps := topo.ConnectedComponents(undirectedView{g: g})
	if len(comps) <= 1 {
		return g
	}

	giant := comps[0]
	for _, c := range comps[1:] {
		if len(c) > len(giant) {
			giant = c
		}
	}
	if len(giant) == g.NodeCount() {
		return g
	}

	keep := make(map[int64]bool, len(giant))
	for _, n := range giant {
		keep[n.ID()] = true
	}
	return g.Subgraph(keep)
}
