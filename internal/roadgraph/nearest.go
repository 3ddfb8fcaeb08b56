package roadgraph

import (
	"math"

	"github.com/flashdirex/flashdirex/internal/geo"
)

const (
	// indexCellDeg is the grid index cell size (~550 m latitude).
	indexCellDeg = 0.005
	// maxSearchRing bounds the grid search at ~0.2 degrees from the query
	// cell before falling back to a full scan.
	maxSearchRing = 40
)

type cellKey struct {
	row, col int
}

// gridIndex buckets node ids by quantized coordinate for nearest-node
// lookup. Built once per graph on first use; graphs are immutable by then.
type gridIndex struct {
	cells map[cellKey][]int64
}

// Nearest returns the graph node closest to the coordinate and its distance
// in meters. The grid index answers most queries; when the bounded ring
// search comes up empty (very sparse corridors) a full linear scan decides.
// Returns false only for an empty graph.
func (g *Graph) Nearest(c geo.Coordinate) (int64, float64, bool) {
	if len(g.nodes) == 0 {
		return 0, 0, false
	}

	g.indexOnce.Do(func() {
		g.index = buildGridIndex(g)
	})

	if id, dist, ok := g.index.nearest(g, c); ok {
		return id, dist, true
	}
	return g.scanNearest(c)
}

func buildGridIndex(g *Graph) *gridIndex {
	idx := &gridIndex{cells: make(map[cellKey][]int64)}
	for _, id := range g.order {
		n := g.nodes[id]
		key := cellFor(n.Lat, n.Lng)
		idx.cells[key] = append(idx.cells[key], id)
	}
	return idx
}

func cellFor(lat, lng float64) cellKey {
	return cellKey{
		row: int(math.Floor(lat / indexCellDeg)),
		col: int(math.Floor(lng / indexCellDeg)),
	}
}

// nearest searches expanding rings of cells around the query. Once a ring
// yields candidates, one extra ring is inspected to cover nodes that sit
// just across a cell boundary.
func (idx *gridIndex) nearest(g *Graph, c geo.Coordinate) (int64, float64, bool) {
	center := cellFor(c.Lat, c.Lng)

	var (
		bestID   int64
		bestDist = math.Inf(1)
		found    bool
	)

	consider := func(ids []int64) {
		for _, id := range ids {
			d := geo.Haversine(c, g.nodes[id].Coordinate())
			if d < bestDist {
				bestID, bestDist = id, d
				found = true
			}
		}
	}

	for ring := 0; ring <= maxSearchRing; ring++ {
		for _, key := range ringCells(center, ring) {
			consider(idx.cells[key])
		}
		if found {
			// One boundary ring, then done.
			for _, key := range ringCells(center, ring+1) {
				consider(idx.cells[key])
			}
			return bestID, bestDist, true
		}
	}
	return 0, 0, false
}

// ringCells returns the cells at Chebyshev distance ring from the center.
func ringCells(center cellKey, ring int) []cellKey {
	if ring == 0 {
		return []cellKey{center}
	}
	cells := make([]cellKey, 0, 8*ring)
	for dr := -ring; dr <= ring; dr++ {
		for dc := -ring; dc <= ring; dc++ {
			if dr != -ring && dr != ring && dc != -ring && dc != ring {
				continue
			}
			cells = append(cells, cellKey{row: center.row + dr, col: center.col + dc})
		}
	}
	return cells
}

// scanNearest is the manual fallback: a linear pass over every node.
func (g *Graph) scanNearest(c geo.Coordinate) (int64, float64, bool) {
	var (
		bestID   int64
		bestDist = math.Inf(1)
		found    bool
	)
	for _, id := range g.order {
		d := geo.Haversine(c, g.nodes[id].Coordinate())
		if d < bestDist {
			bestID, bestDist = id, d
			found = true
		}
	}
	return bestID, bestDist, found
}
