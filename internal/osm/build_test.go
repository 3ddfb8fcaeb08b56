package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id int64, lat, lon float64) overpassElement {
	return overpassElement{Type: "node", ID: id, Lat: lat, Lon: lon}
}

func way(id int64, nodes []int64, tags map[string]string) overpassElement {
	return overpassElement{Type: "way", ID: id, Nodes: nodes, Tags: tags}
}

func TestBuildGraph_SplitsAtIntersections(t *testing.T) {
	// Two ways crossing at node 3. Interior nodes 2 and 4 are not
	// intersections and must survive only as geometry.
	elements := []overpassElement{
		node(1, 32.700, -96.800),
		node(2, 32.701, -96.800),
		node(3, 32.702, -96.800),
		node(4, 32.702, -96.801),
		node(5, 32.702, -96.802),
		node(6, 32.703, -96.800),
		way(100, []int64{1, 2, 3, 6}, map[string]string{"highway": "residential", "oneway": "yes"}),
		way(101, []int64{5, 4, 3}, map[string]string{"highway": "residential", "oneway": "yes"}),
	}

	g := buildGraph(elements)

	// Way 100 splits at node 3: edges 1->3 and 3->6. Way 101 ends at 3.
	assert.Equal(t, 4, g.NodeCount())
	assert.True(t, g.HasEdge(1, 3))
	assert.True(t, g.HasEdge(3, 6))
	assert.True(t, g.HasEdge(5, 3))
	assert.False(t, g.HasEdge(1, 2), "interior node should not be a graph node")

	edges := g.EdgesBetween(1, 3)
	require.Len(t, edges, 1)
	assert.Len(t, edges[0].Geometry, 3, "interior node kept as geometry")
	assert.Equal(t, "residential", edges[0].Highway)
	assert.Greater(t, edges[0].LengthM, 0.0)
}

func TestBuildGraph_TwoWayStreet(t *testing.T) {
	elements := []overpassElement{
		node(1, 32.700, -96.800),
		node(2, 32.701, -96.800),
		way(100, []int64{1, 2}, map[string]string{"highway": "residential"}),
	}

	g := buildGraph(elements)

	require.True(t, g.HasEdge(1, 2))
	require.True(t, g.HasEdge(2, 1))

	fwd := g.EdgesBetween(1, 2)[0]
	rev := g.EdgesBetween(2, 1)[0]
	assert.Equal(t, fwd.LengthM, rev.LengthM)
	require.Len(t, rev.Geometry, 2)
	assert.Equal(t, fwd.Geometry[0], rev.Geometry[1], "reverse geometry mirrored")
}

func TestBuildGraph_OnewayReverse(t *testing.T) {
	elements := []overpassElement{
		node(1, 32.700, -96.800),
		node(2, 32.701, -96.800),
		way(100, []int64{1, 2}, map[string]string{"highway": "primary", "oneway": "-1"}),
	}

	g := buildGraph(elements)

	assert.False(t, g.HasEdge(1, 2))
	assert.True(t, g.HasEdge(2, 1), "oneway=-1 runs against node order")
}

func TestBuildGraph_RoundaboutIsOneway(t *testing.T) {
	elements := []overpassElement{
		node(1, 32.700, -96.800),
		node(2, 32.700, -96.801),
		way(100, []int64{1, 2}, map[string]string{"highway": "primary", "junction": "roundabout"}),
	}

	g := buildGraph(elements)

	assert.True(t, g.HasEdge(1, 2))
	assert.False(t, g.HasEdge(2, 1))
}

func TestBuildGraph_ParallelEdges(t *testing.T) {
	// Two distinct ways joining the same pair of intersections.
	elements := []overpassElement{
		node(1, 32.700, -96.800),
		node(2, 32.701, -96.800),
		node(3, 32.7005, -96.801),
		way(100, []int64{1, 2}, map[string]string{"highway": "primary", "oneway": "yes"}),
		way(101, []int64{1, 3, 2}, map[string]string{"highway": "residential", "oneway": "yes"}),
	}

	g := buildGraph(elements)

	edges := g.EdgesBetween(1, 2)
	require.Len(t, edges, 2)
	assert.NotEqual(t, edges[0].Key, edges[1].Key)
}

func TestBuildGraph_DropsSegmentsWithMissingNodes(t *testing.T) {
	// Node 2 clipped out of the extract.
	elements := []overpassElement{
		node(1, 32.700, -96.800),
		node(3, 32.702, -96.800),
		way(100, []int64{1, 2, 3}, map[string]string{"highway": "residential"}),
	}

	g := buildGraph(elements)

	assert.Equal(t, 0, g.EdgeCount())
}

func TestBuildGraph_SelfIntersectingWaySplits(t *testing.T) {
	// A loop returning to node 2 (P-shaped way).
	elements := []overpassElement{
		node(1, 32.700, -96.800),
		node(2, 32.701, -96.800),
		node(3, 32.702, -96.800),
		node(4, 32.702, -96.801),
		way(100, []int64{1, 2, 3, 4, 2}, map[string]string{"highway": "residential", "oneway": "yes"}),
	}

	g := buildGraph(elements)

	assert.True(t, g.HasEdge(1, 2))
	assert.True(t, g.HasEdge(2, 2) || g.HasEdge(2, 3) || g.EdgeCount() >= 2,
		"loop must be split at the repeated node")
}

func TestWayDirections(t *testing.T) {
	tests := []struct {
		name     string
		tags     map[string]string
		forward  bool
		backward bool
	}{
		{"untagged", map[string]string{}, true, true},
		{"oneway yes", map[string]string{"oneway": "yes"}, true, false},
		{"oneway true", map[string]string{"oneway": "true"}, true, false},
		{"oneway 1", map[string]string{"oneway": "1"}, true, false},
		{"oneway no", map[string]string{"oneway": "no"}, true, true},
		{"oneway reverse", map[string]string{"oneway": "-1"}, false, true},
		{"roundabout", map[string]string{"junction": "roundabout"}, true, false},
		{"circular", map[string]string{"junction": "circular"}, true, false},
		{"oneway no on roundabout", map[string]string{"oneway": "no", "junction": "roundabout"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, b := wayDirections(tt.tags)
			assert.Equal(t, tt.forward, f, "forward")
			assert.Equal(t, tt.backward, b, "backward")
		})
	}
}
