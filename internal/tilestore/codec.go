package tilestore

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/roadgraph"
	"github.com/flashdirex/flashdirex/pkg/polyline"
)

// tileSnapshot is the on-disk tile format. Edge geometry is stored as an
// encoded polyline rather than raw coordinate pairs; at 1e-5 precision the
// loss is under a meter, well inside GPS noise.
type tileSnapshot struct {
	Key            string
	Nodes          []snapshotNode
	Edges          []snapshotEdge
	HasTravelTimes bool
}

type snapshotNode struct {
	ID  int64
	Lat float64
	Lng float64
}

type snapshotEdge struct {
	From          int64
	To            int64
	LengthM       float64
	SpeedKPH      float64
	TravelTimeS   float64
	HasTravelTime bool
	Highway       string
	Maxspeed      string
	Geometry      string
}

// tilePath returns the file a tile key persists to.
func tilePath(dir, key string) string {
	return filepath.Join(dir, key+".tile")
}

// writeTile persists a graph snapshot, writing to a temp file first so a
// crashed write never leaves a truncated tile behind.
func writeTile(dir, key string, g *roadgraph.Graph) error {
	snap := snapshot(key, g)

	tmp, err := os.CreateTemp(dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp tile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding tile %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp tile: %w", err)
	}

	if err := os.Rename(tmp.Name(), tilePath(dir, key)); err != nil {
		return fmt.Errorf("renaming tile %s: %w", key, err)
	}
	return nil
}

// readTile loads a persisted tile back into a graph. A missing file is
// reported via os.IsNotExist on the returned error.
func readTile(dir, key string) (*roadgraph.Graph, error) {
	f, err := os.Open(tilePath(dir, key))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snap tileSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding tile %s: %w", key, err)
	}

	return restore(snap), nil
}

func snapshot(key string, g *roadgraph.Graph) tileSnapshot {
	snap := tileSnapshot{
		Key:            key,
		Nodes:          make([]snapshotNode, 0, g.NodeCount()),
		Edges:          make([]snapshotEdge, 0, g.EdgeCount()),
		HasTravelTimes: g.HasTravelTimes(),
	}

	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		snap.Nodes = append(snap.Nodes, snapshotNode{ID: n.ID, Lat: n.Lat, Lng: n.Lng})
	}

	g.Edges(func(e roadgraph.Edge) bool {
		snap.Edges = append(snap.Edges, snapshotEdge{
			From:          e.From,
			To:            e.To,
			LengthM:       e.LengthM,
			SpeedKPH:      e.SpeedKPH,
			TravelTimeS:   e.TravelTimeS,
			HasTravelTime: e.HasTravelTime,
			Highway:       e.Highway,
			Maxspeed:      e.Maxspeed,
			Geometry:      encodeGeometry(e.Geometry),
		})
		return true
	})

	return snap
}

func restore(snap tileSnapshot) *roadgraph.Graph {
	g := roadgraph.New()
	for _, n := range snap.Nodes {
		g.AddNode(roadgraph.Node{ID: n.ID, Lat: n.Lat, Lng: n.Lng})
	}
	for _, e := range snap.Edges {
		g.AddEdge(roadgraph.Edge{
			From:          e.From,
			To:            e.To,
			LengthM:       e.LengthM,
			SpeedKPH:      e.SpeedKPH,
			TravelTimeS:   e.TravelTimeS,
			HasTravelTime: e.HasTravelTime,
			Highway:       e.Highway,
			Maxspeed:      e.Maxspeed,
			Geometry:      decodeGeometry(e.Geometry),
		})
	}
	g.SetHasTravelTimes(snap.HasTravelTimes)
	return g
}

func encodeGeometry(coords []geo.Coordinate) string {
	if len(coords) == 0 {
		return ""
	}
	pts := make([]polyline.Coordinate, len(coords))
	for i, c := range coords {
		pts[i] = polyline.Coordinate{Lat: c.Lat, Lng: c.Lng}
	}
	return polyline.Encode(pts)
}

func decodeGeometry(encoded string) []geo.Coordinate {
	if encoded == "" {
		return nil
	}
	pts := polyline.Decode(encoded)
	coords := make([]geo.Coordinate, len(pts))
	for i, p := range pts {
		coords[i] = geo.Coordinate{Lat: p.Lat, Lng: p.Lng}
	}
	return coords
}
