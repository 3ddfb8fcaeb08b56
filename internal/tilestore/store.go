// Package tilestore caches corridor road graphs, keyed by tile, in memory
// and on disk. Tiles are built lazily from the fetcher and never expire;
// ForceRebuild is the only way to refresh one.
package tilestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/osm"
	"github.com/flashdirex/flashdirex/internal/roadgraph"
)

// DefaultMinNodes is the node count below which a bbox fetch is considered
// undersized and retried as a polygon fetch.
const DefaultMinNodes = 400

// Fetcher retrieves road networks for an extent. Implemented by osm.Client.
type Fetcher interface {
	FetchBBox(ctx context.Context, b geo.BoundingBox) (*roadgraph.Graph, error)
	FetchPolygon(ctx context.Context, ring []geo.Coordinate) (*roadgraph.Graph, error)
}

var _ Fetcher = (*osm.Client)(nil)

// Config holds configuration for a tile store.
type Config struct {
	// Dir is the directory tiles persist to (created if absent).
	Dir string

	// MinNodes triggers the polygon repair fetch (default 400).
	MinNodes int

	// ForceRebuild bypasses both cache tiers and rebuilds every tile.
	ForceRebuild bool

	// Fetcher retrieves road networks (required).
	Fetcher Fetcher

	// Logger for store operations.
	Logger zerolog.Logger

	// Metrics records cache and build activity (optional).
	Metrics *Metrics
}

// Store is a two-tier tile cache. Safe for concurrent use; concurrent
// requests for the same missing tile share a single build.
type Store struct {
	cfg   Config
	group singleflight.Group

	mu  sync.RWMutex
	mem map[string]*roadgraph.Graph
}

// Stats is a point-in-time cache summary, surfaced by the health endpoint.
type Stats struct {
	Dir         string `json:"dir"`
	MemoryTiles int    `json:"memory_tiles"`
	DiskTiles   int    `json:"disk_tiles"`
}

// New creates a tile store and ensures its directory exists.
func New(cfg Config) (*Store, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("tilestore: fetcher is required")
	}
	if cfg.MinNodes <= 0 {
		cfg.MinNodes = DefaultMinNodes
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating tile dir %s: %w", cfg.Dir, err)
	}
	return &Store{
		cfg: cfg,
		mem: make(map[string]*roadgraph.Graph),
	}, nil
}

// LoadOrBuild returns the road graph for a bounding box, building and
// persisting it on first use.
func (s *Store) LoadOrBuild(ctx context.Context, b geo.BoundingBox) (*roadgraph.Graph, error) {
	key := b.TileKey()

	if !s.cfg.ForceRebuild {
		if g := s.fromMemory(key); g != nil {
			s.cfg.Metrics.RecordHit(ctx, "memory")
			return g, nil
		}

		if g := s.fromDisk(key); g != nil {
			s.cfg.Metrics.RecordHit(ctx, "disk")
			s.toMemory(key, g)
			return g, nil
		}
	}

	s.cfg.Metrics.RecordMiss(ctx)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Another goroutine may have finished the build while this one
		// waited on the flight group.
		if !s.cfg.ForceRebuild {
			if g := s.fromMemory(key); g != nil {
				return g, nil
			}
		}
		return s.build(ctx, b, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*roadgraph.Graph), nil
}

func (s *Store) fromMemory(key string) *roadgraph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem[key]
}

func (s *Store) toMemory(key string, g *roadgraph.Graph) {
	s.mu.Lock()
	s.mem[key] = g
	s.mu.Unlock()
}

func (s *Store) fromDisk(key string) *roadgraph.Graph {
	g, err := readTile(s.cfg.Dir, key)
	if err != nil {
		if !os.IsNotExist(err) {
			// A corrupt tile is rebuildable; log and fall through.
			s.cfg.Logger.Warn().Err(err).Str("tile", key).Msg("discarding unreadable tile")
		}
		return nil
	}
	return g
}

// build fetches, annotates, repairs, prunes and persists one tile.
func (s *Store) build(ctx context.Context, b geo.BoundingBox, key string) (*roadgraph.Graph, error) {
	start := time.Now()

	g, err := s.cfg.Fetcher.FetchBBox(ctx, b)
	if err != nil {
		s.cfg.Metrics.RecordBuild(ctx, time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("building tile %s: %w", key, err)
	}
	s.annotate(g, key)

	// An undersized result usually means the bbox clipped the network
	// oddly; a polygon fetch of the same box often does better.
	if g.NodeCount() < s.cfg.MinNodes {
		g = s.repair(ctx, b, key, g)
	}

	// Routing only ever runs within one connected component; islands
	// would just distort nearest-node snapping.
	if pruned := roadgraph.LargestComponent(g); pruned != nil && pruned.NodeCount() > 0 {
		g = pruned
	}

	if err := writeTile(s.cfg.Dir, key, g); err != nil {
		s.cfg.Logger.Warn().Err(err).Str("tile", key).Msg("tile persist failed; serving from memory only")
	}
	s.toMemory(key, g)

	s.cfg.Metrics.RecordBuild(ctx, time.Since(start), g.NodeCount(), g.EdgeCount(), nil)
	s.cfg.Logger.Info().
		Str("tile", key).
		Int("nodes", g.NodeCount()).
		Int("edges", g.EdgeCount()).
		Bool("travel_times", g.HasTravelTimes()).
		Dur("elapsed", time.Since(start)).
		Msg("tile built")

	return g, nil
}

// repair retries an undersized bbox fetch as a polygon fetch, keeping
// whichever result has more nodes.
func (s *Store) repair(ctx context.Context, b geo.BoundingBox, key string, g *roadgraph.Graph) *roadgraph.Graph {
	s.cfg.Logger.Info().
		Str("tile", key).
		Int("nodes", g.NodeCount()).
		Int("min_nodes", s.cfg.MinNodes).
		Msg("undersized tile; retrying as polygon fetch")

	pg, err := s.cfg.Fetcher.FetchPolygon(ctx, b.Polygon())
	if err != nil {
		s.cfg.Logger.Warn().Err(err).Str("tile", key).Msg("polygon repair failed; keeping bbox result")
		return g
	}
	if pg.NodeCount() <= g.NodeCount() {
		return g
	}
	s.annotate(pg, key)
	return pg
}

func (s *Store) annotate(g *roadgraph.Graph, key string) {
	res := roadgraph.ApplySpeeds(g)
	if res.Status == roadgraph.AnnotationFailed {
		s.cfg.Logger.Warn().Str("tile", key).Msg("travel time annotation failed; routing will weight by length")
	}
}

// Stats reports current cache occupancy.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	memTiles := len(s.mem)
	s.mu.RUnlock()

	diskTiles := 0
	if entries, err := filepath.Glob(filepath.Join(s.cfg.Dir, "*.tile")); err == nil {
		diskTiles = len(entries)
	}

	return Stats{
		Dir:         s.cfg.Dir,
		MemoryTiles: memTiles,
		DiskTiles:   diskTiles,
	}
}
