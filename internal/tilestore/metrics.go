package tilestore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/flashdirex/flashdirex/internal/tilestore"

// Metrics holds the OpenTelemetry instruments for tile cache activity.
type Metrics struct {
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	buildDuration metric.Float64Histogram
	tileNodes     metric.Int64Histogram
	tileEdges     metric.Int64Histogram
}

// NewMetrics creates metrics for monitoring tile cache hits and builds.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	cacheHits, err := meter.Int64Counter(
		"tile.cache.hit",
		metric.WithDescription("Number of tile cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"tile.cache.miss",
		metric.WithDescription("Number of tile cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	buildDuration, err := meter.Float64Histogram(
		"tile.build.duration",
		metric.WithDescription("Duration of tile graph builds in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tileNodes, err := meter.Int64Histogram(
		"tile.graph.nodes",
		metric.WithDescription("Node count of built tile graphs"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}

	tileEdges, err := meter.Int64Histogram(
		"tile.graph.edges",
		metric.WithDescription("Edge count of built tile graphs"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
		buildDuration: buildDuration,
		tileNodes:     tileNodes,
		tileEdges:     tileEdges,
	}, nil
}

// RecordHit records a cache hit at the given tier ("memory" or "disk").
func (m *Metrics) RecordHit(ctx context.Context, tier string) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.tier", tier)))
}

// RecordMiss records a cache miss (the tile had to be built).
func (m *Metrics) RecordMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(ctx, 1)
}

// RecordBuild records the outcome of a tile graph build.
func (m *Metrics) RecordBuild(ctx context.Context, duration time.Duration, nodes, edges int, err error) {
	if m == nil {
		return
	}
	var attrs []attribute.KeyValue
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}
	m.buildDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if err == nil {
		m.tileNodes.Record(ctx, int64(nodes))
		m.tileEdges.Record(ctx, int64(edges))
	}
}
