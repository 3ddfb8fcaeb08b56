package warm_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/roadgraph"
	"github.com/flashdirex/flashdirex/internal/warm"
)

type stubGraphs struct {
	mu     sync.Mutex
	bboxes []geo.BoundingBox
	err    error
}

func (s *stubGraphs) LoadOrBuild(_ context.Context, b geo.BoundingBox) (*roadgraph.Graph, error) {
	s.mu.Lock()
	s.bboxes = append(s.bboxes, b)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	g := roadgraph.New()
	g.AddNode(roadgraph.Node{ID: 1, Lat: b.South, Lng: b.West})
	return g, nil
}

func TestJob_RunDefaultPlan(t *testing.T) {
	graphs := &stubGraphs{}
	job := warm.NewJob(warm.JobConfig{Graphs: graphs, Logger: zerolog.Nop()})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.Corridors)
	assert.Equal(t, 1, result.Successful)
	assert.Zero(t, result.Failed)
	require.Len(t, graphs.bboxes, 1)

	want := warm.DefaultPlan().Corridors[0].Bounds()
	assert.Equal(t, want, graphs.bboxes[0])
}

func TestJob_RunCountsFailures(t *testing.T) {
	graphs := &stubGraphs{err: errors.New("overpass down")}
	plan := &warm.Plan{
		Corridors: []warm.Corridor{
			{Name: "a", Start: warm.Point{Lat: 32.78, Lng: -96.80}, End: warm.Point{Lat: 32.90, Lng: -96.70}, BufferKm: 10},
			{Name: "b", Start: warm.Point{Lat: 33.00, Lng: -96.80}, End: warm.Point{Lat: 33.10, Lng: -96.70}, BufferKm: 10},
		},
	}
	job := warm.NewJob(warm.JobConfig{Plan: plan, Graphs: graphs, Logger: zerolog.Nop()})

	result := job.Run(context.Background())

	assert.Equal(t, 2, result.Corridors)
	assert.Zero(t, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0].Error, "overpass down")
}

func TestJob_EachCorridorBuiltOnce(t *testing.T) {
	graphs := &stubGraphs{}
	plan := &warm.Plan{
		Concurrency: 4,
		Corridors: []warm.Corridor{
			{Name: "a", Start: warm.Point{Lat: 32.78, Lng: -96.80}, End: warm.Point{Lat: 32.90, Lng: -96.70}, BufferKm: 10},
			{Name: "b", Start: warm.Point{Lat: 33.00, Lng: -96.80}, End: warm.Point{Lat: 33.10, Lng: -96.70}, BufferKm: 12},
			{Name: "c", Start: warm.Point{Lat: 33.20, Lng: -96.80}, End: warm.Point{Lat: 33.30, Lng: -96.70}, BufferKm: 14},
		},
	}
	job := warm.NewJob(warm.JobConfig{Plan: plan, Graphs: graphs, Logger: zerolog.Nop()})

	result := job.Run(context.Background())

	assert.Equal(t, 3, result.Successful)
	seen := make(map[string]int)
	for _, b := range graphs.bboxes {
		seen[b.TileKey()]++
	}
	assert.Len(t, seen, 3)
	for key, count := range seen {
		assert.Equal(t, 1, count, "corridor %s built more than once", key)
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
concurrency: 3
corridors:
  - name: dallas-plano
    start: {lat: 32.781, lng: -96.798}
    end: {lat: 33.000, lng: -96.700}
    buffer_km: 12
  - name: dallas-fortworth
    start: {lat: 32.781, lng: -96.798}
    end: {lat: 32.755, lng: -97.330}
`), 0o644))

	plan, err := warm.LoadPlan(path)
	require.NoError(t, err)

	assert.Equal(t, 3, plan.Concurrency)
	require.Len(t, plan.Corridors, 2)
	assert.Equal(t, "dallas-plano", plan.Corridors[0].Name)
	assert.Equal(t, 12.0, plan.Corridors[0].BufferKm)
	assert.Zero(t, plan.Corridors[1].BufferKm, "buffer defaults to the heuristic at run time")
}

func TestLoadPlan_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty corridors", "corridors: []"},
		{"missing name", "corridors:\n  - start: {lat: 1, lng: 1}\n    end: {lat: 2, lng: 2}"},
		{"latitude out of range", "corridors:\n  - name: bad\n    start: {lat: 99, lng: 1}\n    end: {lat: 2, lng: 2}"},
		{"buffer too large", "corridors:\n  - name: bad\n    start: {lat: 1, lng: 1}\n    end: {lat: 2, lng: 2}\n    buffer_km: 500"},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plan.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := warm.LoadPlan(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadPlan_MissingFile(t *testing.T) {
	_, err := warm.LoadPlan(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
