package warm

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/roadgraph"
)

// GraphSource builds corridor tiles. Implemented by tilestore.Store.
type GraphSource interface {
	LoadOrBuild(ctx context.Context, b geo.BoundingBox) (*roadgraph.Graph, error)
}

// JobConfig holds configuration for creating a warm job.
type JobConfig struct {
	// Plan lists the corridors to warm (DefaultPlan when nil).
	Plan *Plan

	// Graphs builds the tiles (required).
	Graphs GraphSource

	// Logger for job operations.
	Logger zerolog.Logger
}

// Job pre-builds the corridors of a warm plan.
type Job struct {
	plan   *Plan
	graphs GraphSource
	logger zerolog.Logger
}

// NewJob creates a warm job.
func NewJob(cfg JobConfig) *Job {
	plan := cfg.Plan
	if plan == nil || len(plan.Corridors) == 0 {
		plan = DefaultPlan()
	}
	return &Job{
		plan:   plan,
		graphs: cfg.Graphs,
		logger: cfg.Logger,
	}
}

// Result contains the outcome of a warm run.
type Result struct {
	StartTime  time.Time
	Duration   time.Duration
	Corridors  int
	Successful int
	Failed     int
	Errors     []CorridorError
}

// CorridorError records one failed corridor build.
type CorridorError struct {
	Corridor string
	Error    string
}

type corridorResult struct {
	corridor Corridor
	nodes    int
	edges    int
	err      error
}

// Run builds every corridor in the plan, a bounded number in parallel.
func (j *Job) Run(ctx context.Context) *Result {
	start := time.Now()
	result := &Result{
		StartTime: start,
		Corridors: len(j.plan.Corridors),
	}

	concurrency := j.plan.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	j.logger.Info().
		Int("corridors", result.Corridors).
		Int("concurrency", concurrency).
		Msg("starting tile warm job")

	corridors := make(chan Corridor, len(j.plan.Corridors))
	results := make(chan corridorResult, len(j.plan.Corridors))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.warmWorker(ctx, corridors, results)
		}()
	}

	for _, c := range j.plan.Corridors {
		corridors <- c
	}
	close(corridors)

	go func() {
		wg.Wait()
		close(results)
	}()

	for cr := range results {
		if cr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, CorridorError{
				Corridor: cr.corridor.Name,
				Error:    cr.err.Error(),
			})
			continue
		}
		result.Successful++
	}

	result.Duration = time.Since(start)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("tile warm job completed")

	return result
}

func (j *Job) warmWorker(ctx context.Context, corridors <-chan Corridor, results chan<- corridorResult) {
	for c := range corridors {
		select {
		case <-ctx.Done():
			results <- corridorResult{corridor: c, err: ctx.Err()}
		default:
			results <- j.warmCorridor(ctx, c)
		}
	}
}

func (j *Job) warmCorridor(ctx context.Context, c Corridor) corridorResult {
	bounds := c.Bounds()

	j.logger.Debug().
		Str("corridor", c.Name).
		Str("tile", bounds.TileKey()).
		Msg("warming corridor")

	g, err := j.graphs.LoadOrBuild(ctx, bounds)
	if err != nil {
		j.logger.Error().Err(err).Str("corridor", c.Name).Msg("corridor warm failed")
		return corridorResult{corridor: c, err: err}
	}

	j.logger.Info().
		Str("corridor", c.Name).
		Int("nodes", g.NodeCount()).
		Int("edges", g.EdgeCount()).
		Msg("corridor warmed")

	return corridorResult{corridor: c, nodes: g.NodeCount(), edges: g.EdgeCount()}
}
