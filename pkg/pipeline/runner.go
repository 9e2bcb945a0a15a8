package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/meshsurgery/pkg/cache"
	"github.com/matzehuels/meshsurgery/pkg/mesh"
	"github.com/matzehuels/meshsurgery/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached meshes; zero means cache.TTLMesh.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → collapse → validate pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	// Stage 1: Build
	buildStart := time.Now()
	m, hit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Mesh = m
	result.CacheHit = hit
	result.Before = m.Counts()
	result.Stats.BuildTime = time.Since(buildStart)

	logger.Info("built mesh",
		"shape", opts.String(),
		"vertices", result.Before.Vertices,
		"faces", result.Before.Faces,
		"cached", hit,
		"duration", result.Stats.BuildTime)

	// Stage 2: Collapse
	collapseStart := time.Now()
	out, err := Collapse(ctx, m, opts)
	result.Collapsed = out.Collapsed
	result.Rejected = out.Rejected
	result.Classes = out.Classes
	result.Stats.CollapseTime = time.Since(collapseStart)
	if err != nil {
		return nil, fmt.Errorf("collapse: %w", err)
	}
	result.After = m.Counts()

	if out.Collapsed > 0 {
		logger.Info("collapsed edges",
			"count", out.Collapsed,
			"rejected", out.Rejected,
			"vertices", result.After.Vertices,
			"duration", result.Stats.CollapseTime)
	}

	// Stage 3: Validate
	if opts.Validate {
		validateStart := time.Now()
		err := m.Validate()
		result.Stats.ValidateTime = time.Since(validateStart)
		observability.Mesh().OnValidate(ctx, result.Stats.ValidateTime, err)
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		logger.Debug("validated mesh", "duration", result.Stats.ValidateTime)
	}

	return result, nil
}

// BuildWithCacheInfo builds the initial mesh, serving it from the cache when
// possible, and reports whether it was a cache hit. Meshes are cached as
// soup JSON.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (*mesh.Mesh, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	inputHash := ""
	if opts.Shape == ShapeFile {
		data, err := readInput(opts.Input)
		if err != nil {
			return nil, false, err
		}
		inputHash = cache.Hash(data)
	}
	cacheKey := r.Keyer.MeshKey(opts.Shape, opts.MeshKeyOpts(inputHash))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			m, err := mesh.ReadSoup(bytes.NewReader(data))
			if err == nil {
				return m, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", cacheKey, "err", err)
		}
	}

	observability.Mesh().OnBuildStart(ctx, opts.Shape)
	start := time.Now()
	m, err := Generate(ctx, opts)
	if err != nil {
		observability.Mesh().OnBuildComplete(ctx, opts.Shape, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	observability.Mesh().OnBuildComplete(ctx, opts.Shape, m.NumVertices(), m.NumFaces(), time.Since(start), nil)

	var buf bytes.Buffer
	if err := m.WriteSoup(&buf); err == nil {
		ttl := r.TTL
		if ttl <= 0 {
			ttl = cache.TTLMesh
		}
		if err := r.Cache.Set(ctx, cacheKey, buf.Bytes(), ttl); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		}
	}

	return m, false, nil
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, opts Options) (*mesh.Mesh, error) {
	m, _, err := r.BuildWithCacheInfo(ctx, opts)
	return m, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
