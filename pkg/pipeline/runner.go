package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/qweave/metalize/pkg/cache"
	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete load → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		PassID:  uuid.NewString(),
		Backend: opts.Backend,
	}

	// Stage 1: Load
	loadStart := time.Now()
	observability.Render().OnLoadStart(ctx, opts.DesignName)
	d, err := r.Load(ctx, opts)
	observability.Render().OnLoadComplete(ctx, opts.DesignName, elementCount(d), time.Since(loadStart), err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Design = d
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ElementCount = len(d.Elements)

	// Compute design hash for cache keys and API responses
	if data, err := design.Marshal(d); err == nil {
		result.DesignHash = cache.Hash(data)
	}

	r.Logger.Info("loaded design",
		"design", d.Name,
		"chips", len(d.Chips),
		"elements", len(d.Elements),
		"duration", result.Stats.LoadTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifact, opCount, renderHit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.OpCount = opCount
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered design",
		"pass", result.PassID,
		"backend", opts.Backend,
		"ops", opCount,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the design from the configured source.
func (r *Runner) Load(ctx context.Context, opts Options) (*design.Design, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	return Load(ctx, opts)
}

// RenderWithCacheInfo renders the design with caching and returns cache hit info.
// The op count is 0 when the artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *design.Design, opts Options) ([]byte, int, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, 0, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from the design content
	data, err := design.Marshal(d)
	if err != nil {
		return nil, 0, false, fmt.Errorf("serialize design for cache key: %w", err)
	}
	cacheKey := r.Keyer.ArtifactKey(cache.Hash(data), opts.ArtifactKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if artifact, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifact, 0, true, nil // Cache hit
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Render
	renderStart := time.Now()
	observability.Render().OnRenderStart(ctx, d.Name, opts.Backend)
	artifact, opCount, err := Render(ctx, d, opts)
	observability.Render().OnRenderComplete(ctx, d.Name, opts.Backend, opCount, time.Since(renderStart), err)
	if err != nil {
		return nil, 0, false, err
	}

	// Cache the result
	if err := r.Cache.Set(ctx, cacheKey, artifact, cache.TTLArtifact); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(artifact))
	}

	return artifact, opCount, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, d *design.Design, opts Options) ([]byte, error) {
	artifact, _, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifact, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func elementCount(d *design.Design) int {
	if d == nil {
		return 0
	}
	return len(d.Elements)
}
