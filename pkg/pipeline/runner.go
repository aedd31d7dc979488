package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/observability"
	"github.com/matzehuels/atlas/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
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

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	projects, fetchHit, err := r.FetchWithCacheInfo(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	projects = atlas.FilterByTags(projects, opts.Tags...)
	result.Projects = projects
	result.Version = source.Version(projects)
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.ProjectCount = len(projects)
	result.CacheInfo.FetchHit = fetchHit

	r.Logger.Info("fetched projects",
		"count", len(projects),
		"cached", fetchHit,
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, projects, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.LayoutHash = LayoutHash(l)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.BoxCount = len(l.Boxes)
	result.Stats.CategoryCount = len(l.Categories)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"boxes", len(l.Boxes),
		"width", l.Width,
		"height", l.Height,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo reads records with caching and returns cache hit info.
// Duplicate ids are dropped, keeping the first record.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, src source.Source, opts Options) ([]atlas.Project, bool, error) {
	name := sourceName(src)
	cacheKey := r.Keyer.RecordsKey(source.KeyOf(src))
	hooks := observability.Pipeline()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var projects []atlas.Project
			if err := json.Unmarshal(data, &projects); err == nil {
				observability.Cache().OnCacheHit(ctx, "records")
				return projects, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, "records")
	}

	hooks.OnFetchStart(ctx, name)
	start := time.Now()
	projects, err := src.Fetch(ctx)
	hooks.OnFetchComplete(ctx, name, len(projects), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	projects, dropped := atlas.Dedupe(projects)
	if dropped > 0 {
		r.Logger.Warn("dropped duplicate project ids", "count", dropped)
	}

	// Cache the result
	if data, err := json.Marshal(projects); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.RecordsTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "records", len(data))
		}
	}

	return projects, false, nil // Cache miss
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, src source.Source, opts Options) ([]atlas.Project, error) {
	projects, _, err := r.FetchWithCacheInfo(ctx, src, opts)
	return projects, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
// Layouts are keyed by the fingerprint of their inputs.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, projects []atlas.Project, opts Options) (layout.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(layout.Fingerprint(projects, opts.Layout))

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached layout.Layout
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(projects))
	start := time.Now()
	l, err := layout.Compute(projects, opts.Layout)
	hooks.OnLayoutComplete(ctx, len(l.Boxes), time.Since(start), err)
	if err != nil {
		return layout.Layout{}, false, err
	}

	// Cache the result
	if data, err := json.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return l, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, projects []atlas.Project, opts Options) (layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, projects, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	layoutHash := LayoutHash(l)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderFromLayout(l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// LayoutHash returns the content hash of a computed layout.
func LayoutHash(l layout.Layout) string {
	data, _ := json.Marshal(l)
	return cache.Hash(data)
}

func sourceName(src source.Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return "source"
}
