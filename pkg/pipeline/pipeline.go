// Package pipeline provides the fetch → layout → render pipeline behind the
// atlas CLI and server.
//
// By centralizing this logic, every entry point caches, logs and reports
// metrics the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Read project records from a [source.Source]
//  2. Layout: Pack category boxes and place projects ([layout.Compute])
//  3. Render: Generate output in various formats (SVG, JSON, PNG, PDF, DOT)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each is cached: records under the source's key, layouts under their
// input fingerprint and artifacts under the layout hash plus render options.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, src, pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	projects, err := runner.Fetch(ctx, src, opts)
//	l, err := runner.ComputeLayout(ctx, projects, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultTheme is the default color theme.
	DefaultTheme = "light"

	// DefaultPNGScale renders PNGs at 2x for high-DPI displays.
	DefaultPNGScale = 2.0
)

// Views select how the svg, png and pdf formats draw the layout.
const (
	ViewAtlas    = "atlas"    // packed category boxes
	ViewNodeLink = "nodelink" // Graphviz clusters, one per category
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	Refresh bool        `json:"refresh,omitempty"`
	Tags    []atlas.Tag `json:"tags,omitempty"` // keep only projects carrying every tag

	// Layout options
	Layout layout.Options `json:"layout"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Theme       string   `json:"theme,omitempty"`
	Highlight   string   `json:"highlight,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	View        string   `json:"view,omitempty"`     // ViewAtlas (default) or ViewNodeLink
	Detailed    bool     `json:"detailed,omitempty"` // DOT labels with emoji and tags
	Scale       float64  `json:"scale,omitempty"`    // PNG scale

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Projects are the fetched records after deduplication and tag filtering.
	Projects []atlas.Project

	// Version is the content hash of the fetched records.
	Version string

	// Layout is the computed canvas.
	Layout layout.Layout

	// LayoutHash is the content hash of the layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ProjectCount  int
	CategoryCount int
	BoxCount      int
	FetchTime     time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit  bool // Whether records came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := render.ParseFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills a zero layout configuration with the defaults.
func (o *Options) SetLayoutDefaults() {
	if o.Layout.ItemsPerRow == 0 && len(o.Layout.Columns) == 0 {
		o.Layout = layout.DefaultOptions()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.Layout.Validate(); err != nil {
		return fmt.Errorf("layout options: %w", err)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{string(render.FormatSVG)}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.View == "" {
		o.View = ViewAtlas
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.View != ViewAtlas && o.View != ViewNodeLink {
		return errors.New(errors.ErrCodeInvalidInput, "unknown view %q (want %s or %s)", o.View, ViewAtlas, ViewNodeLink)
	}
	_, err := render.ParseTheme(o.Theme)
	return err
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Highlight:   o.Highlight,
		Theme:       o.Theme,
		Interactive: o.Interactive,
		View:        o.View,
		Detailed:    o.Detailed,
		Scale:       o.Scale,
	}
}
