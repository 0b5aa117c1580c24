// Package pipeline provides the core render pipeline for metalize.
//
// This package implements the complete load → render pipeline that can be
// used by CLI and API components. By centralizing this logic, we ensure
// consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Load: Read the design from a TOML file or a storage backend
//  2. Render: Run the full render pass against a modeler backend and
//     capture the artifact (a pyEPR script or a JSON operation log)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    DesignPath: "transmon.toml",
//	    Backend:    pipeline.BackendScript,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	script := result.Artifact
//
// Run individual stages:
//
//	// Load only
//	d, err := runner.Load(ctx, opts)
//
//	// Render a design that is already in memory
//	artifact, err := runner.Render(ctx, d, opts)
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qweave/metalize/pkg/cache"
	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/design/store"
	"github.com/qweave/metalize/pkg/modeler/record"
	"github.com/qweave/metalize/pkg/modeler/script"
	"github.com/qweave/metalize/pkg/render/ansys"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Backend constants for artifact generation.
const (
	// BackendScript emits a Python automation script for a live pyEPR session.
	BackendScript = "script"

	// BackendOps emits a JSON log of the modeler draw calls.
	BackendOps = "ops"
)

// DefaultBackend is the default artifact backend.
const DefaultBackend = BackendScript

// ValidBackends is the set of supported artifact backends.
var ValidBackends = map[string]bool{
	BackendScript: true,
	BackendOps:    true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the render pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of DesignPath, DesignName (with a Store),
	// or a preloaded Design is required.
	DesignPath string `json:"design_path,omitempty"`
	DesignName string `json:"design_name,omitempty"`

	// Render options
	Backend   string `json:"backend,omitempty"`
	Selection []int  `json:"selection,omitempty"` // component ids, empty renders all
	Refresh   bool   `json:"refresh,omitempty"`   // bypass the artifact cache

	// Runtime options (not serialized)
	Design *design.Design `json:"-"` // preloaded design, skips the load stage
	Store  store.Store    `json:"-"` // backing store for DesignName
	Logger *log.Logger    `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// PassID uniquely identifies this render pass.
	PassID string

	// Design is the loaded design.
	Design *design.Design

	// DesignHash is the content hash of the design.
	DesignHash string

	// Backend is the backend that produced the artifact.
	Backend string

	// Artifact is the rendered output.
	Artifact []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the artifact came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount int
	OpCount      int // modeler calls issued, 0 when the artifact came from cache
	LoadTime     time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for the pipeline.
type CacheInfo struct {
	RenderHit bool // Whether the artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateBackend checks that a backend name is valid.
func ValidateBackend(backend string) error {
	if !ValidBackends[backend] {
		return fmt.Errorf("invalid backend: %q (must be one of: script, ops)", backend)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateBackend(o.Backend); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for the load stage.
func (o *Options) ValidateForLoad() error {
	if o.Design == nil && o.DesignPath == "" && o.DesignName == "" {
		return fmt.Errorf("design_path or design_name is required")
	}
	if o.DesignName != "" && o.Store == nil {
		return fmt.Errorf("design_name requires a store")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateBackend(o.Backend)
}

// ArtifactKeyOpts returns cache key options for the rendered artifact.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Backend:   o.Backend,
		Selection: o.Selection,
	}
}

// =============================================================================
// Stage Functions
// =============================================================================

// Load reads the design from the configured source.
func Load(ctx context.Context, opts Options) (*design.Design, error) {
	switch {
	case opts.Design != nil:
		return opts.Design, nil
	case opts.DesignName != "":
		return opts.Store.Get(ctx, opts.DesignName)
	default:
		return design.Load(opts.DesignPath)
	}
}

// Render runs a full render pass against the configured backend and returns
// the artifact bytes and the number of modeler calls issued.
func Render(ctx context.Context, d *design.Design, opts Options) ([]byte, int, error) {
	switch opts.Backend {
	case BackendOps:
		rec := record.New()
		if err := ansys.New(d, rec, opts.Logger).RenderDesign(ctx, opts.Selection); err != nil {
			return nil, 0, err
		}
		var buf bytes.Buffer
		if err := rec.WriteJSON(&buf); err != nil {
			return nil, 0, err
		}
		return buf.Bytes(), len(rec.Ops()), nil

	case BackendScript:
		w := script.New()
		if err := ansys.New(d, w, opts.Logger).RenderDesign(ctx, opts.Selection); err != nil {
			return nil, 0, err
		}
		return w.Bytes(), w.CallCount(), nil

	default:
		return nil, 0, ValidateBackend(opts.Backend)
	}
}
