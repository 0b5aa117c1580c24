// Package cache provides byte-level caching for rendered artifacts.
//
// The pipeline caches generated modeler scripts and operation logs keyed by
// a hash of the design plus the render options, so re-rendering an unchanged
// design is instant. Backends:
//
//   - FileCache: directory-based cache for CLI usage
//   - RedisCache: shared cache for the HTTP bridge
//   - NullCache: disables caching
package cache

import (
	"context"
	"time"
)

// TTLArtifact is the default lifetime of cached render artifacts.
// Artifacts are cheap to regenerate, so the window stays short.
const TTLArtifact = 24 * time.Hour

// Cache is a byte-level cache with TTL support.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts distinguishes cached artifacts rendered from the same
// design with different options.
type ArtifactKeyOpts struct {
	Backend   string // "script" or "ops"
	Selection []int  // rendered component ids, empty for all
}

// Keyer generates cache keys.
type Keyer interface {
	// DesignKey generates a key for a stored design by name.
	DesignKey(name string) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(designHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DesignKey generates a key for a stored design by name.
func (k *DefaultKeyer) DesignKey(name string) string {
	return hashKey("design", name)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(designHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", designHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g. per
// user of the HTTP bridge.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DesignKey generates a prefixed design key.
func (k *ScopedKeyer) DesignKey(name string) string {
	return k.prefix + k.inner.DesignKey(name)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(designHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(designHash, opts)
}
