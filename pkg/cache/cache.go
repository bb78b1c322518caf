// Package cache provides the byte-blob cache used for rendered snapshot
// and lineage artifacts, with file, Redis and no-op backends behind one
// interface.
package cache

import (
	"context"
	"time"
)

// Default TTLs per artifact kind. Snapshots are cheap to recompute and
// keyed by the full view state; lineage graphs only change with the
// dataset.
const (
	TTLSnapshot = 15 * time.Minute
	TTLLineage  = 24 * time.Hour
)

// Cache is the storage interface. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SnapshotKeyOpts captures everything that makes a rendered snapshot
// unique besides the dataset itself.
type SnapshotKeyOpts struct {
	Zoom          float64
	CenterX       float64
	CenterY       float64
	Width, Height float64
	Compact       bool
}

// Keyer generates cache keys. Splitting key generation from storage lets
// deployments scope keys (multi-tenant prefixes) without touching the
// backends.
type Keyer interface {
	// SnapshotKey keys a rendered SVG snapshot.
	SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string

	// LineageKey keys a rendered lineage graph.
	LineageKey(datasetHash string, detailed bool) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// SnapshotKey implements Keyer.
func (k *DefaultKeyer) SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", datasetHash, opts)
}

// LineageKey implements Keyer.
func (k *DefaultKeyer) LineageKey(datasetHash string, detailed bool) string {
	return hashKey("lineage", datasetHash, detailed)
}
