package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// Useful when one cache backend serves several datasets or users and their
// keys must not collide.
//
// Example usage:
//
//	// Dataset-specific keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ds:photos:")
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SnapshotKey generates a prefixed key for snapshot caching.
func (k *ScopedKeyer) SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(datasetHash, opts)
}

// LineageKey generates a prefixed key for lineage caching.
func (k *ScopedKeyer) LineageKey(datasetHash string, detailed bool) string {
	return k.prefix + k.inner.LineageKey(datasetHash, detailed)
}
