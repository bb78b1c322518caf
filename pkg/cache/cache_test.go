package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "snap", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "snap")
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("round trip corrupted data: %q", data)
	}

	if err := c.Delete(ctx, "snap"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "snap"); hit {
		t.Error("deleted key should miss")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "snap", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "snap"); hit {
		t.Error("expired entry should miss")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// SnapshotKey should include view options in the hash
	sk1 := k.SnapshotKey("hash123", SnapshotKeyOpts{Zoom: 2, Width: 800, Height: 600})
	sk2 := k.SnapshotKey("hash123", SnapshotKeyOpts{Zoom: 4, Width: 800, Height: 600})
	if sk1 == sk2 {
		t.Error("Different SnapshotKeyOpts should produce different keys")
	}

	// Different datasets produce different keys for the same view
	sk3 := k.SnapshotKey("hash456", SnapshotKeyOpts{Zoom: 2, Width: 800, Height: 600})
	if sk1 == sk3 {
		t.Error("Different dataset hashes should produce different keys")
	}

	// LineageKey
	lk1 := k.LineageKey("hash123", false)
	lk2 := k.LineageKey("hash123", true)
	if lk1 == lk2 {
		t.Error("Detailed flag should produce a different lineage key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "ds:photos:")

	key := scoped.SnapshotKey("hash123", SnapshotKeyOpts{Zoom: 1})
	if len(key) < 10 || key[:10] != "ds:photos:" {
		t.Errorf("ScopedKeyer SnapshotKey should be prefixed: %s", key)
	}
	if key[10:] != inner.SnapshotKey("hash123", SnapshotKeyOpts{Zoom: 1}) {
		t.Error("ScopedKeyer must delegate to the inner keyer")
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.LineageKey("h", false)
	if len(key) < 7 || key[:7] != "prefix:" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
