package imagecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// syncLoader completes loads synchronously and counts calls.
type syncLoader struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newSyncLoader() *syncLoader {
	return &syncLoader{calls: map[string]int{}, fail: map[string]bool{}}
}

func (l *syncLoader) Load(ctx context.Context, src string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[src]++
	if l.fail[src] {
		return errors.New("broken image")
	}
	return nil
}

func (l *syncLoader) callCount(src string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[src]
}

func waitWarm(t *testing.T, c *Cache, src string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !c.Warm(src) {
		if time.Now().After(deadline) {
			t.Fatalf("source %s never became warm", src)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRequestIdempotent(t *testing.T) {
	loader := newSyncLoader()
	c := New(loader)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		c.Request(ctx, "a.jpg")
	}
	waitWarm(t, c, "a.jpg")

	// Warm sources are not re-requested either.
	c.Request(ctx, "a.jpg")
	if got := loader.callCount("a.jpg"); got != 1 {
		t.Errorf("source should be loaded exactly once, got %d", got)
	}
}

func TestFailureSwallowedAndNotRetried(t *testing.T) {
	loader := newSyncLoader()
	loader.fail["bad.jpg"] = true
	c := New(loader)
	ctx := context.Background()

	c.Request(ctx, "bad.jpg")
	time.Sleep(20 * time.Millisecond)

	if c.Warm("bad.jpg") {
		t.Error("failed load must not mark the source warm")
	}

	c.Request(ctx, "bad.jpg")
	time.Sleep(20 * time.Millisecond)
	if got := loader.callCount("bad.jpg"); got != 1 {
		t.Errorf("failed source must not be retried, got %d calls", got)
	}
}

func TestDrainNotifiesObservers(t *testing.T) {
	c := New(newSyncLoader())
	ctx := context.Background()

	var notified atomic.Int32
	unsub := c.Subscribe(func(src string) { notified.Add(1) })

	c.Request(ctx, "a.jpg")
	waitWarm(t, c, "a.jpg")

	if n := c.Drain(); n != 1 {
		t.Fatalf("expected 1 drained notification, got %d", n)
	}
	if notified.Load() != 1 {
		t.Errorf("observer should have been notified once, got %d", notified.Load())
	}

	// After unsubscribe no further notifications arrive.
	unsub()
	c.Request(ctx, "b.jpg")
	waitWarm(t, c, "b.jpg")
	c.Drain()
	if notified.Load() != 1 {
		t.Errorf("unsubscribed observer must not be notified, got %d", notified.Load())
	}
}

func TestEmptySourceIgnored(t *testing.T) {
	loader := newSyncLoader()
	c := New(loader)
	c.Request(context.Background(), "")
	time.Sleep(10 * time.Millisecond)
	if got := loader.callCount(""); got != 0 {
		t.Errorf("empty source should be ignored, got %d calls", got)
	}
}
