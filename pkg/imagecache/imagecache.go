// Package imagecache tracks which card images are "warm" — confirmed
// loaded and safe to display immediately.
//
// Loading is asynchronous and idempotent: a source is requested at most
// once, loads never block rendering, and failures are swallowed (the card
// simply stays in its skeleton state). Completions are queued and drained
// by the engine tick, so observers always run on the engine's goroutine.
// The warm set is monotonic: entries are only ever added, never evicted.
package imagecache

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/pointscape/pkg/observability"
)

// Loader fetches one image source. Implementations decide what "loaded"
// means (file readable, HTTP fetch done, texture decoded).
type Loader interface {
	Load(ctx context.Context, src string) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, src string) error

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, src string) error { return f(ctx, src) }

// Observer is notified with the source that just became warm.
type Observer func(src string)

// readyQueueSize bounds the completion queue; the engine drains it every
// tick, so it only needs to absorb one burst.
const readyQueueSize = 256

// Cache is the image warm cache.
type Cache struct {
	loader Loader

	mu        sync.Mutex
	warm      map[string]struct{}
	requested map[string]struct{}
	observers map[int]Observer
	nextObs   int

	ready chan string
}

// New creates a cache backed by the given loader.
func New(loader Loader) *Cache {
	return &Cache{
		loader:    loader,
		warm:      map[string]struct{}{},
		requested: map[string]struct{}{},
		observers: map[int]Observer{},
		ready:     make(chan string, readyQueueSize),
	}
}

// Warm reports whether src has finished loading.
func (c *Cache) Warm(src string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.warm[src]
	return ok
}

// Request asks for src to be loaded. Requests are idempotent: a source
// already warm or already in flight is not requested again, including
// sources whose earlier load failed.
func (c *Cache) Request(ctx context.Context, src string) {
	if src == "" {
		return
	}
	c.mu.Lock()
	if _, done := c.warm[src]; done {
		c.mu.Unlock()
		return
	}
	if _, inflight := c.requested[src]; inflight {
		c.mu.Unlock()
		return
	}
	c.requested[src] = struct{}{}
	c.mu.Unlock()

	go func() {
		observability.Image().OnLoadStart(src)
		start := time.Now()
		err := c.loader.Load(ctx, src)
		observability.Image().OnLoadComplete(src, time.Since(start), err)
		if err != nil {
			// Swallowed: the card stays skeletal, retrying is out of scope.
			return
		}
		c.mu.Lock()
		c.warm[src] = struct{}{}
		c.mu.Unlock()

		select {
		case c.ready <- src:
		default:
			// Queue full: the warm set is already updated, the next full
			// redraw picks the image up anyway.
		}
	}()
}

// Subscribe registers an observer for image-ready notifications and
// returns its unsubscribe function. Callers must unsubscribe on teardown;
// re-renders resubscribe, so listeners never accumulate across dataset
// loads.
func (c *Cache) Subscribe(obs Observer) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = obs
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Drain dispatches queued image-ready notifications to the current
// observers and returns how many were delivered. Called from the engine
// tick, keeping observer callbacks single-threaded.
func (c *Cache) Drain() int {
	n := 0
	for {
		select {
		case src := <-c.ready:
			c.mu.Lock()
			obs := make([]Observer, 0, len(c.observers))
			for _, o := range c.observers {
				obs = append(obs, o)
			}
			c.mu.Unlock()
			for _, o := range obs {
				o(src)
			}
			n++
		default:
			return n
		}
	}
}
