package spatial

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/matzehuels/pointscape/pkg/geom"
)

func randomEntries(n int, seed int64) []Entry {
	rng := rand.New(rand.NewSource(seed))
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			ID:  fmt.Sprintf("p%d", i),
			Pos: geom.Point{X: rng.Float64() * 1000, Y: rng.Float64() * 1000},
		}
	}
	return entries
}

func TestQueryFindsContainedPoints(t *testing.T) {
	entries := randomEntries(500, 1)
	idx := New(entries)
	if idx.Len() != 500 {
		t.Fatalf("expected 500 indexed entries, got %d", idx.Len())
	}

	rect := geom.Rect{MinX: 200, MinY: 200, MaxX: 600, MaxY: 600}
	got := idx.Query(rect, 10000)

	want := 0
	for _, e := range entries {
		if rect.Contains(e.Pos) {
			want++
		}
	}
	if len(got) != want {
		t.Errorf("query returned %d entries, brute force found %d", len(got), want)
	}
	for _, e := range got {
		if !rect.Contains(e.Pos) {
			t.Errorf("entry %s at %+v outside query rect", e.ID, e.Pos)
		}
	}
}

func TestQueryBoundedByCap(t *testing.T) {
	// The cap must hold regardless of how many points are inside.
	for _, n := range []int{10, 1000, 20000} {
		idx := New(randomEntries(n, 2))
		everything := geom.Rect{MinX: -1, MinY: -1, MaxX: 1001, MaxY: 1001}

		const limit = 7
		got := idx.Query(everything, limit)
		if len(got) > limit {
			t.Errorf("n=%d: query returned %d > cap %d", n, len(got), limit)
		}
		if n >= limit && len(got) != limit {
			t.Errorf("n=%d: query should fill the cap, got %d", n, len(got))
		}
	}
}

func TestQueryEmptyIndex(t *testing.T) {
	idx := New(nil)
	if got := idx.Query(geom.Rect{MaxX: 10, MaxY: 10}, 5); len(got) != 0 {
		t.Errorf("empty index should return no results, got %d", len(got))
	}
}

func TestCoincidentPoints(t *testing.T) {
	// All points identical: splitting can never separate them, the leaf
	// must keep growing instead of recursing forever.
	entries := make([]Entry, 100)
	for i := range entries {
		entries[i] = Entry{ID: fmt.Sprintf("c%d", i), Pos: geom.Point{X: 5, Y: 5}}
	}
	idx := New(entries)

	got := idx.Query(geom.Rect{MinX: 4, MinY: 4, MaxX: 6, MaxY: 6}, 1000)
	if len(got) != 100 {
		t.Errorf("expected all 100 coincident points, got %d", len(got))
	}
}

func TestQueryZeroCap(t *testing.T) {
	idx := New(randomEntries(10, 3))
	if got := idx.Query(geom.Rect{MaxX: 1000, MaxY: 1000}, 0); got != nil {
		t.Errorf("zero cap should return nil, got %d entries", len(got))
	}
}
