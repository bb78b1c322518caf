package engine

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/geom"
	"github.com/matzehuels/pointscape/pkg/imagecache"
	"github.com/matzehuels/pointscape/pkg/interact"
	"github.com/matzehuels/pointscape/pkg/scene"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1000, 0)} }

func okLoader(context.Context, string) error { return nil }

func testLogger() *log.Logger { return log.New(io.Discard) }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 800
	cfg.Height = 600
	cfg.Margin = 30
	return cfg
}

// gridDataset builds a 10x10 point grid split into a left and a right
// cluster.
func gridDataset() *dataset.Dataset {
	d := &dataset.Dataset{Mode: dataset.ModeImage}
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			cluster := 0
			if i >= 5 {
				cluster = 1
			}
			d.Items = append(d.Items, dataset.Item{
				ID:        fmt.Sprintf("p%d%d", i, j),
				Position:  [2]float64{float64(i * 10), float64(j * 10)},
				ClusterID: cluster,
				Content:   fmt.Sprintf("img_%d%d.jpg", i, j),
			})
		}
	}
	d.Clusters = []dataset.Cluster{
		{ID: 0, Centroid: [2]float64{20, 45}, Label: "left", Size: 50},
		{ID: 1, Centroid: [2]float64{70, 45}, Label: "right", Size: 50},
	}
	return d
}

func newTestEngine(t *testing.T, d *dataset.Dataset) (*Engine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	e := New(testConfig(), imagecache.LoaderFunc(okLoader), clock.Now, testLogger())
	if err := e.Load(context.Background(), d); err != nil {
		t.Fatalf("load: %v", err)
	}
	return e, clock
}

// zoomTo parks the view at the given zoom centered on a data point and
// flushes one frame so throttle and membership state are established.
func zoomTo(e *Engine, clock *fakeClock, center geom.Point, zoom float64) *scene.Frame {
	target := e.Scales().ToScreen(center)
	e.Controller().SetTransform(geom.CenteredOn(target, zoom, e.cfg.Width, e.cfg.Height))
	e.RequestRedraw()
	clock.advance(200 * time.Millisecond)
	return e.Tick()
}

func TestLoadEmptyDatasetRendersNothing(t *testing.T) {
	e, _ := newTestEngine(t, &dataset.Dataset{})

	f := e.Tick()
	if f == nil {
		t.Fatal("load should prime one frame even for an empty dataset")
	}
	if len(f.Markers) != 0 || len(f.Cards) != 0 || len(f.Labels) != 0 || len(f.Contours) != 0 {
		t.Errorf("empty dataset must render nothing, got %d markers %d cards %d labels %d contours",
			len(f.Markers), len(f.Cards), len(f.Labels), len(f.Contours))
	}
}

func TestFirstTickProducesFullFrame(t *testing.T) {
	e, _ := newTestEngine(t, gridDataset())

	f := e.Tick()
	if f == nil {
		t.Fatal("first tick after load must produce a frame")
	}
	if len(f.Markers) != 100 {
		t.Errorf("expected all 100 markers at the fit view, got %d", len(f.Markers))
	}
	if len(f.Contours) == 0 {
		t.Error("terrain contours missing")
	}
	if f.ContourOpacity <= 0 {
		t.Error("contours should be visible at the fit view")
	}
	if len(f.Labels) == 0 {
		t.Error("cluster labels missing at the fit view")
	}
	if len(f.Cards) != 0 {
		t.Errorf("no cards should exist at the fit view, got %d", len(f.Cards))
	}
}

func TestTickIsNoOpWithoutEvents(t *testing.T) {
	e, clock := newTestEngine(t, gridDataset())

	if e.Tick() == nil {
		t.Fatal("primed tick missing")
	}
	clock.advance(time.Second)
	if f := e.Tick(); f != nil {
		t.Error("tick without pending transform or gesture end must be a no-op")
	}
}

func TestWheelEventsCoalesce(t *testing.T) {
	e, clock := newTestEngine(t, gridDataset())
	e.Tick()
	clock.advance(200 * time.Millisecond)

	for i := 0; i < 50; i++ {
		e.Wheel(-20, geom.Point{X: 400, Y: 300}, false)
	}
	f := e.Tick()
	if f == nil {
		t.Fatal("wheel burst should yield one frame")
	}
	if f.Transform != e.Controller().Transform() {
		t.Error("coalesced frame must carry the final transform of the burst")
	}

	// The wheel gesture ends after the idle window, producing exactly one
	// flush frame; after that, ticks are no-ops again.
	clock.advance(300 * time.Millisecond)
	if e.Tick() == nil {
		t.Fatal("gesture end should flush one final frame")
	}
	if e.Tick() != nil {
		t.Error("tick after the flush must be a no-op")
	}
}

func TestCrossfadeAcrossZoomBands(t *testing.T) {
	e, _ := newTestEngine(t, gridDataset())
	center := e.Scales().ToScreen(geom.Point{X: 45, Y: 45})

	far := e.Snapshot(geom.CenteredOn(center, 1, 800, 600))
	if len(far.Markers) == 0 {
		t.Error("markers must carry the view at low zoom")
	}
	if len(far.Cards) != 0 {
		t.Error("cards must not exist below the card band")
	}

	near := e.Snapshot(geom.CenteredOn(center, 10, 800, 600))
	if len(near.Markers) != 0 {
		t.Error("markers must be gone past the card band")
	}
	if len(near.Cards) == 0 {
		t.Error("cards must be visible past the card band")
	}
	for _, c := range near.Cards {
		if c.Opacity != 1 {
			t.Errorf("card %s should be fully opaque at zoom 10, got %v", c.ID, c.Opacity)
		}
		if c.Scale != 0.1 {
			t.Errorf("card %s should counter-scale by 1/zoom, got %v", c.ID, c.Scale)
		}
	}
	if near.Indicator == "" {
		t.Error("region indicator should name the cluster under the viewport center")
	}
}

func TestMiddleBandCarriesItemLabels(t *testing.T) {
	e, _ := newTestEngine(t, gridDataset())
	center := e.Scales().ToScreen(geom.Point{X: 45, Y: 45})

	mid := e.Snapshot(geom.CenteredOn(center, 3, 800, 600))
	if len(mid.ItemLabels) != 100 {
		t.Fatalf("expected an item label per item in the middle band, got %d", len(mid.ItemLabels))
	}
	if len(mid.Cards) != 0 {
		t.Error("cards must not exist in the middle band")
	}
	want := scene.ItemLabelOpacity(3)
	for _, il := range mid.ItemLabels {
		if il.Opacity != want {
			t.Fatalf("item label opacity %v, want %v", il.Opacity, want)
		}
		if il.Text == "" {
			t.Fatal("item labels must carry the item title")
		}
	}

	near := e.Snapshot(geom.CenteredOn(center, 6, 800, 600))
	if len(near.ItemLabels) != 0 {
		t.Errorf("item labels must be gone past the fade end, got %d", len(near.ItemLabels))
	}
}

func TestCardCapRampsWithOpacity(t *testing.T) {
	e, _ := newTestEngine(t, gridDataset())
	center := e.Scales().ToScreen(geom.Point{X: 45, Y: 45})

	// Just inside the card band the effective cap is a small slice of the
	// configured maximum.
	f := e.Snapshot(geom.CenteredOn(center, 5.2, 800, 600))
	wantCap := e.cardCap(scene.CardOpacity(5.2))
	if wantCap >= e.cfg.MaxCards {
		t.Fatalf("test premise broken: ramped cap %d not below max %d", wantCap, e.cfg.MaxCards)
	}
	if len(f.Cards) > wantCap {
		t.Errorf("card count %d exceeds ramped cap %d", len(f.Cards), wantCap)
	}
}

func TestCardMembershipFrozenDuringGesture(t *testing.T) {
	e, clock := newTestEngine(t, gridDataset())
	e.Tick()

	f := zoomTo(e, clock, geom.Point{X: 45, Y: 45}, 6)
	if f == nil || len(f.Cards) == 0 {
		t.Fatal("expected visible cards at zoom 6")
	}
	frozen := append([]string(nil), e.cardIDs...)

	// Drag far enough that a fresh query would select different cards.
	e.PointerDown(geom.Point{X: 400, Y: 300}, interact.ButtonPrimary, false)
	clock.advance(60 * time.Millisecond)
	e.PointerMove(geom.Point{X: -200, Y: -150})
	if f := e.Tick(); f == nil {
		t.Fatal("drag tick should produce a frame")
	}
	if !reflect.DeepEqual(e.cardIDs, frozen) {
		t.Error("card membership must stay frozen while the gesture is active")
	}

	// Releasing the pointer flushes one unconditional pass that recomputes
	// membership for the new viewport.
	e.PointerUp()
	clock.advance(60 * time.Millisecond)
	if f := e.Tick(); f == nil {
		t.Fatal("gesture end should flush a frame")
	}
	fresh := e.queryCards(e.Controller().Transform(), scene.CardOpacity(e.Controller().Transform().Scale))
	if !reflect.DeepEqual(e.cardIDs, fresh) {
		t.Error("gesture end must recompute card membership from the live viewport")
	}
}

func TestLabelsReprojectBetweenPasses(t *testing.T) {
	e, clock := newTestEngine(t, gridDataset())
	f1 := e.Tick()
	if f1 == nil || len(f1.Labels) == 0 {
		t.Fatal("expected labels on the first frame")
	}

	// A pan tick well inside the label throttle window must reuse the
	// placed set but move the anchors with the transform.
	e.PointerDown(geom.Point{X: 400, Y: 300}, interact.ButtonPrimary, false)
	clock.advance(10 * time.Millisecond)
	e.PointerMove(geom.Point{X: 430, Y: 300})
	f2 := e.Tick()
	if f2 == nil {
		t.Fatal("pan tick should produce a frame")
	}
	if len(f2.Labels) != len(f1.Labels) {
		t.Fatalf("label set changed inside the throttle window: %d -> %d", len(f1.Labels), len(f2.Labels))
	}
	for i := range f2.Labels {
		if f2.Labels[i].ClusterID != f1.Labels[i].ClusterID {
			t.Error("label selection must be sticky between placement passes")
		}
		dx := f2.Labels[i].Anchor.X - f1.Labels[i].Anchor.X
		if dx < 29.9 || dx > 30.1 {
			t.Errorf("label anchor should pan with the view, moved %v", dx)
		}
	}
}

func TestCardsWarmUpThroughTheCache(t *testing.T) {
	e, clock := newTestEngine(t, gridDataset())
	e.Tick()

	f := zoomTo(e, clock, geom.Point{X: 45, Y: 45}, 6)
	if f == nil || len(f.Cards) == 0 {
		t.Fatal("expected visible cards at zoom 6")
	}
	for _, c := range f.Cards {
		if c.Warm {
			t.Fatalf("card %s warm before its image loaded", c.ID)
		}
	}

	// The loader succeeds immediately; wait for the async completions,
	// then one tick drains them and re-renders with warm cards.
	deadline := time.Now().Add(2 * time.Second)
	for _, c := range f.Cards {
		for !e.Images().Warm(c.Content) {
			if time.Now().After(deadline) {
				t.Fatalf("image %s never warmed", c.Content)
			}
			time.Sleep(time.Millisecond)
		}
	}
	clock.advance(100 * time.Millisecond)
	f2 := e.Tick()
	if f2 == nil {
		t.Fatal("drained image completions should trigger a redraw")
	}
	for _, c := range f2.Cards {
		if !c.Warm {
			t.Errorf("card %s should be warm after its image loaded", c.ID)
		}
	}
}

func TestTextCardsAreAlwaysWarm(t *testing.T) {
	d := gridDataset()
	d.Mode = dataset.ModeText
	for i := range d.Items {
		d.Items[i].Preview = "some preview text for the card"
	}
	e, clock := newTestEngine(t, d)
	e.Tick()

	f := zoomTo(e, clock, geom.Point{X: 45, Y: 45}, 6)
	if f == nil || len(f.Cards) == 0 {
		t.Fatal("expected visible cards at zoom 6")
	}
	for _, c := range f.Cards {
		if !c.Warm {
			t.Errorf("text card %s needs no imagery and must render immediately", c.ID)
		}
	}
}

func TestSnapshotDoesNotDisturbLiveState(t *testing.T) {
	e, _ := newTestEngine(t, gridDataset())
	e.Tick()

	labelsBefore := len(e.labelSet)
	cardsBefore := append([]string(nil), e.cardIDs...)

	center := e.Scales().ToScreen(geom.Point{X: 45, Y: 45})
	if f := e.Snapshot(geom.CenteredOn(center, 10, 800, 600)); len(f.Cards) == 0 {
		t.Fatal("snapshot at zoom 10 should contain cards")
	}

	if len(e.labelSet) != labelsBefore {
		t.Error("snapshot must not replace the live label set")
	}
	if !reflect.DeepEqual(e.cardIDs, cardsBefore) {
		t.Error("snapshot must not replace the live card membership")
	}
}

func TestResizeRebuildsGeometry(t *testing.T) {
	e, _ := newTestEngine(t, gridDataset())
	e.Tick()

	e.Resize(1200, 500)
	if e.Scales().Width != 1200 || e.Scales().Height != 500 {
		t.Fatalf("scales not rebuilt: %gx%g", e.Scales().Width, e.Scales().Height)
	}
	f := e.Tick()
	if f == nil {
		t.Fatal("resize should request a redraw")
	}
	if len(f.Markers) != 100 {
		t.Errorf("markers lost on resize, got %d", len(f.Markers))
	}
}

func TestZoomToClusterAnimatesOverTicks(t *testing.T) {
	e, clock := newTestEngine(t, gridDataset())
	e.Tick()

	if !e.ZoomToCluster(1) {
		t.Fatal("zoom to a populated cluster should start")
	}
	clock.advance(100 * time.Millisecond)
	f1 := e.Tick()
	clock.advance(300 * time.Millisecond)
	f2 := e.Tick()
	if f1 == nil || f2 == nil {
		t.Fatal("transition ticks should produce frames")
	}
	if f1.Transform == f2.Transform {
		t.Error("transform should move across transition ticks")
	}

	if e.ZoomToCluster(99) {
		t.Error("zooming to an unknown cluster must be a no-op")
	}
}
