package interact

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/geom"
)

func testScales() *geom.Scales {
	return geom.NewScales(geom.Rect{MaxX: 100, MaxY: 100}, 800, 600, 30)
}

func testDataset() *dataset.Dataset {
	d := &dataset.Dataset{
		Mode: dataset.ModeImage,
		Items: []dataset.Item{
			{ID: "a", Position: [2]float64{10, 10}, ClusterID: 0},
			{ID: "b", Position: [2]float64{20, 15}, ClusterID: 0},
			{ID: "c", Position: [2]float64{90, 90}, ClusterID: dataset.Unclustered},
		},
		Clusters: []dataset.Cluster{
			{ID: 0, Centroid: [2]float64{15, 12.5}, Label: "blob", Size: 2},
			{ID: 1, Centroid: [2]float64{50, 50}, Label: "empty", Size: 0},
		},
	}
	d.Finalize()
	return d
}

func TestGestureFiltering(t *testing.T) {
	c := New(testScales())

	if c.PointerDown(geom.Point{}, ButtonSecondary, false) {
		t.Error("secondary-button gestures must be filtered")
	}
	if c.PointerDown(geom.Point{}, ButtonPrimary, true) {
		t.Error("control-modified gestures must be filtered")
	}
	if !c.PointerDown(geom.Point{}, ButtonPrimary, false) {
		t.Error("plain primary-button gesture should be accepted")
	}
}

func TestPanMovesTransform(t *testing.T) {
	c := New(testScales())
	before := c.Transform()

	c.PointerDown(geom.Point{X: 100, Y: 100}, ButtonPrimary, false)
	c.PointerMove(geom.Point{X: 130, Y: 80})
	c.PointerUp()

	after := c.Transform()
	if after.TranslateX-before.TranslateX != 30 || after.TranslateY-before.TranslateY != -20 {
		t.Errorf("pan delta wrong: %+v -> %+v", before, after)
	}
	if after.Scale != before.Scale {
		t.Error("panning must not change scale")
	}
}

func TestWheelZoomClamped(t *testing.T) {
	c := New(testScales())
	now := time.Unix(0, 0)
	min, max := c.ZoomExtent()

	// Zoom out hard: scale stays at min.
	for i := 0; i < 100; i++ {
		c.Wheel(1000, geom.Point{X: 400, Y: 300}, false, now)
	}
	if got := c.Transform().Scale; got < min || got > max {
		t.Errorf("scale %v escaped [%v, %v]", got, min, max)
	}

	// Zoom in hard: scale stays at max.
	for i := 0; i < 500; i++ {
		c.Wheel(-1000, geom.Point{X: 400, Y: 300}, false, now)
	}
	if got := c.Transform().Scale; got != max {
		t.Errorf("scale should clamp to max %v, got %v", max, got)
	}
}

func TestWheelKeepsCursorFixed(t *testing.T) {
	c := New(testScales())
	cursor := geom.Point{X: 250, Y: 180}

	before := c.Transform().Invert(cursor)
	c.Wheel(-200, cursor, false, time.Unix(0, 0))
	after := c.Transform().Invert(cursor)

	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Errorf("point under cursor moved: %+v -> %+v", before, after)
	}
}

func TestZoomToClusterAnimates(t *testing.T) {
	c := New(testScales())
	d := testDataset()
	start := time.Unix(0, 0)

	if !c.ZoomToCluster(d, 0, start) {
		t.Fatal("zoom to a populated cluster should start a transition")
	}
	if !c.Active(start) {
		t.Error("transition should count as activity")
	}

	// Midway the transform is between start and target.
	c.Step(start.Add(300 * time.Millisecond))
	mid := c.Transform()

	c.Step(start.Add(700 * time.Millisecond))
	final := c.Transform()
	if mid == final {
		t.Error("transition should still be moving at its midpoint")
	}

	// The cluster centroid ends near the viewport center.
	centroid := testScales().ToScreen(geom.Point{X: 15, Y: 12.5})
	onScreen := final.Apply(centroid)
	if math.Abs(onScreen.X-400) > 60 || math.Abs(onScreen.Y-300) > 60 {
		t.Errorf("cluster centroid should end near viewport center, got %+v", onScreen)
	}

	min, max := c.ZoomExtent()
	if final.Scale < min || final.Scale > max {
		t.Errorf("transition scale %v escaped zoom bounds", final.Scale)
	}
}

func TestZoomToEmptyClusterIsNoOp(t *testing.T) {
	c := New(testScales())
	d := testDataset()
	before := c.Transform()

	if c.ZoomToCluster(d, 1, time.Unix(0, 0)) {
		t.Error("zooming to a cluster with zero members should report false")
	}
	if c.Step(time.Unix(1, 0)); c.Transform() != before {
		t.Error("transform must be unchanged after a no-op zoom request")
	}
}

func TestResizePreservesDataCenter(t *testing.T) {
	scales := testScales()
	c := New(scales)

	// Establish a transform at zoom 2 looking at a known data point.
	target := scales.ToScreen(geom.Point{X: 30, Y: 70})
	c.SetTransform(geom.CenteredOn(target, 2, 800, 600))

	centerBefore := scales.ToData(c.Transform().Invert(geom.Point{X: 400, Y: 300}))

	newScales := geom.NewScales(geom.Rect{MaxX: 100, MaxY: 100}, 1200, 500, 30)
	c.Resize(newScales)

	centerAfter := newScales.ToData(c.Transform().Invert(geom.Point{X: 600, Y: 250}))
	if math.Abs(centerBefore.X-centerAfter.X) > 1e-6 || math.Abs(centerBefore.Y-centerAfter.Y) > 1e-6 {
		t.Errorf("data-space center moved on resize: %+v -> %+v", centerBefore, centerAfter)
	}

	min, max := newScales.ZoomExtent()
	if s := c.Transform().Scale; s < min || s > max {
		t.Errorf("resized scale %v outside [%v, %v]", s, min, max)
	}
}

func TestGestureEndFiresOnce(t *testing.T) {
	c := New(testScales())
	now := time.Unix(0, 0)

	c.PointerDown(geom.Point{}, ButtonPrimary, false)
	c.ConsumeGestureEnd(now) // prime: active
	c.PointerUp()

	if !c.ConsumeGestureEnd(now) {
		t.Error("gesture end should fire after pointer up")
	}
	if c.ConsumeGestureEnd(now) {
		t.Error("gesture end must fire exactly once")
	}
}

func TestWheelGestureEndsAfterIdle(t *testing.T) {
	c := New(testScales())
	start := time.Unix(0, 0)

	c.Wheel(-100, geom.Point{X: 400, Y: 300}, false, start)
	if !c.Active(start) {
		t.Error("wheel should begin a gesture")
	}
	c.ConsumeGestureEnd(start)

	later := start.Add(200 * time.Millisecond)
	if c.Active(later) {
		t.Error("wheel gesture should be idle after the idle window")
	}
	if !c.ConsumeGestureEnd(later) {
		t.Error("idle wheel gesture should produce one gesture end")
	}
}

func TestFitToDataUsesMinZoom(t *testing.T) {
	c := New(testScales())
	min, _ := c.ZoomExtent()
	if got := c.Transform().Scale; got != min {
		t.Errorf("fit view should sit at min zoom %v, got %v", min, got)
	}
}
