// Package interact owns the pan/zoom gesture state machine and the
// scripted viewport transitions (fit-to-data, zoom-to-cluster).
//
// The controller is the only component that mutates the viewport
// transform. Time enters through explicit arguments so transitions are
// testable without a real clock.
package interact

import (
	"math"
	"time"

	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/geom"
)

// Button identifies the pointer button of a gesture.
type Button int

// Pointer buttons.
const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

const (
	// wheelIdle is how long after the last wheel event a wheel-zoom
	// gesture is considered finished.
	wheelIdle = 150 * time.Millisecond

	// transitionDuration is the fixed length of scripted transitions.
	transitionDuration = 600 * time.Millisecond

	// clusterPadding is the fixed screen padding around a cluster's
	// bounding box when zooming to it.
	clusterPadding = 48.0

	// wheelZoomRate converts wheel delta to a zoom exponent.
	wheelZoomRate = 1.0 / 500
)

// Controller is the interaction state machine.
type Controller struct {
	scales *geom.Scales
	tr     geom.Transform

	dragging    bool
	lastPointer geom.Point
	lastWheel   time.Time

	anim *transition

	prevActive bool
}

// transition is an in-flight scripted viewport animation.
type transition struct {
	from, to geom.Transform
	start    time.Time
}

// New creates a controller fitted to the full dataset view.
func New(scales *geom.Scales) *Controller {
	c := &Controller{scales: scales}
	c.FitToData()
	return c
}

// Transform returns the live viewport transform.
func (c *Controller) Transform() geom.Transform { return c.tr }

// ZoomExtent returns the [minZoom, maxZoom] bounds.
func (c *Controller) ZoomExtent() (min, max float64) { return c.scales.ZoomExtent() }

// PointerDown begins a pan gesture. Control-modified and non-primary
// gestures are filtered out; the method reports whether the gesture was
// accepted.
func (c *Controller) PointerDown(p geom.Point, button Button, ctrlHeld bool) bool {
	if button != ButtonPrimary || ctrlHeld {
		return false
	}
	c.anim = nil
	c.dragging = true
	c.lastPointer = p
	return true
}

// PointerMove pans the view while a drag gesture is active and reports
// whether the transform changed.
func (c *Controller) PointerMove(p geom.Point) bool {
	if !c.dragging {
		return false
	}
	c.tr.TranslateX += p.X - c.lastPointer.X
	c.tr.TranslateY += p.Y - c.lastPointer.Y
	c.lastPointer = p
	return true
}

// PointerUp ends the active drag gesture.
func (c *Controller) PointerUp() {
	c.dragging = false
}

// Wheel applies a zoom step centered on the cursor position.
// Control-modified wheel events are filtered out.
func (c *Controller) Wheel(deltaY float64, at geom.Point, ctrlHeld bool, now time.Time) bool {
	if ctrlHeld {
		return false
	}
	c.anim = nil
	c.lastWheel = now

	min, max := c.scales.ZoomExtent()
	oldScale := c.tr.Scale
	newScale := oldScale * math.Pow(2, -deltaY*wheelZoomRate)
	if newScale < min {
		newScale = min
	}
	if newScale > max {
		newScale = max
	}
	if newScale == oldScale {
		return false
	}

	// Keep the point under the cursor fixed.
	k := newScale / oldScale
	c.tr.TranslateX = at.X - (at.X-c.tr.TranslateX)*k
	c.tr.TranslateY = at.Y - (at.Y-c.tr.TranslateY)*k
	c.tr.Scale = newScale
	return true
}

// FitToData centers the full data bounding box at minimum zoom. The base
// scales place the padded extent symmetrically in the frame, so the fit
// view centers on the frame midpoint.
func (c *Controller) FitToData() {
	min, _ := c.scales.ZoomExtent()
	center := geom.Point{X: c.scales.Width / 2, Y: c.scales.Height / 2}
	c.tr = geom.CenteredOn(center, min, c.scales.Width, c.scales.Height)
}

// ZoomToCluster starts an eased transition to the bounding box of a
// cluster's members. A cluster with zero members is a no-op.
func (c *Controller) ZoomToCluster(d *dataset.Dataset, clusterID int, now time.Time) bool {
	members := d.MemberPoints(clusterID)
	if len(members) == 0 {
		return false
	}

	screen := make([]geom.Point, len(members))
	for i, p := range members {
		screen[i] = c.scales.ToScreen(p)
	}
	box := geom.Extent(screen).Expand(clusterPadding)

	min, max := c.scales.ZoomExtent()
	scale := math.Min(c.scales.Width/math.Max(box.Width(), 1e-9),
		c.scales.Height/math.Max(box.Height(), 1e-9))
	if scale < min {
		scale = min
	}
	if scale > max {
		scale = max
	}

	target := geom.CenteredOn(box.Center(), scale, c.scales.Width, c.scales.Height)
	c.anim = &transition{from: c.tr, to: target, start: now}
	return true
}

// Step advances any in-flight transition and reports whether the transform
// changed this tick.
func (c *Controller) Step(now time.Time) bool {
	if c.anim == nil {
		return false
	}
	t := float64(now.Sub(c.anim.start)) / float64(transitionDuration)
	if t >= 1 {
		c.tr = c.anim.to
		c.anim = nil
		return true
	}
	if t < 0 {
		t = 0
	}
	e := easeInOut(t)
	c.tr = geom.Transform{
		TranslateX: lerp(c.anim.from.TranslateX, c.anim.to.TranslateX, e),
		TranslateY: lerp(c.anim.from.TranslateY, c.anim.to.TranslateY, e),
		Scale:      lerp(c.anim.from.Scale, c.anim.to.Scale, e),
	}
	return true
}

// Active reports whether a gesture or transition is in progress.
func (c *Controller) Active(now time.Time) bool {
	return c.dragging || c.anim != nil || now.Sub(c.lastWheel) < wheelIdle
}

// ConsumeGestureEnd reports true exactly once when activity transitions
// from active to idle. The scheduler uses it to trigger the final
// unconditional pass.
func (c *Controller) ConsumeGestureEnd(now time.Time) bool {
	active := c.Active(now)
	ended := c.prevActive && !active
	c.prevActive = active
	return ended
}

// Resize re-clamps the live transform against new scales while preserving
// the data-space viewport center. The view is never silently re-centered
// or re-fit on resize.
func (c *Controller) Resize(newScales *geom.Scales) {
	oldCenter := geom.Point{X: c.scales.Width / 2, Y: c.scales.Height / 2}
	centerData := c.scales.ToData(c.tr.Invert(oldCenter))

	min, max := newScales.ZoomExtent()
	scale := c.tr.Scale
	if scale < min {
		scale = min
	}
	if scale > max {
		scale = max
	}

	c.scales = newScales
	c.anim = nil
	c.tr = geom.CenteredOn(newScales.ToScreen(centerData), scale, newScales.Width, newScales.Height)
}

// SetTransform replaces the live transform, clamped to the zoom extent.
// Used by scripted callers (snapshot rendering at an explicit zoom).
func (c *Controller) SetTransform(t geom.Transform) {
	min, max := c.scales.ZoomExtent()
	c.tr = t.Clamp(min, max)
}

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
