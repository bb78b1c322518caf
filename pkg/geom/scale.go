package geom

import "math"

const (
	// domainPadding widens the data extent before fitting it to the
	// viewport, so edge points are not flush against the margin.
	domainPadding = 0.08

	// epsilon is the minimum denominator for scale construction.
	// Degenerate extents (single point, zero span) clamp to it instead
	// of dividing by zero.
	epsilon = 1e-9

	// MaxZoom is the fixed upper zoom bound.
	MaxZoom = 25.0

	// minZoomFloor is the absolute lower zoom bound regardless of fit.
	minZoomFloor = 0.05

	// fitSlack leaves a little headroom below the exact fit scale so the
	// whole dataset sits comfortably inside the frame at minimum zoom.
	fitSlack = 0.9
)

// linear maps a data interval onto a screen interval.
type linear struct {
	d0, d1 float64 // domain
	r0, r1 float64 // range
}

func (l linear) apply(v float64) float64 {
	den := l.d1 - l.d0
	if math.Abs(den) < epsilon {
		den = epsilon
	}
	return l.r0 + (v-l.d0)/den*(l.r1-l.r0)
}

func (l linear) invert(v float64) float64 {
	den := l.r1 - l.r0
	if math.Abs(den) < epsilon {
		den = epsilon
	}
	return l.d0 + (v-l.r0)/den*(l.d1-l.d0)
}

// Scales maps dataset coordinates to base screen coordinates (zoom 1) and
// carries the zoom bounds derived from the fit.
type Scales struct {
	x, y linear

	// Width and Height are the viewport dimensions the scales were built for.
	Width, Height float64

	// MinZoom is the lowest allowed zoom, derived from the fit-to-data
	// scale with a slack factor, never below the global floor.
	MinZoom float64

	// Degenerate is set when the data extent had no usable span and the
	// zoom bounds fell back to fixed values.
	Degenerate bool
}

// NewScales builds scale functions for the given data extent and viewport.
// The domain is the extent padded by 8% per side; the range is the viewport
// inset by margin on every side.
func NewScales(extent Rect, width, height, margin float64) *Scales {
	padX := extent.Width() * domainPadding
	padY := extent.Height() * domainPadding

	s := &Scales{
		x:      linear{d0: extent.MinX - padX, d1: extent.MaxX + padX, r0: margin, r1: width - margin},
		y:      linear{d0: extent.MinY - padY, d1: extent.MaxY + padY, r0: margin, r1: height - margin},
		Width:  width,
		Height: height,
	}

	s.Degenerate = extent.Width() < epsilon || extent.Height() < epsilon
	s.MinZoom = math.Max(minZoomFloor, s.fitScale()*fitSlack)
	return s
}

// fitScale is the zoom at which the margin-inset content band exactly fills
// the full frame. The base scales map the padded extent onto the inset band,
// so this is slightly above 1 and depends only on the margin ratio.
func (s *Scales) fitScale() float64 {
	if s.Degenerate {
		return 1
	}
	spanX := math.Max(s.x.r1-s.x.r0, epsilon)
	spanY := math.Max(s.y.r1-s.y.r0, epsilon)
	return math.Min(s.Width/spanX, s.Height/spanY)
}

// ToScreen maps a data point to base screen coordinates.
func (s *Scales) ToScreen(p Point) Point {
	return Point{X: s.x.apply(p.X), Y: s.y.apply(p.Y)}
}

// ToData maps a base screen point back to data coordinates.
func (s *Scales) ToData(p Point) Point {
	return Point{X: s.x.invert(p.X), Y: s.y.invert(p.Y)}
}

// ZoomExtent returns the [min, max] zoom bounds.
func (s *Scales) ZoomExtent() (min, max float64) {
	return s.MinZoom, MaxZoom
}
