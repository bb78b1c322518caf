package geom

// Transform is the live viewport transform. Exactly one is current at a
// time: the interaction controller mutates it, every other component reads
// it for the frame being computed.
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
}

// Identity is the untransformed viewport.
var Identity = Transform{Scale: 1}

// Apply maps a base screen point into transformed screen space.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.Scale + t.TranslateX, Y: p.Y*t.Scale + t.TranslateY}
}

// Invert maps a transformed screen point back to base screen space.
func (t Transform) Invert(p Point) Point {
	s := t.Scale
	if s < epsilon {
		s = epsilon
	}
	return Point{X: (p.X - t.TranslateX) / s, Y: (p.Y - t.TranslateY) / s}
}

// Clamp returns t with its scale limited to [min, max]. The translation is
// preserved as-is; callers that need a stable center re-derive it.
func (t Transform) Clamp(min, max float64) Transform {
	if t.Scale < min {
		t.Scale = min
	}
	if t.Scale > max {
		t.Scale = max
	}
	return t
}

// VisibleRect returns the base-screen-space rectangle currently covered by
// a viewport of the given size, expanded by margin screen pixels on every
// side (converted through the inverse transform) to avoid pop-in at the
// edges.
func (t Transform) VisibleRect(width, height, margin float64) Rect {
	tl := t.Invert(Point{X: -margin, Y: -margin})
	br := t.Invert(Point{X: width + margin, Y: height + margin})
	return Rect{MinX: tl.X, MinY: tl.Y, MaxX: br.X, MaxY: br.Y}
}

// CenteredOn returns a transform at the given scale whose view of a
// width×height viewport is centered on the base screen point c.
func CenteredOn(c Point, scale, width, height float64) Transform {
	return Transform{
		TranslateX: width/2 - c.X*scale,
		TranslateY: height/2 - c.Y*scale,
		Scale:      scale,
	}
}
