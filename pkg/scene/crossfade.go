// Package scene computes what should be visible each frame — markers,
// labels, cards, contours — as immutable per-frame values keyed by entity
// id, and applies them to a rendering surface through a diffing renderer.
//
// Keeping the computation pure (dataset + transform + scheduler pass in,
// frame out) allows headless testing of culling and crossfade logic without
// a real surface.
package scene

import "math"

// Zoom bands of the three crossfading layers. Markers carry the view at
// low zoom, per-item labels take over in the middle band, cards at high
// zoom.
const (
	// CardFadeStart is the zoom at which cards begin to appear and
	// markers/item labels begin to leave.
	CardFadeStart = 5.0

	// CardFadeEnd is the zoom at which cards are fully opaque and markers
	// are gone.
	CardFadeEnd = 7.0

	// markerMaxOpacity caps marker opacity below full.
	markerMaxOpacity = 0.85

	// itemLabelMaxOpacity caps the middle label layer.
	itemLabelMaxOpacity = 0.9

	// itemLabelFadeEnd is the zoom by which item labels are gone.
	itemLabelFadeEnd = 5.0
)

// MarkerOpacity returns point-marker opacity at the given zoom: capped at
// 0.85 below the card band, fading to 0 as cards fade in.
func MarkerOpacity(zoom float64) float64 {
	switch {
	case zoom < CardFadeStart:
		return markerMaxOpacity
	case zoom >= CardFadeEnd:
		return 0
	default:
		return markerMaxOpacity * (1 - (zoom-CardFadeStart)/(CardFadeEnd-CardFadeStart))
	}
}

// ItemLabelOpacity returns the middle layer's opacity: min(0.9, 2/zoom)
// below zoom 3, then a linear fade to 0 by zoom 5.
func ItemLabelOpacity(zoom float64) float64 {
	if zoom <= 0 {
		return itemLabelMaxOpacity
	}
	base := math.Min(itemLabelMaxOpacity, 2/zoom)
	switch {
	case zoom < 3:
		return base
	case zoom >= itemLabelFadeEnd:
		return 0
	default:
		at3 := math.Min(itemLabelMaxOpacity, 2.0/3.0)
		return at3 * (1 - (zoom-3)/(itemLabelFadeEnd-3))
	}
}

// CardOpacity returns card opacity: 0 below the card band, ramping to 1
// across it.
func CardOpacity(zoom float64) float64 {
	switch {
	case zoom < CardFadeStart:
		return 0
	case zoom >= CardFadeEnd:
		return 1
	default:
		return (zoom - CardFadeStart) / (CardFadeEnd - CardFadeStart)
	}
}

// MarkerRadius returns the node marker radius in screen pixels for a zoom
// level. Markers shrink slowly as the view closes in so they read as
// points, never as discs.
func MarkerRadius(zoom float64) float64 {
	if zoom <= 0 {
		return 3.5
	}
	r := 3.5 / math.Sqrt(zoom)
	if r < 1.2 {
		r = 1.2
	}
	if r > 3.5 {
		r = 3.5
	}
	return r
}
