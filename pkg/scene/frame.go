package scene

import (
	"github.com/matzehuels/pointscape/pkg/density"
	"github.com/matzehuels/pointscape/pkg/geom"
	"github.com/matzehuels/pointscape/pkg/labels"
)

// MarkerState is the per-frame state of one point marker.
type MarkerState struct {
	ID      string
	Pos     geom.Point // transformed screen position
	Radius  float64
	Opacity float64
	Cluster int
}

// ItemLabelState is the per-frame state of one item label: the middle
// crossfade layer carrying short item titles between the marker and card
// bands.
type ItemLabelState struct {
	ID      string
	Pos     geom.Point // transformed screen position
	Text    string
	Opacity float64
}

// CardState is the per-frame state of one content card.
type CardState struct {
	ID      string
	Pos     geom.Point // transformed screen position
	Scale   float64    // counter-scale keeping screen size constant
	Opacity float64
	Warm    bool // imagery loaded and safe to show
	Title   string
	Snippet string
	Content string
	ClipID  string
}

// Frame is everything a surface needs to draw one tick. Frames are freshly
// computed, immutable values; renderers diff consecutive frames to decide
// node creation and removal.
type Frame struct {
	Transform geom.Transform

	Contours       []density.Contour
	ContourOpacity float64

	Markers    []MarkerState
	ItemLabels []ItemLabelState
	Labels     []labels.Placement
	Cards      []CardState

	Indicator string
}

// Surface is the adapter between computed frames and an actual rendering
// target (SVG writer, terminal, DOM-like scene graph). Implementations
// receive diffed card/marker ops so they can reuse live nodes, plus
// wholesale label/contour swaps which are cheap.
type Surface interface {
	// UpsertMarker creates or updates a marker node.
	UpsertMarker(m MarkerState)
	// RemoveMarker drops a marker node.
	RemoveMarker(id string)

	// UpsertCard creates or updates a card node.
	UpsertCard(c CardState)
	// RemoveCard drops a card node.
	RemoveCard(id string)

	// SetLabels replaces the visible cluster labels.
	SetLabels(placements []labels.Placement)
	// SetItemLabels replaces the item label layer.
	SetItemLabels(states []ItemLabelState)
	// SetContours replaces the terrain contours.
	SetContours(contours []density.Contour, opacity float64)
	// SetIndicator updates the region indicator text.
	SetIndicator(text string)
}

// Renderer applies frames to a surface by diffing against the previously
// applied frame, keyed by entity id.
type Renderer struct {
	surface Surface

	prevMarkers map[string]MarkerState
	prevCards   map[string]CardState
}

// NewRenderer creates a renderer targeting the given surface.
func NewRenderer(s Surface) *Renderer {
	return &Renderer{
		surface:     s,
		prevMarkers: map[string]MarkerState{},
		prevCards:   map[string]CardState{},
	}
}

// Apply pushes a frame to the surface. Marker and card nodes are created,
// updated or removed by id diff; labels, item labels, contours and the
// indicator are replaced wholesale.
func (r *Renderer) Apply(f *Frame) {
	nextMarkers := make(map[string]MarkerState, len(f.Markers))
	for _, m := range f.Markers {
		nextMarkers[m.ID] = m
		if prev, ok := r.prevMarkers[m.ID]; !ok || prev != m {
			r.surface.UpsertMarker(m)
		}
	}
	for id := range r.prevMarkers {
		if _, ok := nextMarkers[id]; !ok {
			r.surface.RemoveMarker(id)
		}
	}
	r.prevMarkers = nextMarkers

	nextCards := make(map[string]CardState, len(f.Cards))
	for _, c := range f.Cards {
		nextCards[c.ID] = c
		if prev, ok := r.prevCards[c.ID]; !ok || prev != c {
			r.surface.UpsertCard(c)
		}
	}
	for id := range r.prevCards {
		if _, ok := nextCards[id]; !ok {
			r.surface.RemoveCard(id)
		}
	}
	r.prevCards = nextCards

	r.surface.SetLabels(f.Labels)
	r.surface.SetItemLabels(f.ItemLabels)
	r.surface.SetContours(f.Contours, f.ContourOpacity)
	r.surface.SetIndicator(f.Indicator)
}

// Reset forgets the previously applied frame, forcing the next Apply to
// recreate every node. Used on dataset reload.
func (r *Renderer) Reset() {
	r.prevMarkers = map[string]MarkerState{}
	r.prevCards = map[string]CardState{}
}
