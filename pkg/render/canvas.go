package render

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/matzehuels/pointscape/pkg/density"
	"github.com/matzehuels/pointscape/pkg/geom"
	"github.com/matzehuels/pointscape/pkg/labels"
	"github.com/matzehuels/pointscape/pkg/scene"
)

// Canvas is a retained scene.Surface: it holds the live node set the
// diffing renderer maintains and serializes it to SVG on demand. Node order
// in the output is stable (sorted by id) regardless of upsert order.
type Canvas struct {
	width, height float64

	markers map[string]scene.MarkerState
	cards   map[string]scene.CardState

	labels         []labels.Placement
	itemLabels     []scene.ItemLabelState
	contours       []density.Contour
	contourOpacity float64
	indicator      string
}

// NewCanvas creates an empty canvas with the given document dimensions.
func NewCanvas(width, height float64) *Canvas {
	return &Canvas{
		width:   width,
		height:  height,
		markers: map[string]scene.MarkerState{},
		cards:   map[string]scene.CardState{},
	}
}

// UpsertMarker implements scene.Surface.
func (c *Canvas) UpsertMarker(m scene.MarkerState) { c.markers[m.ID] = m }

// RemoveMarker implements scene.Surface.
func (c *Canvas) RemoveMarker(id string) { delete(c.markers, id) }

// UpsertCard implements scene.Surface.
func (c *Canvas) UpsertCard(s scene.CardState) { c.cards[s.ID] = s }

// RemoveCard implements scene.Surface.
func (c *Canvas) RemoveCard(id string) { delete(c.cards, id) }

// SetLabels implements scene.Surface.
func (c *Canvas) SetLabels(placements []labels.Placement) { c.labels = placements }

// SetItemLabels implements scene.Surface.
func (c *Canvas) SetItemLabels(states []scene.ItemLabelState) { c.itemLabels = states }

// SetContours implements scene.Surface.
func (c *Canvas) SetContours(contours []density.Contour, opacity float64) {
	c.contours = contours
	c.contourOpacity = opacity
}

// SetIndicator implements scene.Surface.
func (c *Canvas) SetIndicator(text string) { c.indicator = text }

// MarkerCount returns the number of live marker nodes.
func (c *Canvas) MarkerCount() int { return len(c.markers) }

// CardCount returns the number of live card nodes.
func (c *Canvas) CardCount() int { return len(c.cards) }

// SVG serializes the retained scene. Contour paths live in base screen
// space, so the caller supplies the viewport transform of the frame it last
// applied.
func (c *Canvas) SVG(t geom.Transform) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		c.width, c.height, c.width, c.height)
	fmt.Fprintf(&buf, "  <rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", backgroundColor)

	frame := &scene.Frame{
		Transform:      t,
		Contours:       c.contours,
		ContourOpacity: c.contourOpacity,
		Labels:         c.labels,
	}
	renderContours(&buf, frame)
	renderMarkers(&buf, sortedMarkers(c.markers))
	renderItemLabels(&buf, c.itemLabels)
	renderCards(&buf, sortedCards(c.cards))
	renderLabels(&buf, frame)
	renderIndicator(&buf, c.indicator, c.width)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func sortedMarkers(m map[string]scene.MarkerState) []scene.MarkerState {
	out := make([]scene.MarkerState, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func sortedCards(m map[string]scene.CardState) []scene.CardState {
	out := make([]scene.CardState, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Ensure Canvas implements scene.Surface.
var _ scene.Surface = (*Canvas)(nil)
