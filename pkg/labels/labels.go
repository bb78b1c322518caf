// Package labels decides, for every frame, which cluster labels are shown
// and how they are styled.
//
// The pass runs as three stages: candidate selection (label-of-detail tier
// and visibility cap from the current zoom), a greedy collision filter
// (priority-ordered, approximate bounding boxes, first accepted wins), and
// style resolution (continuous blending between three zoom presets).
//
// Placements are freshly computed values keyed by cluster id; nothing here
// mutates long-lived render state.
package labels

import (
	"sort"

	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/geom"
)

// Label-of-detail tier thresholds on zoom.
const (
	tierMidZoom    = 1.6 // below: broad
	tierDetailZoom = 3.2 // below: mid, above: detail
)

// Visibility cap parameters. Wide views show only the headline clusters;
// the cap rises with zoom but stays bounded.
const (
	capBase     = 4
	capPerZoom  = 3.0
	capMax      = 14
	capMinSmall = 3
)

// Text metrics approximation. Label collision uses a cheap fixed
// per-character width estimate, not glyph measurement.
const (
	charWidthRatio  = 0.55
	lineHeightRatio = 1.2
)

// Options configures a placement pass.
type Options struct {
	// Zoom is the current viewport scale.
	Zoom float64

	// Compact lowers the visibility cap for dense displays (coarse
	// pointers, small viewports).
	Compact bool

	// Viewport, when non-zero, culls candidates whose anchor falls outside
	// the rectangle (screen space, already margin-expanded by the caller).
	Viewport geom.Rect

	// Indicator requests the most detailed tier regardless of zoom, used
	// for the region indicator text rather than on-map labels.
	Indicator bool
}

// Placement is the per-cluster outcome of one label pass.
type Placement struct {
	ClusterID int
	Text      string
	Anchor    geom.Point // label center, screen space
	Box       geom.Rect  // approximate screen bounding box
	Style     Style
}

// TierForZoom returns the label-of-detail tier for a zoom level:
// 0 (broad) on wide views, 1 (mid) in between, 2 (detail) when close.
func TierForZoom(zoom float64) int {
	switch {
	case zoom < tierMidZoom:
		return 0
	case zoom < tierDetailZoom:
		return 1
	default:
		return 2
	}
}

// VisibleCap returns the hard cap on simultaneously visible labels for a
// zoom level.
func VisibleCap(zoom float64, compact bool) int {
	budget := capBase
	if zoom > tierMidZoom {
		budget += int((zoom - tierMidZoom) * capPerZoom)
	}
	if budget > capMax {
		budget = capMax
	}
	if compact {
		budget = budget * 2 / 3
		if budget < capMinSmall {
			budget = capMinSmall
		}
	}
	return budget
}

// Place selects and styles the visible cluster labels for one frame.
// project maps a data-space point to transformed screen space.
//
// Invariants: no two returned boxes overlap, and acceptance is strictly
// priority-ordered by rank (a lower-priority cluster never displaces a
// higher-priority one).
func Place(clusters []dataset.Cluster, project func(geom.Point) geom.Point, opts Options) []Placement {
	tier := TierForZoom(opts.Zoom)
	if opts.Indicator {
		tier = 2
	}
	budget := VisibleCap(opts.Zoom, opts.Compact)
	cull := opts.Viewport != (geom.Rect{})

	// Largest membership first; Rank already encodes input-order ties.
	order := make([]*dataset.Cluster, 0, len(clusters))
	for i := range clusters {
		if clusters[i].Members > 0 {
			order = append(order, &clusters[i])
		}
	}
	sort.Slice(order, func(a, b int) bool { return order[a].Rank < order[b].Rank })

	var placed []Placement
	for _, c := range order {
		if len(placed) >= budget {
			break
		}

		anchor := project(c.CentroidPoint())
		if cull && !opts.Viewport.Contains(anchor) {
			continue
		}

		text := c.Labels.Tier(tier)
		style := Resolve(opts.Zoom, c.Tier)
		box := textBox(anchor, text, style)

		collides := false
		for i := range placed {
			if box.Intersects(placed[i].Box) {
				collides = true
				break
			}
		}
		if collides {
			continue
		}

		placed = append(placed, Placement{
			ClusterID: c.ID,
			Text:      text,
			Anchor:    anchor,
			Box:       box,
			Style:     style,
		})
	}
	return placed
}

// IndicatorText returns the most detailed label of the cluster whose
// centroid is nearest to the given screen point, or "" when no cluster
// with surviving members is near enough.
func IndicatorText(clusters []dataset.Cluster, project func(geom.Point) geom.Point, at geom.Point, maxDist float64) string {
	best := ""
	bestD2 := maxDist * maxDist
	for i := range clusters {
		c := &clusters[i]
		if c.Members == 0 {
			continue
		}
		p := project(c.CentroidPoint())
		dx, dy := p.X-at.X, p.Y-at.Y
		if d2 := dx*dx + dy*dy; d2 < bestD2 {
			bestD2 = d2
			best = c.Labels.Tier(2)
		}
	}
	return best
}

// textBox estimates the screen bounding box of a label centered on anchor.
func textBox(anchor geom.Point, text string, s Style) geom.Rect {
	n := len([]rune(text))
	if n == 0 {
		n = 1
	}
	w := float64(n)*s.FontSize*charWidthRatio + float64(n-1)*s.LetterSpacing
	h := s.FontSize * lineHeightRatio
	return geom.Rect{
		MinX: anchor.X - w/2,
		MinY: anchor.Y - h/2,
		MaxX: anchor.X + w/2,
		MaxY: anchor.Y + h/2,
	}
}
