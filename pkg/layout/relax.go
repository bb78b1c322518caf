// Package layout implements the one-shot de-overlap pass run over item
// positions before cards are rendered.
//
// The pass is deliberately approximate and non-iterative: a single
// repulsion sweep over a spatial hash, followed by a damping multiply that
// anchors results near the original cluster positions. It finishes in
// bounded time for datasets in the thousands and does not try to reach
// equilibrium.
package layout

import (
	"math"

	"github.com/matzehuels/pointscape/pkg/geom"
)

const (
	// damping pulls offsets back toward the original positions so a dense
	// cluster cannot drift away from its centroid.
	damping = 0.9

	// Repulsion factors by content kind. Text cards are wider than image
	// thumbnails and need more breathing room.
	factorImage = 1.0
	factorText  = 1.6
)

// Options configures the relaxation pass.
type Options struct {
	// Text selects the larger repulsion factor used for text cards.
	Text bool
}

// Relax returns a per-point offset that reduces overlap among cards drawn
// at the given data-space positions. The input is never mutated; callers
// add the offset to each original position.
//
// The repulsion radius is extent/sqrt(n) scaled by a content-type factor,
// and every pair closer than the radius receives a symmetric push
// proportional to the overlap depth.
func Relax(pts []geom.Point, opts Options) []geom.Point {
	offsets := make([]geom.Point, len(pts))
	if len(pts) < 2 {
		return offsets
	}

	extent := geom.Extent(pts)
	span := math.Max(extent.Width(), extent.Height())
	if span <= 0 {
		return offsets
	}

	factor := factorImage
	if opts.Text {
		factor = factorText
	}
	radius := span / math.Sqrt(float64(len(pts))) * factor

	grid := newGrid(radius)
	for i, p := range pts {
		grid.add(i, p)
	}

	for i, p := range pts {
		grid.neighbors(p, func(j int) {
			if j <= i {
				return // each pair handled once
			}
			dx := pts[j].X - p.X
			dy := pts[j].Y - p.Y
			dist := math.Hypot(dx, dy)
			if dist >= radius {
				return
			}

			var ux, uy float64
			if dist > 1e-12 {
				ux, uy = dx/dist, dy/dist
			} else {
				// Coincident points get a deterministic horizontal split.
				ux, uy = 1, 0
			}

			push := (radius - dist) / 2
			offsets[i].X -= ux * push
			offsets[i].Y -= uy * push
			offsets[j].X += ux * push
			offsets[j].Y += uy * push
		})
	}

	for i := range offsets {
		offsets[i].X *= damping
		offsets[i].Y *= damping
	}
	return offsets
}

// grid is a uniform spatial hash with cell size equal to the repulsion
// radius, so candidate pairs are confined to the 3×3 cell neighborhood.
type grid struct {
	cell  float64
	cells map[[2]int][]int
	pts   []geom.Point
}

func newGrid(cell float64) *grid {
	return &grid{cell: cell, cells: map[[2]int][]int{}}
}

func (g *grid) key(p geom.Point) [2]int {
	return [2]int{int(math.Floor(p.X / g.cell)), int(math.Floor(p.Y / g.cell))}
}

func (g *grid) add(i int, p geom.Point) {
	k := g.key(p)
	g.cells[k] = append(g.cells[k], i)
	g.pts = append(g.pts, p)
}

func (g *grid) neighbors(p geom.Point, fn func(j int)) {
	k := g.key(p)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, j := range g.cells[[2]int{k[0] + dx, k[1] + dy}] {
				fn(j)
			}
		}
	}
}
