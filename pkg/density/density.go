// Package density builds the decorative "terrain" background: a smoothed
// density estimate over item screen positions, rendered as iso-density
// contours that fade as the viewer zooms in.
//
// The field is recomputed only on dataset or geometry change, never per
// frame.
package density

import (
	"math"

	"github.com/matzehuels/pointscape/pkg/geom"
)

const (
	// Bandwidth is the Gaussian kernel bandwidth in base screen pixels.
	Bandwidth = 40.0

	// Levels is the fixed number of iso-density thresholds.
	Levels = 6

	// cellSize is the sampling grid resolution. Half the bandwidth keeps
	// the field smooth without oversampling.
	cellSize = Bandwidth / 2

	// kernelCutoff truncates the Gaussian at 3 sigma.
	kernelCutoff = Bandwidth * 3

	// OpacityFloor is the minimum contour opacity at any zoom within the
	// zoom bounds. The terrain fades but never disappears entirely.
	OpacityFloor = 0.05

	// opacityMax is the contour opacity at minimum zoom.
	opacityMax = 0.35

	// opacityFadeSpan is the zoom distance over which opacity falls from
	// max toward the floor.
	opacityFadeSpan = 4.0
)

// Contour is one iso-density line at a threshold level.
type Contour struct {
	// Level is the threshold index, 0 = lowest density.
	Level int
	// Path is the polyline in base screen coordinates. Closed when the
	// first and last points coincide.
	Path []geom.Point
}

// Field is a computed density field with its extracted contours.
type Field struct {
	Contours []Contour
}

// Build estimates density over the given base screen positions and
// extracts iso-contours at a fixed number of levels. Empty input yields an
// empty field.
func Build(pts []geom.Point) *Field {
	f := &Field{}
	if len(pts) == 0 {
		return f
	}

	// Pad the grid beyond the kernel reach so every contour closes inside
	// the grid instead of being clipped at the data extent.
	bounds := geom.Extent(pts).Expand(kernelCutoff + cellSize)
	cols := int(math.Ceil(bounds.Width()/cellSize)) + 1
	rows := int(math.Ceil(bounds.Height()/cellSize)) + 1

	grid := make([]float64, cols*rows)
	inv2h2 := 1 / (2 * Bandwidth * Bandwidth)

	for _, p := range pts {
		// Only cells within the kernel cutoff receive contributions.
		c0 := clampIdx(int((p.X-kernelCutoff-bounds.MinX)/cellSize), 0, cols-1)
		c1 := clampIdx(int((p.X+kernelCutoff-bounds.MinX)/cellSize)+1, 0, cols-1)
		r0 := clampIdx(int((p.Y-kernelCutoff-bounds.MinY)/cellSize), 0, rows-1)
		r1 := clampIdx(int((p.Y+kernelCutoff-bounds.MinY)/cellSize)+1, 0, rows-1)

		for r := r0; r <= r1; r++ {
			gy := bounds.MinY + float64(r)*cellSize
			for c := c0; c <= c1; c++ {
				gx := bounds.MinX + float64(c)*cellSize
				dx, dy := gx-p.X, gy-p.Y
				d2 := dx*dx + dy*dy
				if d2 > kernelCutoff*kernelCutoff {
					continue
				}
				grid[r*cols+c] += math.Exp(-d2 * inv2h2)
			}
		}
	}

	peak := 0.0
	for _, v := range grid {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return f
	}

	for level := 0; level < Levels; level++ {
		threshold := peak * float64(level+1) / float64(Levels+1)
		for _, path := range marchingSquares(grid, cols, rows, threshold, bounds) {
			f.Contours = append(f.Contours, Contour{Level: level, Path: path})
		}
	}
	return f
}

// Opacity returns the contour opacity for the given zoom. Monotonically
// decreasing in zoom, never below OpacityFloor.
func Opacity(zoom, minZoom float64) float64 {
	t := (zoom - minZoom) / opacityFadeSpan
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return math.Max(OpacityFloor, opacityMax*(1-t))
}

func clampIdx(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
