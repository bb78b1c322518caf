package density

import (
	"fmt"

	"github.com/matzehuels/pointscape/pkg/geom"
)

// segment is one loose contour piece produced by a grid cell.
type segment struct{ a, b geom.Point }

// marchingSquares extracts iso-lines at the given threshold from a scalar
// grid. Returned paths are polylines in base screen coordinates; because
// the grid is zero-padded beyond the kernel reach, every path closes on
// itself.
func marchingSquares(grid []float64, cols, rows int, threshold float64, bounds geom.Rect) [][]geom.Point {
	var segs []segment

	at := func(c, r int) float64 { return grid[r*cols+c] }
	pos := func(c, r int) geom.Point {
		return geom.Point{X: bounds.MinX + float64(c)*cellSize, Y: bounds.MinY + float64(r)*cellSize}
	}
	// lerp finds the threshold crossing between two grid corners.
	lerp := func(p0, p1 geom.Point, v0, v1 float64) geom.Point {
		den := v1 - v0
		if den == 0 {
			den = 1e-12
		}
		t := (threshold - v0) / den
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		return geom.Point{X: p0.X + (p1.X-p0.X)*t, Y: p0.Y + (p1.Y-p0.Y)*t}
	}

	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			v0, v1 := at(c, r), at(c+1, r)
			v2, v3 := at(c+1, r+1), at(c, r+1)
			p0, p1 := pos(c, r), pos(c+1, r)
			p2, p3 := pos(c+1, r+1), pos(c, r+1)

			idx := 0
			if v0 >= threshold {
				idx |= 1
			}
			if v1 >= threshold {
				idx |= 2
			}
			if v2 >= threshold {
				idx |= 4
			}
			if v3 >= threshold {
				idx |= 8
			}
			if idx == 0 || idx == 15 {
				continue
			}

			top := func() geom.Point { return lerp(p0, p1, v0, v1) }
			right := func() geom.Point { return lerp(p1, p2, v1, v2) }
			bottom := func() geom.Point { return lerp(p3, p2, v3, v2) }
			left := func() geom.Point { return lerp(p0, p3, v0, v3) }

			switch idx {
			case 1, 14:
				segs = append(segs, segment{left(), top()})
			case 2, 13:
				segs = append(segs, segment{top(), right()})
			case 3, 12:
				segs = append(segs, segment{left(), right()})
			case 4, 11:
				segs = append(segs, segment{right(), bottom()})
			case 6, 9:
				segs = append(segs, segment{top(), bottom()})
			case 7, 8:
				segs = append(segs, segment{left(), bottom()})
			case 5: // saddle: two opposite corners
				segs = append(segs, segment{left(), top()}, segment{right(), bottom()})
			case 10:
				segs = append(segs, segment{top(), right()}, segment{left(), bottom()})
			}
		}
	}

	return chain(segs)
}

// chain joins loose segments into polylines by matching endpoints.
func chain(segs []segment) [][]geom.Point {
	if len(segs) == 0 {
		return nil
	}

	// Endpoints from adjacent cells are computed identically, so direct
	// rounding to 6 decimals is a reliable join key.
	key := func(p geom.Point) string {
		return fmt.Sprintf("%.6f:%.6f", p.X, p.Y)
	}

	// Index segments by both endpoints.
	byStart := map[string][]int{}
	for i, s := range segs {
		byStart[key(s.a)] = append(byStart[key(s.a)], i)
		byStart[key(s.b)] = append(byStart[key(s.b)], i)
	}

	used := make([]bool, len(segs))
	var paths [][]geom.Point

	takeNext := func(end geom.Point) (geom.Point, bool) {
		for _, i := range byStart[key(end)] {
			if used[i] {
				continue
			}
			used[i] = true
			if key(segs[i].a) == key(end) {
				return segs[i].b, true
			}
			return segs[i].a, true
		}
		return geom.Point{}, false
	}

	for i, s := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		path := []geom.Point{s.a, s.b}
		for {
			next, ok := takeNext(path[len(path)-1])
			if !ok {
				break
			}
			path = append(path, next)
			if key(next) == key(path[0]) {
				break // closed loop
			}
		}
		paths = append(paths, path)
	}
	return paths
}
