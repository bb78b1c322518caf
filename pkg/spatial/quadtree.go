// Package spatial provides a 2-D point index used for viewport culling.
//
// The index is built once per dataset over precomputed base screen
// positions and is read-only afterwards. Its one query primitive is a
// bounded range query: traversal short-circuits as soon as the result cap
// is reached, which bounds worst-case query cost independent of how many
// points are indexed.
package spatial

import "github.com/matzehuels/pointscape/pkg/geom"

// nodeCapacity is the number of points a leaf holds before it splits.
const nodeCapacity = 16

// Entry is one indexed point with its owner's identity.
type Entry struct {
	ID  string
	Pos geom.Point
}

// Index is a point quadtree.
type Index struct {
	root *node
	size int
}

type node struct {
	bounds   geom.Rect
	entries  []Entry
	children *[4]node
}

// New builds an index over the given entries. The tree bounds are the
// entry extent; entries outside (possible only with NaNs) are dropped.
func New(entries []Entry) *Index {
	idx := &Index{}
	if len(entries) == 0 {
		return idx
	}

	pts := make([]geom.Point, len(entries))
	for i := range entries {
		pts[i] = entries[i].Pos
	}
	idx.root = &node{bounds: geom.Extent(pts)}

	for _, e := range entries {
		if idx.root.insert(e) {
			idx.size++
		}
	}
	return idx
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int { return idx.size }

// Query returns up to cap entries whose position lies inside rect.
// Querying an empty index returns nil. A cap of zero or less returns nil.
func (idx *Index) Query(rect geom.Rect, cap int) []Entry {
	if idx.root == nil || cap <= 0 {
		return nil
	}
	out := make([]Entry, 0, cap)
	idx.root.query(rect, cap, &out)
	return out
}

func (n *node) insert(e Entry) bool {
	if !n.bounds.Contains(e.Pos) {
		return false
	}
	if n.children == nil {
		if len(n.entries) < nodeCapacity || degenerateBounds(n.bounds) {
			n.entries = append(n.entries, e)
			return true
		}
		n.split()
	}
	for i := range n.children {
		if n.children[i].insert(e) {
			return true
		}
	}
	// Boundary points can slip between child rectangles; keep them here.
	n.entries = append(n.entries, e)
	return true
}

func (n *node) split() {
	c := n.bounds.Center()
	b := n.bounds
	n.children = &[4]node{
		{bounds: geom.Rect{MinX: b.MinX, MinY: b.MinY, MaxX: c.X, MaxY: c.Y}},
		{bounds: geom.Rect{MinX: c.X, MinY: b.MinY, MaxX: b.MaxX, MaxY: c.Y}},
		{bounds: geom.Rect{MinX: b.MinX, MinY: c.Y, MaxX: c.X, MaxY: b.MaxY}},
		{bounds: geom.Rect{MinX: c.X, MinY: c.Y, MaxX: b.MaxX, MaxY: b.MaxY}},
	}

	old := n.entries
	n.entries = nil
	for _, e := range old {
		placed := false
		for i := range n.children {
			if n.children[i].insert(e) {
				placed = true
				break
			}
		}
		if !placed {
			n.entries = append(n.entries, e)
		}
	}
}

// query appends matches to out and reports whether the cap was reached.
func (n *node) query(rect geom.Rect, cap int, out *[]Entry) bool {
	if !n.bounds.Intersects(rect) {
		return false
	}
	for _, e := range n.entries {
		if rect.Contains(e.Pos) {
			*out = append(*out, e)
			if len(*out) >= cap {
				return true
			}
		}
	}
	if n.children != nil {
		for i := range n.children {
			if n.children[i].query(rect, cap, out) {
				return true
			}
		}
	}
	return false
}

// degenerateBounds reports whether a node rectangle is too small to split
// further (all points coincident).
func degenerateBounds(r geom.Rect) bool {
	return r.Width() < 1e-12 && r.Height() < 1e-12
}
