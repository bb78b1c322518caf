// Package lineage derives a cluster lineage graph from a loaded dataset:
// every surviving cluster becomes a "species", and the species are joined
// by a minimum spanning tree over their centroid distances, rooted at the
// largest cluster.
//
// The graph is a companion artifact to the map view — it answers "how do
// the regions relate" rather than "where are they".
package lineage

import (
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/geom"
)

// Species is one lineage node: a cluster with surviving members.
type Species struct {
	ID        string
	ClusterID int
	Name      string
	Count     int
	Centroid  geom.Point
}

// Edge is one oriented lineage link, parent to child, weighted by centroid
// distance.
type Edge struct {
	From, To string
	Weight   float64
}

// Graph is the full lineage: species ordered by priority rank, tree edges
// oriented away from the root.
type Graph struct {
	Species []Species
	Edges   []Edge
	RootID  string
}

// Build derives the lineage graph. Clusters without surviving members are
// excluded; a dataset with no surviving clusters yields an empty graph.
func Build(d *dataset.Dataset) *Graph {
	g := &Graph{}

	order := make([]*dataset.Cluster, 0, len(d.Clusters))
	for i := range d.Clusters {
		if d.Clusters[i].Members > 0 {
			order = append(order, &d.Clusters[i])
		}
	}
	sort.Slice(order, func(a, b int) bool { return order[a].Rank < order[b].Rank })

	for _, c := range order {
		g.Species = append(g.Species, Species{
			ID:        fmt.Sprintf("species_%d", c.ID),
			ClusterID: c.ID,
			Name:      c.Label,
			Count:     c.Members,
			Centroid:  c.CentroidPoint(),
		})
	}
	if len(g.Species) == 0 {
		return g
	}
	g.RootID = g.Species[0].ID
	if len(g.Species) == 1 {
		return g
	}

	parent := spanningTree(g.Species)
	for child, p := range parent {
		if p < 0 {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			From:   g.Species[p].ID,
			To:     g.Species[child].ID,
			Weight: distance(g.Species[p].Centroid, g.Species[child].Centroid),
		})
	}
	sort.Slice(g.Edges, func(a, b int) bool {
		if g.Edges[a].From != g.Edges[b].From {
			return g.Edges[a].From < g.Edges[b].From
		}
		return g.Edges[a].To < g.Edges[b].To
	})
	return g
}

// spanningTree runs Prim's algorithm from species 0 (the root) and returns
// the parent index of every species (-1 for the root). Species counts stay
// small, so the quadratic scan is fine.
func spanningTree(species []Species) []int {
	n := len(species)
	parent := make([]int, n)
	best := make([]float64, n)
	inTree := make([]bool, n)
	for i := range parent {
		parent[i] = -1
		best[i] = math.Inf(1)
	}
	best[0] = 0

	for range species {
		next := -1
		for i := 0; i < n; i++ {
			if !inTree[i] && (next < 0 || best[i] < best[next]) {
				next = i
			}
		}
		inTree[next] = true

		for i := 0; i < n; i++ {
			if inTree[i] {
				continue
			}
			if d := distance(species[next].Centroid, species[i].Centroid); d < best[i] {
				best[i] = d
				parent[i] = next
			}
		}
	}
	return parent
}

func distance(a, b geom.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
