package lineage

import (
	"strings"
	"testing"

	"github.com/matzehuels/pointscape/pkg/dataset"
)

// chainDataset builds three clusters on a line, so the spanning tree must
// connect them end to end rather than star-shaped.
func chainDataset() *dataset.Dataset {
	d := &dataset.Dataset{
		Mode: dataset.ModeImage,
		Items: []dataset.Item{
			{ID: "a1", Position: [2]float64{0, 0}, ClusterID: 0},
			{ID: "a2", Position: [2]float64{1, 0}, ClusterID: 0},
			{ID: "a3", Position: [2]float64{2, 0}, ClusterID: 0},
			{ID: "b1", Position: [2]float64{10, 0}, ClusterID: 1},
			{ID: "b2", Position: [2]float64{11, 0}, ClusterID: 1},
			{ID: "c1", Position: [2]float64{20, 0}, ClusterID: 2},
		},
		Clusters: []dataset.Cluster{
			{ID: 0, Centroid: [2]float64{1, 0}, Label: "alpha", Size: 3},
			{ID: 1, Centroid: [2]float64{10.5, 0}, Label: "beta", Size: 2},
			{ID: 2, Centroid: [2]float64{20, 0}, Label: "gamma", Size: 1},
			{ID: 3, Centroid: [2]float64{50, 50}, Label: "ghost", Size: 0},
		},
	}
	d.Finalize()
	return d
}

func TestBuildSpanningTree(t *testing.T) {
	g := Build(chainDataset())

	if len(g.Species) != 3 {
		t.Fatalf("expected 3 species, got %d", len(g.Species))
	}
	if g.RootID != "species_0" {
		t.Errorf("root should be the largest cluster, got %s", g.RootID)
	}
	if len(g.Edges) != 2 {
		t.Fatalf("spanning tree over 3 species needs 2 edges, got %d", len(g.Edges))
	}

	// Collinear centroids: the tree must be the chain alpha -> beta -> gamma.
	want := map[string]string{"species_1": "species_0", "species_2": "species_1"}
	for _, e := range g.Edges {
		if want[e.To] != e.From {
			t.Errorf("unexpected edge %s -> %s", e.From, e.To)
		}
		if e.Weight <= 0 {
			t.Errorf("edge %s -> %s has non-positive weight %v", e.From, e.To, e.Weight)
		}
	}
}

func TestBuildExcludesEmptyClusters(t *testing.T) {
	g := Build(chainDataset())
	for _, s := range g.Species {
		if s.ClusterID == 3 {
			t.Error("clusters without surviving members must not become species")
		}
	}
}

func TestBuildDegenerateInputs(t *testing.T) {
	empty := &dataset.Dataset{}
	empty.Finalize()
	if g := Build(empty); len(g.Species) != 0 || len(g.Edges) != 0 || g.RootID != "" {
		t.Error("empty dataset should produce an empty graph")
	}

	single := &dataset.Dataset{
		Items:    []dataset.Item{{ID: "x", ClusterID: 0}},
		Clusters: []dataset.Cluster{{ID: 0, Label: "only", Size: 1}},
	}
	single.Finalize()
	g := Build(single)
	if len(g.Species) != 1 || len(g.Edges) != 0 {
		t.Errorf("single species should have no edges, got %d species %d edges",
			len(g.Species), len(g.Edges))
	}
	if g.RootID != "species_0" {
		t.Errorf("single species must be the root, got %q", g.RootID)
	}
}

func TestToDOT(t *testing.T) {
	g := Build(chainDataset())
	dot := ToDOT(g, Options{})

	if !strings.HasPrefix(dot, "digraph lineage {") || !strings.HasSuffix(dot, "}\n") {
		t.Fatal("malformed DOT document")
	}
	for _, name := range []string{"alpha", "beta", "gamma"} {
		if !strings.Contains(dot, name) {
			t.Errorf("species %q missing from DOT output", name)
		}
	}
	if !strings.Contains(dot, `"species_0" -> "species_1"`) {
		t.Error("chain edge missing from DOT output")
	}
	if !strings.Contains(dot, "peripheries=2") {
		t.Error("root emphasis missing")
	}
	if strings.Contains(dot, "members:") {
		t.Error("plain export must not include detail labels")
	}

	detailed := ToDOT(g, Options{Detailed: true})
	if !strings.Contains(detailed, "members: 3") {
		t.Error("detailed export should include member counts")
	}
}
