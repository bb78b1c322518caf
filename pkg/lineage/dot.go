package lineage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes member counts and cluster ids in node labels.
	// When false, only the species name is shown.
	Detailed bool
}

// ToDOT converts a lineage graph to Graphviz DOT format. The root species
// is emphasized with a double border.
func ToDOT(g *Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, s := range g.Species {
		label := s.Name
		if opts.Detailed {
			label = fmt.Sprintf("%s\ncluster: %d\nmembers: %d", s.Name, s.ClusterID, s.Count)
		}
		attrs := fmt.Sprintf("label=%q", label)
		if s.ID == g.RootID {
			attrs += ", peripheries=2"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=\"%.2f\"];\n", e.From, e.To, e.Weight)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
