package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pointscape/pkg/lineage"
)

// lineageOpts holds the command-line flags for the lineage command.
type lineageOpts struct {
	output   string // output file path (default: dataset name with format extension)
	format   string // "svg" or "dot"
	detailed bool   // include member counts and centroid positions
}

// lineageCommand creates the lineage command: it exports the cluster
// lineage graph, a spanning tree over cluster centroids rooted at the
// largest cluster, as Graphviz DOT or rendered SVG.
func (c *CLI) lineageCommand() *cobra.Command {
	opts := lineageOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "lineage [dataset]",
		Short: "Export the cluster lineage graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "svg" && opts.format != "dot" {
				return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", opts.format)
			}
			return c.runLineage(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: dataset name with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include member counts and centroids")

	return cmd
}

func (c *CLI) runLineage(ctx context.Context, input string, opts *lineageOpts) error {
	d, err := c.loadDataset(ctx, input)
	if err != nil {
		return err
	}

	g := lineage.Build(d)
	if len(g.Species) == 0 {
		printError("dataset has no populated clusters")
		return nil
	}
	c.Logger.Debug("lineage built", "species", len(g.Species), "edges", len(g.Edges))

	dot := lineage.ToDOT(g, lineage.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		spin := newSpinnerWithContext(ctx, "Rendering lineage graph")
		spin.Start()
		data, err = lineage.RenderSVG(dot)
		spin.Stop()
		if err != nil {
			return err
		}
	}

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "_lineage." + opts.format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Lineage graph written (%d species)", len(g.Species))
	printFile(path)
	return nil
}
