package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pointscape/pkg/engine"
	"github.com/matzehuels/pointscape/pkg/geom"
	"github.com/matzehuels/pointscape/pkg/imagecache"
	"github.com/matzehuels/pointscape/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
// These options control the view, viewport dimensions and output path.
type renderOpts struct {
	output  string  // output file path (default: dataset name with .svg)
	config  string  // engine config file (TOML)
	zoom    float64 // zoom level (0 = fit view)
	centerX float64 // view center x in data coordinates
	centerY float64 // view center y in data coordinates
	width   float64 // viewport width in pixels (0 = config default)
	height  float64 // viewport height in pixels (0 = config default)
	images  string  // image content root directory
	compact bool    // tighten label and card budgets
}

// renderCommand creates the render command for writing one-shot SVG snapshots.
//
// Default settings:
//   - zoom: the fit view (whole dataset visible)
//   - center: the dataset center
//   - viewport: from the config file, 1280x800 when absent
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	var hasCenter bool

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a dataset snapshot to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasCenter = cmd.Flags().Changed("cx") || cmd.Flags().Changed("cy")
			return c.runRender(cmd.Context(), args[0], &opts, hasCenter)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: dataset name with .svg)")
	cmd.Flags().StringVar(&opts.config, "config", "", "engine config file (TOML)")
	cmd.Flags().Float64VarP(&opts.zoom, "zoom", "z", 0, "zoom level (default: fit the whole dataset)")
	cmd.Flags().Float64Var(&opts.centerX, "cx", 0, "view center x in data coordinates")
	cmd.Flags().Float64Var(&opts.centerY, "cy", 0, "view center y in data coordinates")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height")
	cmd.Flags().StringVar(&opts.images, "images", "", "image content root directory")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "tighten label and card budgets")

	return cmd
}

// runRender loads the dataset, computes one complete frame at the requested
// view and writes it as an SVG document.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts, hasCenter bool) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	p := newProgress(c.Logger)
	d, err := c.loadDataset(ctx, input)
	if err != nil {
		return err
	}

	eng := engine.New(cfg, imagecache.FileLoader{Root: cfg.ImageRoot}, nil, c.Logger)
	if err := eng.Load(ctx, d); err != nil {
		return err
	}
	defer eng.Teardown()

	scales := eng.Scales()
	minZoom, _ := scales.ZoomExtent()
	zoom := opts.zoom
	if zoom <= 0 {
		zoom = minZoom
	}

	center := scales.ToData(geom.Point{X: cfg.Width / 2, Y: cfg.Height / 2})
	if hasCenter {
		center = geom.Point{X: opts.centerX, Y: opts.centerY}
	}

	target := scales.ToScreen(center)
	frame := eng.Snapshot(geom.CenteredOn(target, zoom, cfg.Width, cfg.Height))
	svg := render.RenderSVG(frame, render.WithViewport(cfg.Width, cfg.Height))
	p.done(fmt.Sprintf("Rendered snapshot at zoom %.2f", zoom))

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess("Snapshot written")
	printFile(path)
	printStats(len(d.Items), len(d.Clusters))
	return nil
}

// buildConfig resolves the engine config from the config file and flag
// overrides.
func buildConfig(opts *renderOpts) (engine.Config, error) {
	cfg, err := engine.LoadConfig(opts.config)
	if err != nil {
		return cfg, err
	}
	if opts.width > 0 {
		cfg.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Height = opts.height
	}
	if opts.images != "" {
		cfg.ImageRoot = opts.images
	}
	if opts.compact {
		cfg.Compact = true
	}
	return cfg, nil
}
