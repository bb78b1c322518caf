// Package cli implements the pointscape command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pointscape/pkg/buildinfo"
	"github.com/matzehuels/pointscape/pkg/cache"
	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pointscape"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "pointscape",
		Short:        "Pointscape explores embedding maps as zoomable terrain",
		Long:         `Pointscape is a tool for exploring 2-D projections of embedding collections: clustered points become a zoomable map with density terrain, greedy labels and content cards.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.lineageCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Dataset Loading
// =============================================================================

// loadDataset reads a dataset JSON file and finalizes it.
func (c *CLI) loadDataset(ctx context.Context, path string) (*dataset.Dataset, error) {
	d, err := source.NewFileSource(path).Load(ctx)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("dataset loaded", "path", path, "items", len(d.Items), "clusters", len(d.Clusters))
	return d, nil
}

// =============================================================================
// Cache Factory
// =============================================================================

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pointscape/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
