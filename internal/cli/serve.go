package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pointscape/internal/server"
	"github.com/matzehuels/pointscape/pkg/cache"
	"github.com/matzehuels/pointscape/pkg/dataset"
	"github.com/matzehuels/pointscape/pkg/engine"
	apperrors "github.com/matzehuels/pointscape/pkg/errors"
	"github.com/matzehuels/pointscape/pkg/source"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address
	config  string // engine config file (TOML)
	images  string // image content root directory
	noCache bool   // disable snapshot caching

	redisAddr string // Redis address for the snapshot cache

	mongoURI        string // Mongo connection string (file argument unused when set)
	mongoDatabase   string
	mongoCollection string
	mongoName       string // dataset document name
}

// serveCommand creates the serve command: an HTTP server exposing rendered
// snapshots, the cluster inventory and the lineage graph for one dataset.
//
// The dataset comes from a JSON file argument or, with --mongo-uri, from a
// Mongo collection. Snapshots are cached on disk by default; --redis moves
// the cache to Redis for multi-instance deployments.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [dataset]",
		Short: "Serve dataset snapshots over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			if input == "" && opts.mongoURI == "" {
				return fmt.Errorf("either a dataset file or --mongo-uri is required")
			}
			return c.runServe(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.config, "config", "", "engine config file (TOML)")
	cmd.Flags().StringVar(&opts.images, "images", "", "image content root directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable snapshot caching")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the snapshot cache (host:port)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "Mongo connection string for dataset loading")
	cmd.Flags().StringVar(&opts.mongoDatabase, "mongo-db", "pointscape", "Mongo database name")
	cmd.Flags().StringVar(&opts.mongoCollection, "mongo-collection", "datasets", "Mongo collection name")
	cmd.Flags().StringVar(&opts.mongoName, "dataset", "", "dataset document name (Mongo)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts *serveOpts) error {
	cfg, err := engine.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	if opts.images != "" {
		cfg.ImageRoot = opts.images
	}

	d, raw, err := c.serveDataset(ctx, input, opts)
	if err != nil {
		return err
	}
	c.Logger.Info("dataset ready", "items", len(d.Items), "clusters", len(d.Clusters))

	snapCache, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	defer snapCache.Close()

	srv, err := server.New(ctx, cfg, d, raw, snapCache, c.Logger)
	if err != nil {
		return err
	}
	printInfo("listening on %s", opts.addr)
	return srv.ListenAndServe(ctx, opts.addr)
}

// serveDataset loads the dataset plus its serialized form for cache keying.
func (c *CLI) serveDataset(ctx context.Context, input string, opts *serveOpts) (*dataset.Dataset, []byte, error) {
	if opts.mongoURI == "" {
		raw, err := os.ReadFile(input)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "read dataset %s", input)
		}
		d, err := dataset.Unmarshal(raw)
		if err != nil {
			return nil, nil, err
		}
		d.Finalize()
		return d, raw, nil
	}

	if err := apperrors.ValidateDatasetName(opts.mongoName); err != nil {
		return nil, nil, err
	}
	src, err := source.NewMongoSource(ctx, source.MongoConfig{
		URI:        opts.mongoURI,
		Database:   opts.mongoDatabase,
		Collection: opts.mongoCollection,
		Name:       opts.mongoName,
	})
	if err != nil {
		return nil, nil, err
	}
	defer src.Close(ctx)

	d, err := src.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	// Mongo documents have no canonical byte form; key the cache on the
	// re-serialized dataset instead.
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, nil, err
	}
	return d, raw, nil
}

// serveCache picks the snapshot cache backend: Redis when configured, the
// XDG file cache otherwise, a no-op cache with --no-cache.
func (c *CLI) serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisAddr != "" {
		c.Logger.Debug("using redis snapshot cache", "addr", opts.redisAddr)
		return cache.NewRedisCache(ctx, opts.redisAddr)
	}
	return newCache(false)
}
