package engine

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the engine tunables that are worth exposing to operators.
// Everything has a sensible default; a TOML file can override any subset.
type Config struct {
	// Width and Height are the viewport dimensions in pixels.
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`

	// Margin is the frame inset the data extent is fitted into.
	Margin float64 `toml:"margin"`

	// MaxCards caps the visible card set; the effective cap ramps with
	// card opacity to avoid a creation spike at the crossfade threshold.
	MaxCards int `toml:"max_cards"`

	// QueryMargin expands the viewport culling rectangle by this many
	// screen pixels to avoid pop-in at the edges.
	QueryMargin float64 `toml:"query_margin"`

	// IndicatorRadius is how close (screen px) a cluster centroid must be
	// to the viewport center to drive the region indicator.
	IndicatorRadius float64 `toml:"indicator_radius"`

	// Compact tightens label and card budgets for coarse pointers or
	// small viewports.
	Compact bool `toml:"compact"`

	// ImageRoot is the directory image content references resolve
	// against.
	ImageRoot string `toml:"image_root"`
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Width:           1280,
		Height:          800,
		Margin:          40,
		MaxCards:        60,
		QueryMargin:     120,
		IndicatorRadius: 260,
	}
}

// LoadConfig reads a TOML config file over the defaults. A missing path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("viewport dimensions must be positive, got %gx%g", c.Width, c.Height)
	}
	if c.MaxCards < 0 {
		return fmt.Errorf("max_cards must be non-negative, got %d", c.MaxCards)
	}
	return nil
}
