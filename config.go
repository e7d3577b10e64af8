// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the file form of the simulation options.
//
//	width = 64
//	height = 64
//	density = 0.6
//	seed = 42
//	interval = "200ms"
//	backend = "gpu"
//	ticks = 100
//	static = false
//	output = "frames"
//
//	[frame]
//	width = 512
//	height = 512
type Config struct {
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	Density  *float64 `toml:"density"`
	Seed     *uint64  `toml:"seed"`
	Interval Duration `toml:"interval"`
	Backend  string   `toml:"backend"`
	Ticks    uint64   `toml:"ticks"`
	Static   bool     `toml:"static"`
	Output   string   `toml:"output"`
	Frame    struct {
		Width  int `toml:"width"`
		Height int `toml:"height"`
	} `toml:"frame"`
}

// Duration is a time.Duration written as a Go duration string ("200ms").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("gpulife: interval: %w", err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DecodeConfig reads a TOML config. Unknown keys are rejected.
func DecodeConfig(r io.Reader) (*Config, error) {
	var c Config
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&c); err != nil {
		return nil, fmt.Errorf("gpulife: decode config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig reads a TOML config file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("gpulife: open config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}

// Encode writes the config as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (c *Config) validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, c.Width, c.Height)
	}
	if c.Density != nil && !(*c.Density >= 0 && *c.Density <= 1) {
		return fmt.Errorf("gpulife: density %v out of range [0, 1]", *c.Density)
	}
	if c.Interval.Duration < 0 {
		return fmt.Errorf("gpulife: negative interval %v", c.Interval.Duration)
	}
	return nil
}

// Options converts the set fields of c into simulation options. Zero
// fields keep their defaults.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Width > 0 || c.Height > 0 {
		w, h := c.Width, c.Height
		if w == 0 {
			w = DefaultGridSize
		}
		if h == 0 {
			h = DefaultGridSize
		}
		opts = append(opts, WithGrid(w, h))
	}
	if c.Density != nil {
		opts = append(opts, WithDensity(*c.Density))
	}
	if c.Seed != nil {
		opts = append(opts, WithSeed(*c.Seed))
	}
	if c.Interval.Duration > 0 {
		opts = append(opts, WithInterval(c.Interval.Duration))
	}
	if c.Backend != "" {
		opts = append(opts, WithPipelineName(c.Backend))
	}
	if c.Ticks > 0 {
		opts = append(opts, WithMaxTicks(c.Ticks))
	}
	if c.Frame.Width > 0 || c.Frame.Height > 0 {
		opts = append(opts, WithFrameSize(c.Frame.Width, c.Frame.Height))
	}
	return opts
}
