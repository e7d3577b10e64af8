// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import "time"

// Option configures a Simulation during creation.
//
// Example:
//
//	// Default: 32x32 grid, GPU pipeline when registered, 200ms cadence
//	sim, err := gpulife.New()
//
//	// Deterministic software run
//	sim, err := gpulife.New(
//	    gpulife.WithPipelineName(gpulife.PipelineSoftware),
//	    gpulife.WithSeed(42),
//	)
type Option func(*options)

type options struct {
	grid        Grid
	density     float64
	seed        uint64
	seedSet     bool
	source      RandomSource
	interval    time.Duration
	clock       Clock
	pipeline    Pipeline
	name        string
	frameWidth  int
	frameHeight int
	maxTicks    uint64
	onFrame     FrameHandler
}

func defaultOptions() options {
	return options{
		grid:        DefaultGrid(),
		density:     DefaultDensity,
		interval:    DefaultInterval,
		frameWidth:  DefaultFrameSize,
		frameHeight: DefaultFrameSize,
	}
}

// WithGrid sets the grid dimensions. Both must be positive multiples of
// TileSize.
func WithGrid(width, height int) Option {
	return func(o *options) {
		o.grid = Grid{Width: width, Height: height}
	}
}

// WithDensity sets the probability that a seeded cell starts alive.
func WithDensity(p float64) Option {
	return func(o *options) {
		o.density = p
	}
}

// WithSeed makes seeding deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithRandomSource replaces the seeding source. It takes precedence over
// WithSeed.
func WithRandomSource(src RandomSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithInterval sets the minimum delay between generations.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

// WithClock injects the scheduler clock.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithPipelineName selects a registered pipeline ("gpu" or "software").
func WithPipelineName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithPipeline uses p instead of a registered pipeline. The simulation
// initializes and closes it.
func WithPipeline(p Pipeline) Option {
	return func(o *options) {
		o.pipeline = p
	}
}

// WithFrameSize sets the presentation target size.
func WithFrameSize(width, height int) Option {
	return func(o *options) {
		o.frameWidth = width
		o.frameHeight = height
	}
}

// WithMaxTicks stops Run after n generations. Zero runs until closed.
func WithMaxTicks(n uint64) Option {
	return func(o *options) {
		o.maxTicks = n
	}
}

// WithFrameHandler registers a callback invoked after every presented tick.
func WithFrameHandler(h FrameHandler) Option {
	return func(o *options) {
		o.onFrame = h
	}
}
