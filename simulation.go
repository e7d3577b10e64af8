// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sync"
)

// Simulation owns a seeded pipeline and the scheduler that drives it.
type Simulation struct {
	opts     options
	seed     uint64
	pipeline Pipeline
	sched    *Scheduler

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New validates the options, seeds the first generation, initializes the
// pipeline and prepares the scheduler. The first generation is not drawn
// until the first tick or an explicit RenderOnce.
func New(opts ...Option) (*Simulation, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.grid.Validate(); err != nil {
		return nil, err
	}
	if !(o.density >= 0 && o.density <= 1) {
		return nil, fmt.Errorf("gpulife: density %v out of range [0, 1]", o.density)
	}

	seed := o.seed
	if !o.seedSet {
		seed = TimeSeed()
	}
	src := o.source
	if src == nil {
		src = NewRandomSource(seed)
	}

	p := o.pipeline
	if p == nil {
		name := o.name
		if name == "" {
			name = defaultPipelineName()
		}
		var err error
		if p, err = NewPipeline(name); err != nil {
			return nil, err
		}
	} else {
		propagateLogger(p, Logger())
	}

	cells := NewSeededCells(o.grid, src, o.density)
	err := p.Init(PipelineConfig{
		Grid:        o.grid,
		Cells:       cells,
		FrameWidth:  o.frameWidth,
		FrameHeight: o.frameHeight,
	})
	if err != nil {
		p.Close()
		forgetPipeline(p)
		return nil, fmt.Errorf("gpulife: init %s pipeline: %w", p.Name(), err)
	}
	Logger().Info("simulation: created",
		"pipeline", p.Name(), "grid", o.grid.String(), "seed", seed,
		"population", Population(cells), "interval", o.interval)

	return &Simulation{
		opts:     o,
		seed:     seed,
		pipeline: p,
		sched: NewScheduler(p, SchedulerConfig{
			Interval:    o.interval,
			Clock:       o.clock,
			MaxTicks:    o.maxTicks,
			FrameWidth:  o.frameWidth,
			FrameHeight: o.frameHeight,
			OnFrame:     o.onFrame,
		}),
	}, nil
}

// defaultPipelineName prefers the GPU pipeline when it is linked in.
func defaultPipelineName() string {
	if slices.Contains(AvailablePipelines(), PipelineGPU) {
		return PipelineGPU
	}
	return PipelineSoftware
}

// Run drives the scheduler until ctx is cancelled, Close is called, the
// tick limit is reached or the pipeline fails.
func (s *Simulation) Run(ctx context.Context) error {
	s.wg.Add(1)
	defer s.wg.Done()
	return s.sched.Run(ctx)
}

// Step advances and presents one generation immediately, outside the
// scheduler cadence. It must not be called while Run is active.
func (s *Simulation) Step() error {
	return s.pipeline.Tick()
}

// RenderOnce presents the current generation without advancing it.
func (s *Simulation) RenderOnce() error {
	return s.pipeline.Draw()
}

// RequestResize asks the scheduler to reconfigure the target at the next
// tick boundary.
func (s *Simulation) RequestResize(width, height int) {
	s.sched.RequestResize(width, height)
}

// Grid returns the grid dimensions.
func (s *Simulation) Grid() Grid { return s.opts.grid }

// Seed returns the seed used for the first generation. It is meaningless
// when a RandomSource was injected.
func (s *Simulation) Seed() uint64 { return s.seed }

// Pipeline returns the pipeline driven by the simulation.
func (s *Simulation) Pipeline() Pipeline { return s.pipeline }

// Scheduler returns the frame scheduler.
func (s *Simulation) Scheduler() *Scheduler { return s.sched }

// Generation returns the number of completed transitions.
func (s *Simulation) Generation() uint64 { return s.pipeline.Generation() }

// Cells reads back the present generation.
func (s *Simulation) Cells() ([]uint32, error) { return s.pipeline.Cells() }

// Frame returns the last presented image, or nil for host surfaces.
func (s *Simulation) Frame() image.Image { return s.pipeline.Frame() }

// Close stops the scheduler, waits for Run to return and releases the
// pipeline. It is safe to call more than once.
func (s *Simulation) Close() {
	s.closeOnce.Do(func() {
		s.sched.Close()
		s.wg.Wait()
		s.pipeline.Close()
		forgetPipeline(s.pipeline)
	})
}
