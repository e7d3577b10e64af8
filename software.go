// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gpulife/internal/parallel"
)

// SoftwarePipeline runs the transition and render programs on the CPU with
// the same double-buffered contract as the GPU pipeline. It is the fallback
// when no GPU is available and the reference the GPU pipeline is checked
// against. Each transition is split into bands of TileSize rows that run on
// a worker pool, one band per row of workgroups.
type SoftwarePipeline struct {
	pool       *parallel.Pool
	workers    int
	grid       Grid
	state      [2][]uint32
	parity     Parity
	generation uint64
	frame      *image.RGBA
	logger     *slog.Logger
	ready      bool
	closed     bool
}

var _ Pipeline = (*SoftwarePipeline)(nil)

// NewSoftwarePipeline creates an uninitialized software pipeline that uses
// GOMAXPROCS workers.
func NewSoftwarePipeline() *SoftwarePipeline {
	return &SoftwarePipeline{logger: Logger()}
}

// NewSoftwarePipelineWorkers creates a software pipeline with n workers.
// n <= 0 means GOMAXPROCS.
func NewSoftwarePipelineWorkers(n int) *SoftwarePipeline {
	return &SoftwarePipeline{logger: Logger(), workers: n}
}

// Name returns "software".
func (p *SoftwarePipeline) Name() string { return PipelineSoftware }

// SetLogger sets the pipeline logger.
func (p *SoftwarePipeline) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	p.logger = l
}

// Init allocates both state buffers and copies the seeded generation into
// buffer 0. Buffer 1 stays zeroed until the first transition writes it.
func (p *SoftwarePipeline) Init(cfg PipelineConfig) error {
	if p.closed {
		return ErrClosed
	}
	if err := cfg.Grid.Validate(); err != nil {
		return err
	}
	n := cfg.Grid.CellCount()
	if len(cfg.Cells) != n {
		return fmt.Errorf("gpulife: seed has %d cells, grid %s needs %d", len(cfg.Cells), cfg.Grid, n)
	}
	w, h := frameSize(cfg.FrameWidth, cfg.FrameHeight)

	p.grid = cfg.Grid
	p.state[0] = append(make([]uint32, 0, n), cfg.Cells...)
	p.state[1] = make([]uint32, n)
	p.parity = 0
	p.generation = 0
	p.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	if p.pool == nil {
		p.pool = parallel.NewPool(p.workers)
	}
	p.ready = true
	p.logger.Info("software: pipeline initialized", "grid", cfg.Grid.String(),
		"frame", fmt.Sprintf("%dx%d", w, h), "workers", p.pool.Workers())
	return nil
}

// Tick runs one transition into the output buffer, flips parity and renders
// the new present generation.
func (p *SoftwarePipeline) Tick() error {
	if err := p.check(); err != nil {
		return err
	}
	in, out := p.state[p.parity.Input()], p.state[p.parity.Output()]
	p.pool.Bands(p.grid.Height, TileSize, func(y0, y1 int) {
		StepRows(p.grid, in, out, y0, y1)
	})
	p.parity = p.parity.Flip()
	p.generation++
	RenderCells(p.frame, p.grid, p.state[p.parity.Input()])
	p.logger.Debug("software: tick", "generation", p.generation, "parity", int(p.parity))
	return nil
}

// Draw renders the present generation.
func (p *SoftwarePipeline) Draw() error {
	if err := p.check(); err != nil {
		return err
	}
	RenderCells(p.frame, p.grid, p.state[p.parity.Input()])
	return nil
}

// Parity returns the index of the present generation buffer.
func (p *SoftwarePipeline) Parity() Parity { return p.parity }

// Generation returns the number of completed transitions.
func (p *SoftwarePipeline) Generation() uint64 { return p.generation }

// Cells returns a copy of the present generation.
func (p *SoftwarePipeline) Cells() ([]uint32, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	return append([]uint32(nil), p.state[p.parity.Input()]...), nil
}

// buffer returns the raw state buffer i. Used by tests to observe both
// halves of the ping-pong pair.
func (p *SoftwarePipeline) buffer(i int) []uint32 { return p.state[i] }

// Resize replaces the frame image.
func (p *SoftwarePipeline) Resize(width, height int) error {
	if err := p.check(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpulife: invalid frame size %dx%d", width, height)
	}
	p.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Frame returns the last rendered image.
func (p *SoftwarePipeline) Frame() image.Image {
	if p.frame == nil {
		return nil
	}
	return p.frame
}

// Close stops the workers and releases the state buffers.
func (p *SoftwarePipeline) Close() {
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	p.state = [2][]uint32{}
	p.frame = nil
	p.ready = false
	p.closed = true
}

func (p *SoftwarePipeline) check() error {
	if p.closed {
		return ErrClosed
	}
	if !p.ready {
		return ErrNotInitialized
	}
	return nil
}

func frameSize(w, h int) (int, int) {
	if w <= 0 {
		w = DefaultFrameSize
	}
	if h <= 0 {
		h = DefaultFrameSize
	}
	return w, h
}
