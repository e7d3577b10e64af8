// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gogpu/gpulife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// maxFramesInFlight bounds the submissions the CPU may run ahead of the GPU.
const maxFramesInFlight = 2

// fenceTimeout bounds every blocking fence wait.
const fenceTimeout = 5 * time.Second

// inflight is a submitted command buffer and the fence value that signals
// its completion.
type inflight struct {
	value uint64
	cmd   hal.CommandBuffer
}

// LifePipeline runs the transition and render programs on the GPU. It
// implements gpulife.Pipeline.
type LifePipeline struct {
	dev     *Device
	surface Surface

	grid       gpulife.Grid
	res        *Resources
	transition *TransitionProgram
	cells      *CellProgram
	bindings   *BindingPair
	target     Target

	parity     gpulife.Parity
	generation uint64

	fence     hal.Fence
	submitted uint64
	pending   []inflight

	ready  bool
	closed bool
}

var _ gpulife.Pipeline = (*LifePipeline)(nil)

// PipelineOption configures a LifePipeline.
type PipelineOption func(*LifePipeline)

// WithDevice runs the pipeline on d instead of opening a Vulkan device.
func WithDevice(d *Device) PipelineOption {
	return func(p *LifePipeline) {
		p.dev = d
	}
}

// WithSurface presents frames to a host surface instead of reading them
// back. The surface is configured to the frame size during Init.
func WithSurface(s Surface) PipelineOption {
	return func(p *LifePipeline) {
		p.surface = s
	}
}

// NewLifePipeline creates an uninitialized GPU pipeline.
func NewLifePipeline(opts ...PipelineOption) *LifePipeline {
	p := &LifePipeline{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns "gpu".
func (p *LifePipeline) Name() string { return gpulife.PipelineGPU }

// SetLogger sets the logger for the GPU pipeline and its internal packages.
// Called by gpulife.SetLogger to propagate logging configuration.
func (p *LifePipeline) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Init opens the device if none was supplied, allocates the buffers,
// builds both programs and the binding pair, and prepares the target.
func (p *LifePipeline) Init(cfg gpulife.PipelineConfig) error {
	if p.closed {
		return gpulife.ErrClosed
	}
	if err := cfg.Grid.Validate(); err != nil {
		return err
	}
	if p.dev == nil {
		dev, err := OpenDevice()
		if err != nil {
			return err
		}
		p.dev = dev
	}
	if err := p.build(cfg); err != nil {
		p.release()
		return err
	}
	p.grid = cfg.Grid
	p.parity = 0
	p.generation = 0
	p.ready = true
	slogger().Info("gpu: pipeline initialized",
		"device", p.dev.Name(), "grid", cfg.Grid.String(), "format", p.cells.Format())
	return nil
}

func (p *LifePipeline) build(cfg gpulife.PipelineConfig) error {
	d := p.dev
	w, h := frameSize(cfg.FrameWidth, cfg.FrameHeight)

	var err error
	if p.surface != nil {
		format := d.SurfaceFormat()
		if format == gputypes.TextureFormatUndefined {
			format = gputypes.TextureFormatBGRA8Unorm
		}
		p.target = NewHostTarget(p.surface, format)
		if err := p.target.Resize(w, h); err != nil {
			return fmt.Errorf("%w: configure: %w", gpulife.ErrNoSurface, err)
		}
	} else {
		if p.target, err = NewOffscreenTarget(d.device, d.queue, w, h); err != nil {
			return err
		}
	}

	if p.res, err = NewResources(d.device, d.queue, cfg.Grid, cfg.Cells); err != nil {
		return err
	}
	if p.transition, err = NewTransitionProgram(d.device, cfg.Grid); err != nil {
		return err
	}
	if p.cells, err = NewCellProgram(d.device, cfg.Grid, p.target.Format()); err != nil {
		return err
	}
	p.bindings, err = NewBindingPair(d.device, p.transition.BindGroupLayout(), p.cells.BindGroupLayout(), p.res)
	if err != nil {
		return err
	}
	if p.fence, err = d.device.CreateFence(); err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	return nil
}

func frameSize(w, h int) (uint32, uint32) {
	if w <= 0 {
		w = gpulife.DefaultFrameSize
	}
	if h <= 0 {
		h = gpulife.DefaultFrameSize
	}
	return uint32(w), uint32(h) //nolint:gosec // frame sizes are positive
}

// Tick records the transition with compute[parity], flips the parity,
// renders with render[parity] and submits both passes as one command
// buffer. If the target image cannot be acquired the recording is
// discarded and the parity restored, so state and parity never disagree.
func (p *LifePipeline) Tick() error {
	if err := p.check(); err != nil {
		return err
	}
	encoder, err := p.beginEncoder("life_tick")
	if err != nil {
		return err
	}

	prev := p.parity
	p.transition.Record(encoder, p.bindings.Compute(prev))
	p.parity = prev.Flip()

	if err := p.renderAndSubmit(encoder); err != nil {
		p.parity = prev
		return err
	}
	p.generation++
	slogger().Debug("gpu: tick", "generation", p.generation, "parity", int(p.parity))
	return p.target.Present(p.waitIdle)
}

// Draw renders the present generation without advancing it.
func (p *LifePipeline) Draw() error {
	if err := p.check(); err != nil {
		return err
	}
	encoder, err := p.beginEncoder("life_draw")
	if err != nil {
		return err
	}
	if err := p.renderAndSubmit(encoder); err != nil {
		return err
	}
	return p.target.Present(p.waitIdle)
}

func (p *LifePipeline) beginEncoder(label string) (hal.CommandEncoder, error) {
	encoder, err := p.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return encoder, nil
}

// renderAndSubmit acquires the target image, records the render pass with
// render[parity] and submits everything recorded on encoder. An acquired
// image that never reaches the queue is handed back to the target.
func (p *LifePipeline) renderAndSubmit(encoder hal.CommandEncoder) error {
	view, err := p.target.Acquire()
	if err != nil {
		encoder.DiscardEncoding()
		return err
	}
	p.cells.Record(encoder, view, p.bindings.Render(p.parity), p.res.Vertices)
	p.target.Encode(encoder)

	cmd, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		p.target.Discard()
		return fmt.Errorf("end encoding: %w", err)
	}
	if err := p.submit(cmd); err != nil {
		p.target.Discard()
		return err
	}
	return nil
}

// submit queues cmd after making room for it among the frames in flight.
func (p *LifePipeline) submit(cmd hal.CommandBuffer) error {
	p.reclaim(0)
	if len(p.pending) >= maxFramesInFlight {
		if err := p.waitFor(p.pending[0].value); err != nil {
			p.dev.device.FreeCommandBuffer(cmd)
			return err
		}
	}
	value := p.submitted + 1
	if err := p.dev.queue.Submit([]hal.CommandBuffer{cmd}, p.fence, value); err != nil {
		p.dev.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("submit: %w", err)
	}
	p.submitted = value
	p.pending = append(p.pending, inflight{value: value, cmd: cmd})
	return nil
}

// reclaim frees the command buffers whose fence values have been reached,
// polling with the given timeout.
func (p *LifePipeline) reclaim(timeout time.Duration) {
	n := 0
	for _, f := range p.pending {
		done, err := p.dev.device.Wait(p.fence, f.value, timeout)
		if err != nil || !done {
			break
		}
		p.dev.device.FreeCommandBuffer(f.cmd)
		n++
	}
	p.pending = p.pending[n:]
}

// waitFor blocks until the submission with fence value v has completed and
// reclaims everything up to it.
func (p *LifePipeline) waitFor(v uint64) error {
	ok, err := p.dev.device.Wait(p.fence, v, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	p.reclaim(0)
	return nil
}

// waitIdle blocks until every submission has completed.
func (p *LifePipeline) waitIdle() error {
	if p.submitted == 0 || len(p.pending) == 0 {
		return nil
	}
	return p.waitFor(p.submitted)
}

// Parity returns the index of the buffer holding the present generation.
func (p *LifePipeline) Parity() gpulife.Parity { return p.parity }

// Generation returns the number of completed transitions.
func (p *LifePipeline) Generation() uint64 { return p.generation }

// Cells copies the present generation into the staging buffer and reads
// it back.
func (p *LifePipeline) Cells() ([]uint32, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	encoder, err := p.beginEncoder("life_readback")
	if err != nil {
		return nil, err
	}
	size := p.grid.StateSize()
	encoder.CopyBufferToBuffer(renderBuffer(p.res, p.parity), p.res.Staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	if err := p.submit(cmd); err != nil {
		return nil, err
	}
	if err := p.waitIdle(); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if err := p.dev.queue.ReadBuffer(p.res.Staging, 0, buf); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return unpackCells(buf), nil
}

// Resize waits for in-flight frames and reconfigures the target.
func (p *LifePipeline) Resize(width, height int) error {
	if err := p.check(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: invalid frame size %dx%d", width, height)
	}
	if err := p.waitIdle(); err != nil {
		return err
	}
	if err := p.target.Resize(uint32(width), uint32(height)); err != nil { //nolint:gosec // checked positive above
		return err
	}
	if err := p.cells.SetFormat(p.target.Format()); err != nil {
		return err
	}
	slogger().Info("gpu: target resized", "width", width, "height", height)
	return nil
}

// Frame returns the last read back frame, or nil for host surfaces.
func (p *LifePipeline) Frame() image.Image {
	if p.target == nil {
		return nil
	}
	return p.target.Frame()
}

// Close waits for in-flight work and releases all GPU resources.
func (p *LifePipeline) Close() {
	if p.closed {
		return
	}
	if p.ready {
		if err := p.waitIdle(); err != nil {
			slogger().Warn("gpu: close: in-flight work did not finish", "err", err)
		}
	}
	p.release()
	p.ready = false
	p.closed = true
}

func (p *LifePipeline) release() {
	if p.dev == nil {
		return
	}
	for _, f := range p.pending {
		p.dev.device.FreeCommandBuffer(f.cmd)
	}
	p.pending = nil
	if p.fence != nil {
		p.dev.device.DestroyFence(p.fence)
		p.fence = nil
	}
	if p.bindings != nil {
		p.bindings.Destroy()
		p.bindings = nil
	}
	if p.cells != nil {
		p.cells.Destroy()
		p.cells = nil
	}
	if p.transition != nil {
		p.transition.Destroy()
		p.transition = nil
	}
	if p.res != nil {
		p.res.Destroy()
		p.res = nil
	}
	if p.target != nil {
		p.target.Destroy()
	}
	p.dev.Destroy()
	p.dev = nil
}

func (p *LifePipeline) check() error {
	if p.closed {
		return gpulife.ErrClosed
	}
	if !p.ready {
		return gpulife.ErrNotInitialized
	}
	return nil
}
