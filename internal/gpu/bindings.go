// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gpulife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// BindingPair holds the bind groups for both parities. Entry p of each
// array reads the generation stored in State[p]; the compute group also
// writes State[1-p]. The groups are immutable once built.
type BindingPair struct {
	device  hal.Device
	compute [2]hal.BindGroup
	render  [2]hal.BindGroup
}

// computeBuffers returns the read and write state buffers for parity p.
func computeBuffers(res *Resources, p gpulife.Parity) (read, write hal.Buffer) {
	return res.State[p.Input()], res.State[p.Output()]
}

// renderBuffer returns the state buffer drawn at parity p.
func renderBuffer(res *Resources, p gpulife.Parity) hal.Buffer {
	return res.State[p.Input()]
}

func computeEntries(res *Resources, p gpulife.Parity) []gputypes.BindGroupEntry {
	size := res.grid.StateSize()
	read, write := computeBuffers(res, p)
	return []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{Buffer: res.Uniform.NativeHandle(), Offset: 0, Size: gpulife.GridUniformSize}},
		{Binding: 1, Resource: gputypes.BufferBinding{Buffer: read.NativeHandle(), Offset: 0, Size: size}},
		{Binding: 2, Resource: gputypes.BufferBinding{Buffer: write.NativeHandle(), Offset: 0, Size: size}},
	}
}

func renderEntries(res *Resources, p gpulife.Parity) []gputypes.BindGroupEntry {
	return []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{Buffer: res.Uniform.NativeHandle(), Offset: 0, Size: gpulife.GridUniformSize}},
		{Binding: 1, Resource: gputypes.BufferBinding{Buffer: renderBuffer(res, p).NativeHandle(), Offset: 0, Size: res.grid.StateSize()}},
	}
}

// NewBindingPair builds compute[0], compute[1], render[0] and render[1].
func NewBindingPair(device hal.Device, computeLayout, renderLayout hal.BindGroupLayout, res *Resources) (*BindingPair, error) {
	b := &BindingPair{device: device}
	for _, p := range []gpulife.Parity{0, 1} {
		cg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("life_compute_%d", p),
			Layout:  computeLayout,
			Entries: computeEntries(res, p),
		})
		if err != nil {
			b.Destroy()
			return nil, fmt.Errorf("create compute bind group %d: %w", p, err)
		}
		b.compute[p] = cg

		rg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("life_render_%d", p),
			Layout:  renderLayout,
			Entries: renderEntries(res, p),
		})
		if err != nil {
			b.Destroy()
			return nil, fmt.Errorf("create render bind group %d: %w", p, err)
		}
		b.render[p] = rg
	}
	return b, nil
}

// Compute returns the transition bind group for parity p.
func (b *BindingPair) Compute(p gpulife.Parity) hal.BindGroup { return b.compute[p.Input()] }

// Render returns the render bind group for parity p.
func (b *BindingPair) Render(p gpulife.Parity) hal.BindGroup { return b.render[p.Input()] }

// Destroy releases the bind groups.
func (b *BindingPair) Destroy() {
	for i := range 2 {
		if b.compute[i] != nil {
			b.device.DestroyBindGroup(b.compute[i])
			b.compute[i] = nil
		}
		if b.render[i] != nil {
			b.device.DestroyBindGroup(b.render[i])
			b.render[i] = nil
		}
	}
}
