// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gpulife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Resources are the buffers shared by the transition and render programs.
type Resources struct {
	device hal.Device
	grid   gpulife.Grid

	// Uniform holds the grid size as vec2<f32>.
	Uniform hal.Buffer

	// Vertices holds the cell quad.
	Vertices hal.Buffer

	// State holds the two cell state buffers.
	State [2]hal.Buffer

	// Staging receives a state buffer for CPU readback.
	Staging hal.Buffer
}

// NewResources allocates all buffers and uploads the grid uniform, the quad
// and the seed. The seed goes to State[0]; State[1] keeps its initial zero
// contents until the first transition overwrites it.
func NewResources(device hal.Device, queue hal.Queue, grid gpulife.Grid, seed []uint32) (*Resources, error) {
	if len(seed) != grid.CellCount() {
		return nil, fmt.Errorf("gpu: seed has %d cells, grid %s needs %d", len(seed), grid, grid.CellCount())
	}
	r := &Resources{device: device, grid: grid}
	var err error

	r.Uniform, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_grid_uniform", Size: gpulife.GridUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create grid uniform: %w", err)
	}

	vertices := gpulife.QuadVertexBytes()
	r.Vertices, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_quad_vertices", Size: uint64(len(vertices)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}

	for i, label := range []string{"life_state_a", "life_state_b"} {
		r.State[i], err = device.CreateBuffer(&hal.BufferDescriptor{
			Label: label, Size: grid.StateSize(),
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
		})
		if err != nil {
			r.Destroy()
			return nil, fmt.Errorf("create state buffer %d: %w", i, err)
		}
	}

	r.Staging, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_state_staging", Size: grid.StateSize(),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}

	queue.WriteBuffer(r.Uniform, 0, grid.Uniform())
	queue.WriteBuffer(r.Vertices, 0, vertices)
	queue.WriteBuffer(r.State[0], 0, packCells(seed))
	queue.WriteBuffer(r.State[1], 0, make([]byte, grid.StateSize()))

	slogger().Info("gpu: buffers allocated", "grid", grid.String(), "stateBytes", grid.StateSize())
	return r, nil
}

// Grid returns the grid the buffers were sized for.
func (r *Resources) Grid() gpulife.Grid { return r.grid }

// Destroy releases all buffers. Safe to call on partially built resources.
func (r *Resources) Destroy() {
	if r.device == nil {
		return
	}
	for _, b := range []hal.Buffer{r.Uniform, r.Vertices, r.State[0], r.State[1], r.Staging} {
		if b != nil {
			r.device.DestroyBuffer(b)
		}
	}
	r.Uniform, r.Vertices, r.Staging = nil, nil, nil
	r.State = [2]hal.Buffer{}
}

// packCells encodes cell states as little-endian u32 values.
func packCells(cells []uint32) []byte {
	buf := make([]byte, len(cells)*4)
	for i, c := range cells {
		binary.LittleEndian.PutUint32(buf[i*4:], c)
	}
	return buf
}

// unpackCells decodes little-endian u32 cell states.
func unpackCells(buf []byte) []uint32 {
	cells := make([]uint32, len(buf)/4)
	for i := range cells {
		cells[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return cells
}
