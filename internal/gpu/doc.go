// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package gpu implements the gpulife pipeline on the GPU.
//
// It uses the gogpu/wgpu HAL directly (zero CGO) and runs on Vulkan by
// default, or on any device a host shares through gpucontext.
//
// # Resources
//
// One uniform buffer holds the grid size as vec2<f32>. One vertex buffer
// holds the six vertices of the cell quad. Two storage buffers of N u32
// values hold the cell states; buffer 0 receives the seed.
//
// # Binding pair
//
// Bind groups are built once, before the first tick:
//
//	compute[p] = { grid, state[p] (read), state[1-p] (read_write) }
//	render[p]  = { grid, state[p] (read) }
//
// # Tick
//
// A tick records a single command buffer:
//
//  1. compute pass with compute[parity], ceil(w/8) x ceil(h/8) workgroups
//  2. parity flips
//  3. the next target image is acquired
//  4. render pass with render[parity], clear (0, 0, 0.4, 1), 6 x N instances
//  5. submit, then present
//
// At most two submissions are in flight; completed command buffers are
// reclaimed by polling the timeline fence.
package gpu
