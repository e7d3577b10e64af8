// Package gpulife runs Conway's Game of Life on a toroidal grid with both
// the generation step and the drawing done on the GPU.
//
// # Overview
//
// Cell states live in two equally sized buffers. Each tick a transition
// program reads the present generation from one buffer and writes the next
// generation into the other, the parity flips, and a render program draws
// one instanced quad per cell from the buffer that now holds the present
// generation. Neither buffer is ever read and written by the same pass.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gpulife"
//	    _ "github.com/gogpu/gpulife/gpu" // registers the GPU pipeline
//	)
//
//	sim, err := gpulife.New(gpulife.WithGrid(64, 64), gpulife.WithMaxTicks(100))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sim.Close()
//	err = sim.Run(ctx)
//
// Without the gpu import the software pipeline is used. It implements the
// same contract on the CPU and is the reference the GPU pipeline is tested
// against.
//
// # Architecture
//
//   - Grid, Parity, Step, RenderCells: the data model and CPU reference
//   - Pipeline: the double-buffered advance/draw contract
//   - Scheduler: fixed-cadence ticks, resize at tick boundaries
//   - Simulation: seeding, pipeline selection, lifecycle
//   - internal/gpu: buffers, bindings and WGSL programs on gogpu/wgpu
package gpulife
