// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import "errors"

// Errors returned by pipelines and the simulation.
var (
	// ErrInvalidGrid is returned when grid dimensions are not positive or do
	// not tile exactly by TileSize.
	ErrInvalidGrid = errors.New("gpulife: invalid grid dimensions")

	// ErrNoAdapter is returned when no GPU device could be acquired.
	ErrNoAdapter = errors.New("gpulife: no GPU adapter available")

	// ErrNoSurface is returned when a pipeline has no presentation target.
	ErrNoSurface = errors.New("gpulife: no presentation surface configured")

	// ErrAcquireImage is returned when the next presentable image could not
	// be acquired for a frame.
	ErrAcquireImage = errors.New("gpulife: failed to acquire surface image")

	// ErrSurfaceLost is returned (wrapped together with ErrAcquireImage) when
	// the presentation target is outdated and must be reconfigured.
	ErrSurfaceLost = errors.New("gpulife: surface lost or outdated")

	// ErrShaderCompile is returned when a program fails to compile.
	ErrShaderCompile = errors.New("gpulife: shader compilation failed")

	// ErrNotInitialized is returned when a pipeline is used before Init.
	ErrNotInitialized = errors.New("gpulife: pipeline not initialized")

	// ErrClosed is returned when a closed pipeline or simulation is used.
	ErrClosed = errors.New("gpulife: closed")

	// ErrNoPipeline is returned when the requested pipeline is not registered.
	ErrNoPipeline = errors.New("gpulife: pipeline not registered")
)
