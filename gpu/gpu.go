// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package gpu registers the GPU pipeline with gpulife.
//
// Once imported, gpulife.New selects the "gpu" pipeline by default. Each
// pipeline opens its own Vulkan device unless a host device was shared
// with SetDeviceProvider.
//
// Usage:
//
//	import _ "github.com/gogpu/gpulife/gpu" // run the simulation on the GPU
package gpu

import (
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpulife"
	gpuimpl "github.com/gogpu/gpulife/internal/gpu"
)

// Surface is a presentable surface owned by the host. AcquireView should
// return an error wrapping gpulife.ErrSurfaceLost when the surface is
// outdated; the scheduler then reconfigures it at the next tick. Discard is
// called instead of Present when a frame fails after its image was acquired.
type Surface = gpuimpl.Surface

var (
	sharedMu sync.Mutex
	shared   *gpuimpl.Device
)

func init() {
	gpulife.RegisterPipeline(gpulife.PipelineGPU, func() gpulife.Pipeline {
		return gpuimpl.NewLifePipeline(deviceOptions()...)
	})
}

func deviceOptions() []gpuimpl.PipelineOption {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		return nil
	}
	return []gpuimpl.PipelineOption{gpuimpl.WithDevice(shared)}
}

// SetDeviceProvider makes pipelines created afterwards use the GPU device
// of a host application (e.g., gogpu) instead of opening their own. The
// provider must also implement HalDevice() any and HalQueue() any.
// Pass nil to go back to standalone devices.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	if provider == nil {
		sharedMu.Lock()
		shared = nil
		sharedMu.Unlock()
		return nil
	}
	d, err := gpuimpl.DeviceFromProvider(provider)
	if err != nil {
		return err
	}
	sharedMu.Lock()
	shared = d
	sharedMu.Unlock()
	gpulife.Logger().Info("gpu: using host device for new pipelines")
	return nil
}

// NewSurfacePipeline creates a GPU pipeline that renders into a host
// surface on the provider's device. Pass it to gpulife.WithPipeline.
func NewSurfacePipeline(provider gpucontext.DeviceProvider, surface Surface) (gpulife.Pipeline, error) {
	d, err := gpuimpl.DeviceFromProvider(provider)
	if err != nil {
		return nil, err
	}
	return gpuimpl.NewLifePipeline(gpuimpl.WithDevice(d), gpuimpl.WithSurface(surface)), nil
}

// ValidateShaders compiles the WGSL programs offline with naga.
func ValidateShaders() error {
	return gpuimpl.ValidateShaders()
}
