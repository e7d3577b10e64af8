// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpulife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device is a HAL device and its queue. A device opened by OpenDevice is
// owned and destroyed by Destroy; a shared device is left to its owner.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	name          string
	surfaceFormat gputypes.TextureFormat
	external      bool
}

// OpenDevice creates a standalone Vulkan device, preferring a discrete or
// integrated GPU over software adapters.
func OpenDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", gpulife.ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", gpulife.ErrNoAdapter, err)
	}
	d, err := openFirstAdapter(instance)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	return d, nil
}

func openFirstAdapter(instance hal.Instance) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: no adapters enumerated", gpulife.ErrNoAdapter)
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", gpulife.ErrNoAdapter, selected.Info.Name, err)
	}
	slogger().Info("gpu: device opened", "adapter", selected.Info.Name, "type", selected.Info.DeviceType)
	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}, nil
}

// SharedDevice wraps a device owned by someone else. Destroy leaves it alive.
func SharedDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue, name: "shared", external: true}
}

// DeviceFromProvider borrows the device of a host application. The provider
// must also expose HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue. Its surface format becomes the preferred target format.
func DeviceFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	d := SharedDevice(device, queue)
	d.surfaceFormat = provider.SurfaceFormat()
	slogger().Debug("gpu: using shared device", "surfaceFormat", d.surfaceFormat)
	return d, nil
}

// Name returns the adapter name.
func (d *Device) Name() string { return d.name }

// SurfaceFormat returns the host surface format, or TextureFormatUndefined
// for standalone devices.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.surfaceFormat }

// External reports whether the device is owned by a host.
func (d *Device) External() bool { return d.external }

// Destroy releases an owned device and its instance. Shared devices are
// left untouched so other pipelines can keep using them.
func (d *Device) Destroy() {
	if d.external {
		return
	}
	if d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}
