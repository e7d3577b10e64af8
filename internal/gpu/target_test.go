// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpulife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func TestStripRowPadding(t *testing.T) {
	tests := []struct {
		name     string
		rowBytes int
		pitch    int
		height   int
	}{
		{"tight", 8, 8, 3},
		{"padded", 8, 12, 3},
		{"single row", 4, 256, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := make([]byte, tt.pitch*tt.height)
			for i := range src {
				src[i] = byte(i)
			}
			dst := make([]byte, tt.rowBytes*tt.height)
			stripRowPadding(dst, src, tt.rowBytes, tt.pitch, tt.height)
			for row := range tt.height {
				for col := range tt.rowBytes {
					want := byte(row*tt.pitch + col)
					if got := dst[row*tt.rowBytes+col]; got != want {
						t.Fatalf("dst[%d,%d] = %d, want %d", row, col, got, want)
					}
				}
			}
		})
	}
}

func TestOffscreenTarget(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	target, err := NewOffscreenTarget(device, queue, 100, 60)
	if err != nil {
		t.Fatalf("NewOffscreenTarget() = %v", err)
	}
	defer target.Destroy()

	if target.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v", target.Format())
	}
	// 100 px * 4 bytes rounds up to one 512-byte pitch.
	if target.alignedRow != 512 {
		t.Errorf("alignedRow = %d, want 512", target.alignedRow)
	}
	view, err := target.Acquire()
	if err != nil || view == nil {
		t.Fatalf("Acquire() = %v, %v", view, err)
	}
	if b := target.Frame().Bounds(); b.Dx() != 100 || b.Dy() != 60 {
		t.Errorf("Frame bounds = %v", b)
	}

	if err := target.Resize(64, 32); err != nil {
		t.Fatalf("Resize() = %v", err)
	}
	if w, h := target.Size(); w != 64 || h != 32 {
		t.Errorf("Size() = %dx%d, want 64x32", w, h)
	}
	if b := target.Frame().Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("Frame bounds after resize = %v", b)
	}
	if err := target.Resize(0, 32); err == nil {
		t.Error("Resize(0, 32) = nil error")
	}
}

func TestOffscreenTargetAcquireAfterDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	target, err := NewOffscreenTarget(device, queue, 16, 16)
	if err != nil {
		t.Fatalf("NewOffscreenTarget() = %v", err)
	}
	target.Destroy()
	_, err = target.Acquire()
	if !errors.Is(err, gpulife.ErrAcquireImage) || !errors.Is(err, gpulife.ErrSurfaceLost) {
		t.Errorf("Acquire() after Destroy = %v", err)
	}
	if target.Frame() == nil {
		t.Error("last frame should stay readable after Destroy")
	}
}

func TestOffscreenTargetPresentWaitError(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	target, err := NewOffscreenTarget(device, queue, 16, 16)
	if err != nil {
		t.Fatalf("NewOffscreenTarget() = %v", err)
	}
	defer target.Destroy()

	waitErr := errors.New("gpu hung")
	if err := target.Present(func() error { return waitErr }); !errors.Is(err, waitErr) {
		t.Errorf("Present() = %v, want %v", err, waitErr)
	}
}

// fakeSurface hands out a noop texture view and can be told to report
// itself lost.
type fakeSurface struct {
	device hal.Device
	tex    hal.Texture
	view   hal.TextureView

	lost       int
	acquires   int
	presents   int
	discards   int
	configured [][2]uint32
}

func newFakeSurface(t *testing.T, device hal.Device) *fakeSurface {
	t.Helper()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "fake_surface",
		Size:          hal.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture() = %v", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "fake_surface_view"})
	if err != nil {
		t.Fatalf("CreateTextureView() = %v", err)
	}
	s := &fakeSurface{device: device, tex: tex, view: view}
	t.Cleanup(func() {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
	})
	return s
}

func (s *fakeSurface) AcquireView() (hal.TextureView, error) {
	s.acquires++
	if s.lost > 0 {
		s.lost--
		return nil, gpulife.ErrSurfaceLost
	}
	return s.view, nil
}

func (s *fakeSurface) Present() error {
	s.presents++
	return nil
}

func (s *fakeSurface) Discard() { s.discards++ }

func (s *fakeSurface) Configure(width, height uint32) error {
	s.configured = append(s.configured, [2]uint32{width, height})
	return nil
}

func TestHostTarget(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	surface := newFakeSurface(t, device)
	target := NewHostTarget(surface, gputypes.TextureFormatBGRA8Unorm)

	if target.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v", target.Format())
	}
	if err := target.Resize(320, 240); err != nil {
		t.Fatalf("Resize() = %v", err)
	}
	if len(surface.configured) != 1 || surface.configured[0] != [2]uint32{320, 240} {
		t.Errorf("configured = %v", surface.configured)
	}

	surface.lost = 1
	_, err := target.Acquire()
	if !errors.Is(err, gpulife.ErrAcquireImage) || !errors.Is(err, gpulife.ErrSurfaceLost) {
		t.Errorf("Acquire() on lost surface = %v", err)
	}
	view, err := target.Acquire()
	if err != nil || view == nil {
		t.Fatalf("Acquire() = %v, %v", view, err)
	}

	waited := false
	if err := target.Present(func() error { waited = true; return nil }); err != nil {
		t.Fatalf("Present() = %v", err)
	}
	if waited {
		t.Error("host Present must not wait for the GPU")
	}
	if surface.presents != 1 {
		t.Errorf("presents = %d, want 1", surface.presents)
	}
	if target.Frame() != nil {
		t.Error("host target Frame() should be nil")
	}
	target.Discard()
	if surface.discards != 1 {
		t.Errorf("discards = %d, want 1", surface.discards)
	}
}
