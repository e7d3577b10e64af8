// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gpulife"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row alignment WebGPU requires for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// Target is where the render pass draws a tick's frame.
type Target interface {
	// Format is the color format the render pipeline must target.
	Format() gputypes.TextureFormat

	// Acquire returns the view to render the next frame into. Errors wrap
	// gpulife.ErrAcquireImage, and gpulife.ErrSurfaceLost when the target
	// must be reconfigured first.
	Acquire() (hal.TextureView, error)

	// Encode records commands that must follow the render pass in the same
	// submission.
	Encode(encoder hal.CommandEncoder)

	// Present shows the frame after submission. wait blocks until the
	// submission has completed on the GPU.
	Present(wait func() error) error

	// Discard gives back an image from Acquire that will not be presented.
	Discard()

	// Resize reconfigures the target.
	Resize(width, height uint32) error

	// Frame returns the last presented image, or nil.
	Frame() image.Image

	// Destroy releases the target's resources.
	Destroy()
}

// OffscreenTarget renders into a texture and reads every presented frame
// back into an *image.RGBA.
type OffscreenTarget struct {
	device hal.Device
	queue  hal.Queue

	tex     hal.Texture
	view    hal.TextureView
	staging hal.Buffer

	width, height uint32
	alignedRow    uint32
	img           *image.RGBA
}

var _ Target = (*OffscreenTarget)(nil)

// NewOffscreenTarget allocates a width x height RGBA8 target.
func NewOffscreenTarget(device hal.Device, queue hal.Queue, width, height uint32) (*OffscreenTarget, error) {
	t := &OffscreenTarget{device: device, queue: queue}
	if err := t.Resize(width, height); err != nil {
		return nil, err
	}
	return t, nil
}

// Format returns RGBA8Unorm.
func (t *OffscreenTarget) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// Size returns the target size in pixels.
func (t *OffscreenTarget) Size() (width, height uint32) { return t.width, t.height }

// Acquire returns the render texture view.
func (t *OffscreenTarget) Acquire() (hal.TextureView, error) {
	if t.view == nil {
		return nil, fmt.Errorf("%w: %w", gpulife.ErrAcquireImage, gpulife.ErrSurfaceLost)
	}
	return t.view, nil
}

// Encode copies the rendered texture into the staging buffer.
func (t *OffscreenTarget) Encode(encoder hal.CommandEncoder) {
	// The texture leaves the render pass as a color attachment; the copy
	// needs it as a transfer source.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, t.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: t.alignedRow, RowsPerImage: t.height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
}

// Present waits for the submission and reads the frame back.
func (t *OffscreenTarget) Present(wait func() error) error {
	if err := wait(); err != nil {
		return err
	}
	readback := make([]byte, uint64(t.alignedRow)*uint64(t.height))
	if err := t.queue.ReadBuffer(t.staging, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	stripRowPadding(t.img.Pix, readback, int(t.width)*4, int(t.alignedRow), int(t.height))
	return nil
}

// Discard does nothing; the texture is reused by the next Acquire.
func (t *OffscreenTarget) Discard() {}

// stripRowPadding copies height rows of rowBytes from src, whose rows are
// pitch bytes apart, into the tightly packed dst.
func stripRowPadding(dst, src []byte, rowBytes, pitch, height int) {
	if rowBytes == pitch {
		copy(dst, src[:rowBytes*height])
		return
	}
	for row := range height {
		copy(dst[row*rowBytes:(row+1)*rowBytes], src[row*pitch:row*pitch+rowBytes])
	}
}

// Resize recreates the texture, view and staging buffer.
func (t *OffscreenTarget) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("gpu: invalid target size %dx%d", width, height)
	}
	t.Destroy()

	tex, err := t.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "life_frame",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create frame texture: %w", err)
	}
	t.tex = tex

	view, err := t.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "life_frame_view"})
	if err != nil {
		t.Destroy()
		return fmt.Errorf("create frame texture view: %w", err)
	}
	t.view = view

	bytesPerRow := width * 4
	t.alignedRow = (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	staging, err := t.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_frame_staging",
		Size:  uint64(t.alignedRow) * uint64(height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.Destroy()
		return fmt.Errorf("create frame staging buffer: %w", err)
	}
	t.staging = staging

	t.width, t.height = width, height
	t.img = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	return nil
}

// Frame returns the last read back frame.
func (t *OffscreenTarget) Frame() image.Image {
	if t.img == nil {
		return nil
	}
	return t.img
}

// Destroy releases the texture, view and staging buffer. The last frame
// image stays readable.
func (t *OffscreenTarget) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
	if t.staging != nil {
		t.device.DestroyBuffer(t.staging)
		t.staging = nil
	}
}

// Surface is a presentable surface owned by the host, such as a window
// swapchain. AcquireView should return an error wrapping
// gpulife.ErrSurfaceLost when the surface is outdated. Discard returns the
// acquired image without presenting it.
type Surface interface {
	AcquireView() (hal.TextureView, error)
	Present() error
	Discard()
	Configure(width, height uint32) error
}

// HostTarget renders into a host surface.
type HostTarget struct {
	surface Surface
	format  gputypes.TextureFormat
}

var _ Target = (*HostTarget)(nil)

// NewHostTarget wraps surface. The render pipeline targets format.
func NewHostTarget(surface Surface, format gputypes.TextureFormat) *HostTarget {
	return &HostTarget{surface: surface, format: format}
}

// Format returns the surface format.
func (t *HostTarget) Format() gputypes.TextureFormat { return t.format }

// Acquire gets the next surface image.
func (t *HostTarget) Acquire() (hal.TextureView, error) {
	view, err := t.surface.AcquireView()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpulife.ErrAcquireImage, err)
	}
	if view == nil {
		return nil, fmt.Errorf("%w: surface returned no view", gpulife.ErrAcquireImage)
	}
	return view, nil
}

// Encode does nothing; the surface view is the render attachment.
func (t *HostTarget) Encode(hal.CommandEncoder) {}

// Present hands the image to the host without waiting for the GPU. The
// host's presentation engine orders it after the submission.
func (t *HostTarget) Present(func() error) error {
	if err := t.surface.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// Discard returns the acquired image to the surface unpresented.
func (t *HostTarget) Discard() { t.surface.Discard() }

// Resize reconfigures the surface.
func (t *HostTarget) Resize(width, height uint32) error {
	return t.surface.Configure(width, height)
}

// Frame returns nil; frames go to the host surface.
func (t *HostTarget) Frame() image.Image { return nil }

// Destroy does nothing; the host owns the surface.
func (t *HostTarget) Destroy() {}
