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

// CellProgram is the render pipeline that draws one quad instance per cell.
type CellProgram struct {
	device hal.Device
	format gputypes.TextureFormat

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	instances uint32
}

// NewCellProgram compiles the render shader for color targets of format.
func NewCellProgram(device hal.Device, grid gpulife.Grid, format gputypes.TextureFormat) (*CellProgram, error) {
	c := &CellProgram{
		device:    device,
		format:    format,
		instances: uint32(grid.CellCount()), //nolint:gosec // cell count is validated and small
	}
	if err := c.createLayouts(); err != nil {
		c.Destroy()
		return nil, err
	}
	if err := c.createPipeline(); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *CellProgram) createLayouts() error {
	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "life_cells",
		Source: hal.ShaderSource{WGSL: CellsShaderSource()},
	})
	if err != nil {
		return fmt.Errorf("%w: cells: %w", gpulife.ErrShaderCompile, err)
	}
	c.shader = shader

	bindLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "life_cells_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create cells bind group layout: %w", err)
	}
	c.bindLayout = bindLayout

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "life_cells_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create cells pipeline layout: %w", err)
	}
	c.pipeLayout = pipeLayout
	return nil
}

func (c *CellProgram) createPipeline() error {
	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "life_cells_pipeline",
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     c.shader,
			EntryPoint: VertexEntryPoint,
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     c.shader,
			EntryPoint: FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    c.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create cells pipeline: %w", gpulife.ErrShaderCompile, err)
	}
	c.pipeline = pipeline
	return nil
}

func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: gpulife.QuadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
			},
		},
	}
}

// BindGroupLayout returns the layout render bind groups must use.
func (c *CellProgram) BindGroupLayout() hal.BindGroupLayout { return c.bindLayout }

// Format returns the color target format the pipeline was built for.
func (c *CellProgram) Format() gputypes.TextureFormat { return c.format }

// SetFormat rebuilds the pipeline for a new color target format. The bind
// group layout is kept, so existing bind groups stay valid.
func (c *CellProgram) SetFormat(format gputypes.TextureFormat) error {
	if format == c.format {
		return nil
	}
	if c.pipeline != nil {
		c.device.DestroyRenderPipeline(c.pipeline)
		c.pipeline = nil
	}
	c.format = format
	return c.createPipeline()
}

// Record encodes the render pass: clear to the background color, then
// 6 x N quad vertices with bg selecting the state buffer to draw.
func (c *CellProgram) Record(encoder hal.CommandEncoder, view hal.TextureView, bg hal.BindGroup, vertices hal.Buffer) {
	bgc := gpulife.BackgroundColor
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "life_cells_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: bgc[0], G: bgc[1], B: bgc[2], A: bgc[3]},
		}},
	})
	rp.SetPipeline(c.pipeline)
	rp.SetBindGroup(0, bg, nil)
	rp.SetVertexBuffer(0, vertices, 0)
	rp.Draw(gpulife.QuadVertexCount, c.instances, 0, 0)
	rp.End()
}

// Destroy releases the pipeline objects.
func (c *CellProgram) Destroy() {
	if c.device == nil {
		return
	}
	if c.pipeline != nil {
		c.device.DestroyRenderPipeline(c.pipeline)
		c.pipeline = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
}
