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

// TransitionProgram is the compute pipeline that advances one generation.
type TransitionProgram struct {
	device hal.Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	workgroupsX uint32
	workgroupsY uint32
}

// NewTransitionProgram compiles the transition shader for grid.
func NewTransitionProgram(device hal.Device, grid gpulife.Grid) (*TransitionProgram, error) {
	return newTransitionProgram(device, grid, hal.ShaderSource{WGSL: LifeShaderSource(gpulife.TileSize)})
}

// newTransitionProgram builds the program from source, which may carry
// WGSL or SPIR-V compiled from LifeShaderSource.
func newTransitionProgram(device hal.Device, grid gpulife.Grid, source hal.ShaderSource) (*TransitionProgram, error) {
	t := &TransitionProgram{device: device}
	t.workgroupsX, t.workgroupsY = grid.Workgroups()
	if err := t.createPipeline(source); err != nil {
		t.Destroy()
		return nil, err
	}
	return t, nil
}

func (t *TransitionProgram) createPipeline(source hal.ShaderSource) error {
	shader, err := t.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "life_transition",
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("%w: life: %w", gpulife.ErrShaderCompile, err)
	}
	t.shader = shader

	bindLayout, err := t.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "life_transition_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create transition bind group layout: %w", err)
	}
	t.bindLayout = bindLayout

	pipeLayout, err := t.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "life_transition_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{t.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create transition pipeline layout: %w", err)
	}
	t.pipeLayout = pipeLayout

	pipeline, err := t.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "life_transition_pipeline", Layout: t.pipeLayout,
		Compute: hal.ComputeState{Module: t.shader, EntryPoint: TransitionEntryPoint},
	})
	if err != nil {
		return fmt.Errorf("%w: create transition pipeline: %w", gpulife.ErrShaderCompile, err)
	}
	t.pipeline = pipeline
	return nil
}

// BindGroupLayout returns the layout compute bind groups must use.
func (t *TransitionProgram) BindGroupLayout() hal.BindGroupLayout { return t.bindLayout }

// Workgroups returns the dispatch size.
func (t *TransitionProgram) Workgroups() (x, y uint32) { return t.workgroupsX, t.workgroupsY }

// Record encodes one compute pass that reads and writes through bg.
func (t *TransitionProgram) Record(encoder hal.CommandEncoder, bg hal.BindGroup) {
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "life_transition_pass"})
	pass.SetPipeline(t.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(t.workgroupsX, t.workgroupsY, 1)
	pass.End()
}

// Destroy releases the pipeline objects.
func (t *TransitionProgram) Destroy() {
	if t.device == nil {
		return
	}
	if t.pipeline != nil {
		t.device.DestroyComputePipeline(t.pipeline)
		t.pipeline = nil
	}
	if t.pipeLayout != nil {
		t.device.DestroyPipelineLayout(t.pipeLayout)
		t.pipeLayout = nil
	}
	if t.bindLayout != nil {
		t.device.DestroyBindGroupLayout(t.bindLayout)
		t.bindLayout = nil
	}
	if t.shader != nil {
		t.device.DestroyShaderModule(t.shader)
		t.shader = nil
	}
}
