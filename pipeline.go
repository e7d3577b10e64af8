// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"fmt"
	"image"
	"sort"
	"sync"
)

// Pipeline names.
const (
	PipelineGPU      = "gpu"
	PipelineSoftware = "software"
)

// DefaultFrameSize is the default width and height of presented frames.
const DefaultFrameSize = 512

// PipelineConfig describes the resources a pipeline allocates in Init.
type PipelineConfig struct {
	// Grid is the cell grid. It must pass Grid.Validate.
	Grid Grid

	// Cells is the seeded first generation, written to state buffer 0.
	Cells []uint32

	// FrameWidth and FrameHeight size the presentation target.
	FrameWidth  int
	FrameHeight int
}

// Pipeline advances and draws the automaton. It owns the two cell state
// buffers and the parity that selects the present generation.
//
// All methods are called from a single controlling goroutine.
type Pipeline interface {
	// Name returns the pipeline identifier (e.g., "gpu", "software").
	Name() string

	// Init allocates buffers and uploads the first generation.
	Init(cfg PipelineConfig) error

	// Tick advances one generation and presents it: the transition reads
	// state[parity] and writes state[1-parity], the parity flips, and the
	// render stage draws state[parity].
	Tick() error

	// Draw presents the current generation without advancing it.
	Draw() error

	// Parity returns the index of the buffer holding the present generation.
	Parity() Parity

	// Generation returns the number of completed transitions.
	Generation() uint64

	// Cells reads back the present generation.
	Cells() ([]uint32, error)

	// Resize reconfigures the presentation target.
	Resize(width, height int) error

	// Frame returns the most recently presented image, or nil when frames
	// are presented to a surface owned by the host.
	Frame() image.Image

	// Close releases all resources. In-flight GPU work is allowed to finish.
	Close()
}

// PipelineFactory creates a new, uninitialized pipeline.
type PipelineFactory func() Pipeline

var (
	registryMu sync.RWMutex
	pipelines  = make(map[string]PipelineFactory)
)

// RegisterPipeline registers a pipeline factory under name. GPU packages
// call it from init(); registering an existing name replaces it.
func RegisterPipeline(name string, factory PipelineFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	pipelines[name] = factory
}

// UnregisterPipeline removes a pipeline from the registry.
func UnregisterPipeline(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(pipelines, name)
}

// AvailablePipelines returns the sorted names of registered pipelines.
func AvailablePipelines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(pipelines))
	for name := range pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPipeline creates a registered pipeline by name. The current logger is
// passed to pipelines that accept one.
func NewPipeline(name string) (Pipeline, error) {
	registryMu.RLock()
	factory, ok := pipelines[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrNoPipeline, name, AvailablePipelines())
	}
	p := factory()
	if p == nil {
		return nil, fmt.Errorf("%w: %q factory returned nil", ErrNoPipeline, name)
	}
	propagateLogger(p, Logger())
	return p, nil
}

func init() {
	RegisterPipeline(PipelineSoftware, func() Pipeline { return NewSoftwarePipeline() })
}
