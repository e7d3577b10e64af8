// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gpulife"
	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources.

//go:embed shaders/life.wgsl
var lifeShaderTemplate string

//go:embed shaders/cells.wgsl
var cellsShaderSource string

// Shader entry points.
const (
	TransitionEntryPoint = "cs_main"
	VertexEntryPoint     = "vs_main"
	FragmentEntryPoint   = "fs_main"
)

// workgroupPlaceholder is replaced by the tile size in the transition shader.
const workgroupPlaceholder = "${WORKGROUP_SIZE}"

// LifeShaderSource returns the transition shader for square workgroups of
// tile x tile invocations.
func LifeShaderSource(tile int) string {
	return strings.ReplaceAll(lifeShaderTemplate, workgroupPlaceholder, strconv.Itoa(tile))
}

// CellsShaderSource returns the render shader.
func CellsShaderSource() string {
	return cellsShaderSource
}

// CompileSPIRV compiles WGSL source to SPIR-V words with naga.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpulife.ErrShaderCompile, err)
	}
	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// ValidateShaders compiles both programs offline and reports the first
// diagnostic. It needs no device.
func ValidateShaders() error {
	programs := []struct {
		name string
		src  string
	}{
		{"life", LifeShaderSource(gpulife.TileSize)},
		{"cells", CellsShaderSource()},
	}
	for _, p := range programs {
		words, err := CompileSPIRV(p.src)
		if err != nil {
			return fmt.Errorf("%s shader: %w", p.name, err)
		}
		slogger().Debug("gpu: shader compiled", "shader", p.name, "words", len(words))
	}
	return nil
}
