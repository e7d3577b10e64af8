// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TileSize is the edge length of the square compute workgroup.
// The transition program is dispatched in TileSize x TileSize invocations.
const TileSize = 8

// DefaultGridSize is the width and height of the default grid.
const DefaultGridSize = 32

// GridUniformSize is the byte size of the packed grid uniform (vec2<f32>).
const GridUniformSize = 8

// Grid holds the immutable dimensions of the toroidal cell grid.
type Grid struct {
	Width  int
	Height int
}

// DefaultGrid returns the 32x32 grid.
func DefaultGrid() Grid {
	return Grid{Width: DefaultGridSize, Height: DefaultGridSize}
}

// Validate reports whether the grid can be dispatched as an exact cover of
// TileSize x TileSize workgroups.
func (g Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d must be positive", ErrInvalidGrid, g.Width, g.Height)
	}
	if g.Width%TileSize != 0 || g.Height%TileSize != 0 {
		return fmt.Errorf("%w: %dx%d is not a multiple of tile size %d",
			ErrInvalidGrid, g.Width, g.Height, TileSize)
	}
	return nil
}

// CellCount returns the number of cells N = width * height.
func (g Grid) CellCount() int {
	return g.Width * g.Height
}

// StateSize returns the byte size of one cell state buffer (N x u32).
func (g Grid) StateSize() uint64 {
	return uint64(g.CellCount()) * 4 //nolint:gosec // cell count is positive after Validate
}

// Index returns the linear index of (x, y), wrapping both coordinates
// into range. Negative coordinates wrap from the opposite edge.
func (g Grid) Index(x, y int) int {
	return wrap(y, g.Height)*g.Width + wrap(x, g.Width)
}

// Coord returns the (x, y) cell coordinate of linear index i.
func (g Grid) Coord(i int) (x, y int) {
	return i % g.Width, i / g.Width
}

// Workgroups returns the dispatch size: ceil(width/TileSize) by
// ceil(height/TileSize).
func (g Grid) Workgroups() (x, y uint32) {
	return uint32((g.Width + TileSize - 1) / TileSize), //nolint:gosec // grid dims are small and positive
		uint32((g.Height + TileSize - 1) / TileSize) //nolint:gosec // grid dims are small and positive
}

// Uniform packs the grid as two little-endian f32 values (width, height).
func (g Grid) Uniform() []byte {
	buf := make([]byte, GridUniformSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(g.Width)))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(g.Height)))
	return buf
}

// String returns the grid as "WxH".
func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
