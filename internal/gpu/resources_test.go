// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"slices"
	"testing"

	"github.com/gogpu/gpulife"
)

func TestPackCells(t *testing.T) {
	cells := []uint32{0, 1, 1, 0, 1}
	buf := packCells(cells)
	if len(buf) != 20 {
		t.Fatalf("len = %d, want 20", len(buf))
	}
	if buf[4] != 1 || buf[5] != 0 || buf[0] != 0 {
		t.Errorf("cells not little-endian u32: % x", buf[:8])
	}
	if got := unpackCells(buf); !slices.Equal(got, cells) {
		t.Errorf("unpackCells(packCells) = %v, want %v", got, cells)
	}
}

func TestNewResources(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	g := gpulife.DefaultGrid()
	seed := gpulife.NewSeededCells(g, gpulife.NewRandomSource(1), gpulife.DefaultDensity)
	res, err := NewResources(device, queue, g, seed)
	if err != nil {
		t.Fatalf("NewResources() = %v", err)
	}
	defer res.Destroy()

	if res.Uniform == nil || res.Vertices == nil || res.Staging == nil {
		t.Fatal("uniform, vertex or staging buffer missing")
	}
	if res.State[0] == nil || res.State[1] == nil {
		t.Fatal("state buffers missing")
	}
	if res.Grid() != g {
		t.Errorf("Grid() = %v", res.Grid())
	}
}

func TestNewResourcesSeedMismatch(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := NewResources(device, queue, gpulife.DefaultGrid(), make([]uint32, 5)); err == nil {
		t.Fatal("NewResources(short seed) = nil error")
	}
}

func TestResourcesDestroyIdempotent(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	g := gpulife.Grid{Width: 8, Height: 8}
	res, err := NewResources(device, queue, g, make([]uint32, g.CellCount()))
	if err != nil {
		t.Fatalf("NewResources() = %v", err)
	}
	res.Destroy()
	res.Destroy()
	if res.State[0] != nil || res.Uniform != nil {
		t.Error("Destroy left buffers set")
	}
}
