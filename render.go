// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// QuadExtent is the half size of the cell quad in cell-local units.
// Quads are drawn slightly smaller than a cell to leave a visible gap.
const QuadExtent = 0.8

// QuadVertexCount is the number of vertices in the cell quad (two triangles).
const QuadVertexCount = 6

// QuadVertexStride is the byte stride of one quad vertex (vec2<f32>).
const QuadVertexStride = 8

// QuadVertices is the unit quad instanced once per cell, as x,y pairs.
var QuadVertices = [QuadVertexCount * 2]float32{
	-QuadExtent, -QuadExtent, // triangle 1
	QuadExtent, -QuadExtent,
	QuadExtent, QuadExtent,
	-QuadExtent, -QuadExtent, // triangle 2
	QuadExtent, QuadExtent,
	-QuadExtent, QuadExtent,
}

// QuadVertexBytes packs QuadVertices as little-endian f32 values.
func QuadVertexBytes() []byte {
	buf := make([]byte, len(QuadVertices)*4)
	for i, v := range QuadVertices {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// BackgroundColor is the clear colour of every frame.
var BackgroundColor = [4]float64{0, 0, 0.4, 1}

// CellColor returns the colour of cell (x, y). It only depends on the cell
// position: red follows x, green follows y, blue is the complement of red.
func CellColor(g Grid, x, y int) [4]float64 {
	cx := float64(x) / float64(g.Width)
	cy := float64(y) / float64(g.Height)
	return [4]float64{cx, cy, 1 - cx, 1}
}

// CellBounds returns the normalized device coordinate bounds of the live
// quad for cell (x, y). NDC spans [-1, 1] with y pointing up.
func CellBounds(g Grid, x, y int) (x0, y0, x1, y1 float64) {
	gw, gh := float64(g.Width), float64(g.Height)
	ox := float64(x) / gw * 2
	oy := float64(y) / gh * 2
	x0 = (1-QuadExtent)/gw - 1 + ox
	x1 = (1+QuadExtent)/gw - 1 + ox
	y0 = (1-QuadExtent)/gh - 1 + oy
	y1 = (1+QuadExtent)/gh - 1 + oy
	return x0, y0, x1, y1
}

// CellRect maps the cell quad into pixel space of a width x height frame,
// covering the pixels whose centres fall inside the quad.
func CellRect(g Grid, x, y, width, height int) image.Rectangle {
	x0, y0, x1, y1 := CellBounds(g, x, y)
	w, h := float64(width), float64(height)
	// Image rows grow downward, NDC y grows upward.
	px0 := int(math.Ceil((x0+1)/2*w - 0.5))
	px1 := int(math.Ceil((x1+1)/2*w - 0.5))
	py0 := int(math.Ceil((1-y1)/2*h - 0.5))
	py1 := int(math.Ceil((1-y0)/2*h - 0.5))
	return image.Rect(px0, py0, px1, py1).Intersect(image.Rect(0, 0, width, height))
}

// RenderCells is the CPU reference of the render program. It clears img to
// BackgroundColor and fills the quad of every live cell with its CellColor.
func RenderCells(img *image.RGBA, g Grid, cells []uint32) {
	b := img.Bounds()
	draw.Draw(img, b, image.NewUniform(toRGBA(BackgroundColor)), image.Point{}, draw.Src)
	for i, state := range cells {
		if state == Dead {
			continue
		}
		x, y := g.Coord(i)
		r := CellRect(g, x, y, b.Dx(), b.Dy()).Add(b.Min)
		if r.Empty() {
			continue
		}
		draw.Draw(img, r, image.NewUniform(toRGBA(CellColor(g, x, y))), image.Point{}, draw.Src)
	}
}

func toRGBA(c [4]float64) color.RGBA {
	return color.RGBA{R: unorm8(c[0]), G: unorm8(c[1]), B: unorm8(c[2]), A: unorm8(c[3])}
}

func unorm8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
