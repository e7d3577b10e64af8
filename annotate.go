// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// labelPadding is the gap in pixels around the snapshot label.
const labelPadding = 4

// Label formats the snapshot caption for a generation.
func Label(generation uint64, population int) string {
	return fmt.Sprintf("gen %d  alive %d", generation, population)
}

// Annotate returns a copy of frame with a caption in the top-left corner.
// The caption sits on a dark box so it stays readable over live cells.
func Annotate(frame image.Image, caption string) *image.RGBA {
	b := frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), frame, b.Min, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		Face: face,
	}
	width := d.MeasureString(caption).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	box := image.Rect(0, 0, width+2*labelPadding, height+2*labelPadding)
	draw.Draw(dst, box.Intersect(dst.Bounds()),
		image.NewUniform(color.RGBA{A: 0xc0}), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I(labelPadding),
		Y: fixed.I(labelPadding) + metrics.Ascent,
	}
	d.DrawString(caption)
	return dst
}
