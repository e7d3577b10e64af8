// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

// Cell states stored in a cell state buffer.
const (
	Dead  uint32 = 0
	Alive uint32 = 1
)

// NextState applies the Life rule to one cell: two live neighbours keep the
// current state, three make the cell live, anything else kills it.
func NextState(current uint32, neighbours int) uint32 {
	switch neighbours {
	case 2:
		return current
	case 3:
		return Alive
	default:
		return Dead
	}
}

// Neighbours returns the number of live cells among the eight neighbours of
// (x, y), wrapping around the grid edges.
func Neighbours(g Grid, cells []uint32, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n += int(cells[g.Index(x+dx, y+dy)])
		}
	}
	return n
}

// Step computes one generation from in into out. It is the CPU reference of
// the transition program: out is fully overwritten, in is only read.
// Both slices must hold g.CellCount() cells and must not alias.
func Step(g Grid, in, out []uint32) {
	StepRows(g, in, out, 0, g.Height)
}

// StepRows computes rows [y0, y1) of the next generation. Rows are
// independent, so disjoint ranges may run concurrently.
func StepRows(g Grid, in, out []uint32, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < g.Width; x++ {
			i := y*g.Width + x
			out[i] = NextState(in[i], Neighbours(g, in, x, y))
		}
	}
}

// Population returns the number of live cells.
func Population(cells []uint32) int {
	n := 0
	for _, c := range cells {
		if c != Dead {
			n++
		}
	}
	return n
}
