// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"math/rand/v2"
	"time"
)

// DefaultDensity is the probability that a seeded cell starts alive.
const DefaultDensity = 0.6

// RandomSource supplies uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a deterministic source for the given seed.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // simulation seed, not crypto
}

// TimeSeed returns a seed derived from the wall clock.
func TimeSeed() uint64 {
	return uint64(time.Now().UnixNano()) //nolint:gosec // any bit pattern is a valid seed
}

// Seed fills cells with independent Bernoulli(density) draws: Alive with
// probability density, Dead otherwise.
func Seed(cells []uint32, src RandomSource, density float64) {
	for i := range cells {
		if src.Float64() < density {
			cells[i] = Alive
		} else {
			cells[i] = Dead
		}
	}
}

// NewSeededCells allocates a grid-sized buffer and seeds it.
func NewSeededCells(g Grid, src RandomSource, density float64) []uint32 {
	cells := make([]uint32, g.CellCount())
	Seed(cells, src, density)
	return cells
}
