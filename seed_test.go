// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"math"
	"slices"
	"testing"
)

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func TestSeedFractionConverges(t *testing.T) {
	g := Grid{Width: 256, Height: 256}
	cells := NewSeededCells(g, NewRandomSource(12345), DefaultDensity)
	frac := float64(Population(cells)) / float64(len(cells))
	if math.Abs(frac-DefaultDensity) > 0.01 {
		t.Errorf("live fraction = %.4f, want %.2f +- 0.01", frac, DefaultDensity)
	}
}

func TestSeedOnlyBinaryStates(t *testing.T) {
	cells := NewSeededCells(DefaultGrid(), NewRandomSource(3), DefaultDensity)
	for i, c := range cells {
		if c != Dead && c != Alive {
			t.Fatalf("cell %d = %d, want 0 or 1", i, c)
		}
	}
}

func TestSeedDeterministic(t *testing.T) {
	a := NewSeededCells(DefaultGrid(), NewRandomSource(99), DefaultDensity)
	b := NewSeededCells(DefaultGrid(), NewRandomSource(99), DefaultDensity)
	if !slices.Equal(a, b) {
		t.Error("same seed produced different generations")
	}
	c := NewSeededCells(DefaultGrid(), NewRandomSource(100), DefaultDensity)
	if slices.Equal(a, c) {
		t.Error("different seeds produced identical generations")
	}
}

func TestSeedDensityBounds(t *testing.T) {
	tests := []struct {
		name    string
		src     RandomSource
		density float64
		want    int
	}{
		{"density 0", constSource(0), 0, 0},
		{"density 1", constSource(0.999), 1, 64},
		{"below threshold", constSource(0.59), 0.6, 64},
		{"at threshold", constSource(0.6), 0.6, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := NewSeededCells(Grid{Width: 8, Height: 8}, tt.src, tt.density)
			if got := Population(cells); got != tt.want {
				t.Errorf("Population = %d, want %d", got, tt.want)
			}
		})
	}
}
