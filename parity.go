// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

// Parity selects which of the two cell state buffers currently holds the
// present generation.
type Parity uint8

// Input returns the index of the buffer the next transition reads.
func (p Parity) Input() int { return int(p & 1) }

// Output returns the index of the buffer the next transition writes.
func (p Parity) Output() int { return int((p + 1) & 1) }

// Flip returns the opposite parity.
func (p Parity) Flip() Parity { return (p + 1) & 1 }
