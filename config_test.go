// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

const sampleConfig = `
width = 64
height = 16
density = 0.25
seed = 42
interval = "50ms"
backend = "software"
ticks = 10
output = "frames"

[frame]
width = 256
height = 128
`

func TestDecodeConfig(t *testing.T) {
	c, err := DecodeConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("DecodeConfig() = %v", err)
	}
	if c.Width != 64 || c.Height != 16 {
		t.Errorf("grid = %dx%d", c.Width, c.Height)
	}
	if c.Density == nil || *c.Density != 0.25 {
		t.Errorf("density = %v", c.Density)
	}
	if c.Seed == nil || *c.Seed != 42 {
		t.Errorf("seed = %v", c.Seed)
	}
	if c.Interval.Duration != 50*time.Millisecond {
		t.Errorf("interval = %v", c.Interval)
	}
	if c.Backend != "software" || c.Ticks != 10 || c.Output != "frames" {
		t.Errorf("backend=%q ticks=%d output=%q", c.Backend, c.Ticks, c.Output)
	}
	if c.Frame.Width != 256 || c.Frame.Height != 128 {
		t.Errorf("frame = %dx%d", c.Frame.Width, c.Frame.Height)
	}
}

func TestDecodeConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown key", "colour = \"red\"\n"},
		{"bad interval", "interval = \"soon\"\n"},
		{"negative interval", "interval = \"-1s\"\n"},
		{"density out of range", "density = 2.0\n"},
		{"density nan", "density = nan\n"},
		{"negative width", "width = -8\n"},
		{"not toml", "width = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeConfig(strings.NewReader(tt.in)); err == nil {
				t.Error("DecodeConfig() = nil error")
			}
		})
	}
}

func TestConfigOptions(t *testing.T) {
	c, err := DecodeConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("DecodeConfig() = %v", err)
	}
	o := defaultOptions()
	for _, opt := range c.Options() {
		opt(&o)
	}
	if o.grid != (Grid{Width: 64, Height: 16}) {
		t.Errorf("grid = %v", o.grid)
	}
	if o.density != 0.25 || o.seed != 42 || !o.seedSet {
		t.Errorf("density=%v seed=%d seedSet=%v", o.density, o.seed, o.seedSet)
	}
	if o.interval != 50*time.Millisecond || o.name != "software" || o.maxTicks != 10 {
		t.Errorf("interval=%v name=%q maxTicks=%d", o.interval, o.name, o.maxTicks)
	}
	if o.frameWidth != 256 || o.frameHeight != 128 {
		t.Errorf("frame = %dx%d", o.frameWidth, o.frameHeight)
	}
}

func TestConfigEmptyKeepsDefaults(t *testing.T) {
	c, err := DecodeConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("DecodeConfig() = %v", err)
	}
	if n := len(c.Options()); n != 0 {
		t.Errorf("empty config produced %d options", n)
	}
}

func TestConfigEncodeRoundTrip(t *testing.T) {
	c, err := DecodeConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("DecodeConfig() = %v", err)
	}
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		t.Fatalf("Encode() = %v", err)
	}
	back, err := DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("DecodeConfig(encoded) = %v\n%s", err, buf.String())
	}
	if back.Interval.Duration != c.Interval.Duration || back.Frame != c.Frame {
		t.Errorf("round trip changed config: %+v", back)
	}
}
