// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"
	"testing"
	"time"
)

// fakeClock advances its time by every duration it is asked to wait and
// fires immediately.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	if d > 0 {
		c.now = c.now.Add(d)
	}
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// stubPipeline records the calls the scheduler makes.
type stubPipeline struct {
	calls      []string
	tickErrs   []error
	parity     Parity
	generation uint64
}

func (p *stubPipeline) Name() string              { return "stub" }
func (p *stubPipeline) Init(PipelineConfig) error { return nil }
func (p *stubPipeline) Draw() error               { p.calls = append(p.calls, "draw"); return nil }
func (p *stubPipeline) Parity() Parity            { return p.parity }
func (p *stubPipeline) Generation() uint64        { return p.generation }
func (p *stubPipeline) Cells() ([]uint32, error)  { return nil, nil }
func (p *stubPipeline) Frame() image.Image        { return nil }
func (p *stubPipeline) Close()                    { p.calls = append(p.calls, "close") }
func (p *stubPipeline) Resize(width, height int) error {
	p.calls = append(p.calls, fmt.Sprintf("resize %dx%d", width, height))
	return nil
}

func (p *stubPipeline) Tick() error {
	p.calls = append(p.calls, "tick")
	if len(p.tickErrs) > 0 {
		err := p.tickErrs[0]
		p.tickErrs = p.tickErrs[1:]
		if err != nil {
			return err
		}
	}
	p.parity = p.parity.Flip()
	p.generation++
	return nil
}

func TestSchedulerCadence(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now()
	p := &stubPipeline{}

	var frames []FrameInfo
	s := NewScheduler(p, SchedulerConfig{
		Clock:    clock,
		MaxTicks: 4,
		OnFrame:  func(f FrameInfo) { frames = append(frames, f) },
	})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if s.Ticks() != 4 || len(frames) != 4 {
		t.Fatalf("ticks=%d frames=%d, want 4", s.Ticks(), len(frames))
	}
	for i, f := range frames {
		wantTime := start.Add(time.Duration(i+1) * DefaultInterval)
		if !f.Time.Equal(wantTime) {
			t.Errorf("frame %d at %v, want %v", i, f.Time.Sub(start), wantTime.Sub(start))
		}
		if f.Tick != uint64(i+1) || f.Generation != uint64(i+1) {
			t.Errorf("frame %d: tick=%d generation=%d", i, f.Tick, f.Generation)
		}
		if f.Parity != Parity((i+1)%2) {
			t.Errorf("frame %d: parity=%d", i, f.Parity)
		}
	}
	for i, w := range clock.waits {
		if w != DefaultInterval {
			t.Errorf("wait %d = %v, want %v", i, w, DefaultInterval)
		}
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %v, want Closed", s.State())
	}
}

func TestSchedulerCloseBeforeRun(t *testing.T) {
	p := &stubPipeline{}
	s := NewScheduler(p, SchedulerConfig{Clock: newFakeClock()})
	s.Close()
	s.Close()
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if len(p.calls) != 0 {
		t.Errorf("calls = %v, want none", p.calls)
	}
	if err := s.Run(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("second Run() = %v, want ErrClosed", err)
	}
}

func TestSchedulerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &stubPipeline{}
	s := NewScheduler(p, SchedulerConfig{Clock: newFakeClock()})
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if s.Ticks() != 0 {
		t.Errorf("Ticks() = %d after cancelled context", s.Ticks())
	}
}

func TestSchedulerCloseFromFrameHandler(t *testing.T) {
	p := &stubPipeline{}
	var s *Scheduler
	s = NewScheduler(p, SchedulerConfig{
		Clock: newFakeClock(),
		OnFrame: func(f FrameInfo) {
			if f.Tick == 3 {
				s.Close()
			}
		},
	})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if s.Ticks() != 3 {
		t.Errorf("Ticks() = %d, want 3", s.Ticks())
	}
}

func TestSchedulerResizeAtTickBoundary(t *testing.T) {
	p := &stubPipeline{}
	var s *Scheduler
	s = NewScheduler(p, SchedulerConfig{
		Clock:    newFakeClock(),
		MaxTicks: 3,
		OnFrame: func(f FrameInfo) {
			if f.Tick == 1 {
				s.RequestResize(320, 240)
				s.RequestResize(640, 480)
			}
		},
	})
	s.RequestResize(0, 10)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	want := []string{"tick", "resize 640x480", "tick", "tick"}
	if !slices.Equal(p.calls, want) {
		t.Errorf("calls = %v, want %v", p.calls, want)
	}
}

func TestSchedulerSurfaceLostReconfigures(t *testing.T) {
	lost := fmt.Errorf("%w: %w", ErrAcquireImage, ErrSurfaceLost)
	p := &stubPipeline{tickErrs: []error{nil, lost}}
	s := NewScheduler(p, SchedulerConfig{
		Clock:       newFakeClock(),
		MaxTicks:    3,
		FrameWidth:  200,
		FrameHeight: 100,
	})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	want := []string{"tick", "tick", "resize 200x100", "tick", "tick"}
	if !slices.Equal(p.calls, want) {
		t.Errorf("calls = %v, want %v", p.calls, want)
	}
	if p.Generation() != 3 {
		t.Errorf("Generation() = %d, want 3", p.Generation())
	}
}

func TestSchedulerTickErrorEndsRun(t *testing.T) {
	boom := errors.New("device lost")
	p := &stubPipeline{tickErrs: []error{nil, boom}}
	s := NewScheduler(p, SchedulerConfig{Clock: newFakeClock()})

	err := s.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() = %v, want %v", err, boom)
	}
	if s.Ticks() != 1 {
		t.Errorf("Ticks() = %d, want 1", s.Ticks())
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %v, want Closed", s.State())
	}
}

func TestSchedulerStateString(t *testing.T) {
	tests := []struct {
		s    SchedulerState
		want string
	}{
		{StateIdle, "Idle"},
		{StateStepping, "Stepping"},
		{StateClosed, "Closed"},
		{SchedulerState(9), "SchedulerState(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSchedulerWallClock(t *testing.T) {
	if testing.Short() {
		t.Skip("uses the wall clock")
	}
	p := &stubPipeline{}
	const interval = 10 * time.Millisecond
	var times []time.Time
	s := NewScheduler(p, SchedulerConfig{
		Interval: interval,
		MaxTicks: 3,
		OnFrame:  func(f FrameInfo) { times = append(times, f.Time) },
	})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	for i := 1; i < len(times); i++ {
		if d := times[i].Sub(times[i-1]); d < interval {
			t.Errorf("ticks %d and %d only %v apart", i-1, i, d)
		}
	}
}
