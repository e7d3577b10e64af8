// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the minimum spacing between two generations.
const DefaultInterval = 200 * time.Millisecond

// Clock abstracts wall time so the scheduler can be driven by tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// SchedulerState is the state of the frame scheduler.
type SchedulerState int32

// Scheduler states.
const (
	// StateIdle waits for the next deadline.
	StateIdle SchedulerState = iota

	// StateStepping is recording and submitting one tick.
	StateStepping

	// StateClosed is terminal.
	StateClosed
)

// String returns the state name.
func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStepping:
		return "Stepping"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("SchedulerState(%d)", int32(s))
	}
}

// FrameInfo describes a completed tick.
type FrameInfo struct {
	// Tick counts ticks run by this scheduler, starting at 1.
	Tick uint64

	// Generation is the pipeline generation after the tick.
	Generation uint64

	// Parity selects the buffer holding the presented generation.
	Parity Parity

	// Time is the clock reading when the tick started.
	Time time.Time

	// Frame is the presented image, or nil for host surfaces.
	Frame image.Image
}

// FrameHandler is called after every presented tick.
type FrameHandler func(FrameInfo)

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	// Interval is the minimum delay between ticks. Zero means DefaultInterval.
	Interval time.Duration

	// Clock supplies time. Nil means the wall clock.
	Clock Clock

	// MaxTicks stops Run after this many ticks. Zero runs until closed.
	MaxTicks uint64

	// FrameWidth and FrameHeight are the current target size, used to
	// reconfigure the target after ErrSurfaceLost.
	FrameWidth  int
	FrameHeight int

	// OnFrame is called after each presented tick.
	OnFrame FrameHandler
}

// Scheduler drives a pipeline at a fixed cadence. Each tick advances one
// generation and presents it; the next deadline is set one interval after
// the tick started, so ticks never run closer than Interval apart.
//
// Run must be called from a single goroutine. Close and RequestResize are
// safe to call from any goroutine.
type Scheduler struct {
	pipeline Pipeline
	cfg      SchedulerConfig
	clock    Clock

	state     atomic.Int32
	ticks     atomic.Uint64
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	pending *image.Point
	size    image.Point
}

// NewScheduler creates a scheduler for an initialized pipeline.
func NewScheduler(p Pipeline, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}
	w, h := frameSize(cfg.FrameWidth, cfg.FrameHeight)
	return &Scheduler{
		pipeline: p,
		cfg:      cfg,
		clock:    clock,
		done:     make(chan struct{}),
		size:     image.Pt(w, h),
	}
}

// State returns the current scheduler state.
func (s *Scheduler) State() SchedulerState {
	return SchedulerState(s.state.Load())
}

// Ticks returns the number of ticks run so far.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}

// Interval returns the tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.cfg.Interval
}

// RequestResize records a new target size. It is applied at the start of
// the next tick, never while a tick is being recorded.
func (s *Scheduler) RequestResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.mu.Lock()
	pt := image.Pt(width, height)
	s.pending = &pt
	s.mu.Unlock()
}

// Close stops Run at the next wait. A tick in progress completes first.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Run ticks until ctx is cancelled, Close is called, MaxTicks is reached or
// the pipeline fails. ErrSurfaceLost is recovered by reconfiguring the
// target at the next tick boundary; any other tick error is returned.
// Cancellation and Close return nil.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.State() == StateClosed {
		return ErrClosed
	}
	defer s.state.Store(int32(StateClosed))

	log := Logger()
	deadline := s.clock.Now().Add(s.cfg.Interval)
	for {
		s.state.Store(int32(StateIdle))
		select {
		case <-ctx.Done():
			log.Debug("scheduler: context done", "ticks", s.ticks.Load())
			return nil
		case <-s.done:
			log.Debug("scheduler: closed", "ticks", s.ticks.Load())
			return nil
		case <-s.clock.After(deadline.Sub(s.clock.Now())):
		}

		// Close wins over a deadline that fired at the same time.
		select {
		case <-s.done:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		start := s.clock.Now()
		s.state.Store(int32(StateStepping))
		if err := s.tick(start, log); err != nil {
			return err
		}
		deadline = start.Add(s.cfg.Interval)

		if s.cfg.MaxTicks > 0 && s.ticks.Load() >= s.cfg.MaxTicks {
			log.Debug("scheduler: tick limit reached", "ticks", s.cfg.MaxTicks)
			return nil
		}
	}
}

func (s *Scheduler) tick(start time.Time, log *slog.Logger) error {
	if err := s.applyResize(log); err != nil {
		return err
	}

	err := s.pipeline.Tick()
	if errors.Is(err, ErrSurfaceLost) {
		log.Warn("scheduler: surface lost, reconfiguring at next tick", "err", err)
		s.mu.Lock()
		if s.pending == nil {
			pt := s.size
			s.pending = &pt
		}
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("gpulife: tick %d: %w", s.ticks.Load()+1, err)
	}

	n := s.ticks.Add(1)
	if s.cfg.OnFrame != nil {
		s.cfg.OnFrame(FrameInfo{
			Tick:       n,
			Generation: s.pipeline.Generation(),
			Parity:     s.pipeline.Parity(),
			Time:       start,
			Frame:      s.pipeline.Frame(),
		})
	}
	return nil
}

func (s *Scheduler) applyResize(log *slog.Logger) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if pending == nil {
		return nil
	}
	if err := s.pipeline.Resize(pending.X, pending.Y); err != nil {
		return fmt.Errorf("gpulife: resize to %dx%d: %w", pending.X, pending.Y, err)
	}
	s.mu.Lock()
	s.size = *pending
	s.mu.Unlock()
	log.Info("scheduler: target reconfigured", "width", pending.X, "height", pending.Y)
	return nil
}
