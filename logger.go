// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpulife

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// activePipeline is the most recently created pipeline. SetLogger forwards
// the logger to it.
var (
	activeMu       sync.Mutex
	activePipeline Pipeline
)

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gpulife and its sub-packages.
// By default, gpulife produces no log output. Pass nil to restore silence.
//
// Log levels used by gpulife:
//   - [slog.LevelDebug]: per-tick diagnostics (parity, dispatch size, population)
//   - [slog.LevelInfo]: lifecycle events (adapter selected, buffers allocated)
//   - [slog.LevelWarn]: recoverable issues (surface reconfigured, release errors)
//
// Example:
//
//	gpulife.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	activeMu.Lock()
	p := activePipeline
	activeMu.Unlock()
	if p != nil {
		propagateLogger(p, l)
	}
}

// Logger returns the current logger used by gpulife.
// Sub-packages call this to share the same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by pipelines that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to p if it implements loggerSetter and
// remembers p as the pipeline that receives future SetLogger calls.
func propagateLogger(p Pipeline, l *slog.Logger) {
	activeMu.Lock()
	activePipeline = p
	activeMu.Unlock()
	if ls, ok := p.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

// forgetPipeline stops forwarding loggers to p.
func forgetPipeline(p Pipeline) {
	activeMu.Lock()
	if activePipeline == p {
		activePipeline = nil
	}
	activeMu.Unlock()
}
