// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/mpvtex/glctx"
	"github.com/gogpu/mpvtex/mpv"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for mpvtex and its sub-packages.
// By default, mpvtex produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior. Players created afterwards use the new logger; existing
// players keep the logger they were created with.
//
// Log levels used by mpvtex:
//   - [slog.LevelDebug]: render cycles, buffer reallocation
//   - [slog.LevelInfo]: player lifecycle, library and context creation
//   - [slog.LevelWarn]: skipped render cycles, ignored engine option errors
//   - [slog.LevelError]: player initialization failures
//
// Example:
//
//	mpvtex.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	mpv.SetLogger(l)
	glctx.SetLogger(l)
}

// Logger returns the current logger used by mpvtex.
// Sub-packages (dispatch, server, integration/texbridge) call this to share
// the same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
