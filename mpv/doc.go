// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package mpv loads libmpv at runtime and exposes the subset of its client and
// render APIs needed to drive offscreen OpenGL rendering.
//
// The shared library is opened with purego on Unix systems and with
// LoadLibrary on Windows, so no cgo toolchain or mpv headers are required at
// build time. All required entry points are resolved once by [Load]; if any
// symbol is missing the library is unloaded again and a
// [*MissingSymbolError] is returned. There is no partial-capability mode.
//
// # Lifecycle
//
//	lib, err := mpv.Load(mpv.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	defer lib.Unload()
//
//	h, err := lib.Create()
//	if err != nil {
//	    return err
//	}
//	defer h.Destroy()
//
//	_ = h.SetOptionString("vo", "libmpv")
//	if err := h.Initialize(); err != nil {
//	    return err
//	}
//
// Render contexts are created with [Handle.NewRenderContext] while an OpenGL
// context is current on the calling thread.
//
// # Thread safety
//
// Property and command calls are forwarded to libmpv, which documents them as
// safe from any thread. Render context calls must be made from the thread
// that owns the OpenGL context. [Library.Unload] must not race with any other
// call.
package mpv
