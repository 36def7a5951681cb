// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glctx provides offscreen OpenGL contexts for video rendering.
//
// A Context owns one OpenGL 3.3 core context that is never presented to the
// screen. The default backend, "glfw", backs it with a 16x16 invisible GLFW
// window. Contexts are never shared between players.
//
// # Threading
//
// An OpenGL context is current on at most one OS thread at a time. Callers
// must lock their goroutine to its thread with runtime.LockOSThread before
// MakeCurrent and keep it locked until DoneCurrent.
//
// GLFW must be initialized and terminated, and its windows created and
// destroyed, on the process main thread; macOS aborts otherwise. This package
// locks the main goroutine to the main thread in an init function, and the
// GLFW backend routes those calls through RunOnMain. Programs wrap their body
// in Main so the main thread serves the queue while players are created and
// closed from other goroutines:
//
//	func main() {
//		glctx.Main(run)
//	}
//
// Without Main, RunOnMain calls its function directly, which is only correct
// when players are created and closed from the main goroutine. MakeCurrent
// and DoneCurrent run on the calling thread.
//
// # Backends
//
// Backends register a factory by name:
//
//	glctx.Register("glfw", func() glctx.Context { return glctx.NewGLFW() })
//
// New selects a backend by name; Best selects the highest priority one.
package glctx
