// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"errors"
	"unsafe"

	"github.com/gogpu/gpucontext"
)

// Context is an offscreen OpenGL context.
type Context interface {
	// Initialize creates the context. It is not current afterwards.
	Initialize() error

	// MakeCurrent binds the context to the calling OS thread.
	MakeCurrent() error

	// DoneCurrent unbinds whatever context is current on the calling thread.
	DoneCurrent()

	// GetProcAddress resolves an OpenGL entry point. The context must be
	// current on the calling thread. It returns nil for unknown names.
	GetProcAddress(name string) unsafe.Pointer

	// Shutdown destroys the context. It is idempotent.
	Shutdown()
}

// Errors.
var (
	// ErrNotInitialized is returned by MakeCurrent before Initialize succeeds
	// or after Shutdown.
	ErrNotInitialized = errors.New("glctx: context not initialized")

	// ErrNoBackendAvailable is returned by Best when no backend is registered.
	ErrNoBackendAvailable = errors.New("glctx: no backend available")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "glctx: backend not found: " + e.Name
}

// BackendGLFW is the name of the built-in GLFW backend.
const BackendGLFW = "glfw"

var backends = gpucontext.NewRegistry[Context](gpucontext.WithPriority(BackendGLFW))

func init() {
	Register(BackendGLFW, func() Context { return NewGLFW() })
}

// Register adds a backend factory. Registering an existing name replaces it.
func Register(name string, factory func() Context) {
	backends.Register(name, factory)
}

// Unregister removes a backend.
func Unregister(name string) {
	backends.Unregister(name)
}

// Available returns the registered backend names.
func Available() []string {
	return backends.Available()
}

// New returns an uninitialized context from the named backend.
// An empty name selects the best available backend.
func New(name string) (Context, error) {
	if name == "" {
		return Best()
	}
	if !backends.Has(name) {
		return nil, &BackendNotFoundError{Name: name}
	}
	c := backends.Get(name)
	if c == nil {
		return nil, &BackendNotFoundError{Name: name}
	}
	return c, nil
}

// Best returns an uninitialized context from the highest priority backend.
func Best() (Context, error) {
	c := backends.Best()
	if c == nil {
		return nil, ErrNoBackendAvailable
	}
	slogger().Debug("glctx: backend selected", "backend", backends.BestName())
	return c, nil
}
