// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// GLFW library state is process-wide; contexts share one initialization.
var (
	glfwMu        sync.Mutex
	glfwRefs      int
	glfwInit      = glfw.Init
	glfwTerminate = glfw.Terminate
)

func acquireGLFW() error {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	if glfwRefs == 0 {
		if err := glfwInit(); err != nil {
			return fmt.Errorf("glctx: glfw init: %w", err)
		}
		slogger().Debug("glctx: glfw initialized")
	}
	glfwRefs++
	return nil
}

func releaseGLFW() {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	if glfwRefs == 0 {
		return
	}
	glfwRefs--
	if glfwRefs == 0 {
		glfwTerminate()
		slogger().Debug("glctx: glfw terminated")
	}
}

// GLFWContext is a Context backed by an invisible 16x16 GLFW window.
type GLFWContext struct {
	mu     sync.Mutex
	window *glfw.Window
	closed bool
}

// NewGLFW returns an uninitialized GLFW-backed context.
func NewGLFW() *GLFWContext {
	return &GLFWContext{}
}

// Initialize creates the hidden window and its OpenGL 3.3 core context.
// GLFW calls run on the main thread through RunOnMain.
func (c *GLFWContext) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrNotInitialized
	}
	if c.window != nil {
		return nil
	}
	var (
		w   *glfw.Window
		err error
	)
	RunOnMain(func() { w, err = createWindow() })
	if err != nil {
		return err
	}
	c.window = w
	slogger().Info("glctx: offscreen context created", "backend", BackendGLFW)
	return nil
}

// createWindow runs on the main thread.
func createWindow() (*glfw.Window, error) {
	if err := acquireGLFW(); err != nil {
		return nil, err
	}
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	w, err := glfw.CreateWindow(16, 16, "mpvtex", nil, nil)
	if err != nil {
		releaseGLFW()
		return nil, fmt.Errorf("glctx: create window: %w", err)
	}
	return w, nil
}

// MakeCurrent binds the context to the calling thread.
func (c *GLFWContext) MakeCurrent() error {
	c.mu.Lock()
	w := c.window
	c.mu.Unlock()
	if w == nil {
		return ErrNotInitialized
	}
	w.MakeContextCurrent()
	return nil
}

// DoneCurrent releases the context current on the calling thread.
func (c *GLFWContext) DoneCurrent() {
	c.mu.Lock()
	ok := c.window != nil
	c.mu.Unlock()
	if ok {
		glfw.DetachCurrentContext()
	}
}

// GetProcAddress resolves name in the current context.
func (c *GLFWContext) GetProcAddress(name string) unsafe.Pointer {
	return glfw.GetProcAddress(name)
}

// Shutdown destroys the window on the main thread and releases GLFW. The
// context must not be current on any other thread. Shutdown is idempotent.
func (c *GLFWContext) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.window == nil {
		return
	}
	w := c.window
	c.window = nil
	RunOnMain(func() {
		if glfw.GetCurrentContext() == w {
			glfw.DetachCurrentContext()
		}
		w.Destroy()
		releaseGLFW()
	})
}

var _ Context = (*GLFWContext)(nil)
