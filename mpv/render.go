// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpv

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Render parameter types (mpv_render_param_type).
const (
	ParamInvalid          = 0
	ParamAPIType          = 1
	ParamOpenGLInitParams = 2
	ParamOpenGLFBO        = 3
	ParamFlipY            = 4
)

// APITypeOpenGL selects the OpenGL render backend.
const APITypeOpenGL = "opengl"

// renderParam mirrors mpv_render_param. Go inserts the same padding as C
// between the int and the pointer.
type renderParam struct {
	typ  int32
	data unsafe.Pointer
}

// openGLInitParams mirrors mpv_opengl_init_params.
type openGLInitParams struct {
	getProcAddress    uintptr
	getProcAddressCtx uintptr
}

// FBO describes the framebuffer a frame is rendered into (mpv_opengl_fbo).
type FBO struct {
	// FBO is the framebuffer object name; 0 is the default framebuffer.
	FBO int32

	// W and H are the framebuffer size in pixels.
	W, H int32

	// InternalFormat is the GL internal format of the color attachment,
	// or 0 if unknown.
	InternalFormat int32
}

// ProcAddressFunc resolves an OpenGL entry point in the current context.
type ProcAddressFunc func(name string) unsafe.Pointer

// callbackTable routes the two C trampolines to per-context Go functions.
// purego callbacks are a limited process-wide resource, so exactly one
// trampoline of each kind is created and the context pointer libmpv hands
// back is used as a key.
type callbackTable struct {
	once     sync.Once
	procAddr uintptr
	update   uintptr

	mu      sync.RWMutex
	next    uintptr
	procs   map[uintptr]ProcAddressFunc
	updates map[uintptr]func()
}

var callbacks = &callbackTable{
	procs:   make(map[uintptr]ProcAddressFunc),
	updates: make(map[uintptr]func()),
}

func (t *callbackTable) init() {
	t.once.Do(func() {
		t.procAddr = purego.NewCallback(procAddressTrampoline)
		t.update = purego.NewCallback(updateTrampoline)
	})
}

func (t *callbackTable) addProc(fn ProcAddressFunc) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.procs[t.next] = fn
	return t.next
}

func (t *callbackTable) addUpdate(fn func()) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.updates[t.next] = fn
	return t.next
}

func (t *callbackTable) proc(id uintptr) ProcAddressFunc {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.procs[id]
}

func (t *callbackTable) updateFunc(id uintptr) func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updates[id]
}

func (t *callbackTable) remove(ids ...uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		delete(t.procs, id)
		delete(t.updates, id)
	}
}

func procAddressTrampoline(ctx uintptr, name *byte) uintptr {
	fn := callbacks.proc(ctx)
	if fn == nil {
		return 0
	}
	return uintptr(fn(goString(name)))
}

func updateTrampoline(ctx uintptr) {
	if fn := callbacks.updateFunc(ctx); fn != nil {
		fn()
	}
}

// RenderContext is an OpenGL render context bound to a Handle
// (mpv_render_context). Render and Free must be called on the thread that
// has the OpenGL context current.
type RenderContext struct {
	lib      *Library
	ctx      uintptr
	procID   uintptr
	updateID uintptr
	freed    bool
}

// NewRenderContext creates an OpenGL render context. An OpenGL context must
// be current on the calling thread; getProcAddress resolves GL entry points
// in it.
func (h *Handle) NewRenderContext(getProcAddress ProcAddressFunc) (*RenderContext, error) {
	if err := h.usable(); err != nil {
		return nil, err
	}
	callbacks.init()
	procID := callbacks.addProc(getProcAddress)

	apiType := cString(APITypeOpenGL)
	initParams := &openGLInitParams{
		getProcAddress:    callbacks.procAddr,
		getProcAddressCtx: procID,
	}
	params := []renderParam{
		{typ: ParamAPIType, data: unsafe.Pointer(&apiType[0])},
		{typ: ParamOpenGLInitParams, data: unsafe.Pointer(initParams)},
		{typ: ParamInvalid},
	}

	var pinner runtime.Pinner
	pinner.Pin(&apiType[0])
	pinner.Pin(initParams)
	pinner.Pin(&params[0])
	var ctx uintptr
	rc := h.lib.renderContextCreate(&ctx, h.h, unsafe.Pointer(&params[0]))
	pinner.Unpin()

	if err := h.lib.check("render_context_create", rc); err != nil {
		callbacks.remove(procID)
		return nil, err
	}
	if ctx == 0 {
		callbacks.remove(procID)
		return nil, &Error{Op: "render_context_create", Code: ErrorGeneric, Message: h.lib.ErrorString(ErrorGeneric)}
	}
	return &RenderContext{lib: h.lib, ctx: ctx, procID: procID}, nil
}

// SetUpdateCallback registers fn to be called by libmpv, from one of its own
// threads, whenever a new frame should be rendered. fn must not call back
// into libmpv. Passing nil clears the callback.
func (rc *RenderContext) SetUpdateCallback(fn func()) {
	if rc == nil || rc.freed {
		return
	}
	old := rc.updateID
	if fn == nil {
		rc.lib.renderContextSetUpdateCallback(rc.ctx, 0, 0)
		rc.updateID = 0
	} else {
		rc.updateID = callbacks.addUpdate(fn)
		rc.lib.renderContextSetUpdateCallback(rc.ctx, callbacks.update, rc.updateID)
	}
	if old != 0 {
		callbacks.remove(old)
	}
}

// Render draws the current video frame into fbo. With flipY the image is
// rendered upside down, matching the default framebuffer's orientation.
func (rc *RenderContext) Render(fbo FBO, flipY bool) error {
	if rc == nil || rc.freed {
		return ErrDestroyed
	}
	var flip int32
	if flipY {
		flip = 1
	}
	target := fbo
	params := []renderParam{
		{typ: ParamOpenGLFBO, data: unsafe.Pointer(&target)},
		{typ: ParamFlipY, data: unsafe.Pointer(&flip)},
		{typ: ParamInvalid},
	}
	var pinner runtime.Pinner
	pinner.Pin(&target)
	pinner.Pin(&flip)
	pinner.Pin(&params[0])
	defer pinner.Unpin()
	return rc.lib.check("render_context_render", rc.lib.renderContextRender(rc.ctx, unsafe.Pointer(&params[0])))
}

// Free releases the render context. The update callback is cleared first so
// no callback runs after Free returns. Free is idempotent.
func (rc *RenderContext) Free() {
	if rc == nil || rc.freed {
		return
	}
	rc.freed = true
	if rc.lib.Loaded() {
		rc.lib.renderContextSetUpdateCallback(rc.ctx, 0, 0)
		rc.lib.renderContextFree(rc.ctx)
	}
	callbacks.remove(rc.procID, rc.updateID)
	rc.ctx = 0
}
