// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glx resolves the OpenGL entry points used for offscreen frame
// targets and exposes them as a flat function table.
//
// Resolution is all-or-nothing: Load either returns a table in which every
// entry is set, or an error and no table.
//
// The go-gl bindings keep their entry points in package globals, so they are
// resolved once, from the first context that loads successfully. Later loads
// only check that their own context provides every required entry point.
// All contexts are expected to come from the same driver.
package glx

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// OpenGL enums used by the frame target and readback path.
const (
	FRAMEBUFFER          = gl.FRAMEBUFFER
	FRAMEBUFFER_COMPLETE = gl.FRAMEBUFFER_COMPLETE //nolint:revive // GL naming
	COLOR_ATTACHMENT0    = gl.COLOR_ATTACHMENT0    //nolint:revive // GL naming
	TEXTURE_2D           = gl.TEXTURE_2D           //nolint:revive // GL naming
	TEXTURE_MIN_FILTER   = gl.TEXTURE_MIN_FILTER   //nolint:revive // GL naming
	TEXTURE_MAG_FILTER   = gl.TEXTURE_MAG_FILTER   //nolint:revive // GL naming
	LINEAR               = gl.LINEAR
	RGBA                 = gl.RGBA
	RGBA8                = gl.RGBA8
	UNSIGNED_BYTE        = gl.UNSIGNED_BYTE  //nolint:revive // GL naming
	PACK_ALIGNMENT       = gl.PACK_ALIGNMENT //nolint:revive // GL naming
)

// ProcAddressFunc resolves an entry point in the current context.
type ProcAddressFunc func(name string) unsafe.Pointer

// RequiredProcs lists the entry points Load requires.
var RequiredProcs = []string{
	"glGenFramebuffers",
	"glBindFramebuffer",
	"glDeleteFramebuffers",
	"glCheckFramebufferStatus",
	"glFramebufferTexture2D",
	"glGenTextures",
	"glBindTexture",
	"glDeleteTextures",
	"glTexImage2D",
	"glTexParameteri",
	"glViewport",
	"glPixelStorei",
	"glReadPixels",
}

// Funcs is the resolved function table. Tests may build one by hand.
type Funcs struct {
	GenFramebuffers        func(n int32, framebuffers *uint32)
	BindFramebuffer        func(target uint32, framebuffer uint32)
	DeleteFramebuffers     func(n int32, framebuffers *uint32)
	CheckFramebufferStatus func(target uint32) uint32
	FramebufferTexture2D   func(target, attachment, textarget, texture uint32, level int32)

	GenTextures    func(n int32, textures *uint32)
	BindTexture    func(target uint32, texture uint32)
	DeleteTextures func(n int32, textures *uint32)
	TexImage2D     func(target uint32, level, internalformat, width, height, border int32, format, xtype uint32, pixels unsafe.Pointer)
	TexParameteri  func(target, pname uint32, param int32)

	Viewport    func(x, y, width, height int32)
	PixelStorei func(pname uint32, param int32)
	ReadPixels  func(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer)
}

// MissingProcError reports an entry point the current context does not provide.
type MissingProcError struct {
	Name string
}

func (e *MissingProcError) Error() string {
	return "glx: missing OpenGL entry point " + e.Name
}

var (
	initOnce sync.Once
	initErr  error
	bound    Funcs

	// glInit fills the go-gl globals.
	glInit = gl.InitWithProcAddrFunc
)

// Load checks that the current context provides every required entry point
// and returns the function table. The go-gl globals behind the table are
// initialized on the first call only; an initialization failure is kept and
// returned by every later call. Load must be called with a context current
// on the calling thread.
func Load(getProcAddress ProcAddressFunc) (*Funcs, error) {
	for _, name := range RequiredProcs {
		if getProcAddress(name) == nil {
			return nil, &MissingProcError{Name: name}
		}
	}
	initOnce.Do(func() {
		if err := glInit(getProcAddress); err != nil {
			// go-gl reports the missing function name as the error text.
			initErr = fmt.Errorf("glx: %w", &MissingProcError{Name: err.Error()})
			return
		}
		bound = Funcs{
			GenFramebuffers:        gl.GenFramebuffers,
			BindFramebuffer:        gl.BindFramebuffer,
			DeleteFramebuffers:     gl.DeleteFramebuffers,
			CheckFramebufferStatus: gl.CheckFramebufferStatus,
			FramebufferTexture2D:   gl.FramebufferTexture2D,
			GenTextures:            gl.GenTextures,
			BindTexture:            gl.BindTexture,
			DeleteTextures:         gl.DeleteTextures,
			TexImage2D:             gl.TexImage2D,
			TexParameteri:          gl.TexParameteri,
			Viewport:               gl.Viewport,
			PixelStorei:            gl.PixelStorei,
			ReadPixels:             gl.ReadPixels,
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	f := bound
	return &f, nil
}

// Validate reports the first nil entry, treating the table as a unit.
func (f *Funcs) Validate() error {
	if f == nil {
		return &MissingProcError{Name: "(nil table)"}
	}
	entries := []struct {
		name string
		set  bool
	}{
		{"glGenFramebuffers", f.GenFramebuffers != nil},
		{"glBindFramebuffer", f.BindFramebuffer != nil},
		{"glDeleteFramebuffers", f.DeleteFramebuffers != nil},
		{"glCheckFramebufferStatus", f.CheckFramebufferStatus != nil},
		{"glFramebufferTexture2D", f.FramebufferTexture2D != nil},
		{"glGenTextures", f.GenTextures != nil},
		{"glBindTexture", f.BindTexture != nil},
		{"glDeleteTextures", f.DeleteTextures != nil},
		{"glTexImage2D", f.TexImage2D != nil},
		{"glTexParameteri", f.TexParameteri != nil},
		{"glViewport", f.Viewport != nil},
		{"glPixelStorei", f.PixelStorei != nil},
		{"glReadPixels", f.ReadPixels != nil},
	}
	for _, e := range entries {
		if !e.set {
			return &MissingProcError{Name: e.name}
		}
	}
	return nil
}
