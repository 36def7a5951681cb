// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import (
	"unsafe"

	"github.com/gogpu/mpvtex/mpv"
)

// engine is the subset of a libmpv instance a Player drives.
type engine interface {
	SetOptionString(name, value string) error
	Initialize() error
	Command(args ...string) error
	SetFlag(name string, v bool) error
	GetFlag(name string) (bool, error)
	SetDouble(name string, v float64) error
	GetDouble(name string) (float64, error)
	NewRenderContext(getProcAddress func(name string) unsafe.Pointer) (renderContext, error)
	Destroy()
}

// renderContext renders engine frames into an OpenGL framebuffer.
type renderContext interface {
	SetUpdateCallback(fn func())
	Render(fbo mpv.FBO, flipY bool) error
	Free()
}

// engineLoader opens the engine library and creates an uninitialized
// instance. The returned unload func releases the library after the instance
// has been destroyed.
type engineLoader func(libraryPath string) (e engine, unload func(), err error)

// mpvEngine adapts *mpv.Handle to engine.
type mpvEngine struct {
	*mpv.Handle
}

func (e mpvEngine) NewRenderContext(getProcAddress func(name string) unsafe.Pointer) (renderContext, error) {
	rc, err := e.Handle.NewRenderContext(getProcAddress)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func loadMPV(libraryPath string) (engine, func(), error) {
	lib, err := mpv.Load(mpv.LoadOptions{Path: libraryPath})
	if err != nil {
		return nil, nil, err
	}
	h, err := lib.Create()
	if err != nil {
		lib.Unload()
		return nil, nil, err
	}
	return mpvEngine{Handle: h}, lib.Unload, nil
}
