// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpv

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"
)

// Format selects how a property value is exchanged with libmpv.
type Format int32

// Property formats (mpv_format).
const (
	FormatNone      Format = 0
	FormatString    Format = 1
	FormatOSDString Format = 2
	FormatFlag      Format = 3
	FormatInt64     Format = 4
	FormatDouble    Format = 5
)

// ErrInvalidArgument is returned when an argument cannot be represented as a
// C string.
var ErrInvalidArgument = errors.New("mpv: argument contains NUL byte")

// Handle is a playback instance (mpv_handle).
//
// Property and command methods may be called from any goroutine.
type Handle struct {
	lib       *Library
	h         uintptr
	destroyed bool
}

func (h *Handle) usable() error {
	if h == nil || h.destroyed || h.h == 0 {
		return ErrDestroyed
	}
	if !h.lib.Loaded() {
		return ErrNotLoaded
	}
	return nil
}

// SetOptionString sets an option before Initialize.
func (h *Handle) SetOptionString(name, value string) error {
	if err := h.usable(); err != nil {
		return err
	}
	if hasNUL([]string{name, value}) {
		return ErrInvalidArgument
	}
	return h.lib.check("set_option_string "+name, h.lib.setOptionString(h.h, name, value))
}

// Initialize finishes instance setup. Options set afterwards must go through
// properties.
func (h *Handle) Initialize() error {
	if err := h.usable(); err != nil {
		return err
	}
	return h.lib.check("initialize", h.lib.initialize(h.h))
}

// SetFlag sets a boolean property using the 0/1 integer encoding.
func (h *Handle) SetFlag(name string, v bool) error {
	if err := h.usable(); err != nil {
		return err
	}
	var flag int32
	if v {
		flag = 1
	}
	rc := h.lib.setProperty(h.h, name, int32(FormatFlag), unsafe.Pointer(&flag))
	return h.lib.check("set_property "+name, rc)
}

// GetFlag reads a boolean property.
func (h *Handle) GetFlag(name string) (bool, error) {
	if err := h.usable(); err != nil {
		return false, err
	}
	var flag int32
	rc := h.lib.getProperty(h.h, name, int32(FormatFlag), unsafe.Pointer(&flag))
	if err := h.lib.check("get_property "+name, rc); err != nil {
		return false, err
	}
	return flag != 0, nil
}

// SetDouble sets a numeric property.
func (h *Handle) SetDouble(name string, v float64) error {
	if err := h.usable(); err != nil {
		return err
	}
	rc := h.lib.setProperty(h.h, name, int32(FormatDouble), unsafe.Pointer(&v))
	return h.lib.check("set_property "+name, rc)
}

// GetDouble reads a numeric property.
func (h *Handle) GetDouble(name string) (float64, error) {
	if err := h.usable(); err != nil {
		return 0, err
	}
	var v float64
	rc := h.lib.getProperty(h.h, name, int32(FormatDouble), unsafe.Pointer(&v))
	if err := h.lib.check("get_property "+name, rc); err != nil {
		return 0, err
	}
	return v, nil
}

// SetString sets a string property.
func (h *Handle) SetString(name, value string) error {
	if err := h.usable(); err != nil {
		return err
	}
	if hasNUL([]string{value}) {
		return ErrInvalidArgument
	}
	buf := cString(value)
	var pinner runtime.Pinner
	pinner.Pin(&buf[0])
	defer pinner.Unpin()
	p := &buf[0]
	rc := h.lib.setProperty(h.h, name, int32(FormatString), unsafe.Pointer(&p))
	return h.lib.check("set_property "+name, rc)
}

// GetString reads a string property. It requires the optional mpv_free
// entry point to release the engine-allocated result.
func (h *Handle) GetString(name string) (string, error) {
	if err := h.usable(); err != nil {
		return "", err
	}
	if h.lib.free == nil {
		return "", ErrUnsupported
	}
	var p *byte
	rc := h.lib.getProperty(h.h, name, int32(FormatString), unsafe.Pointer(&p))
	if err := h.lib.check("get_property "+name, rc); err != nil {
		return "", err
	}
	s := goString(p)
	h.lib.free(unsafe.Pointer(p))
	return s, nil
}

// Command runs a freeform command such as ("loadfile", path).
func (h *Handle) Command(args ...string) error {
	if err := h.usable(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: empty command", ErrInvalidArgument)
	}
	if hasNUL(args) {
		return ErrInvalidArgument
	}
	arr := newCStringArray(args)
	defer arr.release()
	return h.lib.check("command "+args[0], h.lib.command(h.h, arr.pointer()))
}

// Destroy terminates the instance. Render contexts created from it must be
// freed first. Destroy is idempotent.
func (h *Handle) Destroy() {
	if h == nil || h.destroyed {
		return
	}
	h.destroyed = true
	if h.lib.Loaded() && h.h != 0 {
		h.lib.destroy(h.h)
	}
	h.h = 0
}
