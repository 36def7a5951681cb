// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpv

import (
	"errors"
	"unsafe"

	"github.com/ebitengine/purego"
)

// LoadOptions configures Load.
type LoadOptions struct {
	// Path is an explicit library path. When empty, a copy next to the
	// executable is preferred and the platform search order is the fallback.
	Path string
}

// Library is a loaded libmpv with its entry points bound.
//
// The zero value is an unloaded library; every call on it returns
// ErrNotLoaded.
type Library struct {
	path   string
	handle uintptr
	loaded bool

	// client.h
	clientAPIVersion func() uint
	errorString      func(code int32) string
	create           func() uintptr
	initialize       func(h uintptr) int32
	destroy          func(h uintptr)
	setOptionString  func(h uintptr, name, value string) int32
	setProperty      func(h uintptr, name string, format int32, data unsafe.Pointer) int32
	getProperty      func(h uintptr, name string, format int32, data unsafe.Pointer) int32
	command          func(h uintptr, args unsafe.Pointer) int32

	// render.h
	renderContextCreate            func(res *uintptr, h uintptr, params unsafe.Pointer) int32
	renderContextFree              func(ctx uintptr)
	renderContextSetUpdateCallback func(ctx uintptr, cb uintptr, cbCtx uintptr)
	renderContextRender            func(ctx uintptr, params unsafe.Pointer) int32

	// optional
	free func(p unsafe.Pointer)
}

// symbol binds one exported entry point to a function field.
type symbol struct {
	name     string
	fptr     any
	required bool
}

func (l *Library) symbols() []symbol {
	return []symbol{
		{"mpv_client_api_version", &l.clientAPIVersion, true},
		{"mpv_error_string", &l.errorString, true},
		{"mpv_create", &l.create, true},
		{"mpv_initialize", &l.initialize, true},
		{"mpv_destroy", &l.destroy, true},
		{"mpv_set_option_string", &l.setOptionString, true},
		{"mpv_set_property", &l.setProperty, true},
		{"mpv_get_property", &l.getProperty, true},
		{"mpv_command", &l.command, true},
		{"mpv_render_context_create", &l.renderContextCreate, true},
		{"mpv_render_context_free", &l.renderContextFree, true},
		{"mpv_render_context_set_update_callback", &l.renderContextSetUpdateCallback, true},
		{"mpv_render_context_render", &l.renderContextRender, true},
		{"mpv_free", &l.free, false},
	}
}

// RequiredSymbols returns the names of the entry points Load requires.
func RequiredSymbols() []string {
	var l Library
	var names []string
	for _, s := range l.symbols() {
		if s.required {
			names = append(names, s.name)
		}
	}
	return names
}

// Load opens libmpv and binds its entry points.
//
// Candidate paths are tried in order until one opens. If the opened library
// lacks any required symbol it is closed again and a *MissingSymbolError is
// returned.
func Load(opts LoadOptions) (*Library, error) {
	tried := defaultCandidates(opts.Path)
	var lastErr error
	for _, path := range tried {
		h, err := openLibrary(path)
		if err != nil {
			lastErr = err
			continue
		}
		l := &Library{path: path, handle: h}
		if err := l.bind(); err != nil {
			_ = closeLibrary(h)
			return nil, err
		}
		l.loaded = true
		major, minor := l.APIVersion()
		slogger().Info("mpv: library loaded", "path", path, "api_major", major, "api_minor", minor)
		return l, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no candidate paths")
	}
	return nil, &OpenError{Tried: tried, Err: lastErr}
}

// bind resolves all symbols. Either every required symbol is bound or none is.
func (l *Library) bind() error {
	syms := l.symbols()
	addrs := make([]uintptr, len(syms))
	for i, s := range syms {
		addr, err := lookupSymbol(l.handle, s.name)
		if err != nil || addr == 0 {
			if s.required {
				return &MissingSymbolError{Path: l.path, Symbol: s.name}
			}
			continue
		}
		addrs[i] = addr
	}
	for i, s := range syms {
		if addrs[i] != 0 {
			purego.RegisterFunc(s.fptr, addrs[i])
		}
	}
	return nil
}

// Path returns the path the library was opened from.
func (l *Library) Path() string { return l.path }

// Loaded reports whether the library is loaded.
func (l *Library) Loaded() bool { return l != nil && l.loaded }

// Unload clears all bindings and closes the library handle.
// It is safe to call on an already unloaded Library.
func (l *Library) Unload() {
	if l == nil || !l.loaded {
		return
	}
	handle := l.handle
	path := l.path
	*l = Library{path: path}
	if handle != 0 {
		if err := closeLibrary(handle); err != nil {
			slogger().Warn("mpv: closing library failed", "path", path, "err", err)
		}
	}
}

// APIVersion returns the client API version as (major, minor).
func (l *Library) APIVersion() (major, minor uint32) {
	if !l.Loaded() {
		return 0, 0
	}
	// unsigned long is 32 bits on Windows; the version always fits in 32.
	v := uint32(l.clientAPIVersion() & 0xFFFFFFFF) //nolint:gosec // masked
	return v >> 16, v & 0xFFFF
}

// ErrorString returns libmpv's description of an error code.
func (l *Library) ErrorString(code int) string {
	if !l.Loaded() || l.errorString == nil {
		return "unknown"
	}
	return l.errorString(int32(code)) //nolint:gosec // libmpv codes are small negatives
}

// check converts a libmpv status into an *Error when negative.
func (l *Library) check(op string, rc int32) error {
	if rc >= 0 {
		return nil
	}
	return &Error{Op: op, Code: int(rc), Message: l.ErrorString(int(rc))}
}

// Create creates a new, uninitialized playback instance.
func (l *Library) Create() (*Handle, error) {
	if !l.Loaded() {
		return nil, ErrNotLoaded
	}
	h := l.create()
	if h == 0 {
		return nil, ErrCreateFailed
	}
	return &Handle{lib: l, h: h}, nil
}
