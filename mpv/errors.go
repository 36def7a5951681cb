// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpv

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors returned by the binding.
var (
	// ErrNotLoaded is returned when a call is made on an unloaded Library.
	ErrNotLoaded = errors.New("mpv: library not loaded")

	// ErrLibraryNotFound is returned when no candidate path could be opened.
	ErrLibraryNotFound = errors.New("mpv: shared library not found")

	// ErrCreateFailed is returned when mpv_create returns NULL.
	ErrCreateFailed = errors.New("mpv: mpv_create returned null")

	// ErrDestroyed is returned by calls on a destroyed Handle or freed RenderContext.
	ErrDestroyed = errors.New("mpv: handle destroyed")

	// ErrUnsupported is returned when an optional entry point is unavailable.
	ErrUnsupported = errors.New("mpv: operation not supported by loaded library")
)

// Error codes reported by libmpv. Only the ones the binding inspects are named.
const (
	ErrorSuccess             = 0
	ErrorInvalidParameter    = -4
	ErrorPropertyNotFound    = -8
	ErrorPropertyFormat      = -9
	ErrorPropertyUnavailable = -10
	ErrorCommand             = -12
	ErrorLoadingFailed       = -13
	ErrorUnsupported         = -18
	ErrorGeneric             = -20
)

// Error is a negative status code returned by a libmpv call, translated with
// the engine's own mpv_error_string.
type Error struct {
	// Op is the binding operation that failed (e.g. "set_property pause").
	Op string

	// Code is the negative libmpv error code.
	Code int

	// Message is the engine's description of Code.
	Message string
}

func (e *Error) Error() string {
	msg := "libmpv error " + strconv.Itoa(e.Code) + ": " + e.Message
	if e.Op == "" {
		return msg
	}
	return "mpv: " + e.Op + ": " + msg
}

// IsPropertyUnavailable reports whether err is a libmpv "property unavailable"
// error, which is returned for properties such as time-pos before a file is
// loaded.
func IsPropertyUnavailable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrorPropertyUnavailable
}

// MissingSymbolError is returned by Load when a required entry point is not
// exported by the opened library.
type MissingSymbolError struct {
	Path   string
	Symbol string
}

func (e *MissingSymbolError) Error() string {
	return fmt.Sprintf("mpv: %s does not export required symbol %s", e.Path, e.Symbol)
}

// OpenError is returned by Load when none of the candidate paths could be opened.
type OpenError struct {
	Tried []string
	Err   error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("mpv: could not open libmpv (tried %v): %v", e.Tried, e.Err)
}

func (e *OpenError) Unwrap() []error {
	return []error{ErrLibraryNotFound, e.Err}
}
