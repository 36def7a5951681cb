// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import (
	"errors"
	"fmt"
)

// Errors.
var (
	// ErrClosed is returned by operations on a closed Player.
	ErrClosed = errors.New("mpvtex: player closed")

	// ErrNilHost is returned by NewPlayer when no TextureRegistrar is given.
	ErrNilHost = errors.New("mpvtex: nil texture registrar")
)

// Initialization stages reported by InitError.
const (
	StageContext       = "gl context"
	StageProcs         = "gl entry points"
	StageEngineLoad    = "engine load"
	StageEngineInit    = "engine initialize"
	StageRenderContext = "render context"
	StageFrameTarget   = "frame target"
	StageRegister      = "texture registration"
)

// InitError reports why a Player could not be created. A Player is never
// returned together with an InitError.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("mpvtex: init %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// OperationError reports an engine failure during a control operation.
// The player remains usable.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("mpvtex: %s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// IncompleteFramebufferError reports a framebuffer that failed the
// completeness check after its color target was attached.
type IncompleteFramebufferError struct {
	Status uint32
}

func (e *IncompleteFramebufferError) Error() string {
	return fmt.Sprintf("mpvtex: OpenGL framebuffer incomplete: 0x%x", e.Status)
}
