// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import "github.com/gogpu/mpvtex/internal/glx"

// Output size limits in pixels, per axis.
const (
	MinSize = 16
	MaxSize = 4096
)

// ClampSize clamps one output dimension to [MinSize, MaxSize].
func ClampSize(v int) int {
	return max(MinSize, min(MaxSize, v))
}

// frameTarget is the framebuffer and color texture the engine renders into.
// All methods require the owning context to be current.
type frameTarget struct {
	gl     *glx.Funcs
	fbo    uint32
	tex    uint32
	width  int
	height int
}

func newFrameTarget(gl *glx.Funcs) *frameTarget {
	return &frameTarget{gl: gl}
}

// ensure makes the target match the clamped size. It reports whether a new
// target was allocated.
func (t *frameTarget) ensure(width, height int) (bool, error) {
	width, height = ClampSize(width), ClampSize(height)
	if t.valid() && t.width == width && t.height == height {
		return false, nil
	}
	t.destroy()

	gl := t.gl
	gl.GenTextures(1, &t.tex)
	gl.BindTexture(glx.TEXTURE_2D, t.tex)
	gl.TexParameteri(glx.TEXTURE_2D, glx.TEXTURE_MIN_FILTER, glx.LINEAR)
	gl.TexParameteri(glx.TEXTURE_2D, glx.TEXTURE_MAG_FILTER, glx.LINEAR)
	gl.TexImage2D(glx.TEXTURE_2D, 0, glx.RGBA8, int32(width), int32(height), 0, //nolint:gosec // clamped
		glx.RGBA, glx.UNSIGNED_BYTE, nil)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(glx.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(glx.FRAMEBUFFER, glx.COLOR_ATTACHMENT0, glx.TEXTURE_2D, t.tex, 0)

	status := gl.CheckFramebufferStatus(glx.FRAMEBUFFER)
	gl.BindFramebuffer(glx.FRAMEBUFFER, 0)
	if status != glx.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return false, &IncompleteFramebufferError{Status: status}
	}
	t.width, t.height = width, height
	return true, nil
}

// destroy releases the framebuffer and texture. It is idempotent.
func (t *frameTarget) destroy() {
	if t.fbo != 0 {
		t.gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.tex != 0 {
		t.gl.DeleteTextures(1, &t.tex)
		t.tex = 0
	}
}

func (t *frameTarget) valid() bool { return t.fbo != 0 && t.tex != 0 }

func (t *frameTarget) size() (width, height int) { return t.width, t.height }
