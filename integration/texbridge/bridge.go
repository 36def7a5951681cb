// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texbridge

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/mpvtex"
)

var (
	// ErrBridgeClosed is returned when operating on a closed Bridge.
	ErrBridgeClosed = errors.New("texbridge: bridge is closed")

	// ErrNilCreator is returned when no texture creator is available.
	ErrNilCreator = errors.New("texbridge: nil TextureCreator")
)

// textureDestroyer is implemented by textures that hold GPU resources.
type textureDestroyer interface {
	Destroy()
}

// frameCopier is implemented by sources that can copy a frame under their
// own lock, such as *mpvtex.Player.
type frameCopier interface {
	CopyFrame(dst []byte) (mpvtex.Frame, bool)
}

// Bridge uploads frames from a FrameSource into a gpucontext.Texture.
type Bridge struct {
	src        mpvtex.FrameSource
	texture    gpucontext.Texture
	oldTexture gpucontext.Texture
	buf        []byte
	seq        uint64
	width      int
	height     int
	closed     bool
}

// New returns a bridge reading from src.
func New(src mpvtex.FrameSource) *Bridge {
	return &Bridge{src: src}
}

// Texture returns the current texture, or nil before the first frame.
func (b *Bridge) Texture() gpucontext.Texture { return b.texture }

// Size returns the size of the last uploaded frame.
func (b *Bridge) Size() (width, height int) { return b.width, b.height }

// Seq returns the sequence number of the last uploaded frame.
func (b *Bridge) Seq() uint64 { return b.seq }

// Sync uploads the latest frame if it is newer than the last upload. It
// reports whether the texture content changed.
func (b *Bridge) Sync(creator gpucontext.TextureCreator) (bool, error) {
	if b.closed {
		return false, ErrBridgeClosed
	}
	frame, ok := b.fetch()
	if !ok {
		return false, nil
	}
	if b.texture != nil && frame.Seq == b.seq {
		return false, nil
	}

	// Size changed: keep the old texture alive until the new one exists.
	if b.texture != nil && (frame.Width != b.width || frame.Height != b.height) {
		destroy(b.oldTexture)
		b.oldTexture = b.texture
		b.texture = nil
	}

	if b.texture != nil {
		if updater, ok := b.texture.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(frame.Pixels); err != nil {
				return false, fmt.Errorf("texbridge: texture update failed: %w", err)
			}
			b.commit(frame)
			return true, nil
		}
		// Not updatable: replace it like a resize.
		destroy(b.oldTexture)
		b.oldTexture = b.texture
		b.texture = nil
	}

	if creator == nil {
		return false, ErrNilCreator
	}
	tex, err := creator.NewTextureFromRGBA(frame.Width, frame.Height, slices.Clone(frame.Pixels))
	if err != nil {
		return false, fmt.Errorf("texbridge: NewTextureFromRGBA failed: %w", err)
	}
	b.texture = tex
	destroy(b.oldTexture)
	b.oldTexture = nil
	b.commit(frame)
	mpvtex.Logger().Debug("texbridge: texture created", "width", frame.Width, "height", frame.Height)
	return true, nil
}

// DrawTo syncs using dc's texture creator and draws the texture at (x, y).
// Before the first frame it draws nothing.
func (b *Bridge) DrawTo(dc gpucontext.TextureDrawer, x, y float32) error {
	if b.closed {
		return ErrBridgeClosed
	}
	if _, err := b.Sync(dc.TextureCreator()); err != nil {
		return err
	}
	if b.texture == nil {
		return nil
	}
	return dc.DrawTexture(b.texture, x, y)
}

// Close destroys the textures. It is idempotent.
func (b *Bridge) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	destroy(b.oldTexture)
	destroy(b.texture)
	b.oldTexture, b.texture = nil, nil
	b.src = nil
	b.buf = nil
	return nil
}

func (b *Bridge) fetch() (mpvtex.Frame, bool) {
	if c, ok := b.src.(frameCopier); ok {
		f, ok := c.CopyFrame(b.buf)
		if ok {
			b.buf = f.Pixels
		}
		return f, ok
	}
	return b.src.Fetch()
}

func (b *Bridge) commit(f mpvtex.Frame) {
	b.seq = f.Seq
	b.width, b.height = f.Width, f.Height
}

func destroy(tex gpucontext.Texture) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}
