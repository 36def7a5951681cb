// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

// TextureRegistrar is the host side of a player: it hands out texture ids
// and is told when new frames can be pulled.
type TextureRegistrar interface {
	// RegisterTexture registers a pull-based frame source and returns the
	// id used for all later calls.
	RegisterTexture(src FrameSource) (int64, error)

	// UnregisterTexture forgets the texture. No frame-available call for id
	// follows.
	UnregisterTexture(id int64)

	// MarkTextureFrameAvailable is called from the render worker after a
	// frame has been published. Implementations must not block.
	MarkTextureFrameAvailable(id int64)
}

// FrameSource is polled by the host for the latest frame.
type FrameSource interface {
	// Fetch returns the latest published frame, or false if there is none.
	Fetch() (Frame, bool)
}
