// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import (
	"sync"

	"github.com/gogpu/gputypes"
)

// BytesPerPixel is the size of one RGBA8 pixel.
const BytesPerPixel = 4

// Frame describes a published RGBA frame. Rows are tightly packed top to
// bottom.
type Frame struct {
	Pixels []byte
	Width  int
	Height int
	Format gputypes.TextureFormat

	// Seq increases by one with every published frame of a player.
	Seq uint64
}

// Stride returns the length of one row in bytes.
func (f Frame) Stride() int { return f.Width * BytesPerPixel }

// PixelPublisher is a double-buffered RGBA store. A single writer fills the
// back buffer and swaps it in; readers fetch the front buffer from any
// goroutine.
type PixelPublisher struct {
	mu        sync.Mutex
	front     []byte
	back      []byte
	width     int
	height    int
	seq       uint64
	published bool
	closed    bool
}

// NewPixelPublisher returns a publisher with zeroed buffers of the given size.
func NewPixelPublisher(width, height int) *PixelPublisher {
	p := &PixelPublisher{}
	p.Resize(width, height)
	return p
}

// Resize reallocates both buffers. Nothing is published until the next Swap.
func (p *PixelPublisher) Resize(width, height int) {
	n := width * height * BytesPerPixel
	p.mu.Lock()
	defer p.mu.Unlock()
	p.front = make([]byte, n)
	p.back = make([]byte, n)
	p.width, p.height = width, height
	p.published = false
}

// Back returns the buffer the next frame is written into. Only the writer
// may call Back, and only between swaps.
func (p *PixelPublisher) Back() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.back
}

// Swap publishes the back buffer and returns the new frame descriptor.
func (p *PixelPublisher) Swap() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.front, p.back = p.back, p.front
	p.seq++
	p.published = true
	return p.frameLocked()
}

// Fetch returns the current front buffer. The pixels are valid until the
// swap after next. Fetch returns false before the first Swap and after Close.
func (p *PixelPublisher) Fetch() (Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.published {
		return Frame{}, false
	}
	return p.frameLocked(), true
}

// CopyFrame copies the current frame into dst, growing it if needed, and
// returns a descriptor that references the copy.
func (p *PixelPublisher) CopyFrame(dst []byte) (Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.published {
		return Frame{}, false
	}
	if cap(dst) < len(p.front) {
		dst = make([]byte, len(p.front))
	}
	dst = dst[:len(p.front)]
	copy(dst, p.front)
	f := p.frameLocked()
	f.Pixels = dst
	return f, true
}

// Size returns the current buffer dimensions.
func (p *PixelPublisher) Size() (width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// Close makes every later Fetch return false. It is idempotent.
func (p *PixelPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *PixelPublisher) frameLocked() Frame {
	return Frame{
		Pixels: p.front,
		Width:  p.width,
		Height: p.height,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Seq:    p.seq,
	}
}
