// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package server

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/mpvtex"
)

// Host implements mpvtex.TextureRegistrar. Texture ids start at 1 and are
// never reused.
type Host struct {
	mu      sync.RWMutex
	next    int64
	sources map[int64]mpvtex.FrameSource
	subs    map[*subscriber]struct{}

	marks     atomic.Uint64
	coalesced atomic.Uint64
}

var _ mpvtex.TextureRegistrar = (*Host)(nil)

// NewHost returns an empty host.
func NewHost() *Host {
	return &Host{
		sources: make(map[int64]mpvtex.FrameSource),
		subs:    make(map[*subscriber]struct{}),
	}
}

// RegisterTexture implements mpvtex.TextureRegistrar.
func (h *Host) RegisterTexture(src mpvtex.FrameSource) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	h.sources[h.next] = src
	return h.next, nil
}

// UnregisterTexture implements mpvtex.TextureRegistrar.
func (h *Host) UnregisterTexture(id int64) {
	h.mu.Lock()
	delete(h.sources, id)
	subs := h.subscribersLocked()
	h.mu.Unlock()
	for _, s := range subs {
		s.forget(id)
	}
}

// MarkTextureFrameAvailable implements mpvtex.TextureRegistrar. It never
// blocks: every subscriber records the id and is woken if idle.
func (h *Host) MarkTextureFrameAvailable(id int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sources[id]; !ok {
		return
	}
	h.marks.Add(1)
	for s := range h.subs {
		if !s.mark(id) {
			h.coalesced.Add(1)
		}
	}
}

// Source returns the frame source registered under id.
func (h *Host) Source(id int64) (mpvtex.FrameSource, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	src, ok := h.sources[id]
	return src, ok
}

// Len returns the number of registered textures.
func (h *Host) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sources)
}

// Subscribers returns the number of active subscriptions.
func (h *Host) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// subscribe registers a new subscriber. The returned function removes it.
func (h *Host) subscribe() (*subscriber, func()) {
	s := newSubscriber()
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s, func() {
		h.mu.Lock()
		delete(h.subs, s)
		h.mu.Unlock()
	}
}

func (h *Host) subscribersLocked() []*subscriber {
	out := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		out = append(out, s)
	}
	return out
}

// subscriber accumulates frame marks for one client. Marks for the same id
// collapse into one until they are taken.
type subscriber struct {
	mu      sync.Mutex
	pending map[int64]struct{}
	order   []int64
	wake    chan struct{}
}

func newSubscriber() *subscriber {
	return &subscriber{
		pending: make(map[int64]struct{}),
		wake:    make(chan struct{}, 1),
	}
}

// mark records id and reports whether it was new since the last take.
func (s *subscriber) mark(id int64) bool {
	s.mu.Lock()
	_, dup := s.pending[id]
	if !dup {
		s.pending[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return !dup
}

func (s *subscriber) forget(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; !ok {
		return
	}
	delete(s.pending, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// take returns the pending ids in first-mark order and clears them.
func (s *subscriber) take() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.order
	s.order = nil
	clear(s.pending)
	return ids
}
