// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"slices"
	"sync"

	"github.com/gogpu/mpvtex"
)

// Session is the player surface the dispatcher drives. *mpvtex.Player
// implements it.
type Session interface {
	TextureID() int64
	Open(path string) error
	Play() error
	Pause() error
	SeekRelative(seconds float64) error
	SeekAbsolute(seconds float64) error
	SetVolume(volume float64) error
	SetSpeed(speed float64) error
	ToggleMute() (bool, error)
	Position() (float64, error)
	Duration() (float64, error)
	Resize(width, height int) error
	Stats() mpvtex.Stats
	Close() error
}

var _ Session = (*mpvtex.Player)(nil)

// Registry owns the sessions created through a Dispatcher.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]Session)}
}

// Add stores s under its texture id, replacing any previous entry.
func (r *Registry) Add(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.TextureID()] = s
}

// Get returns the session for id.
func (r *Registry) Get(id int64) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove deletes and returns the session for id.
func (r *Registry) Remove(id int64) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the texture ids in ascending order.
func (r *Registry) IDs() []int64 {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Each calls fn for every session while holding a read lock. fn must not
// modify the registry.
func (r *Registry) Each(fn func(Session)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		fn(s)
	}
}

// drain removes and returns every session.
func (r *Registry) drain() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		out = append(out, s)
		delete(r.sessions, id)
	}
	return out
}
