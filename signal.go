// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

// renderSignal is a one-slot wake-up. Raising it while a wake-up is already
// pending is a no-op, so bursts of requests collapse into one render.
type renderSignal struct {
	c chan struct{}
}

func newRenderSignal() *renderSignal {
	return &renderSignal{c: make(chan struct{}, 1)}
}

// raise requests a wake-up without blocking. It reports whether the request
// was newly queued.
func (s *renderSignal) raise() bool {
	select {
	case s.c <- struct{}{}:
		return true
	default:
		return false
	}
}

// wait returns the channel that receives pending wake-ups.
func (s *renderSignal) wait() <-chan struct{} { return s.c }
