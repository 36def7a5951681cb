// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import "sync/atomic"

// Stats is a snapshot of a player's render counters.
type Stats struct {
	// RenderRequests counts requests from the engine and control operations.
	// Coalesced requests are counted individually.
	RenderRequests uint64

	// Renders counts engine render calls.
	Renders uint64

	// RenderFailures counts render calls that returned an error or panicked.
	RenderFailures uint64

	// FramesPublished counts frames handed to the host.
	FramesPublished uint64

	// SkippedCycles counts wake-ups that did not publish a frame.
	SkippedCycles uint64

	// State is the render worker state.
	State WorkerState
}

type counters struct {
	requests  atomic.Uint64
	renders   atomic.Uint64
	failures  atomic.Uint64
	published atomic.Uint64
	skipped   atomic.Uint64
}

func (c *counters) snapshot(state WorkerState) Stats {
	return Stats{
		RenderRequests:  c.requests.Load(),
		Renders:         c.renders.Load(),
		RenderFailures:  c.failures.Load(),
		FramesPublished: c.published.Load(),
		SkippedCycles:   c.skipped.Load(),
		State:           state,
	}
}
