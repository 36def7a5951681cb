// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package mpvtex renders libmpv video offscreen and publishes the frames to
// hosts that pull pixels on their own schedule.
//
// # Overview
//
// A [Player] owns one offscreen OpenGL context, one libmpv instance with an
// OpenGL render context, one framebuffer the engine renders into, and a
// render worker goroutine. The worker sleeps until libmpv reports a new frame
// (or a control operation asks for one), renders into the framebuffer, reads
// the pixels back into a double-buffered RGBA store and tells the host that a
// frame is available. The host then pulls the frame with [Player.Fetch].
//
// # Quick Start
//
//	p, err := mpvtex.NewPlayer(host, 1280, 720)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	if err := p.Open("/videos/clip.mkv"); err != nil {
//	    log.Fatal(err)
//	}
//	p.Play()
//
// host implements [TextureRegistrar]. Its MarkTextureFrameAvailable method is
// called from the render worker after each frame; it should schedule a pull
// and return quickly.
//
// # Threading
//
// Control methods (Open, Play, SeekRelative, ...) may be called from any
// goroutine. They only change engine properties and request a render; they
// never touch OpenGL. Render requests coalesce: any number of requests made
// while the worker is busy result in one further render.
//
// Fetch may be called from any goroutine. The returned pixels stay valid until
// the worker publishes the frame after next; use [Player.CopyFrame] to keep a
// frame longer.
//
// # Logging
//
// mpvtex is silent by default. Call [SetLogger] to enable structured logging
// through log/slog for this package, the mpv binding and the GL context layer.
//
// # Sub-packages
//
//   - mpv: dynamic libmpv binding
//   - glctx: offscreen OpenGL contexts
//   - dispatch: named operations over a registry of players
//   - server: websocket method channel and HTTP frame pull
//   - integration/texbridge: uploads frames into gogpu textures
package mpvtex
