// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texbridge pushes player frames into gogpu textures.
//
// Players publish frames for hosts that pull. Hosts built on gogpu draw
// textures instead; a Bridge sits between the two. On each Sync it pulls the
// latest frame and uploads it when it is newer than the last upload:
//
//	player frame (CPU, RGBA) -> Bridge.Sync -> gpucontext.Texture -> window
//
// # Usage
//
//	bridge := texbridge.New(player)
//	defer bridge.Close()
//
//	// in the draw callback:
//	if err := bridge.DrawTo(dc.AsTextureDrawer(), 0, 0); err != nil {
//	    log.Println(err)
//	}
//
// # Thread Safety
//
// Bridge is NOT safe for concurrent use. Call it from the draw goroutine.
//
// # Performance Notes
//
//   - The texture is created lazily on the first frame
//   - Frames whose sequence number did not advance are not uploaded
//   - A size change recreates the texture; the old one is destroyed only
//     after its replacement exists
package texbridge
