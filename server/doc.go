// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package server exposes players over HTTP.
//
// A [Host] is the texture registrar players publish into. A [Server] routes
// three kinds of traffic to it:
//
//   - GET /channel upgrades to a websocket carrying the method channel.
//     Requests are {"id", "method", "args"}; replies echo the id with either
//     "result" or "error": {"code", "message"}. Frame notifications arrive
//     as {"event": "frameAvailable", "textureId"}.
//   - GET /textures/{id}/frame.png pulls the latest frame, optionally
//     scaled with ?width=N.
//   - GET /metrics and GET /healthz for operations.
//
// Frame notifications are throttled per client. Marks that arrive while a
// client is throttled are coalesced, so a client always learns about the
// newest frame of every texture but may skip intermediate ones.
package server
