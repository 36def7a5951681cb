// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package dispatch maps named operations with key/value arguments onto
// players.
//
// A Dispatcher owns a Registry of sessions keyed by texture id. The registry
// is created by the caller and passed in, so several dispatchers (or tests)
// never share hidden state.
//
//	reg := dispatch.NewRegistry()
//	d := dispatch.New(reg, dispatch.PlayerFactory(host))
//	id, err := d.Handle("create", dispatch.Args{"width": 1920, "height": 1080})
//	_, err = d.Handle("open", dispatch.Args{"textureId": id, "path": "/videos/a.mkv"})
//
// Errors returned by Handle are always *Error values carrying a stable code.
package dispatch
