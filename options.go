// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import (
	"log/slog"
	"sort"

	"github.com/gogpu/mpvtex/glctx"
	"github.com/gogpu/mpvtex/internal/glx"
)

// PlayerOption configures a Player during creation.
//
// Example:
//
//	p, err := mpvtex.NewPlayer(host, 1920, 1080,
//	    mpvtex.WithLibraryPath("/opt/mpv/lib/libmpv.so.2"),
//	    mpvtex.WithEngineOptions(map[string]string{"hwdec": "no"}),
//	)
type PlayerOption func(*playerOptions)

// EngineOption is one libmpv option applied before initialization.
type EngineOption struct {
	Name  string
	Value string
}

// DefaultEngineOptions returns the options applied to every engine instance
// unless overridden, in the order they are applied.
func DefaultEngineOptions() []EngineOption {
	return []EngineOption{
		{"vo", "libmpv"},
		{"hwdec", "auto-safe"},
		{"profile", "fast"},
		{"video-sync", "display-resample"},
		{"interpolation", "yes"},
		{"opengl-swapinterval", "1"},
		{"keep-open", "yes"},
		{"terminal", "no"},
		{"msg-level", "all=warn"},
	}
}

type playerOptions struct {
	engineOptions  []EngineOption
	libraryPath    string
	contextBackend string
	flipY          bool
	logger         *slog.Logger

	newContext func(backend string) (glctx.Context, error)
	loadGL     func(getProcAddress glx.ProcAddressFunc) (*glx.Funcs, error)
	loadEngine engineLoader
}

func defaultPlayerOptions() playerOptions {
	return playerOptions{
		engineOptions: DefaultEngineOptions(),
		newContext:    glctx.New,
		loadGL:        glx.Load,
		loadEngine:    loadMPV,
	}
}

// WithEngineOptions overrides or adds libmpv options. Defaults keep their
// position; new names are appended in sorted order. "vo" cannot be changed
// because rendering depends on vo=libmpv.
func WithEngineOptions(opts map[string]string) PlayerOption {
	return func(o *playerOptions) {
		extra := make([]string, 0, len(opts))
		for name := range opts {
			extra = append(extra, name)
		}
		sort.Strings(extra)

		for _, name := range extra {
			if name == "vo" {
				continue
			}
			replaced := false
			for i := range o.engineOptions {
				if o.engineOptions[i].Name == name {
					o.engineOptions[i].Value = opts[name]
					replaced = true
					break
				}
			}
			if !replaced {
				o.engineOptions = append(o.engineOptions, EngineOption{name, opts[name]})
			}
		}
	}
}

// WithLibraryPath loads libmpv from an explicit path instead of searching.
func WithLibraryPath(path string) PlayerOption {
	return func(o *playerOptions) {
		o.libraryPath = path
	}
}

// WithContextBackend selects a registered glctx backend by name.
// The empty name selects the best available backend.
func WithContextBackend(name string) PlayerOption {
	return func(o *playerOptions) {
		o.contextBackend = name
	}
}

// WithFlipY makes the engine render upside down. The default produces
// top-down rows after readback.
func WithFlipY(flip bool) PlayerOption {
	return func(o *playerOptions) {
		o.flipY = flip
	}
}

// WithLogger sets the logger for a single player. By default the package
// logger (see SetLogger) is used.
func WithLogger(l *slog.Logger) PlayerOption {
	return func(o *playerOptions) {
		o.logger = l
	}
}
