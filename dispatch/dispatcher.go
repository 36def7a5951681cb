// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"log/slog"
	"slices"

	"github.com/gogpu/mpvtex"
)

// Default output size for create.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Factory creates a session with the given output size.
type Factory func(width, height int) (Session, error)

// PlayerFactory returns a Factory creating players registered with host.
func PlayerFactory(host mpvtex.TextureRegistrar, opts ...mpvtex.PlayerOption) Factory {
	return func(width, height int) (Session, error) {
		p, err := mpvtex.NewPlayer(host, width, height, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Methods lists the operations Handle accepts.
var Methods = []string{
	"create",
	"dispose",
	"open",
	"play",
	"pause",
	"seekRelative",
	"seekAbsolute",
	"setVolume",
	"setSpeed",
	"toggleMute",
	"getPosition",
	"getDuration",
	"resize",
}

// Dispatcher executes named operations against the sessions in a Registry.
// It is safe for concurrent use.
type Dispatcher struct {
	reg     *Registry
	factory Factory
	log     *slog.Logger
}

// New returns a dispatcher that creates sessions with factory and stores
// them in reg.
func New(reg *Registry, factory Factory) *Dispatcher {
	return &Dispatcher{
		reg:     reg,
		factory: factory,
		log:     mpvtex.Logger(),
	}
}

// Registry returns the registry the dispatcher owns sessions in.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Handle runs method with args. Results are int64 for create, float64 for
// getPosition and getDuration, bool for toggleMute, and nil otherwise.
// Every error is an *Error.
func (d *Dispatcher) Handle(method string, args Args) (any, error) {
	if !slices.Contains(Methods, method) {
		return nil, &Error{Code: CodeNotImplemented, Message: "Unknown method " + method}
	}
	if method == "create" {
		return d.create(args)
	}

	id, ok := args.Int("textureId")
	if !ok || id < 0 {
		return nil, badArgs("Missing textureId")
	}
	s, ok := d.reg.Get(id)
	if !ok {
		return nil, &Error{Code: CodeNotFound, Message: "Unknown textureId"}
	}

	switch method {
	case "dispose":
		return nil, d.dispose(id)
	case "open":
		path, ok := args.String("path")
		if !ok || path == "" {
			return nil, badArgs("Missing path")
		}
		if err := s.Open(path); err != nil {
			return nil, opError(CodeOpenFailed, err)
		}
		return nil, nil
	case "play":
		return nil, check(s.Play())
	case "pause":
		return nil, check(s.Pause())
	case "seekRelative":
		return nil, check(s.SeekRelative(args.FloatOr("seconds", 0)))
	case "seekAbsolute":
		return nil, check(s.SeekAbsolute(args.FloatOr("seconds", 0)))
	case "setVolume":
		return nil, check(s.SetVolume(args.FloatOr("volume", 1)))
	case "setSpeed":
		return nil, check(s.SetSpeed(args.FloatOr("speed", 1)))
	case "toggleMute":
		muted, err := s.ToggleMute()
		if err != nil {
			return nil, opError(CodeOperationFailed, err)
		}
		return muted, nil
	case "getPosition":
		return seconds(s.Position())
	case "getDuration":
		return seconds(s.Duration())
	case "resize":
		w, okW := args.Int("width")
		h, okH := args.Int("height")
		if !okW || !okH {
			return nil, badArgs("Missing width or height")
		}
		return nil, check(s.Resize(int(w), int(h)))
	}
	return nil, &Error{Code: CodeNotImplemented, Message: "Unknown method " + method}
}

func (d *Dispatcher) create(args Args) (any, error) {
	width, height := args.IntOr("width", DefaultWidth), args.IntOr("height", DefaultHeight)
	s, err := d.factory(int(width), int(height))
	if err != nil {
		d.log.Error("dispatch: create failed", "width", width, "height", height, "err", err)
		return nil, &Error{Code: CodeInitFailed, Message: err.Error(), Err: err}
	}
	d.reg.Add(s)
	d.log.Info("dispatch: session created", "texture_id", s.TextureID())
	return s.TextureID(), nil
}

func (d *Dispatcher) dispose(id int64) error {
	s, ok := d.reg.Remove(id)
	if !ok {
		return &Error{Code: CodeNotFound, Message: "Unknown textureId"}
	}
	if err := s.Close(); err != nil {
		d.log.Warn("dispatch: close failed", "texture_id", id, "err", err)
	}
	d.log.Info("dispatch: session disposed", "texture_id", id)
	return nil
}

// Close disposes every session. The dispatcher stays usable.
func (d *Dispatcher) Close() error {
	for _, s := range d.reg.drain() {
		if err := s.Close(); err != nil {
			d.log.Warn("dispatch: close failed", "texture_id", s.TextureID(), "err", err)
		}
	}
	return nil
}

func check(err error) error {
	if err != nil {
		return opError(CodeOperationFailed, err)
	}
	return nil
}

func seconds(v float64, err error) (any, error) {
	if err != nil {
		return nil, opError(CodeOperationFailed, err)
	}
	return v, nil
}
