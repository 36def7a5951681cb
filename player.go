// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import (
	"errors"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/mpvtex/glctx"
	"github.com/gogpu/mpvtex/internal/glx"
	"github.com/gogpu/mpvtex/mpv"
)

// Player renders one libmpv instance into a host texture.
//
// A Player is created ready to render: NewPlayer either returns a fully
// initialized Player with its render worker running, or an *InitError.
// All methods are safe for concurrent use.
type Player struct {
	id   int64
	host TextureRegistrar
	opts playerOptions
	log  *slog.Logger

	ctx    glctx.Context
	gl     *glx.Funcs
	eng    engine
	unload func()
	rctx   renderContext
	target *frameTarget
	pub    *PixelPublisher
	w      *worker
	stats  counters

	mu     sync.Mutex
	volume float64
	speed  float64

	// opMu is held shared by control operations and exclusively by Close
	// while the engine is torn down.
	opMu      sync.RWMutex
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewPlayer creates a player with an output of width x height pixels, each
// clamped to [MinSize, MaxSize], and registers it with host.
//
// Initialization binds an OpenGL context to the calling goroutine's thread
// for its duration and releases it before returning.
func NewPlayer(host TextureRegistrar, width, height int, opts ...PlayerOption) (*Player, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	o := defaultPlayerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	p := &Player{
		host:   host,
		opts:   o,
		log:    log,
		volume: 1,
		speed:  1,
	}
	p.w = &worker{
		host:   host,
		flipY:  o.flipY,
		stats:  &p.stats,
		signal: newRenderSignal(),
	}

	width, height = ClampSize(width), ClampSize(height)
	if err := p.init(width, height); err != nil {
		p.log.Error("mpvtex: player init failed", "err", err)
		p.release()
		return nil, err
	}

	id, err := host.RegisterTexture(p)
	if err != nil {
		p.release()
		return nil, &InitError{Stage: StageRegister, Err: err}
	}
	p.id = id
	p.log = p.log.With("texture_id", id)

	w := p.w
	w.id = id
	w.ctx, w.gl, w.target, w.render, w.pub = p.ctx, p.gl, p.target, p.rctx, p.pub
	w.log = p.log
	w.start()

	p.log.Info("mpvtex: player created", "width", width, "height", height)
	return p, nil
}

// init acquires every resource in order. On error, the resources acquired so
// far stay recorded on p for release.
func (p *Player) init(width, height int) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx, err := p.opts.newContext(p.opts.contextBackend)
	if err != nil {
		return &InitError{Stage: StageContext, Err: err}
	}
	if err := ctx.Initialize(); err != nil {
		ctx.Shutdown()
		return &InitError{Stage: StageContext, Err: err}
	}
	p.ctx = ctx
	if err := ctx.MakeCurrent(); err != nil {
		return &InitError{Stage: StageContext, Err: err}
	}
	defer ctx.DoneCurrent()

	gl, err := p.opts.loadGL(ctx.GetProcAddress)
	if err == nil {
		err = gl.Validate()
	}
	if err != nil {
		return &InitError{Stage: StageProcs, Err: err}
	}
	p.gl = gl

	eng, unload, err := p.opts.loadEngine(p.opts.libraryPath)
	if err != nil {
		return &InitError{Stage: StageEngineLoad, Err: err}
	}
	p.eng, p.unload = eng, unload

	for _, opt := range p.opts.engineOptions {
		if err := eng.SetOptionString(opt.Name, opt.Value); err != nil {
			p.log.Warn("mpvtex: engine option ignored", "name", opt.Name, "value", opt.Value, "err", err)
		}
	}
	if err := eng.Initialize(); err != nil {
		return &InitError{Stage: StageEngineInit, Err: err}
	}

	rctx, err := eng.NewRenderContext(ctx.GetProcAddress)
	if err != nil {
		return &InitError{Stage: StageRenderContext, Err: err}
	}
	p.rctx = rctx
	rctx.SetUpdateCallback(p.w.requestRender)

	p.target = newFrameTarget(gl)
	if _, err := p.target.ensure(width, height); err != nil {
		return &InitError{Stage: StageFrameTarget, Err: err}
	}
	p.pub = NewPixelPublisher(width, height)
	return nil
}

// release frees resources in reverse acquisition order. The worker must not
// be running.
func (p *Player) release() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if p.ctx != nil && (p.target != nil || p.rctx != nil) {
		if err := p.ctx.MakeCurrent(); err != nil {
			p.log.Warn("mpvtex: cannot rebind context for teardown", "err", err)
		} else {
			if p.target != nil {
				p.target.destroy()
			}
			if p.rctx != nil {
				p.rctx.Free()
				p.rctx = nil
			}
			p.ctx.DoneCurrent()
		}
	}
	if p.rctx != nil {
		p.rctx.Free()
		p.rctx = nil
	}
	if p.eng != nil {
		p.eng.Destroy()
		p.eng = nil
	}
	if p.unload != nil {
		p.unload()
		p.unload = nil
	}
	if p.ctx != nil {
		p.ctx.Shutdown()
		p.ctx = nil
	}
}

// Close stops rendering, unregisters the texture and releases every
// resource. Fetch returns no frame from the moment Close is called.
// Close is idempotent and always returns nil.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.pub.Close()
		p.w.shutdown()
		p.host.UnregisterTexture(p.id)
		p.opMu.Lock()
		p.release()
		p.opMu.Unlock()
		p.log.Info("mpvtex: player closed")
	})
	return nil
}

// TextureID returns the id assigned by the host.
func (p *Player) TextureID() int64 { return p.id }

// Size returns the current output size in pixels.
func (p *Player) Size() (width, height int) { return p.pub.Size() }

// Stats returns a snapshot of the render counters.
func (p *Player) Stats() Stats { return p.stats.snapshot(p.w.State()) }

// Fetch returns the latest published frame. It implements FrameSource.
func (p *Player) Fetch() (Frame, bool) { return p.pub.Fetch() }

// CopyFrame copies the latest frame into dst. See PixelPublisher.CopyFrame.
func (p *Player) CopyFrame(dst []byte) (Frame, bool) { return p.pub.CopyFrame(dst) }

// enter admits a control operation. Every successful enter must be paired
// with leave.
func (p *Player) enter() error {
	p.opMu.RLock()
	if p.closed.Load() {
		p.opMu.RUnlock()
		return ErrClosed
	}
	return nil
}

func (p *Player) leave() { p.opMu.RUnlock() }

// Open loads a file or URL, replacing the current one.
func (p *Player) Open(path string) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	if err := p.eng.Command("loadfile", path); err != nil {
		return &OperationError{Op: "open", Err: err}
	}
	p.w.requestRender()
	return nil
}

// Play resumes playback.
func (p *Player) Play() error {
	return p.setPause("play", false)
}

// Pause pauses playback.
func (p *Player) Pause() error {
	return p.setPause("pause", true)
}

func (p *Player) setPause(op string, pause bool) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	err := p.eng.SetFlag("pause", pause)
	p.w.requestRender()
	if err != nil {
		return &OperationError{Op: op, Err: err}
	}
	return nil
}

// SeekRelative seeks by seconds from the current position.
func (p *Player) SeekRelative(seconds float64) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	err := p.eng.Command("seek", strconv.FormatFloat(seconds, 'f', 3, 64), "relative")
	p.w.requestRender()
	if err != nil {
		return &OperationError{Op: "seekRelative", Err: err}
	}
	return nil
}

// SeekAbsolute seeks to seconds from the start.
func (p *Player) SeekAbsolute(seconds float64) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	err := p.eng.SetDouble("time-pos", seconds)
	p.w.requestRender()
	if err != nil {
		return &OperationError{Op: "seekAbsolute", Err: err}
	}
	return nil
}

// SetVolume sets the volume in [0, 1]; values outside are clamped.
func (p *Player) SetVolume(volume float64) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	volume = max(0, min(1, volume))
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
	if err := p.eng.SetDouble("volume", volume*100); err != nil {
		return &OperationError{Op: "setVolume", Err: err}
	}
	return nil
}

// Volume returns the last volume set, in [0, 1].
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Speed limits.
const (
	MinSpeed = 0.1
	MaxSpeed = 4.0
)

// SetSpeed sets the playback speed; values outside [MinSpeed, MaxSpeed] are
// clamped.
func (p *Player) SetSpeed(speed float64) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	speed = max(MinSpeed, min(MaxSpeed, speed))
	p.mu.Lock()
	p.speed = speed
	p.mu.Unlock()
	if err := p.eng.SetDouble("speed", speed); err != nil {
		return &OperationError{Op: "setSpeed", Err: err}
	}
	return nil
}

// Speed returns the last speed set.
func (p *Player) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// ToggleMute inverts the mute state and returns the new state. A mute state
// that cannot be read counts as unmuted.
func (p *Player) ToggleMute() (bool, error) {
	if err := p.enter(); err != nil {
		return false, err
	}
	defer p.leave()
	muted, err := p.eng.GetFlag("mute")
	if err != nil {
		muted = false
	}
	muted = !muted
	if err := p.eng.SetFlag("mute", muted); err != nil {
		return !muted, &OperationError{Op: "toggleMute", Err: err}
	}
	return muted, nil
}

// Position returns the playback position in seconds, or 0 when nothing is
// playing.
func (p *Player) Position() (float64, error) {
	return p.getSeconds("getPosition", "time-pos")
}

// Duration returns the media duration in seconds, or 0 when unknown.
func (p *Player) Duration() (float64, error) {
	return p.getSeconds("getDuration", "duration")
}

func (p *Player) getSeconds(op, property string) (float64, error) {
	if err := p.enter(); err != nil {
		return 0, err
	}
	defer p.leave()
	v, err := p.eng.GetDouble(property)
	if err != nil {
		if mpv.IsPropertyUnavailable(err) {
			return 0, nil
		}
		return 0, &OperationError{Op: op, Err: err}
	}
	return v, nil
}

// Resize changes the output size. Each dimension is clamped to
// [MinSize, MaxSize]. The frame target and pixel buffers are reallocated by
// the render worker before its next render.
func (p *Player) Resize(width, height int) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	p.w.requestResize(ClampSize(width), ClampSize(height))
	return nil
}

// IsClosed reports whether err means the player was closed.
func IsClosed(err error) bool { return errors.Is(err, ErrClosed) }

var _ FrameSource = (*Player)(nil)
