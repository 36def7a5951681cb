// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gogpu/mpvtex/glctx"
	"github.com/gogpu/mpvtex/internal/glx"
	"github.com/gogpu/mpvtex/mpv"
)

// WorkerState is the render worker lifecycle state.
type WorkerState int32

const (
	// WorkerStopped means no worker goroutine is running.
	WorkerStopped WorkerState = iota

	// WorkerRunning means the worker waits for or performs renders.
	WorkerRunning

	// WorkerDraining means a stop was observed and the worker is exiting.
	WorkerDraining
)

func (s WorkerState) String() string {
	switch s {
	case WorkerStopped:
		return "stopped"
	case WorkerRunning:
		return "running"
	case WorkerDraining:
		return "draining"
	default:
		return fmt.Sprintf("WorkerState(%d)", int32(s))
	}
}

var (
	errTargetInvalid = errors.New("mpvtex: frame target not allocated")
	errStopping      = errors.New("mpvtex: stop requested")
)

// worker owns the GL context, the frame target and the publisher's back
// buffer while it runs.
type worker struct {
	id     int64
	ctx    glctx.Context
	gl     *glx.Funcs
	target *frameTarget
	render renderContext
	pub    *PixelPublisher
	host   TextureRegistrar
	flipY  bool
	log    *slog.Logger
	stats  *counters

	signal *renderSignal
	stop   chan struct{}
	done   chan struct{}
	state  atomic.Int32

	stopping atomic.Bool
	stopOnce sync.Once

	resizeMu      sync.Mutex
	resizePending bool
	resizeW       int
	resizeH       int
}

func (w *worker) State() WorkerState { return WorkerState(w.state.Load()) }

// start launches the worker goroutine in the Running state.
func (w *worker) start() {
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.state.Store(int32(WorkerRunning))
	go w.run()
}

func (w *worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer func() {
		w.state.Store(int32(WorkerStopped))
		close(w.done)
	}()

	w.log.Debug("mpvtex: render worker started")
	for {
		select {
		case <-w.stop:
			w.state.Store(int32(WorkerDraining))
			w.log.Debug("mpvtex: render worker draining")
			return
		case <-w.signal.wait():
			if w.stopping.Load() {
				w.state.Store(int32(WorkerDraining))
				w.log.Debug("mpvtex: render worker draining")
				return
			}
			w.cycle()
		}
	}
}

// requestRender asks for one more render. It never blocks.
func (w *worker) requestRender() {
	w.stats.requests.Add(1)
	w.signal.raise()
}

// requestResize records a new output size for the next cycle.
func (w *worker) requestResize(width, height int) {
	w.resizeMu.Lock()
	w.resizePending = true
	w.resizeW, w.resizeH = width, height
	w.resizeMu.Unlock()
	w.requestRender()
}

// shutdown stops the worker and waits for it to exit. After shutdown
// returns, the worker makes no further GL or engine calls.
func (w *worker) shutdown() {
	w.stopOnce.Do(func() {
		w.stopping.Store(true)
		if w.stop == nil {
			return
		}
		close(w.stop)
		w.signal.raise()
		<-w.done
	})
}

// cycle performs one render and publishes the result.
func (w *worker) cycle() {
	if err := w.renderFrame(); err != nil {
		w.stats.skipped.Add(1)
		if !errors.Is(err, errStopping) {
			w.log.Warn("mpvtex: render cycle skipped", "err", err)
		}
		return
	}
	frame := w.pub.Swap()
	w.stats.published.Add(1)
	w.log.Debug("mpvtex: frame published", "seq", frame.Seq, "width", frame.Width, "height", frame.Height)
	w.host.MarkTextureFrameAvailable(w.id)
}

func (w *worker) renderFrame() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mpvtex: render cycle panic: %v", r)
		}
	}()

	if err := w.ctx.MakeCurrent(); err != nil {
		return fmt.Errorf("make current: %w", err)
	}
	defer w.ctx.DoneCurrent()

	if err := w.applyResize(); err != nil {
		return err
	}
	if !w.target.valid() {
		return errTargetInvalid
	}
	width, height := w.target.size()
	back := w.pub.Back()
	if len(back) < width*height*BytesPerPixel {
		return fmt.Errorf("mpvtex: back buffer holds %d bytes, need %d", len(back), width*height*BytesPerPixel)
	}
	if w.stopping.Load() {
		return errStopping
	}

	w.gl.Viewport(0, 0, int32(width), int32(height)) //nolint:gosec // clamped to MaxSize
	fbo := mpv.FBO{
		FBO:            int32(w.target.fbo), //nolint:gosec // GL names fit in int32
		W:              int32(width),        //nolint:gosec // clamped to MaxSize
		H:              int32(height),       //nolint:gosec // clamped to MaxSize
		InternalFormat: glx.RGBA8,
	}
	if err := w.renderEngine(fbo); err != nil {
		return err
	}
	if w.stopping.Load() {
		return errStopping
	}

	w.gl.BindFramebuffer(glx.FRAMEBUFFER, w.target.fbo)
	w.gl.PixelStorei(glx.PACK_ALIGNMENT, 1)
	w.gl.ReadPixels(0, 0, int32(width), int32(height), glx.RGBA, glx.UNSIGNED_BYTE, //nolint:gosec // clamped
		unsafe.Pointer(&back[0]))
	w.gl.BindFramebuffer(glx.FRAMEBUFFER, 0)
	return nil
}

func (w *worker) renderEngine(fbo mpv.FBO) (err error) {
	w.stats.renders.Add(1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine render panic: %v", r)
		}
		if err != nil {
			w.stats.failures.Add(1)
		}
	}()
	return w.render.Render(fbo, w.flipY)
}

// applyResize reallocates the frame target and pixel buffers when a new size
// was requested. It runs with the context current.
func (w *worker) applyResize() error {
	w.resizeMu.Lock()
	pending := w.resizePending
	width, height := w.resizeW, w.resizeH
	w.resizePending = false
	w.resizeMu.Unlock()
	if !pending {
		return nil
	}

	changed, err := w.target.ensure(width, height)
	if err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	if changed {
		tw, th := w.target.size()
		w.pub.Resize(tw, th)
		w.log.Debug("mpvtex: frame target resized", "width", tw, "height", th)
	}
	return nil
}
