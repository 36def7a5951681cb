// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpvtex

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/gogpu/mpvtex/glctx"
	"github.com/gogpu/mpvtex/internal/glx"
	"github.com/gogpu/mpvtex/mpv"
)

// events is a concurrency-safe ordered log shared by the fakes.
type events struct {
	mu   sync.Mutex
	list []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	e.list = append(e.list, s)
	e.mu.Unlock()
}

func (e *events) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.list...)
}

func (e *events) count(s string) int {
	n := 0
	for _, v := range e.snapshot() {
		if v == s {
			n++
		}
	}
	return n
}

// fakeContext is an in-memory glctx.Context.
type fakeContext struct {
	ev        *events
	initErr   error
	makeErr   atomic.Pointer[error]
	current   atomic.Int32
	shutdowns atomic.Int32
}

func (c *fakeContext) Initialize() error { return c.initErr }

func (c *fakeContext) MakeCurrent() error {
	if p := c.makeErr.Load(); p != nil {
		return *p
	}
	c.current.Add(1)
	return nil
}

func (c *fakeContext) DoneCurrent() { c.current.Add(-1) }

func (c *fakeContext) GetProcAddress(string) unsafe.Pointer { return nil }

func (c *fakeContext) Shutdown() {
	c.shutdowns.Add(1)
	c.ev.add("ctx.shutdown")
}

// fakeGL records calls made through a glx.Funcs table.
type fakeGL struct {
	ev       *events
	mu       sync.Mutex
	nextName uint32
	status   uint32
	texSizes [][2]int32
	fill     byte
	viewport [4]int32
	reads    int
}

func (g *fakeGL) funcs() *glx.Funcs {
	gen := func(n int32, names *uint32) {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.nextName++
		*names = g.nextName
	}
	return &glx.Funcs{
		GenFramebuffers: gen,
		BindFramebuffer: func(uint32, uint32) {},
		DeleteFramebuffers: func(int32, *uint32) {
			g.ev.add("gl.deleteFramebuffer")
		},
		CheckFramebufferStatus: func(uint32) uint32 {
			g.mu.Lock()
			defer g.mu.Unlock()
			if g.status != 0 {
				return g.status
			}
			return glx.FRAMEBUFFER_COMPLETE
		},
		FramebufferTexture2D: func(uint32, uint32, uint32, uint32, int32) {},
		GenTextures:          gen,
		BindTexture:          func(uint32, uint32) {},
		DeleteTextures: func(int32, *uint32) {
			g.ev.add("gl.deleteTexture")
		},
		TexImage2D: func(_ uint32, _, _, w, h, _ int32, _, _ uint32, _ unsafe.Pointer) {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.texSizes = append(g.texSizes, [2]int32{w, h})
		},
		TexParameteri: func(uint32, uint32, int32) {},
		Viewport: func(x, y, w, h int32) {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.viewport = [4]int32{x, y, w, h}
		},
		PixelStorei: func(uint32, int32) {},
		ReadPixels: func(_, _, w, h int32, _, _ uint32, pixels unsafe.Pointer) {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.reads++
			g.fill++
			buf := unsafe.Slice((*byte)(pixels), int(w)*int(h)*BytesPerPixel)
			for i := range buf {
				buf[i] = g.fill
			}
		},
	}
}

func (g *fakeGL) allocations() [][2]int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][2]int32(nil), g.texSizes...)
}

// fakeEngine is an in-memory engine.
type fakeEngine struct {
	ev *events

	mu       sync.Mutex
	options  []EngineOption
	flags    map[string]bool
	doubles  map[string]float64
	commands [][]string
	failOn   map[string]error
	initErr  error
	rctxErr  error
	rctx     *fakeRender
}

func newFakeEngine(ev *events) *fakeEngine {
	return &fakeEngine{
		ev:      ev,
		flags:   make(map[string]bool),
		doubles: make(map[string]float64),
		failOn:  make(map[string]error),
		rctx:    &fakeRender{ev: ev},
	}
}

func (e *fakeEngine) fail(name string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failOn[name] = err
}

func (e *fakeEngine) SetOptionString(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.options = append(e.options, EngineOption{name, value})
	return e.failOn["option "+name]
}

func (e *fakeEngine) Initialize() error { return e.initErr }

func (e *fakeEngine) Command(args ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failOn[args[0]]; err != nil {
		return err
	}
	e.commands = append(e.commands, args)
	return nil
}

func (e *fakeEngine) SetFlag(name string, v bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failOn[name]; err != nil {
		return err
	}
	e.flags[name] = v
	return nil
}

func (e *fakeEngine) GetFlag(name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failOn["get "+name]; err != nil {
		return false, err
	}
	return e.flags[name], nil
}

func (e *fakeEngine) SetDouble(name string, v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failOn[name]; err != nil {
		return err
	}
	e.doubles[name] = v
	return nil
}

func (e *fakeEngine) GetDouble(name string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failOn["get "+name]; err != nil {
		return 0, err
	}
	return e.doubles[name], nil
}

func (e *fakeEngine) NewRenderContext(func(string) unsafe.Pointer) (renderContext, error) {
	if e.rctxErr != nil {
		return nil, e.rctxErr
	}
	return e.rctx, nil
}

func (e *fakeEngine) Destroy() { e.ev.add("engine.destroy") }

func (e *fakeEngine) double(name string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doubles[name]
}

func (e *fakeEngine) flag(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flags[name]
}

// fakeRender is an in-memory renderContext. hook, when set, runs inside
// Render and its result is returned.
type fakeRender struct {
	ev      *events
	mu      sync.Mutex
	update  func()
	hook    func() error
	renders atomic.Int32
	lastFBO mpv.FBO
}

func (r *fakeRender) SetUpdateCallback(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.update = fn
}

func (r *fakeRender) Render(fbo mpv.FBO, _ bool) error {
	r.renders.Add(1)
	r.mu.Lock()
	r.lastFBO = fbo
	hook := r.hook
	r.mu.Unlock()
	r.ev.add("render")
	if hook != nil {
		return hook()
	}
	return nil
}

func (r *fakeRender) Free() { r.ev.add("rctx.free") }

func (r *fakeRender) setHook(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = fn
}

// fire invokes the engine update callback as libmpv would.
func (r *fakeRender) fire() {
	r.mu.Lock()
	fn := r.update
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// fakeHost is an in-memory TextureRegistrar.
type fakeHost struct {
	ev          *events
	id          int64
	registerErr error
	marks       chan int64
	source      FrameSource
	unregisters atomic.Int32
}

func newFakeHost(ev *events) *fakeHost {
	return &fakeHost{ev: ev, id: 42, marks: make(chan int64, 64)}
}

func (h *fakeHost) RegisterTexture(src FrameSource) (int64, error) {
	if h.registerErr != nil {
		return 0, h.registerErr
	}
	h.source = src
	return h.id, nil
}

func (h *fakeHost) UnregisterTexture(int64) {
	h.unregisters.Add(1)
	h.ev.add("host.unregister")
}

func (h *fakeHost) MarkTextureFrameAvailable(id int64) {
	select {
	case h.marks <- id:
	default:
	}
}

func (h *fakeHost) waitMark(t *testing.T) int64 {
	t.Helper()
	select {
	case id := <-h.marks:
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for frame-available")
		return 0
	}
}

func (h *fakeHost) expectNoMark(t *testing.T) {
	t.Helper()
	select {
	case <-h.marks:
		t.Fatal("unexpected frame-available")
	case <-time.After(50 * time.Millisecond):
	}
}

// testEnv bundles the fakes behind one Player.
type testEnv struct {
	ev      *events
	ctx     *fakeContext
	gl      *fakeGL
	eng     *fakeEngine
	host    *fakeHost
	unloads atomic.Int32
}

func newTestEnv() *testEnv {
	ev := &events{}
	return &testEnv{
		ev:   ev,
		ctx:  &fakeContext{ev: ev},
		gl:   &fakeGL{ev: ev},
		eng:  newFakeEngine(ev),
		host: newFakeHost(ev),
	}
}

func (env *testEnv) options() PlayerOption {
	return func(o *playerOptions) {
		o.newContext = func(string) (glctx.Context, error) { return env.ctx, nil }
		o.loadGL = func(glx.ProcAddressFunc) (*glx.Funcs, error) { return env.gl.funcs(), nil }
		o.loadEngine = func(string) (engine, func(), error) {
			return env.eng, func() {
				env.unloads.Add(1)
				env.ev.add("unload")
			}, nil
		}
	}
}

func (env *testEnv) newPlayer(t *testing.T, width, height int, opts ...PlayerOption) *Player {
	t.Helper()
	p, err := NewPlayer(env.host, width, height, append([]PlayerOption{env.options()}, opts...)...)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

var errBoom = errors.New("boom")
