// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/gogpu/mpvtex"
)

type fakeSession struct {
	mu      sync.Mutex
	id      int64
	width   int
	height  int
	calls   []string
	volume  float64
	speed   float64
	seek    float64
	muted   bool
	pos     float64
	err     error
	closed  bool
	closeN  int
	resized [2]int
}

func (s *fakeSession) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	if s.closed {
		return mpvtex.ErrClosed
	}
	return s.err
}

func (s *fakeSession) TextureID() int64 { return s.id }
func (s *fakeSession) Open(path string) error {
	return s.record("open " + path)
}
func (s *fakeSession) Play() error  { return s.record("play") }
func (s *fakeSession) Pause() error { return s.record("pause") }
func (s *fakeSession) SeekRelative(v float64) error {
	s.seek = v
	return s.record("seekRelative")
}
func (s *fakeSession) SeekAbsolute(v float64) error {
	s.seek = v
	return s.record("seekAbsolute")
}
func (s *fakeSession) SetVolume(v float64) error {
	s.volume = v
	return s.record("setVolume")
}
func (s *fakeSession) SetSpeed(v float64) error {
	s.speed = v
	return s.record("setSpeed")
}
func (s *fakeSession) ToggleMute() (bool, error) {
	if err := s.record("toggleMute"); err != nil {
		return false, err
	}
	s.muted = !s.muted
	return s.muted, nil
}
func (s *fakeSession) Position() (float64, error) { return s.pos, s.record("getPosition") }
func (s *fakeSession) Duration() (float64, error) { return 60, s.record("getDuration") }
func (s *fakeSession) Resize(w, h int) error {
	s.resized = [2]int{w, h}
	return s.record("resize")
}
func (s *fakeSession) Stats() mpvtex.Stats { return mpvtex.Stats{} }
func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.closeN++
	return nil
}

type fakeFactory struct {
	next     int64
	err      error
	sessions []*fakeSession
}

func (f *fakeFactory) create(w, h int) (Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.next++
	s := &fakeSession{id: f.next, width: w, height: h}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func newTestDispatcher() (*Dispatcher, *fakeFactory) {
	f := &fakeFactory{}
	return New(NewRegistry(), f.create), f
}

func mustCreate(t *testing.T, d *Dispatcher, args Args) int64 {
	t.Helper()
	res, err := d.Handle("create", args)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return res.(int64)
}

func TestCreateDefaults(t *testing.T) {
	d, f := newTestDispatcher()
	id := mustCreate(t, d, nil)
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if s := f.sessions[0]; s.width != 1280 || s.height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", s.width, s.height)
	}

	mustCreate(t, d, Args{"width": json.Number("640"), "height": float64(360)})
	if s := f.sessions[1]; s.width != 640 || s.height != 360 {
		t.Errorf("size = %dx%d, want 640x360", s.width, s.height)
	}
	if d.Registry().Len() != 2 {
		t.Errorf("registry holds %d sessions, want 2", d.Registry().Len())
	}
}

func TestCreateFailure(t *testing.T) {
	d, f := newTestDispatcher()
	f.err = &mpvtex.InitError{Stage: mpvtex.StageEngineLoad, Err: errors.New("libmpv not found")}
	_, err := d.Handle("create", Args{})
	if CodeOf(err) != CodeInitFailed {
		t.Fatalf("code = %q, want init_failed (%v)", CodeOf(err), err)
	}
	var ie *mpvtex.InitError
	if !errors.As(err, &ie) {
		t.Error("init error not wrapped")
	}
	if d.Registry().Len() != 0 {
		t.Error("failed create left a session behind")
	}
}

func TestTextureIDValidation(t *testing.T) {
	d, _ := newTestDispatcher()
	mustCreate(t, d, nil)

	tests := []struct {
		name string
		args Args
		code string
	}{
		{"missing", Args{}, CodeBadArgs},
		{"negative", Args{"textureId": -1}, CodeBadArgs},
		{"string", Args{"textureId": "1"}, CodeBadArgs},
		{"fractional", Args{"textureId": 1.5}, CodeBadArgs},
		{"unknown", Args{"textureId": 99}, CodeNotFound},
		{"unknown int32", Args{"textureId": int32(7)}, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := d.Registry().IDs()
			_, err := d.Handle("play", tt.args)
			if CodeOf(err) != tt.code {
				t.Errorf("code = %q, want %q (%v)", CodeOf(err), tt.code, err)
			}
			if after := d.Registry().IDs(); !reflect.DeepEqual(before, after) {
				t.Errorf("registry changed: %v -> %v", before, after)
			}
		})
	}
}

func TestUnknownMethod(t *testing.T) {
	d, _ := newTestDispatcher()
	_, err := d.Handle("eject", Args{"textureId": 1})
	if CodeOf(err) != CodeNotImplemented {
		t.Errorf("code = %q, want not_implemented", CodeOf(err))
	}
}

func TestOperations(t *testing.T) {
	d, f := newTestDispatcher()
	id := mustCreate(t, d, nil)
	s := f.sessions[0]
	a := func(kv ...any) Args {
		args := Args{"textureId": id}
		for i := 0; i < len(kv); i += 2 {
			args[kv[i].(string)] = kv[i+1]
		}
		return args
	}

	steps := []struct {
		method string
		args   Args
		want   any
	}{
		{"open", a("path", "/v/a.mkv"), nil},
		{"play", a(), nil},
		{"pause", a(), nil},
		{"seekRelative", a("seconds", 5), nil},
		{"seekAbsolute", a("seconds", 30.5), nil},
		{"setVolume", a(), nil},
		{"setSpeed", a("speed", json.Number("1.5")), nil},
		{"toggleMute", a(), true},
		{"getPosition", a(), float64(0)},
		{"getDuration", a(), float64(60)},
		{"resize", a("width", 800, "height", 600), nil},
	}
	for _, st := range steps {
		got, err := d.Handle(st.method, st.args)
		if err != nil {
			t.Fatalf("%s: %v", st.method, err)
		}
		if got != st.want {
			t.Errorf("%s = %v, want %v", st.method, got, st.want)
		}
	}

	wantCalls := []string{
		"open /v/a.mkv", "play", "pause", "seekRelative", "seekAbsolute", "setVolume",
		"setSpeed", "toggleMute", "getPosition", "getDuration", "resize",
	}
	if !reflect.DeepEqual(s.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", s.calls, wantCalls)
	}
	if s.volume != 1 || s.speed != 1.5 || s.seek != 30.5 || s.resized != [2]int{800, 600} {
		t.Errorf("volume %v speed %v seek %v resized %v", s.volume, s.speed, s.seek, s.resized)
	}
}

func TestSeekDefaultsToZero(t *testing.T) {
	d, f := newTestDispatcher()
	id := mustCreate(t, d, nil)
	f.sessions[0].seek = 9
	if _, err := d.Handle("seekRelative", Args{"textureId": id}); err != nil {
		t.Fatal(err)
	}
	if f.sessions[0].seek != 0 {
		t.Errorf("seek = %v, want 0", f.sessions[0].seek)
	}
}

func TestOpenErrors(t *testing.T) {
	d, f := newTestDispatcher()
	id := mustCreate(t, d, nil)

	for _, args := range []Args{{"textureId": id}, {"textureId": id, "path": ""}, {"textureId": id, "path": 3}} {
		if _, err := d.Handle("open", args); CodeOf(err) != CodeBadArgs {
			t.Errorf("open %v: code %q, want bad_args", args, CodeOf(err))
		}
	}
	if len(f.sessions[0].calls) != 0 {
		t.Error("session touched by a rejected open")
	}

	f.sessions[0].err = &mpvtex.OperationError{Op: "open", Err: errors.New("loading failed")}
	_, err := d.Handle("open", Args{"textureId": id, "path": "/x"})
	if CodeOf(err) != CodeOpenFailed {
		t.Errorf("code = %q, want open_failed", CodeOf(err))
	}
	_, err = d.Handle("play", Args{"textureId": id})
	if CodeOf(err) != CodeOperationFailed {
		t.Errorf("code = %q, want operation_failed", CodeOf(err))
	}
}

func TestDispose(t *testing.T) {
	d, f := newTestDispatcher()
	id := mustCreate(t, d, nil)
	if _, err := d.Handle("dispose", Args{"textureId": id}); err != nil {
		t.Fatal(err)
	}
	if f.sessions[0].closeN != 1 {
		t.Errorf("Close called %d times, want 1", f.sessions[0].closeN)
	}
	if _, err := d.Handle("dispose", Args{"textureId": id}); CodeOf(err) != CodeNotFound {
		t.Errorf("second dispose code = %q, want not_found", CodeOf(err))
	}
}

func TestClosedSession(t *testing.T) {
	d, f := newTestDispatcher()
	id := mustCreate(t, d, nil)
	f.sessions[0].closed = true
	if _, err := d.Handle("pause", Args{"textureId": id}); CodeOf(err) != CodeClosed {
		t.Errorf("code = %q, want closed", CodeOf(err))
	}
}

func TestCloseDisposesAll(t *testing.T) {
	d, f := newTestDispatcher()
	for range 3 {
		mustCreate(t, d, nil)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	for i, s := range f.sessions {
		if s.closeN != 1 {
			t.Errorf("session %d closed %d times", i, s.closeN)
		}
	}
	if d.Registry().Len() != 0 {
		t.Error("registry not empty after Close")
	}
}

func TestArgs(t *testing.T) {
	a := Args{
		"i":    3,
		"i32":  int32(4),
		"i64":  int64(5),
		"f":    2.0,
		"frac": 2.5,
		"num":  json.Number("7"),
		"bad":  json.Number("x"),
		"s":    "str",
	}
	for key, want := range map[string]int64{"i": 3, "i32": 4, "i64": 5, "f": 2, "num": 7} {
		if got, ok := a.Int(key); !ok || got != want {
			t.Errorf("Int(%q) = %v, %v; want %v", key, got, ok, want)
		}
	}
	for _, key := range []string{"frac", "bad", "s", "missing"} {
		if _, ok := a.Int(key); ok {
			t.Errorf("Int(%q) ok, want not ok", key)
		}
	}
	if f, ok := a.Float("frac"); !ok || f != 2.5 {
		t.Errorf("Float(frac) = %v, %v", f, ok)
	}
	if _, ok := a.Float("s"); ok {
		t.Error("Float(s) ok")
	}
	if s, ok := a.String("s"); !ok || s != "str" {
		t.Errorf("String(s) = %q, %v", s, ok)
	}
	if a.FloatOr("missing", 1) != 1 || a.IntOr("missing", 9) != 9 {
		t.Error("defaults not applied")
	}
}
