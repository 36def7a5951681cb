// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpv

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"unsafe"
)

// fakeEngine records calls made through a Library's bound entry points.
type fakeEngine struct {
	flags    map[string]int32
	doubles  map[string]float64
	commands [][]string
	failOn   map[string]int32
	options  map[string]string
	destroys int
}

func newFakeLibrary() (*Library, *fakeEngine) {
	fe := &fakeEngine{
		flags:   make(map[string]int32),
		doubles: make(map[string]float64),
		failOn:  make(map[string]int32),
		options: make(map[string]string),
	}
	l := &Library{
		path:             "fake",
		loaded:           true,
		clientAPIVersion: func() uint { return 2<<16 | 3 },
		errorString: func(code int32) string {
			if code == ErrorPropertyUnavailable {
				return "property unavailable"
			}
			return fmt.Sprintf("code %d", code)
		},
		create:     func() uintptr { return 0x1000 },
		initialize: func(uintptr) int32 { return 0 },
		destroy:    func(uintptr) { fe.destroys++ },
		setOptionString: func(_ uintptr, name, value string) int32 {
			fe.options[name] = value
			return 0
		},
		setProperty: func(_ uintptr, name string, format int32, data unsafe.Pointer) int32 {
			if rc, ok := fe.failOn[name]; ok {
				return rc
			}
			switch Format(format) {
			case FormatFlag:
				fe.flags[name] = *(*int32)(data)
			case FormatDouble:
				fe.doubles[name] = *(*float64)(data)
			}
			return 0
		},
		getProperty: func(_ uintptr, name string, format int32, data unsafe.Pointer) int32 {
			if rc, ok := fe.failOn[name]; ok {
				return rc
			}
			switch Format(format) {
			case FormatFlag:
				*(*int32)(data) = fe.flags[name]
			case FormatDouble:
				*(*float64)(data) = fe.doubles[name]
			}
			return 0
		},
		command: func(_ uintptr, args unsafe.Pointer) int32 {
			fe.commands = append(fe.commands, readCStringArray(args))
			return 0
		},
	}
	return l, fe
}

func readCStringArray(p unsafe.Pointer) []string {
	var out []string
	for i := uintptr(0); ; i++ {
		s := *(**byte)(unsafe.Add(p, i*unsafe.Sizeof(uintptr(0))))
		if s == nil {
			return out
		}
		out = append(out, goString(s))
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Code: -13, Message: "loading failed"}, "libmpv error -13: loading failed"},
		{&Error{Op: "command loadfile", Code: -12, Message: "error running command"},
			"mpv: command loadfile: libmpv error -12: error running command"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsPropertyUnavailable(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{Code: ErrorPropertyUnavailable})
	if !IsPropertyUnavailable(err) {
		t.Error("IsPropertyUnavailable(wrapped -10) = false, want true")
	}
	if IsPropertyUnavailable(&Error{Code: ErrorPropertyNotFound}) {
		t.Error("IsPropertyUnavailable(-8) = true, want false")
	}
	if IsPropertyUnavailable(errors.New("other")) {
		t.Error("IsPropertyUnavailable(plain error) = true, want false")
	}
}

func TestOpenErrorUnwrap(t *testing.T) {
	err := &OpenError{Tried: []string{"a"}, Err: errors.New("dlopen failed")}
	if !errors.Is(err, ErrLibraryNotFound) {
		t.Error("OpenError should match ErrLibraryNotFound")
	}
}

func TestCandidatePaths(t *testing.T) {
	exeDir := filepath.Join("opt", "app")
	colocated := filepath.Join(exeDir, "libmpv.so.2")
	exists := func(p string) bool { return p == colocated }

	tests := []struct {
		name     string
		explicit string
		exeDir   string
		goos     string
		want     []string
	}{
		{"explicit wins", "/x/libmpv.so", exeDir, "linux", []string{"/x/libmpv.so"}},
		{"colocated first", "", exeDir, "linux",
			[]string{colocated, "libmpv.so.2", "libmpv.so.1", "libmpv.so"}},
		{"no exe dir", "", "", "linux", []string{"libmpv.so.2", "libmpv.so.1", "libmpv.so"}},
		{"windows names", "", "", "windows", []string{"libmpv-2.dll", "mpv-2.dll", "mpv-1.dll"}},
		{"darwin names", "", "", "darwin", []string{"libmpv.2.dylib", "libmpv.dylib"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidatePaths(tt.explicit, tt.exeDir, tt.goos, exists)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("candidatePaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequiredSymbols(t *testing.T) {
	syms := RequiredSymbols()
	if len(syms) != 13 {
		t.Fatalf("RequiredSymbols() returned %d names, want 13", len(syms))
	}
	for _, s := range syms {
		if s == "mpv_free" {
			t.Error("mpv_free must be optional")
		}
	}
}

func TestUnloadIdempotent(t *testing.T) {
	l, _ := newFakeLibrary()
	l.Unload()
	if l.Loaded() {
		t.Fatal("Loaded() = true after Unload")
	}
	l.Unload()
	if l.Path() != "fake" {
		t.Errorf("Path() = %q after Unload, want it preserved", l.Path())
	}
	if _, err := l.Create(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Create() after Unload = %v, want ErrNotLoaded", err)
	}
	var zero Library
	zero.Unload()
}

func TestAPIVersion(t *testing.T) {
	l, _ := newFakeLibrary()
	major, minor := l.APIVersion()
	if major != 2 || minor != 3 {
		t.Errorf("APIVersion() = %d.%d, want 2.3", major, minor)
	}
}

func TestHandleFlagEncoding(t *testing.T) {
	l, fe := newFakeLibrary()
	h, err := l.Create()
	if err != nil {
		t.Fatal(err)
	}
	if err := h.SetFlag("pause", true); err != nil {
		t.Fatal(err)
	}
	if fe.flags["pause"] != 1 {
		t.Errorf("pause encoded as %d, want 1", fe.flags["pause"])
	}
	if err := h.SetFlag("pause", false); err != nil {
		t.Fatal(err)
	}
	if fe.flags["pause"] != 0 {
		t.Errorf("pause encoded as %d, want 0", fe.flags["pause"])
	}
	fe.flags["mute"] = 1
	got, err := h.GetFlag("mute")
	if err != nil || !got {
		t.Errorf("GetFlag(mute) = %v, %v; want true, nil", got, err)
	}
}

func TestHandleDouble(t *testing.T) {
	l, fe := newFakeLibrary()
	h, _ := l.Create()
	if err := h.SetDouble("volume", 42.5); err != nil {
		t.Fatal(err)
	}
	if fe.doubles["volume"] != 42.5 {
		t.Errorf("volume = %v, want 42.5", fe.doubles["volume"])
	}
	fe.doubles["duration"] = 120.25
	d, err := h.GetDouble("duration")
	if err != nil || d != 120.25 {
		t.Errorf("GetDouble(duration) = %v, %v; want 120.25, nil", d, err)
	}
}

func TestHandlePropertyError(t *testing.T) {
	l, fe := newFakeLibrary()
	h, _ := l.Create()
	fe.failOn["time-pos"] = ErrorPropertyUnavailable
	_, err := h.GetDouble("time-pos")
	var mpvErr *Error
	if !errors.As(err, &mpvErr) {
		t.Fatalf("GetDouble error = %v, want *Error", err)
	}
	if mpvErr.Message != "property unavailable" || mpvErr.Op != "get_property time-pos" {
		t.Errorf("unexpected error %+v", mpvErr)
	}
	if !IsPropertyUnavailable(err) {
		t.Error("IsPropertyUnavailable = false")
	}
}

func TestHandleCommand(t *testing.T) {
	l, fe := newFakeLibrary()
	h, _ := l.Create()
	if err := h.Command("seek", "1.500", "relative"); err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"seek", "1.500", "relative"}}
	if !reflect.DeepEqual(fe.commands, want) {
		t.Errorf("commands = %v, want %v", fe.commands, want)
	}
	if err := h.Command("loadfile", "a\x00b"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Command with NUL = %v, want ErrInvalidArgument", err)
	}
	if err := h.Command(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty Command = %v, want ErrInvalidArgument", err)
	}
}

func TestHandleDestroy(t *testing.T) {
	l, fe := newFakeLibrary()
	h, _ := l.Create()
	h.Destroy()
	h.Destroy()
	if fe.destroys != 1 {
		t.Errorf("destroy called %d times, want 1", fe.destroys)
	}
	if err := h.SetFlag("pause", true); !errors.Is(err, ErrDestroyed) {
		t.Errorf("SetFlag after Destroy = %v, want ErrDestroyed", err)
	}
}

func TestGetStringRequiresFree(t *testing.T) {
	l, _ := newFakeLibrary()
	h, _ := l.Create()
	if _, err := h.GetString("path"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("GetString without mpv_free = %v, want ErrUnsupported", err)
	}
}

func TestCStringArray(t *testing.T) {
	arr := newCStringArray([]string{"loadfile", "/tmp/a b.mkv"})
	defer arr.release()
	got := readCStringArray(arr.pointer())
	want := []string{"loadfile", "/tmp/a b.mkv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("array = %v, want %v", got, want)
	}
}

func TestCallbackTable(t *testing.T) {
	tbl := &callbackTable{
		procs:   make(map[uintptr]ProcAddressFunc),
		updates: make(map[uintptr]func()),
	}
	calls := 0
	u := tbl.addUpdate(func() { calls++ })
	p := tbl.addProc(func(string) unsafe.Pointer { return nil })
	if u == p {
		t.Fatal("ids must be unique across kinds")
	}
	tbl.updateFunc(u)()
	if calls != 1 {
		t.Errorf("update calls = %d, want 1", calls)
	}
	tbl.remove(u, p)
	if tbl.updateFunc(u) != nil || tbl.proc(p) != nil {
		t.Error("entries still present after remove")
	}
}

func TestFBOLayout(t *testing.T) {
	if got := unsafe.Sizeof(FBO{}); got != 16 {
		t.Errorf("sizeof(FBO) = %d, want 16 (four C ints)", got)
	}
	if got := unsafe.Offsetof(renderParam{}.data); got != unsafe.Sizeof(uintptr(0)) {
		t.Errorf("renderParam.data offset = %d, want %d", got, unsafe.Sizeof(uintptr(0)))
	}
}
