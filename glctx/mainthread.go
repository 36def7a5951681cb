// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"runtime"
	"sync"
)

func init() {
	// Keeps the main goroutine on the main thread, so Main can serve GLFW
	// calls from it.
	runtime.LockOSThread()
}

type funcRun struct {
	f    func()
	done chan any
}

// mainLoop is the queue served by Main. stopped is closed when Main returns.
type mainLoop struct {
	queue   chan funcRun
	stopped chan struct{}
}

var (
	mainMu sync.Mutex
	loop   *mainLoop
)

// Main runs fn on a new goroutine and serves RunOnMain calls on the calling
// thread until fn returns. It must be called from the main goroutine, which
// this package locks to the main thread during initialization.
//
// Programs that create GLFW contexts wrap their body in Main:
//
//	func main() {
//		glctx.Main(func() {
//			// create and use players
//		})
//	}
func Main(fn func()) {
	l := &mainLoop{
		queue:   make(chan funcRun),
		stopped: make(chan struct{}),
	}
	mainMu.Lock()
	loop = l
	mainMu.Unlock()
	defer func() {
		mainMu.Lock()
		loop = nil
		mainMu.Unlock()
		close(l.stopped)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	for {
		select {
		case r := <-l.queue:
			r.done <- call(r.f)
		case <-done:
			return
		}
	}
}

// call runs f and returns the value it panicked with, if any.
func call(f func()) (p any) {
	defer func() { p = recover() }()
	f()
	return nil
}

// RunOnMain runs f on the thread serving Main and waits for it to return.
// A panic in f is re-raised in the caller. Without a running Main, f runs on
// the calling goroutine. RunOnMain must not be called from f itself.
func RunOnMain(f func()) {
	mainMu.Lock()
	l := loop
	mainMu.Unlock()
	if l == nil {
		f()
		return
	}
	r := funcRun{f: f, done: make(chan any, 1)}
	select {
	case l.queue <- r:
		if p := <-r.done; p != nil {
			panic(p)
		}
	case <-l.stopped:
		f()
	}
}
