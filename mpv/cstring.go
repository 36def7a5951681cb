// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mpv

import (
	"runtime"
	"strings"
	"unsafe"
)

// cStringArray is a NULL-terminated array of NUL-terminated strings in Go
// memory, pinned so libmpv may read it for the duration of one call.
type cStringArray struct {
	bufs   [][]byte
	ptrs   []*byte
	pinner runtime.Pinner
}

func newCStringArray(args []string) *cStringArray {
	a := &cStringArray{
		bufs: make([][]byte, len(args)),
		ptrs: make([]*byte, len(args)+1),
	}
	for i, s := range args {
		b := cString(s)
		a.bufs[i] = b
		a.pinner.Pin(&b[0])
		a.ptrs[i] = &b[0]
	}
	a.pinner.Pin(&a.ptrs[0])
	return a
}

// pointer returns the char** to pass to libmpv.
func (a *cStringArray) pointer() unsafe.Pointer { return unsafe.Pointer(&a.ptrs[0]) }

// release unpins the array. The array must not be used by C afterwards.
func (a *cStringArray) release() { a.pinner.Unpin() }

// cString returns a NUL-terminated copy of s.
func cString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// hasNUL reports whether any string would be truncated by C.
func hasNUL(args []string) bool {
	for _, s := range args {
		if strings.IndexByte(s, 0) >= 0 {
			return true
		}
	}
	return false
}

// goString copies a NUL-terminated C string into Go memory.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
