// Package secure zeroes memory that held secrets.
//
// A plain loop or clear(b) over a buffer that is never read again is a dead
// store, and a compiler is free to drop it.  The functions here perform the
// writes inside a non-inlinable call and pin the buffer with
// [runtime.KeepAlive] afterwards, so the stores remain observable and cannot
// be eliminated.
//
// Every function tolerates nil and empty inputs.
package secure

import (
	"runtime"
	"unsafe"
)

// Wipe overwrites every byte of b with zero.
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	wipeBytes(b)
	runtime.KeepAlive(b)
}

// WipeWords overwrites every element of w with zero.
func WipeWords(w []uint32) {
	if len(w) == 0 {
		return
	}
	wipeWords(w)
	runtime.KeepAlive(w)
}

// WipeValue zeroes the memory occupied by *p, byte by byte.
//
// T must not contain pointers, slices, maps, strings, interfaces or channels:
// the value is treated as raw memory, and zeroing a pointer field behind the
// garbage collector's back is only safe because the collector sees a nil
// pointer afterwards.  Fixed-size arrays of integers (such as a Blowfish key
// schedule) are the intended use.
func WipeValue[T any](p *T) {
	if p == nil {
		return
	}
	size := unsafe.Sizeof(*p)
	if size == 0 {
		return
	}
	wipeBytes(unsafe.Slice((*byte)(unsafe.Pointer(p)), size))
	runtime.KeepAlive(p)
}

//go:noinline
func wipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

//go:noinline
func wipeWords(w []uint32) {
	for i := range w {
		w[i] = 0
	}
}
