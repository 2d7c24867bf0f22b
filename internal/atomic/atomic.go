// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package atomic stores little-endian values into code memory so that a
// concurrent instruction fetch sees either the old or the new value.  The
// memory must be backed by a 4-byte aligned allocation which extends to the
// end of the word containing the value.
package atomic

import (
	"sync/atomic"
	"unsafe"
)

func word(b []byte, n int) (p *uint32, shift int) {
	if len(b) < n {
		panic("atomic: value exceeds slice")
	}
	ptr := unsafe.Pointer(&b[0])
	shift = int(uintptr(ptr) & 3)
	if shift+n > 4 {
		panic("atomic: value spans two words")
	}
	p = (*uint32)(unsafe.Add(ptr, -shift))
	return
}

// PutUint16 at the start of b.  The value must be 2-byte aligned.
func PutUint16(b []byte, value uint16) {
	p, shift := word(b, 2)

	for {
		old := atomic.LoadUint32(p)
		x := old
		bytes := (*[4]byte)(unsafe.Pointer(&x))
		bytes[shift] = byte(value)
		bytes[shift+1] = byte(value >> 8)
		if atomic.CompareAndSwapUint32(p, old, x) {
			return
		}
	}
}

// PutUint32 at the start of b.  The value must be 4-byte aligned.
func PutUint32(b []byte, value uint32) {
	p, _ := word(b, 4)

	var x uint32
	bytes := (*[4]byte)(unsafe.Pointer(&x))
	bytes[0] = byte(value)
	bytes[1] = byte(value >> 8)
	bytes[2] = byte(value >> 16)
	bytes[3] = byte(value >> 24)
	atomic.StoreUint32(p, x)
}

// Uint16 at the start of b.
func Uint16(b []byte) uint16 {
	p, shift := word(b, 2)
	x := atomic.LoadUint32(p)
	bytes := (*[4]byte)(unsafe.Pointer(&x))
	return uint16(bytes[shift]) | uint16(bytes[shift+1])<<8
}

// Uint32 at the start of b.
func Uint32(b []byte) uint32 {
	p, _ := word(b, 4)
	x := atomic.LoadUint32(p)
	bytes := (*[4]byte)(unsafe.Pointer(&x))
	return uint32(bytes[0]) | uint32(bytes[1])<<8 | uint32(bytes[2])<<16 | uint32(bytes[3])<<24
}
