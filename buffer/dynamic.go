// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// InlineSize is the capacity which a Dynamic buffer has before its first
// reallocation.
const InlineSize = 128

// Dynamic is a variable-capacity buffer.  The default value is a valid buffer.
//
// The first InlineSize bytes are stored within the buffer object itself, so an
// initialized buffer must not be copied.
type Dynamic struct {
	buf    []byte
	inline [InlineSize]byte
}

// NewDynamic buffer.
func NewDynamic() *Dynamic {
	return new(Dynamic)
}

// Len doesn't panic.
func (d *Dynamic) Len() int {
	return len(d.buf)
}

// Cap doesn't panic.
func (d *Dynamic) Cap() int {
	if d.buf == nil {
		return InlineSize
	}
	return cap(d.buf)
}

// Bytes doesn't panic.  The returned slice is invalidated by the next write.
func (d *Dynamic) Bytes() []byte {
	return d.buf
}

// PutByte doesn't panic unless out of memory.
func (d *Dynamic) PutByte(value byte) {
	d.Extend(1)[0] = value
}

// PutUint16 doesn't panic unless out of memory.
func (d *Dynamic) PutUint16(i uint16) {
	binary.LittleEndian.PutUint16(d.Extend(2), i)
}

// PutUint32 doesn't panic unless out of memory.
func (d *Dynamic) PutUint32(i uint32) {
	binary.LittleEndian.PutUint32(d.Extend(4), i)
}

// PutBytes doesn't panic unless out of memory.
func (d *Dynamic) PutBytes(b []byte) {
	copy(d.Extend(len(b)), b)
}

// Extend doesn't panic unless out of memory.
func (d *Dynamic) Extend(addLen int) []byte {
	if d.buf == nil {
		d.buf = d.inline[:0]
	}

	offset := len(d.buf)

	if size := offset + addLen; size <= cap(d.buf) {
		if size < offset { // Check for overflow
			panic(xerrors.New("buffer size out of range"))
		}

		d.buf = d.buf[:size]
	} else {
		d.grow(addLen)
	}

	return d.buf[offset:]
}

func (d *Dynamic) grow(addLen int) {
	newLen := len(d.buf) + addLen
	if newLen < len(d.buf) {
		panic(xerrors.New("buffer size out of range"))
	}

	newCap := cap(d.buf) + cap(d.buf)/2 + addLen
	if newCap < newLen { // Handle overflow
		newCap = newLen
	}

	newBuf := make([]byte, newLen, newCap)
	copy(newBuf, d.buf)
	d.buf = newBuf
}
