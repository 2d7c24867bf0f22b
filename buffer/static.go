// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"

	"gate.computer/masm/internal/pan"
)

// Static is a fixed-capacity buffer, for wrapping a memory region allocated
// for linked code.  The default value is a zero-capacity buffer.
type Static struct {
	buf []byte
}

// MakeStatic buffer.  Its length is reset to zero.
//
// This function can be used in field initializer expressions.
func MakeStatic(b []byte) Static {
	return Static{b[:0]}
}

// NewStatic buffer.  Its length is reset to zero.
func NewStatic(b []byte) *Static {
	s := MakeStatic(b)
	return &s
}

// Cap of the static buffer.
func (s *Static) Cap() int {
	return cap(s.buf)
}

// Len doesn't panic.
func (s *Static) Len() int {
	return len(s.buf)
}

// Bytes doesn't panic.
func (s *Static) Bytes() []byte {
	return s.buf
}

// PutByte panics with ErrStaticSize if the buffer is already full.
func (s *Static) PutByte(value byte) {
	s.Extend(1)[0] = value
}

// PutUint16 panics with ErrStaticSize if 2 bytes cannot be appended to the
// buffer.
func (s *Static) PutUint16(i uint16) {
	binary.LittleEndian.PutUint16(s.Extend(2), i)
}

// PutUint32 panics with ErrStaticSize if 4 bytes cannot be appended to the
// buffer.
func (s *Static) PutUint32(i uint32) {
	binary.LittleEndian.PutUint32(s.Extend(4), i)
}

// PutBytes panics with ErrStaticSize if b doesn't fit in the buffer.
func (s *Static) PutBytes(b []byte) {
	copy(s.Extend(len(b)), b)
}

// Extend panics with ErrStaticSize if n bytes cannot be appended to the
// buffer.
func (s *Static) Extend(n int) []byte {
	offset := len(s.buf)
	size := offset + n
	if size > cap(s.buf) || size < offset {
		pan.Panic(ErrStaticSize)
	}
	s.buf = s.buf[:size]
	return s.buf[offset:]
}

// Truncate the buffer to n bytes.  It panics with ErrStaticSize if n is larger
// than the current length.
func (s *Static) Truncate(n int) {
	if n > len(s.buf) {
		pan.Panic(ErrStaticSize)
	}
	s.buf = s.buf[:n]
}
