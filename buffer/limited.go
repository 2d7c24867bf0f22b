// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"

	"gate.computer/masm/internal/pan"
)

// Limited is a dynamic buffer with a maximum size.  The default value is an
// empty buffer that cannot grow.
type Limited struct {
	d       Dynamic
	maxSize int
}

// NewLimited buffer with a maximum size.
func NewLimited(maxSize int) *Limited {
	return &Limited{maxSize: maxSize}
}

// Len doesn't panic.
func (l *Limited) Len() int {
	return l.d.Len()
}

// Bytes doesn't panic.
func (l *Limited) Bytes() []byte {
	return l.d.Bytes()
}

// PutByte panics with ErrSizeLimit if the buffer is already full.
func (l *Limited) PutByte(value byte) {
	l.Extend(1)[0] = value
}

// PutUint16 panics with ErrSizeLimit if 2 bytes cannot be appended to the
// buffer.
func (l *Limited) PutUint16(i uint16) {
	binary.LittleEndian.PutUint16(l.Extend(2), i)
}

// PutUint32 panics with ErrSizeLimit if 4 bytes cannot be appended to the
// buffer.
func (l *Limited) PutUint32(i uint32) {
	binary.LittleEndian.PutUint32(l.Extend(4), i)
}

// Extend panics with ErrSizeLimit if n bytes cannot be appended to the buffer.
func (l *Limited) Extend(n int) []byte {
	if l.d.Len()+n > l.maxSize {
		pan.Panic(ErrSizeLimit)
	}
	return l.d.Extend(n)
}
