// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

const marker = 0xcafe

// wordPatcher uses single-word sequences which start with a marker halfword.
type wordPatcher struct{}

func (wordPatcher) Size(Pattern) int32 { return 4 }

func (wordPatcher) check(w *Window) {
	if w.Uint16(2) != marker {
		w.Mismatch("marker")
	}
}

func (p wordPatcher) RepatchInt32(w *Window, value int32) {
	p.check(w)
	w.PutUint16(0, uint16(value))
}

func (p wordPatcher) ReadInt32(w *Window) int32 {
	p.check(w)
	return int32(int16(w.Uint16(0)))
}

func (p wordPatcher) RelinkCall(w *Window, target uint32) { p.RelinkJump(w, target) }
func (p wordPatcher) ReadCallTarget(w *Window) uint32     { return uint32(w.Uint16(0)) }

func (p wordPatcher) RelinkJump(w *Window, target uint32) {
	p.check(w)
	w.PutUint32(0, marker<<16|target&0xffff)
}

func newTestCode(words int) *Code {
	mem := make([]uint32, words)
	for i := range mem {
		mem[i] = marker << 16
	}
	return &Code{
		Mem:     unsafe.Slice((*byte)(unsafe.Pointer(&mem[0])), words*4),
		Addr:    0x1000,
		Patcher: wordPatcher{},
	}
}

func TestRegion(t *testing.T) {
	c := newTestCode(4)

	r := c.Region(8, PatternCall)
	require.Equal(t, Region{Offset: 4, Size: 4, Addr: 0x1004, Pattern: PatternCall}, r)
	require.Equal(t, int32(8), r.End())
	require.Equal(t, "call at 0x1004", r.String())

	require.Panics(t, func() { c.Region(2, PatternJump) })
	require.Panics(t, func() { c.Region(20, PatternJump) })
}

func TestPatch(t *testing.T) {
	c := newTestCode(4)

	var flushed []uint32
	c.Flusher = FlusherFunc(func(b []byte, addr uint32) {
		require.Len(t, b, 4)
		flushed = append(flushed, addr)
	})

	k := c.Region(4, PatternInt32)
	c.RepatchInt32(k, -3)
	require.Equal(t, int32(-3), c.ReadInt32(k))
	require.Equal(t, []byte{0xfd, 0xff, 0xfe, 0xca}, c.Mem[:4])

	j := c.Region(16, PatternJump)
	c.RelinkJump(j, 0x1234)
	c.RelinkJump(j, 0x1234)
	require.Equal(t, []byte{0x34, 0x12, 0xfe, 0xca}, c.Mem[12:16])

	require.Equal(t, []uint32{0x1000, 0x100c, 0x100c}, flushed)
}

func TestPatchMismatch(t *testing.T) {
	c := newTestCode(4)

	k := c.Region(4, PatternInt32)
	require.Panics(t, func() { c.RelinkCall(k, 0) })

	moved := k
	moved.Addr += 4
	require.Panics(t, func() { c.ReadInt32(moved) })

	c.Mem[6] = 0
	require.Panics(t, func() { c.ReadInt32(c.Region(8, PatternInt32)) })
}

func TestPatchMisaligned(t *testing.T) {
	c := newTestCode(4)
	c.Mem[4] = marker & 0xff
	c.Mem[5] = marker >> 8

	r := c.Region(6, PatternInt32)
	require.Equal(t, int32(2), r.Offset)
	require.Panics(t, func() { c.ReadInt32(r) })
}
