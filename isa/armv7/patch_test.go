// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package armv7_test

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"testing"
	"unsafe"

	"gate.computer/masm"
	"gate.computer/masm/buffer"
	"gate.computer/masm/isa/armv7"
	"gate.computer/masm/isa/armv7/in"
	"gate.computer/masm/link"
	"gate.computer/masm/patch"
	"github.com/stretchr/testify/require"
)

const testAddr = 0x10000

type patchable struct {
	prog     *masm.Program
	code     *patch.Code
	constant patch.Region
	call     patch.Region
	jump     patch.Region
	flushes  []uint32
}

func newPatchable(t *testing.T) *patchable {
	t.Helper()

	m := armv7.New(armv7.DefaultTarget(), buffer.NewDynamic())
	top := m.Label()
	k := m.MoveWithPatch(armv7.R0, 1234)
	c := m.Call()
	j := m.PatchableJump() // Preceded by a no-op.
	m.LinkJump(j, top)
	m.Ret()

	prog, err := masm.Finalize(m, &masm.MemoryAllocator{Addr: testAddr}, link.Compact)
	require.NoError(t, err)
	require.Equal(t, armv7.LinkBX, prog.Jump(j).LinkType())

	x := &patchable{
		prog:     prog,
		constant: prog.Region(k, patch.PatternInt32),
		call:     prog.Region(c, patch.PatternCall),
		jump:     prog.Region(prog.Jump(j).From, patch.PatternJump),
	}
	x.code = prog.Code(patch.FlusherFunc(func(b []byte, addr uint32) {
		x.flushes = append(x.flushes, addr)
	}))
	return x
}

func (x *patchable) halfwords(r patch.Region) (hws []uint16) {
	b := x.prog.Text[r.Offset:r.End()]
	for i := 0; i < len(b); i += 2 {
		hws = append(hws, binary.LittleEndian.Uint16(b[i:]))
	}
	return
}

func longJump(target uint32) []uint16 {
	w0, w1 := in.MOVW.RdI16(armv7.RegData, (target+1)&0xffff)
	t0, t1 := in.MOVT.RdI16(armv7.RegData, target>>16)
	return []uint16{w0, w1, t0, t1, in.BX.Rm(armv7.RegData)}
}

func TestPatchRegions(t *testing.T) {
	x := newPatchable(t)

	require.Equal(t, patch.Region{Offset: 0, Size: 8, Addr: testAddr, Pattern: patch.PatternInt32}, x.constant)
	require.Equal(t, patch.Region{Offset: 8, Size: 10, Addr: testAddr + 8, Pattern: patch.PatternCall}, x.call)
	require.Equal(t, patch.Region{Offset: 20, Size: 10, Addr: testAddr + 20, Pattern: patch.PatternJump}, x.jump)
	require.Equal(t, in.NOP, binary.LittleEndian.Uint16(x.prog.Text[18:]))
	require.Equal(t, longJump(testAddr), x.halfwords(x.jump))
}

func TestRepatchInt32(t *testing.T) {
	x := newPatchable(t)
	require.Equal(t, int32(1234), x.code.ReadInt32(x.constant))

	for _, value := range []int32{0, -5, 0x7fffffff, -0x80000000, 0x12345678} {
		x.code.RepatchInt32(x.constant, value)
		require.Equal(t, value, x.code.ReadInt32(x.constant))
	}
	require.Len(t, x.flushes, 5)
	require.Equal(t, uint32(testAddr), x.flushes[0])
}

func TestRelinkCall(t *testing.T) {
	x := newPatchable(t)
	require.Equal(t, uint32(0), x.code.ReadCallTarget(x.call))

	x.code.RelinkCall(x.call, 0x12345678)
	require.Equal(t, uint32(0x12345678), x.code.ReadCallTarget(x.call))

	hws := x.halfwords(x.call)
	lo0, lo1 := in.MOVW.RdI16(armv7.RegData, 0x5679) // Thumb bit is set.
	require.Equal(t, []uint16{lo0, lo1}, hws[:2])
	require.Equal(t, in.BLX.Rm(armv7.RegData), hws[4])

	x.code.RelinkCall(x.call, 0x12345678)
	require.Equal(t, hws, x.halfwords(x.call))

	x.code.RelinkCall(x.call, 0x12340000)
	x.code.RelinkCall(x.call, 0x87650000)
	require.Equal(t, uint32(0x87650000), x.code.ReadCallTarget(x.call))
	x.code.RelinkCall(x.call, 0x12345678)
	require.Equal(t, hws, x.halfwords(x.call))

	require.Equal(t, []uint32{testAddr + 8, testAddr + 8, testAddr + 8, testAddr + 8, testAddr + 8}, x.flushes)
}

func TestRelinkJump(t *testing.T) {
	x := newPatchable(t)

	// The branch replaces the movw, and the rest of the long form stays.
	x.code.RelinkJump(x.jump, testAddr)
	near := x.halfwords(x.jump)
	require.Equal(t, in.OpBT4a, near[0]&0xf800)
	require.Equal(t, in.OpBT4b, near[1]&0xd000)
	require.Equal(t, longJump(testAddr)[2:], near[2:])

	x.code.RelinkJump(x.jump, testAddr)
	require.Equal(t, near, x.halfwords(x.jump))

	const far = testAddr + 0x2000000
	x.code.RelinkJump(x.jump, far)
	require.Equal(t, longJump(far), x.halfwords(x.jump))

	x.code.RelinkJump(x.jump, far)
	require.Equal(t, longJump(far), x.halfwords(x.jump))

	const farther = testAddr + 0x3000100
	x.code.RelinkJump(x.jump, farther)
	require.Equal(t, longJump(farther), x.halfwords(x.jump))

	x.code.RelinkJump(x.jump, testAddr+2)
	hws := x.halfwords(x.jump)
	require.Equal(t, in.OpBT4a, hws[0]&0xf800)
	require.NotEqual(t, near[:2], hws[:2])
	require.Equal(t, longJump(farther)[2:], hws[2:])

	require.Len(t, x.flushes, 6)
}

const spinWord = 0xe7fe | uint32(in.NOP)<<16 // b .; nop

func firstWordValid(word uint32) bool {
	hw0, hw1 := uint16(word), uint16(word>>16)
	switch {
	case hw0&0xfbf0 == in.OpMOVW:
		return armv7.Reg((hw1>>8)&0xf) == armv7.RegData
	case hw0&0xf800 == in.OpBT4a:
		return hw1&0xd000 == in.OpBT4b
	default:
		return word == spinWord
	}
}

func secondWordValid(word uint32) bool {
	hw0, hw1 := uint16(word), uint16(word>>16)
	return hw0&0xfbf0 == in.OpMOVT && armv7.Reg((hw1>>8)&0xf) == armv7.RegData
}

// TestRelinkConcurrentFetch reads instruction words while they are being
// rewritten.  Every word must always hold a complete instruction.
func TestRelinkConcurrentFetch(t *testing.T) {
	x := newPatchable(t)
	x.code.Flusher = nil

	var (
		jump    = (*[2]uint32)(unsafe.Pointer(&x.prog.Text[x.jump.Offset]))
		call    = (*[2]uint32)(unsafe.Pointer(&x.prog.Text[x.call.Offset]))
		done    = make(chan struct{})
		invalid = make(chan string, 1)
	)

	go func() {
		defer close(invalid)

		for {
			select {
			case <-done:
				return
			default:
			}

			for _, words := range []*[2]uint32{jump, call} {
				w0 := atomic.LoadUint32(&words[0])
				w1 := atomic.LoadUint32(&words[1])
				if !firstWordValid(w0) || !secondWordValid(w1) {
					invalid <- fmt.Sprintf("fetched %#08x %#08x", w0, w1)
					return
				}
			}
		}
	}()

	jumpTargets := []uint32{testAddr, testAddr + 0x2000000, testAddr + 0x3000100}
	callTargets := []uint32{0x12345678, 0x87654320, 0x12340000}

	for i := 0; i < 100000; i++ {
		x.code.RelinkJump(x.jump, jumpTargets[i%3])
		x.code.RelinkCall(x.call, callTargets[i%3])
	}
	close(done)

	require.Empty(t, <-invalid)
	require.Equal(t, callTargets[(100000-1)%3], x.code.ReadCallTarget(x.call))
}

func TestPatchMismatch(t *testing.T) {
	x := newPatchable(t)

	require.Panics(t, func() { x.code.ReadInt32(x.call) })
	require.Panics(t, func() { x.code.RelinkJump(x.jump, testAddr+1) })

	constantAsCall := x.constant
	constantAsCall.Size = 10
	constantAsCall.Pattern = patch.PatternCall
	require.Panics(t, func() { x.code.RelinkCall(constantAsCall, 0x1000) })

	require.Empty(t, x.flushes)
}
