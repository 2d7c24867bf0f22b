// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package armv7

import (
	"gate.computer/masm/isa/armv7/in"
	"gate.computer/masm/patch"
)

// Patchable sequences start at word boundaries, and each 32-bit instruction is
// rewritten with a single word store.  While both halves of a constant
// change, the first word of the sequence is a branch to itself, so a thread
// entering the sequence waits until the rewrite is complete.  A thread which
// executed the old movw just before the rewrite may combine its low half with
// the new high half.

var patternSizes = [...]int32{
	patch.PatternInt32: 8,  // movw; movt
	patch.PatternCall:  10, // movw ip; movt ip; blx ip
	patch.PatternJump:  10, // movw ip; movt ip; bx ip or b.w; movt ip; bx ip
}

// Patcher rewrites finalized Thumb-2 code.
type Patcher struct {
	Target Target
}

func (Patcher) Size(p patch.Pattern) int32 {
	return patternSizes[p]
}

func isMovw(hw uint16) bool { return hw&0xfbf0 == in.OpMOVW }
func isMovt(hw uint16) bool { return hw&0xfbf0 == in.OpMOVT }

func isJumpT4(first, second uint16) bool {
	return first&0xf800 == in.OpBT4a && second&0xd000 == in.OpBT4b
}

// decodeImm16 of MOVW or MOVT.
func decodeImm16(first, second uint16) uint32 {
	return uint32(first&0xf)<<12 | uint32(first&0x400)<<1 | uint32(second&0x7000)>>4 | uint32(second&0xff)
}

func insn32(w *patch.Window, offset int32) (first, second uint16) {
	x := w.Uint32(offset)
	return uint16(x), uint16(x >> 16)
}

func putInsn32(w *patch.Window, offset int32, first, second uint16) {
	w.PutUint32(offset, uint32(first)|uint32(second)<<16)
}

// movPair checks a movw/movt pair at the start of the window and returns its
// destination register.
func movPair(w *patch.Window) Reg {
	lo0, lo1 := insn32(w, 0)
	hi0, hi1 := insn32(w, 4)
	if !isMovw(lo0) || !isMovt(hi0) || (lo1>>8)&0xf != (hi1>>8)&0xf {
		w.Mismatch("movw; movt")
	}
	return Reg((lo1 >> 8) & 0xf)
}

func readMovPair(w *patch.Window) uint32 {
	movPair(w)
	lo0, lo1 := insn32(w, 0)
	hi0, hi1 := insn32(w, 4)
	return decodeImm16(hi0, hi1)<<16 | decodeImm16(lo0, lo1)
}

// putMovPair rewrites the value of a checked movw/movt pair.  Only the
// instructions whose halves change are written.
func putMovPair(w *patch.Window, rd Reg, value uint32) {
	old := readMovPair(w)
	lo0, lo1 := in.MOVW.RdI16(rd, value&0xffff)
	hi0, hi1 := in.MOVT.RdI16(rd, value>>16)

	switch {
	case old == value:

	case old>>16 == value>>16:
		putInsn32(w, 0, lo0, lo1)

	case old&0xffff == value&0xffff:
		putInsn32(w, 4, hi0, hi1)

	default:
		putInsn32(w, 0, jumpT2(w.Addr+2, w.Addr), in.NOP)
		putInsn32(w, 4, hi0, hi1)
		putInsn32(w, 0, lo0, lo1)
	}
}

func (Patcher) RepatchInt32(w *patch.Window, value int32) {
	putMovPair(w, movPair(w), uint32(value))
}

func (Patcher) ReadInt32(w *patch.Window) int32 {
	return int32(readMovPair(w))
}

func checkCall(w *patch.Window) {
	if movPair(w) != RegData || w.Uint16(8) != in.BLX.Rm(RegData) {
		w.Mismatch("movw ip; movt ip; blx ip")
	}
}

// RelinkCall to a Thumb function.
func (Patcher) RelinkCall(w *patch.Window, target uint32) {
	checkCall(w)
	putMovPair(w, RegData, target|1)
}

func (Patcher) ReadCallTarget(w *patch.Window) uint32 {
	checkCall(w)
	return readMovPair(w) &^ 1
}

// RelinkJump writes a 32-bit branch over the movw if the target is within
// reach, and otherwise loads the target into the scratch register.  The movt
// and bx stay in place after the branch, so a thread which executed the movw
// before the rewrite completes the previous jump.
func (p Patcher) RelinkJump(w *patch.Window, target uint32) {
	var (
		first, second = insn32(w, 0)
		hi0, hi1      = insn32(w, 4)
		near          = isJumpT4(first, second)
		long          = isMovw(first) && Reg((second>>8)&0xf) == RegData
	)
	if !(near || long) || !isMovt(hi0) || Reg((hi1>>8)&0xf) != RegData || w.Uint16(8) != in.BX.Rm(RegData) {
		w.Mismatch("movw ip; movt ip; bx ip or b.w; movt ip; bx ip")
	}
	if target&1 != 0 {
		w.Mismatch("halfword-aligned target")
	}

	if end := w.Addr + 4; p.Target.canBeJumpT4(end, target) {
		b0, b1 := jumpT4(end, target)
		putInsn32(w, 0, b0, b1)
		return
	}

	value := target + 1

	if long {
		putMovPair(w, RegData, value)
		return
	}

	// The movt isn't executed before the movw replaces the branch.
	hi0, hi1 = in.MOVT.RdI16(RegData, value>>16)
	putInsn32(w, 4, hi0, hi1)
	lo0, lo1 := in.MOVW.RdI16(RegData, value&0xffff)
	putInsn32(w, 0, lo0, lo1)
}
