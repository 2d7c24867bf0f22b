// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mips

import (
	"gate.computer/masm/patch"
)

// Each instruction is rewritten with a single word store.  While both halves
// of a constant change, the lui is replaced by a branch to itself, so a
// thread entering the sequence waits until the rewrite is complete.  The ori
// in its delay slot only modifies the register being loaded.  A jal or j
// which doesn't use the constant is written before it, and a jalr or jr which
// uses it is written after it.  A thread which executed the old lui just
// before the rewrite may combine its high half with the new low half.

var patternSizes = [...]int32{
	patch.PatternInt32: 2 * 4, // lui; ori
	patch.PatternCall:  4 * 4, // lui t9; ori t9; jalr t9 or jal; nop
	patch.PatternJump:  jumpSize,
}

// spin branches to itself.
var spin = BEQ.RsRtOff(Zero, Zero, -1)

// Patcher rewrites finalized MIPS code.
type Patcher struct{}

func (Patcher) Size(p patch.Pattern) int32 {
	return patternSizes[p]
}

func isLui(insn uint32) bool { return insn&0xffe00000 == uint32(LUI) }
func isOri(insn uint32) bool { return insn&opMask == uint32(ORI) }

// constant checks a lui/ori pair at offset and returns its destination
// register.
func constant(w *patch.Window, offset int32) Reg {
	hi := w.Uint32(offset)
	lo := w.Uint32(offset + 4)
	if !isLui(hi) || !isOri(lo) || regRt(hi) != regRs(lo) || regRt(hi) != regRt(lo) {
		w.Mismatch("lui; ori")
	}
	return regRt(hi)
}

func readConstant(w *patch.Window, offset int32) uint32 {
	constant(w, offset)
	return (w.Uint32(offset)&immMask)<<16 | w.Uint32(offset+4)&immMask
}

// putConstant rewrites the value of a checked lui/ori pair.  Only the
// instructions whose halves change are written.
func putConstant(w *patch.Window, offset int32, r Reg, value uint32) {
	var (
		old = readConstant(w, offset)
		hi  = LUI.RtRsI16(r, Zero, uint16(value>>16))
		lo  = ORI.RtRsI16(r, r, uint16(value))
	)

	switch {
	case old == value:

	case old>>16 == value>>16:
		w.PutUint32(offset+4, lo)

	case old&0xffff == value&0xffff:
		w.PutUint32(offset, hi)

	default:
		w.PutUint32(offset, spin)
		w.PutUint32(offset+4, lo)
		w.PutUint32(offset, hi)
	}
}

func (Patcher) RepatchInt32(w *patch.Window, value int32) {
	putConstant(w, 0, constant(w, 0), uint32(value))
}

func (Patcher) ReadInt32(w *patch.Window) int32 {
	return int32(readConstant(w, 0))
}

func checkCall(w *patch.Window) {
	insn := w.Uint32(8)
	if constant(w, 0) != RegJump || (insn != JALR.RdRs(RA, RegJump) && insn&opMask != uint32(JAL)) || w.Uint32(12) != NOP {
		w.Mismatch("lui t9; ori t9; jalr t9; nop")
	}
}

// RelinkCall uses jal if the target is in the same 256 MB region as the call.
// The constant is kept up to date in both cases.
func (Patcher) RelinkCall(w *patch.Window, target uint32) {
	checkCall(w)

	if target&3 == 0 && inRegion(w.Addr+12, target) {
		w.PutUint32(8, JAL.Target(target))
		putConstant(w, 0, RegJump, target)
	} else {
		putConstant(w, 0, RegJump, target)
		w.PutUint32(8, JALR.RdRs(RA, RegJump))
	}
}

func (Patcher) ReadCallTarget(w *patch.Window) uint32 {
	checkCall(w)
	return readConstant(w, 0)
}

// RelinkJump keeps the inverted branch and rewrites the jump which follows
// it.  When j replaces lui, the rest of the long form stays in place, so a
// thread which executed the lui before the rewrite completes the previous
// jump.
func (Patcher) RelinkJump(w *patch.Window, target uint32) {
	branch := w.Uint32(0)
	if !isBranch(branch) || branch&immMask != 5 || w.Uint32(4) != NOP {
		w.Mismatch("b<cond> +5; nop")
	}

	var (
		first = w.Uint32(8)
		ori   = w.Uint32(12)
		jr    = w.Uint32(16)
	)
	longTail := isOri(ori) && regRt(ori) == RegJump && regRs(ori) == RegJump && jr == JR.Rs(RegJump)
	nopTail := ori == NOP && jr == NOP
	near := first&opMask == uint32(J) && (longTail || nopTail)
	long := isLui(first) && regRt(first) == RegJump && longTail
	if !(near || long) || w.Uint32(20) != NOP {
		w.Mismatch("j; nop; nop; nop or lui t9; ori t9; jr t9; nop")
	}
	if target&3 != 0 {
		w.Mismatch("word-aligned target")
	}

	if inRegion(w.Addr+12, target) {
		w.PutUint32(8, J.Target(target))
		return
	}

	if long {
		putConstant(w, 8, RegJump, target)
		return
	}

	// The j stays until the lui replaces it.  Meanwhile the ori in its delay
	// slot only modifies t9.
	insns := jumpRegister(target)
	for i := len(insns) - 1; i >= 0; i-- {
		w.PutUint32(8+int32(i)*4, insns[i])
	}
}
