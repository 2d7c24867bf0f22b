// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mips assembles MIPS32 little-endian code.
package mips

import (
	"gate.computer/masm/code"
	"gate.computer/masm/link"
	"gate.computer/masm/patch"
	"golang.org/x/xerrors"
)

// MacroAssembler emits operations which may expand to several instructions.
// RegImm is clobbered by operations whose immediates don't fit in a single
// instruction and by compare-and-branch operations.  RegJump is clobbered by
// jumps and calls.
type MacroAssembler struct {
	Assembler

	ledger link.Ledger
}

func New(target Target, b code.Buffer) *MacroAssembler {
	return &MacroAssembler{
		Assembler: Assembler{
			Text:   code.Buf{Buffer: b},
			Target: target,
		},
	}
}

func (m *MacroAssembler) Buf() *code.Buf         { return &m.Text }
func (m *MacroAssembler) Ledger() *link.Ledger   { return &m.ledger }
func (m *MacroAssembler) Linker() link.Linker    { return Linker{} }
func (m *MacroAssembler) Patcher() patch.Patcher { return Patcher{} }

func needScratch(regs ...Reg) {
	for _, r := range regs {
		if r == RegImm {
			panic(xerrors.New("mips: scratch register operand with immediate which needs it"))
		}
	}
}

// Add32: rd = rs + value.
func (m *MacroAssembler) Add32(rd, rs Reg, value int32) {
	if FitsInt16(value) {
		m.Addiu(rd, rs, int16(value))
		return
	}

	needScratch(rd, rs)
	m.Move(RegImm, value)
	m.Addu(rd, rs, RegImm)
}

// Sub32: rd = rs - value.
func (m *MacroAssembler) Sub32(rd, rs Reg, value int32) {
	if FitsInt16(-value) {
		m.Addiu(rd, rs, int16(-value))
		return
	}

	needScratch(rd, rs)
	m.Move(RegImm, value)
	m.Subu(rd, rs, RegImm)
}

func (m *MacroAssembler) And32(rd, rs Reg, value int32) {
	m.logical32(m.Andi, m.And, rd, rs, value)
}

func (m *MacroAssembler) Or32(rd, rs Reg, value int32) {
	m.logical32(m.Ori, m.Or, rd, rs, value)
}

func (m *MacroAssembler) Xor32(rd, rs Reg, value int32) {
	m.logical32(m.Xori, m.Xor, rd, rs, value)
}

func (m *MacroAssembler) logical32(immOp func(Reg, Reg, uint16), regOp func(Reg, Reg, Reg), rd, rs Reg, value int32) {
	if FitsUInt16(value) {
		immOp(rd, rs, uint16(value))
		return
	}

	needScratch(rd, rs)
	m.Move(RegImm, value)
	regOp(rd, rs, RegImm)
}

// Move a constant into a register using the shortest sequence.
func (m *MacroAssembler) Move(rd Reg, value int32) {
	switch Classify(value) {
	case ShapeZero:
		m.Addu(rd, Zero, Zero)

	case ShapeUInt16:
		m.Ori(rd, Zero, Lo(value))

	case ShapeInt16:
		m.Addiu(rd, Zero, int16(value))

	default:
		m.Lui(rd, Hi(value))
		if Lo(value) != 0 {
			m.Ori(rd, rd, Lo(value))
		}
	}
}

// MoveWithPatch emits a fixed-width constant load.  The returned label can be
// used to locate a patch.PatternInt32 region after finalization.
func (m *MacroAssembler) MoveWithPatch(rd Reg, value int32) code.Label {
	m.Lui(rd, Hi(value))
	m.Ori(rd, rd, Lo(value))
	return m.Label()
}

func (m *MacroAssembler) Load32(rt, base Reg, offset int32) {
	if FitsInt16(offset) {
		m.Lw(rt, base, int16(offset))
		return
	}

	needScratch(base)
	m.Move(RegImm, offset)
	m.Addu(RegImm, RegImm, base)
	m.Lw(rt, RegImm, 0)
}

func (m *MacroAssembler) Store32(rt, base Reg, offset int32) {
	if FitsInt16(offset) {
		m.Sw(rt, base, int16(offset))
		return
	}

	needScratch(rt, base)
	m.Move(RegImm, offset)
	m.Addu(RegImm, RegImm, base)
	m.Sw(rt, RegImm, 0)
}

// Div32 is signed division.
func (m *MacroAssembler) Div32(rd, rs, rt Reg) {
	m.Div(rs, rt)
	m.Mflo(rd)
}

// DivU32 is unsigned division.
func (m *MacroAssembler) DivU32(rd, rs, rt Reg) {
	m.Divu(rs, rt)
	m.Mflo(rd)
}

// operand returns a register holding the value.
func (m *MacroAssembler) operand(value int32) Reg {
	if value == 0 {
		return Zero
	}
	m.Move(RegImm, value)
	return RegImm
}

// Branch32 compares a register with a constant and jumps if the condition
// holds.
func (m *MacroAssembler) Branch32(cond Cond, rs Reg, value int32) link.Jump {
	return m.branch32(link.JumpCondition, cond, rs, value)
}

// PatchableBranch32 keeps its maximal encoding so that it can be relinked
// after finalization.
func (m *MacroAssembler) PatchableBranch32(cond Cond, rs Reg, value int32) link.Jump {
	return m.branch32(link.JumpConditionFixedSize, cond, rs, value)
}

func (m *MacroAssembler) branch32(t link.JumpType, cond Cond, rs Reg, value int32) link.Jump {
	if value != 0 {
		needScratch(rs)
	}

	switch cond {
	case EQ, NE:
		return m.jump(t, cond, rs, m.operand(value))

	case LT, GE:
		if FitsInt16(value) {
			needScratch(rs)
			m.Slti(RegImm, rs, int16(value))
			return m.flagJump(t, cond)
		}

	case LTU, GEU:
		if FitsInt16(value) {
			needScratch(rs)
			m.Sltiu(RegImm, rs, int16(value))
			return m.flagJump(t, cond)
		}
	}

	needScratch(rs)
	return m.compareJump(t, cond, rs, m.operand(value))
}

// Branch32Reg compares two registers.
func (m *MacroAssembler) Branch32Reg(cond Cond, rs, rt Reg) link.Jump {
	if cond == EQ || cond == NE {
		return m.jump(link.JumpCondition, cond, rs, rt)
	}
	needScratch(rs, rt)
	return m.compareJump(link.JumpCondition, cond, rs, rt)
}

// compareJump sets RegImm to the result of a set-on-less-than instruction and
// branches on it.
func (m *MacroAssembler) compareJump(t link.JumpType, cond Cond, rs, rt Reg) link.Jump {
	switch cond {
	case LT, GE:
		m.Slt(RegImm, rs, rt)
	case GT, LE:
		m.Slt(RegImm, rt, rs)
	case LTU, GEU:
		m.Sltu(RegImm, rs, rt)
	case GTU, LEU:
		m.Sltu(RegImm, rt, rs)
	default:
		panic(xerrors.Errorf("mips: invalid condition %d", cond))
	}

	return m.flagJump(t, cond)
}

// flagJump branches on RegImm.  The first condition of each pair holds when
// the flag is set.
func (m *MacroAssembler) flagJump(t link.JumpType, cond Cond) link.Jump {
	if cond&1 == 0 {
		return m.jump(t, NE, RegImm, Zero)
	}
	return m.jump(t, EQ, RegImm, Zero)
}

// BranchTest32 jumps if the masked register value satisfies EQ (zero) or NE
// (non-zero).
func (m *MacroAssembler) BranchTest32(cond Cond, rs Reg, mask int32) link.Jump {
	if cond != EQ && cond != NE {
		panic(xerrors.Errorf("mips: invalid test condition %d", cond))
	}

	switch {
	case mask == -1:

	case FitsUInt16(mask):
		needScratch(rs)
		m.Andi(RegImm, rs, uint16(mask))
		rs = RegImm

	default:
		needScratch(rs)
		m.Move(RegImm, mask)
		m.And(RegImm, rs, RegImm)
		rs = RegImm
	}

	return m.jump(link.JumpCondition, cond, rs, Zero)
}

func (m *MacroAssembler) Jump() link.Jump {
	return m.jump(link.JumpNoCondition, EQ, Zero, Zero)
}

// PatchableJump keeps its maximal encoding.  Its From label locates a
// patch.PatternJump region after finalization.
func (m *MacroAssembler) PatchableJump() link.Jump {
	return m.jump(link.JumpNoConditionFixedSize, EQ, Zero, Zero)
}

// jump reserves space for the maximal encoding.  The condition is EQ or NE.
func (m *MacroAssembler) jump(t link.JumpType, cond Cond, rs, rt Reg) link.Jump {
	op := BEQ
	if cond == NE {
		op = BNE
	}

	m.insn(op.RsRtOff(rs, rt, 0))
	m.Nop()
	m.insn(BEQ.RsRtOff(Zero, Zero, 3)) // Skip the rest.
	m.Nop()
	m.Nop()
	m.Nop()

	return m.ledger.Add(m.Label(), t, uint8(cond))
}

// JumpIndirect to an address in a register.
func (m *MacroAssembler) JumpIndirect(rs Reg) {
	m.Jr(rs)
}

// LinkJump to a label.
func (m *MacroAssembler) LinkJump(j link.Jump, to code.Label) {
	m.ledger.Bind(j, to)
}

// LinkJumps to a label.
func (m *MacroAssembler) LinkJumps(jl link.JumpList, to code.Label) {
	jl.Link(&m.ledger, to)
}

// Call emits a patchable call.  The target is set after finalization through
// the patch.PatternCall region preceding the returned label.
func (m *MacroAssembler) Call() code.Label {
	m.Lui(RegJump, 0)
	m.Ori(RegJump, RegJump, 0)
	m.Jalr(RegJump)
	return m.Label()
}

// CallIndirect to an address in a register.
func (m *MacroAssembler) CallIndirect(rs Reg) code.Label {
	m.Jalr(rs)
	return m.Label()
}

func (m *MacroAssembler) Ret() {
	m.Jr(RA)
}

func (m *MacroAssembler) Breakpoint() {
	m.Break(0)
}
