// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package armv7 assembles Thumb-2 code for ARMv7-A processors.
package armv7

import (
	"gate.computer/masm/code"
	"gate.computer/masm/isa/armv7/in"
	"gate.computer/masm/link"
	"gate.computer/masm/patch"
	"golang.org/x/xerrors"
)

// MacroAssembler emits operations which may expand to several instructions.
// RegData is clobbered by operations whose immediates don't fit in a single
// instruction, and by jumps and calls.
type MacroAssembler struct {
	Assembler
	Target Target

	ledger link.Ledger
}

func New(target Target, b code.Buffer) *MacroAssembler {
	return &MacroAssembler{
		Assembler: Assembler{Text: code.Buf{Buffer: b}},
		Target:    target,
	}
}

func (m *MacroAssembler) Buf() *code.Buf         { return &m.Text }
func (m *MacroAssembler) Ledger() *link.Ledger   { return &m.ledger }
func (m *MacroAssembler) Linker() link.Linker    { return Linker{m.Target} }
func (m *MacroAssembler) Patcher() patch.Patcher { return Patcher{m.Target} }

func needScratch(regs ...Reg) {
	for _, r := range regs {
		if r == RegData {
			panic(xerrors.New("armv7: scratch register operand with immediate which needs it"))
		}
	}
}

// Add32: rd = rn + value.
func (m *MacroAssembler) Add32(rd, rn Reg, value int32) {
	if imm := MakeUInt12OrEncodedImm(uint32(value)); imm.IsValid() {
		m.AddImm(rd, rn, imm)
		return
	}
	if imm := MakeUInt12OrEncodedImm(uint32(-value)); imm.IsValid() {
		m.SubImm(rd, rn, imm)
		return
	}

	needScratch(rd, rn)
	m.Move(RegData, value)
	m.AddReg(rd, rn, RegData)
}

// Sub32: rd = rn - value.
func (m *MacroAssembler) Sub32(rd, rn Reg, value int32) {
	if imm := MakeUInt12OrEncodedImm(uint32(value)); imm.IsValid() {
		m.SubImm(rd, rn, imm)
		return
	}
	if imm := MakeUInt12OrEncodedImm(uint32(-value)); imm.IsValid() {
		m.AddImm(rd, rn, imm)
		return
	}

	needScratch(rd, rn)
	m.Move(RegData, value)
	m.SubReg(rd, rn, RegData)
}

func (m *MacroAssembler) And32(rd, rn Reg, value int32) {
	m.logical32(m.AndImm, m.AndReg, rd, rn, value)
}

func (m *MacroAssembler) Or32(rd, rn Reg, value int32) {
	m.logical32(m.OrrImm, m.OrrReg, rd, rn, value)
}

func (m *MacroAssembler) Xor32(rd, rn Reg, value int32) {
	m.logical32(m.EorImm, m.EorReg, rd, rn, value)
}

func (m *MacroAssembler) logical32(immOp func(Reg, Reg, Imm), regOp func(Reg, Reg, Reg), rd, rn Reg, value int32) {
	if imm := MakeEncodedImm(uint32(value)); imm.IsValid() {
		immOp(rd, rn, imm)
		return
	}

	needScratch(rd, rn)
	m.Move(RegData, value)
	regOp(rd, rn, RegData)
}

// Move a constant into a register using the shortest sequence.
func (m *MacroAssembler) Move(rd Reg, value int32) {
	x := uint32(value)

	if imm := MakeEncodedImm(x); imm.IsValid() {
		m.MovImm(rd, imm)
		return
	}
	if imm := MakeEncodedImm(^x); imm.IsValid() {
		m.MvnImm(rd, imm)
		return
	}

	m.Movw(rd, uint16(x))
	if x>>16 != 0 {
		m.Movt(rd, uint16(x>>16))
	}
}

// MoveWithPatch emits a fixed-width constant load, possibly preceded by a
// no-op.  The returned label can be used to locate a patch.PatternInt32
// region after finalization.
func (m *MacroAssembler) MoveWithPatch(rd Reg, value int32) code.Label {
	m.alignPatchable()
	x := uint32(value)
	m.Movw(rd, uint16(x))
	m.Movt(rd, uint16(x>>16))
	return m.Label()
}

func (m *MacroAssembler) Load32(rt, rn Reg, offset uint32) {
	if offset < 4096 {
		m.Ldr(rt, rn, offset)
		return
	}

	needScratch(rn)
	m.Move(RegData, int32(offset))
	m.AddReg(RegData, RegData, rn)
	m.Ldr(rt, RegData, 0)
}

func (m *MacroAssembler) Store32(rt, rn Reg, offset uint32) {
	if offset < 4096 {
		m.Str(rt, rn, offset)
		return
	}

	needScratch(rt, rn)
	m.Move(RegData, int32(offset))
	m.AddReg(RegData, RegData, rn)
	m.Str(rt, RegData, 0)
}

// Div32 is signed division.  It panics if the target lacks hardware division.
func (m *MacroAssembler) Div32(rd, rn, rm Reg) {
	m.requireIDIV()
	m.Sdiv(rd, rn, rm)
}

// DivU32 is unsigned division.
func (m *MacroAssembler) DivU32(rd, rn, rm Reg) {
	m.requireIDIV()
	m.Udiv(rd, rn, rm)
}

func (m *MacroAssembler) requireIDIV() {
	if !m.Target.HasIDIV {
		panic(xerrors.New("armv7: target doesn't support hardware division"))
	}
}

func (m *MacroAssembler) compare32(rn Reg, value int32) {
	if imm := MakeEncodedImm(uint32(value)); imm.IsValid() {
		m.CmpImm(rn, imm)
		return
	}
	if imm := MakeEncodedImm(uint32(-value)); imm.IsValid() {
		m.CmnImm(rn, imm)
		return
	}

	needScratch(rn)
	m.Move(RegData, value)
	m.CmpReg(rn, RegData)
}

// Branch32 compares a register with a constant and jumps if the condition
// holds.
func (m *MacroAssembler) Branch32(cond Cond, rn Reg, value int32) link.Jump {
	m.compare32(rn, value)
	return m.jump(link.JumpCondition, cond)
}

// Branch32Reg compares two registers.
func (m *MacroAssembler) Branch32Reg(cond Cond, rn, rm Reg) link.Jump {
	m.CmpReg(rn, rm)
	return m.jump(link.JumpCondition, cond)
}

// BranchTest32 jumps if the masked register value satisfies EQ (zero) or NE
// (non-zero).
func (m *MacroAssembler) BranchTest32(cond Cond, rn Reg, mask int32) link.Jump {
	switch imm := MakeEncodedImm(uint32(mask)); {
	case mask == -1:
		m.TstReg(rn, rn)

	case imm.IsValid():
		m.TstImm(rn, imm)

	default:
		needScratch(rn)
		m.Move(RegData, mask)
		m.TstReg(rn, RegData)
	}
	return m.jump(link.JumpCondition, cond)
}

// PatchableBranch32 keeps its maximal encoding so that it can be relinked
// after finalization.
func (m *MacroAssembler) PatchableBranch32(cond Cond, rn Reg, value int32) link.Jump {
	m.compare32(rn, value)
	return m.jump(link.JumpConditionFixedSize, cond)
}

func (m *MacroAssembler) Jump() link.Jump {
	return m.jump(link.JumpNoCondition, in.AL)
}

// PatchableJump keeps its maximal encoding.  Its From label locates a
// patch.PatternJump region after finalization.
func (m *MacroAssembler) PatchableJump() link.Jump {
	m.alignPatchable()
	return m.jump(link.JumpNoConditionFixedSize, in.AL)
}

// alignPatchable starts a patchable sequence at a word boundary, so that each
// of its 32-bit instructions can be rewritten with a single store.
func (m *MacroAssembler) alignPatchable() {
	if m.Text.Size()&2 != 0 {
		m.Nop()
	}
}

// jump reserves space for the maximal encoding.
func (m *MacroAssembler) jump(t link.JumpType, cond Cond) link.Jump {
	var o output
	if t.Conditional() {
		o.insn16(in.ITE(cond, true, true))
	}
	jumpBX(&o, 0)
	m.emit(&o)

	return m.ledger.Add(m.Label(), t, uint8(cond))
}

// JumpIndirect to a Thumb address in a register.
func (m *MacroAssembler) JumpIndirect(rm Reg) {
	m.Bx(rm)
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
	m.alignPatchable()
	m.Movw(RegData, 0)
	m.Movt(RegData, 0)
	m.Blx(RegData)
	return m.Label()
}

// CallIndirect to a Thumb address in a register.
func (m *MacroAssembler) CallIndirect(rm Reg) code.Label {
	m.Blx(rm)
	return m.Label()
}

func (m *MacroAssembler) Ret() {
	m.Bx(LR)
}

func (m *MacroAssembler) Breakpoint() {
	m.Bkpt(0)
}
