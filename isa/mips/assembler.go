// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mips

import (
	"gate.computer/masm/code"
)

// Target processor.
type Target struct {
	// ISA level.  MIPS I requires a delay slot after loads.
	ISA int
}

// DefaultTarget is MIPS32.
func DefaultTarget() Target {
	return Target{ISA: 32}
}

func (t Target) loadDelay() bool {
	return t.ISA == 1
}

// Assembler encodes individual MIPS32 instructions.  Branches and jumps are
// followed by a delay slot NOP.
type Assembler struct {
	Text   code.Buf
	Target Target
}

func (a *Assembler) insn(i uint32) {
	a.Text.PutUint32(i)
}

func (a *Assembler) Addu(rd, rs, rt Reg) { a.insn(ADDU.RdRsRt(rd, rs, rt)) }
func (a *Assembler) Subu(rd, rs, rt Reg) { a.insn(SUBU.RdRsRt(rd, rs, rt)) }
func (a *Assembler) And(rd, rs, rt Reg)  { a.insn(AND.RdRsRt(rd, rs, rt)) }
func (a *Assembler) Or(rd, rs, rt Reg)   { a.insn(OR.RdRsRt(rd, rs, rt)) }
func (a *Assembler) Xor(rd, rs, rt Reg)  { a.insn(XOR.RdRsRt(rd, rs, rt)) }
func (a *Assembler) Nor(rd, rs, rt Reg)  { a.insn(NOR.RdRsRt(rd, rs, rt)) }
func (a *Assembler) Slt(rd, rs, rt Reg)  { a.insn(SLT.RdRsRt(rd, rs, rt)) }
func (a *Assembler) Sltu(rd, rs, rt Reg) { a.insn(SLTU.RdRsRt(rd, rs, rt)) }

func (a *Assembler) Sll(rd, rt Reg, sa uint32) { a.insn(SLL.RdRtSa(rd, rt, sa)) }
func (a *Assembler) Srl(rd, rt Reg, sa uint32) { a.insn(SRL.RdRtSa(rd, rt, sa)) }
func (a *Assembler) Sra(rd, rt Reg, sa uint32) { a.insn(SRA.RdRtSa(rd, rt, sa)) }

func (a *Assembler) Addiu(rt, rs Reg, imm int16) { a.insn(ADDIU.RtRsI16(rt, rs, uint16(imm))) }
func (a *Assembler) Slti(rt, rs Reg, imm int16)  { a.insn(SLTI.RtRsI16(rt, rs, uint16(imm))) }
func (a *Assembler) Sltiu(rt, rs Reg, imm int16) { a.insn(SLTIU.RtRsI16(rt, rs, uint16(imm))) }
func (a *Assembler) Andi(rt, rs Reg, imm uint16) { a.insn(ANDI.RtRsI16(rt, rs, imm)) }
func (a *Assembler) Ori(rt, rs Reg, imm uint16)  { a.insn(ORI.RtRsI16(rt, rs, imm)) }
func (a *Assembler) Xori(rt, rs Reg, imm uint16) { a.insn(XORI.RtRsI16(rt, rs, imm)) }
func (a *Assembler) Lui(rt Reg, imm uint16)      { a.insn(LUI.RtRsI16(rt, Zero, imm)) }

// Div leaves the quotient in LO.
func (a *Assembler) Div(rs, rt Reg)  { a.insn(DIV.RsRt(rs, rt)) }
func (a *Assembler) Divu(rs, rt Reg) { a.insn(DIVU.RsRt(rs, rt)) }
func (a *Assembler) Mflo(rd Reg)     { a.insn(MFLO.Rd(rd)) }

func (a *Assembler) Lw(rt, base Reg, offset int16)  { a.load(LW, rt, base, offset) }
func (a *Assembler) Lb(rt, base Reg, offset int16)  { a.load(LB, rt, base, offset) }
func (a *Assembler) Lbu(rt, base Reg, offset int16) { a.load(LBU, rt, base, offset) }

func (a *Assembler) load(op Immediate, rt, base Reg, offset int16) {
	a.insn(op.RtRsI16(rt, base, uint16(offset)))
	if a.Target.loadDelay() {
		a.Nop()
	}
}

func (a *Assembler) Sw(rt, base Reg, offset int16) {
	a.insn(SW.RtRsI16(rt, base, uint16(offset)))
}

// Beq with offset in words relative to the delay slot.
func (a *Assembler) Beq(rs, rt Reg, offset int16) {
	a.insn(BEQ.RsRtOff(rs, rt, int32(offset)))
	a.Nop()
}

func (a *Assembler) Bne(rs, rt Reg, offset int16) {
	a.insn(BNE.RsRtOff(rs, rt, int32(offset)))
	a.Nop()
}

// J to an address within the current 256 MB region.
func (a *Assembler) J(addr uint32) {
	a.insn(J.Target(addr))
	a.Nop()
}

func (a *Assembler) Jal(addr uint32) {
	a.insn(JAL.Target(addr))
	a.Nop()
}

func (a *Assembler) Jr(rs Reg) {
	a.insn(JR.Rs(rs))
	a.Nop()
}

// Jalr links to RA.
func (a *Assembler) Jalr(rs Reg) {
	a.insn(JALR.RdRs(RA, rs))
	a.Nop()
}

func (a *Assembler) Nop()              { a.insn(NOP) }
func (a *Assembler) Break(n uint32)    { a.insn(BREAK.Code(n)) }
func (a *Assembler) Label() code.Label { return a.Text.Label() }
