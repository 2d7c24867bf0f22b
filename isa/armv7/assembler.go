// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package armv7

import (
	"gate.computer/masm/code"
	"gate.computer/masm/isa/armv7/in"
	"golang.org/x/xerrors"
)

// Assembler encodes individual Thumb-2 instructions.  Instruction forms are
// chosen by operand ranges; operands which no form accepts cause a panic.
type Assembler struct {
	Text code.Buf
}

func (a *Assembler) emit(o *output) {
	o.copy(a.Text.Extend(o.size()))
}

func (a *Assembler) insn16(i uint16) {
	a.Text.PutUint16(i)
}

func (a *Assembler) insn32(first, second uint16) {
	a.Text.PutUint16(first)
	a.Text.PutUint16(second)
}

func badOperand(insn string, args ...interface{}) {
	panic(xerrors.Errorf("armv7: unsupported %s operands: %v", insn, args))
}

// AddImm: rd = rn + imm.
func (a *Assembler) AddImm(rd, rn Reg, imm Imm) {
	a.addSubImm(rd, rn, imm, in.ADDi3, in.ADDi8, in.ADDiW, in.ADDWi)
}

// SubImm: rd = rn - imm.
func (a *Assembler) SubImm(rd, rn Reg, imm Imm) {
	a.addSubImm(rd, rn, imm, in.SUBi3, in.SUBi8, in.SUBiW, in.SUBWi)
}

func (a *Assembler) addSubImm(rd, rn Reg, imm Imm, t1 in.Reg3Reg3Imm3, t2 in.Reg3Imm8, t3 in.RegRegEncImm, t4 in.RegRegImm12) {
	if in.Low(rd, rn) {
		switch {
		case imm.IsUInt3():
			a.insn16(t1.RdRnI3(rd, rn, imm.Value()))
			return

		case rd == rn && imm.IsUInt8():
			a.insn16(t2.RdI8(rd, imm.Value()))
			return
		}
	}

	switch {
	case imm.IsEncoded():
		a.insn32(t3.RdRnI12(rd, rn, imm.Field()))

	case imm.IsUInt12():
		a.insn32(t4.RdRnI12(rd, rn, imm.Field()))

	default:
		badOperand("add/sub", rd, rn, imm)
	}
}

// AddReg: rd = rn + rm.
func (a *Assembler) AddReg(rd, rn, rm Reg) {
	switch {
	case in.Low(rd, rn, rm):
		a.insn16(in.ADDr.RdRnRm(rd, rn, rm))

	case rd == rn:
		a.insn16(in.ADDhr.RdnRm(rd, rm))

	case rd == rm:
		a.insn16(in.ADDhr.RdnRm(rd, rn))

	default:
		a.insn32(in.ADDrW.RdRnRm(rd, rn, rm))
	}
}

// SubReg: rd = rn - rm.
func (a *Assembler) SubReg(rd, rn, rm Reg) {
	if in.Low(rd, rn, rm) {
		a.insn16(in.SUBr.RdRnRm(rd, rn, rm))
	} else {
		a.insn32(in.SUBrW.RdRnRm(rd, rn, rm))
	}
}

func (a *Assembler) CmpImm(rn Reg, imm Imm) {
	switch {
	case in.Low(rn) && imm.IsUInt8():
		a.insn16(in.CMPi8.RdI8(rn, imm.Value()))

	case imm.IsEncoded():
		a.insn32(in.CMPiW.RdRnI12(0, rn, imm.Field()))

	default:
		badOperand("cmp", rn, imm)
	}
}

// CmnImm compares with the negated immediate.
func (a *Assembler) CmnImm(rn Reg, imm Imm) {
	if !imm.IsEncoded() {
		badOperand("cmn", rn, imm)
	}
	a.insn32(in.CMNiW.RdRnI12(0, rn, imm.Field()))
}

func (a *Assembler) CmpReg(rn, rm Reg) {
	if in.Low(rn, rm) {
		a.insn16(in.CMPr.RdRm(rn, rm))
	} else {
		a.insn16(in.CMPhr.RdnRm(rn, rm))
	}
}

func (a *Assembler) TstImm(rn Reg, imm Imm) {
	if !imm.IsEncoded() {
		badOperand("tst", rn, imm)
	}
	a.insn32(in.TSTiW.RdRnI12(0, rn, imm.Field()))
}

func (a *Assembler) TstReg(rn, rm Reg) {
	if in.Low(rn, rm) {
		a.insn16(in.TSTr.RdRm(rn, rm))
	} else {
		a.insn32(in.TSTrW.RdRnRm(0, rn, rm))
	}
}

func (a *Assembler) MovReg(rd, rm Reg) {
	a.insn16(in.MOVhr.RdnRm(rd, rm))
}

// MovImm uses the shortest form accepted by the immediate.
func (a *Assembler) MovImm(rd Reg, imm Imm) {
	switch {
	case in.Low(rd) && imm.IsUInt8():
		a.insn16(in.MOVi8.RdI8(rd, imm.Value()))

	case imm.IsEncoded():
		a.insn32(in.MOViW.RdRnI12(rd, 0, imm.Field()))

	case imm.IsUInt16():
		a.Movw(rd, uint16(imm.Value()))

	default:
		badOperand("mov", rd, imm)
	}
}

// MvnImm: rd = ^imm.
func (a *Assembler) MvnImm(rd Reg, imm Imm) {
	if !imm.IsEncoded() {
		badOperand("mvn", rd, imm)
	}
	a.insn32(in.MVNiW.RdRnI12(rd, 0, imm.Field()))
}

// Movw sets the low halfword and clears the high halfword.
func (a *Assembler) Movw(rd Reg, value uint16) {
	a.insn32(in.MOVW.RdI16(rd, uint32(value)))
}

// Movt sets the high halfword.
func (a *Assembler) Movt(rd Reg, value uint16) {
	a.insn32(in.MOVT.RdI16(rd, uint32(value)))
}

func (a *Assembler) AndImm(rd, rn Reg, imm Imm) { a.logicalImm("and", in.ANDiW, rd, rn, imm) }
func (a *Assembler) OrrImm(rd, rn Reg, imm Imm) { a.logicalImm("orr", in.ORRiW, rd, rn, imm) }
func (a *Assembler) EorImm(rd, rn Reg, imm Imm) { a.logicalImm("eor", in.EORiW, rd, rn, imm) }

func (a *Assembler) logicalImm(name string, op in.RegRegEncImm, rd, rn Reg, imm Imm) {
	if !imm.IsEncoded() {
		badOperand(name, rd, rn, imm)
	}
	a.insn32(op.RdRnI12(rd, rn, imm.Field()))
}

func (a *Assembler) AndReg(rd, rn, rm Reg) { a.logicalReg(in.ANDr, in.ANDrW, rd, rn, rm) }
func (a *Assembler) OrrReg(rd, rn, rm Reg) { a.logicalReg(in.ORRr, in.ORRrW, rd, rn, rm) }
func (a *Assembler) EorReg(rd, rn, rm Reg) { a.logicalReg(in.EORr, in.EORrW, rd, rn, rm) }

func (a *Assembler) logicalReg(narrow in.Reg3Reg3, wide in.RegRegReg, rd, rn, rm Reg) {
	switch {
	case rd == rn && in.Low(rd, rm):
		a.insn16(narrow.RdRm(rd, rm))

	case rd == rm && in.Low(rd, rn):
		a.insn16(narrow.RdRm(rd, rn))

	default:
		a.insn32(wide.RdRnRm(rd, rn, rm))
	}
}

// Ldr loads a word from rn + offset.
func (a *Assembler) Ldr(rt, rn Reg, offset uint32) {
	a.loadStore(in.LDRi5, in.LDRi12, rt, rn, offset)
}

// Str stores a word at rn + offset.
func (a *Assembler) Str(rt, rn Reg, offset uint32) {
	a.loadStore(in.STRi5, in.STRi12, rt, rn, offset)
}

func (a *Assembler) loadStore(t1 in.Reg3Reg3Imm5, t3 in.RegRegImm12, rt, rn Reg, offset uint32) {
	switch {
	case in.Low(rt, rn) && offset&3 == 0 && offset < 128:
		a.insn16(t1.RtRnI5(rt, rn, offset))

	case offset < 4096:
		a.insn32(t3.RtRnI12(rt, rn, offset))

	default:
		badOperand("ldr/str", rt, rn, offset)
	}
}

func (a *Assembler) Sdiv(rd, rn, rm Reg) { a.insn32(in.SDIV.RdRnRm(rd, rn, rm)) }
func (a *Assembler) Udiv(rd, rn, rm Reg) { a.insn32(in.UDIV.RdRnRm(rd, rn, rm)) }

func (a *Assembler) Bx(rm Reg)  { a.insn16(in.BX.Rm(rm)) }
func (a *Assembler) Blx(rm Reg) { a.insn16(in.BLX.Rm(rm)) }

// It makes the next instruction conditional.
func (a *Assembler) It(cond Cond) { a.insn16(in.IT(cond)) }

func (a *Assembler) Nop()              { a.insn16(in.NOP) }
func (a *Assembler) NopW()             { a.insn32(in.NOPWa, in.NOPWb) }
func (a *Assembler) Bkpt(imm uint8)    { a.insn16(in.BKPT.I8(uint32(imm))) }
func (a *Assembler) Label() code.Label { return a.Text.Label() }
