// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mips

// Special (R-type) instructions.
type Special uint32

// Immediate (I-type) instructions.
type Immediate uint32

// Jump (J-type) instructions.
type JumpOp uint32

const (
	SLL   = Special(0x00)
	SRL   = Special(0x02)
	SRA   = Special(0x03)
	JR    = Special(0x08)
	JALR  = Special(0x09)
	BREAK = Special(0x0d)
	MFLO  = Special(0x12)
	DIV   = Special(0x1a)
	DIVU  = Special(0x1b)
	ADDU  = Special(0x21)
	SUBU  = Special(0x23)
	AND   = Special(0x24)
	OR    = Special(0x25)
	XOR   = Special(0x26)
	NOR   = Special(0x27)
	SLT   = Special(0x2a)
	SLTU  = Special(0x2b)

	BEQ   = Immediate(0x04 << 26)
	BNE   = Immediate(0x05 << 26)
	ADDIU = Immediate(0x09 << 26)
	SLTI  = Immediate(0x0a << 26)
	SLTIU = Immediate(0x0b << 26)
	ANDI  = Immediate(0x0c << 26)
	ORI   = Immediate(0x0d << 26)
	XORI  = Immediate(0x0e << 26)
	LUI   = Immediate(0x0f << 26)
	LB    = Immediate(0x20 << 26)
	LW    = Immediate(0x23 << 26)
	LBU   = Immediate(0x24 << 26)
	SW    = Immediate(0x2b << 26)

	J   = JumpOp(0x02 << 26)
	JAL = JumpOp(0x03 << 26)

	NOP = uint32(0)

	opMask  = 0xfc000000
	immMask = 0x0000ffff
)

func (op Special) RdRsRt(rd, rs, rt Reg) uint32 {
	return uint32(rs&31)<<21 | uint32(rt&31)<<16 | uint32(rd&31)<<11 | uint32(op)
}

func (op Special) RdRtSa(rd, rt Reg, sa uint32) uint32 {
	return uint32(rt&31)<<16 | uint32(rd&31)<<11 | (sa&31)<<6 | uint32(op)
}

func (op Special) Rs(rs Reg) uint32 {
	return uint32(rs&31)<<21 | uint32(op)
}

// RdRs is for JALR.
func (op Special) RdRs(rd, rs Reg) uint32 {
	return uint32(rs&31)<<21 | uint32(rd&31)<<11 | uint32(op)
}

// RsRt is for DIV and DIVU.
func (op Special) RsRt(rs, rt Reg) uint32 {
	return uint32(rs&31)<<21 | uint32(rt&31)<<16 | uint32(op)
}

func (op Special) Rd(rd Reg) uint32 {
	return uint32(rd&31)<<11 | uint32(op)
}

func (op Special) Code(code uint32) uint32 {
	return (code&0xfffff)<<6 | uint32(op)
}

func (op Immediate) RtRsI16(rt, rs Reg, imm uint16) uint32 {
	return uint32(op) | uint32(rs&31)<<21 | uint32(rt&31)<<16 | uint32(imm)
}

// RsRtOff is for branches; the offset is in words.
func (op Immediate) RsRtOff(rs, rt Reg, offset int32) uint32 {
	return uint32(op) | uint32(rs&31)<<21 | uint32(rt&31)<<16 | uint32(uint16(offset))
}

// Target of a jump within the current 256 MB region.
func (op JumpOp) Target(addr uint32) uint32 {
	return uint32(op) | (addr>>2)&0x3ffffff
}

func isBranch(insn uint32) bool {
	op := Immediate(insn & opMask)
	return op == BEQ || op == BNE
}

// invertBranch swaps BEQ and BNE, and sets the offset.
func invertBranch(insn uint32, offset int32) uint32 {
	op := BNE
	if Immediate(insn&opMask) == BNE {
		op = BEQ
	}
	return uint32(op) | insn&0x03ff0000 | uint32(uint16(offset))
}

func regRs(insn uint32) Reg { return Reg((insn >> 21) & 31) }
func regRt(insn uint32) Reg { return Reg((insn >> 16) & 31) }
