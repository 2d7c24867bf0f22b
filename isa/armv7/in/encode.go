// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package in contains Thumb-2 instruction encodings.
package in

type Reg uint8

func (r Reg) low() bool { return r < 8 }

// Low reports whether all registers are in r0-r7.
func Low(regs ...Reg) bool {
	for _, r := range regs {
		if !r.low() {
			return false
		}
	}
	return true
}

type Cond uint8

const (
	EQ = Cond(0x0) // equal to
	NE = Cond(0x1) // not equal to
	CS = Cond(0x2) // carry set
	CC = Cond(0x3) // carry clear
	MI = Cond(0x4) // minus, negative
	PL = Cond(0x5) // positive or zero
	VS = Cond(0x6) // signed overflow
	VC = Cond(0x7) // no signed overflow
	HI = Cond(0x8) // greater than (unsigned)
	LS = Cond(0x9) // less than or equal to (unsigned)
	GE = Cond(0xa) // greater than or equal to (signed)
	LT = Cond(0xb) // less than (signed)
	GT = Cond(0xc) // greater than (signed)
	LE = Cond(0xd) // less than or equal to (signed)
	AL = Cond(0xe) // always

	HS = CS // greater than or equal to (unsigned)
	LO = CC // less than (unsigned)
)

// Invert condition.  AL can't be inverted.
func (c Cond) Invert() Cond {
	return c ^ 1
}

// 16-bit encodings.
type Imm8 uint16
type Reg3Imm8 uint16
type Reg3Reg3 uint16
type Reg3Reg3Imm3 uint16
type Reg3Reg3Imm5 uint16
type Reg3Reg3Reg3 uint16
type Reg4Reg4 uint16
type Reg4 uint16

// 32-bit encodings: first halfword in the high bits, second halfword in the
// low bits.
type RegRegEncImm uint32
type RegImm16 uint32
type RegRegImm12 uint32
type RegRegReg uint32

func (op Imm8) I8(imm uint32) uint16 {
	return uint16(op) | uint16(imm&0xff)
}

func (op Reg3Imm8) RdI8(rd Reg, imm uint32) uint16 {
	return uint16(op) | uint16(rd&7)<<8 | uint16(imm&0xff)
}

func (op Reg3Reg3) RdRm(rd, rm Reg) uint16 {
	return uint16(op) | uint16(rm&7)<<3 | uint16(rd&7)
}

func (op Reg3Reg3Imm3) RdRnI3(rd, rn Reg, imm uint32) uint16 {
	return uint16(op) | uint16(imm&7)<<6 | uint16(rn&7)<<3 | uint16(rd&7)
}

// RtRnI5 takes a word offset.
func (op Reg3Reg3Imm5) RtRnI5(rt, rn Reg, offset uint32) uint16 {
	return uint16(op) | uint16((offset>>2)&0x1f)<<6 | uint16(rn&7)<<3 | uint16(rt&7)
}

func (op Reg3Reg3Reg3) RdRnRm(rd, rn, rm Reg) uint16 {
	return uint16(op) | uint16(rm&7)<<6 | uint16(rn&7)<<3 | uint16(rd&7)
}

// RdnRm encodes a high register operation where the first register is both
// source and destination.
func (op Reg4Reg4) RdnRm(rdn, rm Reg) uint16 {
	return uint16(op) | uint16(rdn&8)<<4 | uint16(rm&0xf)<<3 | uint16(rdn&7)
}

func (op Reg4) Rm(rm Reg) uint16 {
	return uint16(op) | uint16(rm&0xf)<<3
}

// RdRnI12 takes the 12-bit field of a modified immediate.
func (op RegRegEncImm) RdRnI12(rd, rn Reg, imm uint32) (uint16, uint16) {
	return split(uint32(op), rd, rn, imm)
}

func (op RegImm16) RdI16(rd Reg, imm uint32) (uint16, uint16) {
	first, second := split(uint32(op), rd, 0, imm&0xfff)
	return first | uint16(imm>>12)&0xf, second
}

func (op RegRegImm12) RdRnI12(rd, rn Reg, imm uint32) (uint16, uint16) {
	return split(uint32(op), rd, rn, imm)
}

// RtRnI12 encodes a load or store with unsigned 12-bit offset.
func (op RegRegImm12) RtRnI12(rt, rn Reg, offset uint32) (uint16, uint16) {
	return uint16(op>>16) | uint16(rn&0xf), uint16(op) | uint16(rt&0xf)<<12 | uint16(offset&0xfff)
}

func (op RegRegReg) RdRnRm(rd, rn, rm Reg) (uint16, uint16) {
	return uint16(op>>16) | uint16(rn&0xf), uint16(op) | uint16(rd&0xf)<<8 | uint16(rm&0xf)
}

// split encodes i:imm3:imm8 fields of a 12-bit immediate.
func split(op uint32, rd, rn Reg, imm uint32) (first, second uint16) {
	first = uint16(op>>16) | uint16(imm&0x800)>>1 | uint16(rn&0xf)
	second = uint16(op) | uint16(imm&0x700)<<4 | uint16(rd&0xf)<<8 | uint16(imm&0xff)
	return
}

// IT block covering one instruction.
func IT(cond Cond) uint16 {
	return uint16(OpIT) | uint16(cond)<<4 | 8
}

// ITE block covering three instructions.  Flags select between then and else
// for the second and third instruction.
func ITE(cond Cond, second, third bool) uint16 {
	return uint16(OpIT) | uint16(cond)<<4 | itBit(cond, second)<<3 | itBit(cond, third)<<2 | 2
}

func itBit(cond Cond, then bool) uint16 {
	bit := uint16(cond) & 1
	if !then {
		bit ^= 1
	}
	return bit
}
