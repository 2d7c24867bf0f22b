// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

const (
	// Add/subtract (immediate)
	ADDi3 = Reg3Reg3Imm3(0x1c00) // T1
	SUBi3 = Reg3Reg3Imm3(0x1e00) // T1
	ADDi8 = Reg3Imm8(0x3000)     // T2
	SUBi8 = Reg3Imm8(0x3800)     // T2
	ADDiW = RegRegEncImm(0xf100_0000)
	SUBiW = RegRegEncImm(0xf1a0_0000)
	ADDWi = RegRegImm12(0xf200_0000) // T4, plain 12-bit
	SUBWi = RegRegImm12(0xf2a0_0000) // T4, plain 12-bit

	// Add/subtract (register)
	ADDr  = Reg3Reg3Reg3(0x1800)
	SUBr  = Reg3Reg3Reg3(0x1a00)
	ADDhr = Reg4Reg4(0x4400)
	ADDrW = RegRegReg(0xeb00_0000)
	SUBrW = RegRegReg(0xeba0_0000)

	// Move
	MOVi8  = Reg3Imm8(0x2000)
	MOViW  = RegRegEncImm(0xf04f_0000)
	MVNiW  = RegRegEncImm(0xf06f_0000)
	MOVW   = RegImm16(0xf240_0000)
	MOVT   = RegImm16(0xf2c0_0000)
	MOVhr  = Reg4Reg4(0x4600)
	OpMOVT = uint16(0xf2c0)
	OpMOVW = uint16(0xf240)

	// Compare and test
	CMPi8 = Reg3Imm8(0x2800)
	CMPiW = RegRegEncImm(0xf1b0_0f00)
	CMNiW = RegRegEncImm(0xf110_0f00)
	CMPr  = Reg3Reg3(0x4280)
	CMPhr = Reg4Reg4(0x4500)
	TSTiW = RegRegEncImm(0xf010_0f00)
	TSTr  = Reg3Reg3(0x4200)
	TSTrW = RegRegReg(0xea10_0f00)
	CMPrW = RegRegReg(0xebb0_0f00)

	// Logical
	ANDiW = RegRegEncImm(0xf000_0000)
	ORRiW = RegRegEncImm(0xf040_0000)
	EORiW = RegRegEncImm(0xf080_0000)
	ANDr  = Reg3Reg3(0x4000)
	ORRr  = Reg3Reg3(0x4300)
	EORr  = Reg3Reg3(0x4040)
	ANDrW = RegRegReg(0xea00_0000)
	ORRrW = RegRegReg(0xea40_0000)
	EORrW = RegRegReg(0xea80_0000)

	// Load/store (immediate)
	LDRi5  = Reg3Reg3Imm5(0x6800)
	STRi5  = Reg3Reg3Imm5(0x6000)
	LDRi12 = RegRegImm12(0xf8d0_0000)
	STRi12 = RegRegImm12(0xf8c0_0000)

	// Divide
	SDIV = RegRegReg(0xfb90_f0f0)
	UDIV = RegRegReg(0xfbb0_f0f0)

	// Branch and exchange
	BX  = Reg4(0x4700)
	BLX = Reg4(0x4780)

	// Miscellaneous
	BKPT  = Imm8(0xbe00)
	OpIT  = Imm8(0xbf00)
	NOP   = uint16(0xbf00)
	NOPWa = uint16(0xf3af)
	NOPWb = uint16(0x8000)

	// Branches
	OpBT1  = uint16(0xd000)
	OpBT2  = uint16(0xe000)
	OpBT3a = uint16(0xf000)
	OpBT3b = uint16(0x8000)
	OpBT4a = uint16(0xf000)
	OpBT4b = uint16(0x9000)
)
