// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package armv7

import (
	"gate.computer/masm/isa/armv7/in"
)

type Reg = in.Reg
type Cond = in.Cond

const (
	R0  = Reg(0)
	R1  = Reg(1)
	R2  = Reg(2)
	R3  = Reg(3)
	R4  = Reg(4)
	R5  = Reg(5)
	R6  = Reg(6)
	R7  = Reg(7)
	R8  = Reg(8)
	R9  = Reg(9)
	R10 = Reg(10)
	R11 = Reg(11)
	IP  = Reg(12)
	SP  = Reg(13)
	LR  = Reg(14)
	PC  = Reg(15)

	// RegData holds immediates which don't fit in instructions, and jump
	// and call targets.
	RegData = IP
)

const (
	EQ = in.EQ
	NE = in.NE
	HS = in.HS
	LO = in.LO
	MI = in.MI
	PL = in.PL
	VS = in.VS
	VC = in.VC
	HI = in.HI
	LS = in.LS
	GE = in.GE
	LT = in.LT
	GT = in.GT
	LE = in.LE
)
