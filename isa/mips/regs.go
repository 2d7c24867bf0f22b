// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mips

type Reg uint8

const (
	Zero = Reg(0)
	AT   = Reg(1)
	V0   = Reg(2)
	V1   = Reg(3)
	A0   = Reg(4)
	A1   = Reg(5)
	A2   = Reg(6)
	A3   = Reg(7)
	T0   = Reg(8)
	T1   = Reg(9)
	T2   = Reg(10)
	T3   = Reg(11)
	T4   = Reg(12)
	T5   = Reg(13)
	T6   = Reg(14)
	T7   = Reg(15)
	S0   = Reg(16)
	S1   = Reg(17)
	S2   = Reg(18)
	S3   = Reg(19)
	S4   = Reg(20)
	S5   = Reg(21)
	S6   = Reg(22)
	S7   = Reg(23)
	T8   = Reg(24)
	T9   = Reg(25)
	K0   = Reg(26)
	K1   = Reg(27)
	GP   = Reg(28)
	SP   = Reg(29)
	FP   = Reg(30)
	RA   = Reg(31)

	RegImm  = AT // Immediates which don't fit in instructions.
	RegJump = T9 // Long jump and call targets.
)

var regNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

func (r Reg) String() string {
	return "$" + regNames[r&31]
}

// Cond of a compare-and-branch operation.
type Cond uint8

const (
	EQ  Cond = iota // equal
	NE              // not equal
	LT              // less than (signed)
	GE              // greater than or equal to (signed)
	GT              // greater than (signed)
	LE              // less than or equal to (signed)
	LTU             // less than (unsigned)
	GEU             // greater than or equal to (unsigned)
	GTU             // greater than (unsigned)
	LEU             // less than or equal to (unsigned)
)

func (c Cond) Invert() Cond {
	return c ^ 1
}
