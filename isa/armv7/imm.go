// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package armv7

import (
	"fmt"
	"math/bits"
)

type ImmKind uint8

const (
	ImmInvalid ImmKind = iota
	ImmEncoded         // Thumb modified immediate.
	ImmUInt12
	ImmUInt16
)

// Imm is an immediate operand in a form which some instruction accepts.
type Imm struct {
	Kind  ImmKind
	value uint32
	field uint16 // Modified immediate encoding.
}

// MakeEncodedImm returns an invalid immediate if the value can't be expressed
// as a modified immediate constant.
func MakeEncodedImm(value uint32) Imm {
	if value < 256 {
		return Imm{ImmEncoded, value, uint16(value)}
	}

	lz := bits.LeadingZeros32(value)
	if shift := 24 - lz; value == (value>>shift)<<shift {
		// Bit 7 is implied.
		field := uint16((value>>shift)&0x7f) | uint16(8+lz)<<7
		return Imm{ImmEncoded, value, field}
	}

	var (
		b0 = value & 0xff
		b1 = (value >> 8) & 0xff
		b2 = (value >> 16) & 0xff
		b3 = value >> 24
	)

	switch {
	case b0 == b1 && b0 == b2 && b0 == b3:
		return Imm{ImmEncoded, value, 3<<8 | uint16(b0)}

	case b0 == b2 && b1 == 0 && b3 == 0:
		return Imm{ImmEncoded, value, 1<<8 | uint16(b0)}

	case b1 == b3 && b0 == 0 && b2 == 0:
		return Imm{ImmEncoded, value, 2<<8 | uint16(b1)}
	}

	return Imm{}
}

func MakeUInt12(value uint32) Imm {
	if value > 0xfff {
		return Imm{}
	}
	return Imm{ImmUInt12, value, 0}
}

func MakeUInt16(value uint32) Imm {
	if value > 0xffff {
		return Imm{}
	}
	return Imm{ImmUInt16, value, 0}
}

// MakeUInt12OrEncodedImm prefers the plain form.
func MakeUInt12OrEncodedImm(value uint32) Imm {
	if value <= 0xfff {
		return MakeUInt12(value)
	}
	return MakeEncodedImm(value)
}

func (i Imm) IsValid() bool   { return i.Kind != ImmInvalid }
func (i Imm) IsEncoded() bool { return i.Kind == ImmEncoded }
func (i Imm) IsUInt3() bool   { return i.plain() && i.value < 1<<3 }
func (i Imm) IsUInt8() bool   { return i.plain() && i.value < 1<<8 }
func (i Imm) IsUInt12() bool  { return i.plain() && i.value < 1<<12 }
func (i Imm) IsUInt16() bool  { return i.plain() && i.value < 1<<16 }

func (i Imm) plain() bool {
	return i.Kind == ImmUInt12 || i.Kind == ImmUInt16
}

// Value represented by the immediate.
func (i Imm) Value() uint32 { return i.value }

// Field returns the 12-bit instruction field of an encoded or 12-bit
// immediate.
func (i Imm) Field() uint32 {
	if i.Kind == ImmEncoded {
		return uint32(i.field)
	}
	return i.value
}

// Decode the instruction field of an encoded immediate.
func (i Imm) Decode() uint32 {
	if i.Kind == ImmEncoded {
		return ExpandImm(uint32(i.field))
	}
	return i.value
}

func (i Imm) String() string {
	switch i.Kind {
	case ImmEncoded:
		return fmt.Sprintf("#%#x (encoded %#03x)", i.value, i.field)
	case ImmUInt12, ImmUInt16:
		return fmt.Sprintf("#%#x", i.value)
	default:
		return "invalid"
	}
}

// ExpandImm decodes a 12-bit modified immediate field.
func ExpandImm(field uint32) uint32 {
	imm8 := field & 0xff

	if field&0xc00 == 0 {
		switch (field >> 8) & 3 {
		case 0:
			return imm8
		case 1:
			return imm8<<16 | imm8
		case 2:
			return imm8<<24 | imm8<<8
		default:
			return imm8 * 0x01010101
		}
	}

	return bits.RotateLeft32(0x80|field&0x7f, -int((field>>7)&0x1f))
}

// Shape of a value, from the narrowest.
type Shape uint8

const (
	ShapeUInt3 Shape = iota
	ShapeUInt8
	ShapeEncoded
	ShapeUInt12
	ShapeSplit16 // MOVW and MOVT.
)

func (s Shape) String() string {
	switch s {
	case ShapeUInt3:
		return "uint3"
	case ShapeUInt8:
		return "uint8"
	case ShapeEncoded:
		return "encoded"
	case ShapeUInt12:
		return "uint12"
	default:
		return "split16"
	}
}

// Classify returns the narrowest shape which represents the value.
func Classify(value uint32) Shape {
	switch {
	case value < 1<<3:
		return ShapeUInt3
	case value < 1<<8:
		return ShapeUInt8
	case MakeEncodedImm(value).IsValid():
		return ShapeEncoded
	case value < 1<<12:
		return ShapeUInt12
	default:
		return ShapeSplit16
	}
}
