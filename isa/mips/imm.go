// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mips

// Shape of a constant, from the narrowest.
type Shape uint8

const (
	ShapeZero   Shape = iota // $zero
	ShapeUInt16              // ori, andi
	ShapeInt16               // addiu
	ShapeSplit               // lui and ori
)

func (s Shape) String() string {
	switch s {
	case ShapeZero:
		return "zero"
	case ShapeUInt16:
		return "uint16"
	case ShapeInt16:
		return "int16"
	default:
		return "split"
	}
}

// Classify returns the narrowest shape which represents the value.
func Classify(value int32) Shape {
	switch {
	case value == 0:
		return ShapeZero
	case FitsUInt16(value):
		return ShapeUInt16
	case FitsInt16(value):
		return ShapeInt16
	default:
		return ShapeSplit
	}
}

func FitsInt16(value int32) bool  { return value == int32(int16(value)) }
func FitsUInt16(value int32) bool { return value == int32(uint16(value)) }

// Hi half of a value for lui.  It is combined with Lo using ori.
func Hi(value int32) uint16 { return uint16(uint32(value) >> 16) }

// Lo half of a value for ori.
func Lo(value int32) uint16 { return uint16(value) }
