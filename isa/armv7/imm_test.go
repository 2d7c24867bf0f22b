// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package armv7

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testEncodedImms = []struct {
	value uint32
	field uint32
}{
	{0x00000000, 0x000},
	{0x000000ab, 0x0ab},
	{0x00ab00ab, 0x1ab},
	{0xab00ab00, 0x2ab},
	{0xabababab, 0x3ab},
	{0xffffffff, 0x3ff},
	{0x000003fc, 0xf7f},
	{0x00000100, 0xf80},
	{0x80000000, 0x400},
	{0xff000000, 0x47f},
	{0x0001fe00, 0xbff},
}

func TestEncodedImm(t *testing.T) {
	for _, x := range testEncodedImms {
		imm := MakeEncodedImm(x.value)
		require.True(t, imm.IsEncoded(), "%#x", x.value)
		require.Equal(t, x.field, imm.Field(), "%#x", x.value)
		require.Equal(t, x.value, imm.Decode(), "%#x", x.value)
		require.Equal(t, x.value, ExpandImm(x.field), "%#x", x.value)
	}
}

func TestEncodedImmInvalid(t *testing.T) {
	for _, value := range []uint32{0x101, 0x12345678, 0x00ab00ac, 0xab00ab01, 0xfffffffe, 0x80000001} {
		imm := MakeEncodedImm(value)
		require.False(t, imm.IsValid(), "%#x", value)
		require.False(t, imm.IsEncoded(), "%#x", value)
	}
}

func TestPlainImm(t *testing.T) {
	require.True(t, MakeUInt12(7).IsUInt3())
	require.False(t, MakeUInt12(8).IsUInt3())
	require.True(t, MakeUInt12(255).IsUInt8())
	require.True(t, MakeUInt12(4095).IsUInt12())
	require.False(t, MakeUInt12(4096).IsValid())
	require.True(t, MakeUInt16(0xffff).IsUInt16())
	require.False(t, MakeUInt16(0x10000).IsValid())

	// Encoded immediates are not plain even if they are small.
	require.False(t, MakeEncodedImm(3).IsUInt3())

	require.Equal(t, ImmUInt12, MakeUInt12OrEncodedImm(0xfff).Kind)
	require.Equal(t, ImmEncoded, MakeUInt12OrEncodedImm(0xff00).Kind)
	require.False(t, MakeUInt12OrEncodedImm(0x1001).IsValid())
}

func TestClassify(t *testing.T) {
	for value, shape := range map[uint32]Shape{
		0:          ShapeUInt3,
		7:          ShapeUInt3,
		8:          ShapeUInt8,
		255:        ShapeUInt8,
		0x3fc:      ShapeEncoded,
		0xff00:     ShapeEncoded,
		0x101:      ShapeUInt12,
		0xfff:      ShapeUInt12,
		0x1001:     ShapeSplit16,
		0x12345678: ShapeSplit16,
	} {
		require.Equal(t, shape, Classify(value), "%#x", value)
	}
}

func TestExpandImmEncodable(t *testing.T) {
	for field := uint32(0); field < 1<<12; field++ {
		value := ExpandImm(field)
		imm := MakeEncodedImm(value)
		require.True(t, imm.IsValid(), "field %#03x value %#x", field, value)
		require.Equal(t, value, imm.Decode())
	}
}

func FuzzEncodedImm(f *testing.F) {
	for _, x := range testEncodedImms {
		f.Add(x.value)
	}
	f.Add(uint32(0x101))

	f.Fuzz(func(t *testing.T, value uint32) {
		imm := MakeEncodedImm(value)
		if !imm.IsValid() {
			return
		}
		if imm.Field() >= 1<<12 {
			t.Fatalf("%#x: field %#x", value, imm.Field())
		}
		if x := ExpandImm(imm.Field()); x != value {
			t.Fatalf("%#x: decoded as %#x", value, x)
		}
	})
}
