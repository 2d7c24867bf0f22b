// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mips

import (
	"encoding/binary"

	"gate.computer/masm/link"
	"golang.org/x/xerrors"
)

const (
	LinkBranch       link.LinkType = iota + 1 // b<cond>; nop
	LinkJump                                  // b<!cond> over; nop; j; nop
	LinkJumpRegister                          // b<!cond> over; nop; lui; ori; jr; nop
)

// jumpSize is reserved for every jump: b<cond>; nop; b +3; nop; nop; nop
const jumpSize = 6 * 4

var linkSizes = [...]int32{
	LinkBranch:       2 * 4,
	LinkJump:         4 * 4,
	LinkJumpRegister: 6 * 4,
}

// branchOffset in words, if the target is within reach of a branch at addr.
func branchOffset(addr, target uint32) (offset int32, ok bool) {
	rel := int64(target) - int64(addr+4)
	if rel&3 != 0 {
		return
	}
	rel >>= 2
	ok = rel == int64(int16(rel))
	offset = int32(rel)
	return
}

// inRegion reports whether a jump in the delay slot at addr can reach target.
func inRegion(slot, target uint32) bool {
	return slot>>28 == target>>28
}

// Linker resolves MIPS jumps.
type Linker struct{}

func (Linker) ReservedSize(link.JumpType) int32 {
	return jumpSize
}

func (Linker) LinkSize(t link.LinkType) int32 {
	if t == link.LinkInvalid || int(t) >= len(linkSizes) {
		panic(xerrors.Errorf("mips: invalid link type %d", t))
	}
	return linkSizes[t]
}

func (Linker) ComputeLinkType(r *link.Record, start, target uint32) link.LinkType {
	if !r.Type.Compactable() {
		return LinkJumpRegister
	}
	if _, ok := branchOffset(start, target); ok {
		return LinkBranch
	}
	if inRegion(start+3*4, target) {
		return LinkJump
	}
	return LinkJumpRegister
}

func (Linker) Link(region []byte, r *link.Record, start, target uint32) {
	branch := binary.LittleEndian.Uint32(region)
	if !isBranch(branch) {
		panic(xerrors.Errorf("mips: jump at %s: region doesn't start with a branch: %#08x", r.From, branch))
	}
	if target&3 != 0 {
		panic(xerrors.Errorf("mips: jump at %s: misaligned target %#x", r.From, target))
	}

	var (
		words []uint32
		ok    = true
	)

	switch r.LinkType() {
	case LinkBranch:
		var offset int32
		offset, ok = branchOffset(start, target)
		words = []uint32{branch&^immMask | uint32(uint16(offset)), NOP}

	case LinkJump:
		ok = inRegion(start+3*4, target)
		words = []uint32{invertBranch(branch, 3), NOP, J.Target(target), NOP}

	case LinkJumpRegister:
		words = append([]uint32{invertBranch(branch, 5), NOP}, jumpRegister(target)...)

	default:
		panic(xerrors.Errorf("mips: jump at %s: invalid link type %d", r.From, r.LinkType()))
	}

	if !ok {
		panic(xerrors.Errorf("mips: jump at %s can't reach %#x from %#x with link type %d", r.From, target, start, r.LinkType()))
	}
	if len(words)*4 != len(region) {
		panic(xerrors.Errorf("mips: jump at %s: region size %d mismatches link type %d", r.From, len(region), r.LinkType()))
	}

	for i, w := range words {
		binary.LittleEndian.PutUint32(region[i*4:], w)
	}
}

// Fill with NOP instructions.
func (Linker) Fill(b []byte) {
	if len(b)&3 != 0 {
		panic(xerrors.Errorf("mips: fill size %d is not a multiple of 4", len(b)))
	}
	for i := 0; i < len(b); i += 4 {
		binary.LittleEndian.PutUint32(b[i:], NOP)
	}
}

// Granularity keeps word alignment.
func (Linker) Granularity() int32 { return 4 }

func jumpRegister(target uint32) []uint32 {
	return []uint32{
		LUI.RtRsI16(RegJump, Zero, uint16(target>>16)),
		ORI.RtRsI16(RegJump, RegJump, uint16(target)),
		JR.Rs(RegJump),
		NOP,
	}
}
