// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package armv7

import (
	"encoding/binary"

	"gate.computer/masm/isa/armv7/in"
	"gate.computer/masm/link"
	"golang.org/x/xerrors"
)

const (
	LinkJumpT1 link.LinkType = iota + 1
	LinkJumpT2
	LinkJumpT3
	LinkJumpT4
	LinkConditionalJumpT4
	LinkBX
	LinkConditionalBX
)

const (
	jumpSize            = 10 // movw ip; movt ip; bx ip
	conditionalJumpSize = 12 // it; movw ip; movt ip; bx ip
)

var linkSizes = [...]int32{
	LinkJumpT1:            2,
	LinkJumpT2:            2,
	LinkJumpT3:            4,
	LinkJumpT4:            4,
	LinkConditionalJumpT4: 6,
	LinkBX:                jumpSize,
	LinkConditionalBX:     conditionalJumpSize,
}

func fitsSigned(x int64, bits uint) bool {
	return x == (x<<(64-bits))>>(64-bits)
}

func canBeJumpT1(end, target uint32) bool {
	return fitsSigned(int64(target)-int64(end)-2, 9)
}

func canBeJumpT2(end, target uint32) bool {
	return fitsSigned(int64(target)-int64(end)-2, 12)
}

func (t Target) canBeJumpT3(end, target uint32) bool {
	rel := int64(target) - int64(end)
	return fitsSigned(rel, 21) && !t.triggered(end, rel)
}

func (t Target) canBeJumpT4(end, target uint32) bool {
	rel := int64(target) - int64(end)
	return fitsSigned(rel, 25) && !t.triggered(end, rel)
}

// Linker resolves Thumb-2 jumps.
type Linker struct {
	Target Target
}

func (Linker) ReservedSize(t link.JumpType) int32 {
	if t.Conditional() {
		return conditionalJumpSize
	}
	return jumpSize
}

func (Linker) LinkSize(t link.LinkType) int32 {
	if t == link.LinkInvalid || int(t) >= len(linkSizes) {
		panic(xerrors.Errorf("armv7: invalid link type %d", t))
	}
	return linkSizes[t]
}

func (l Linker) ComputeLinkType(r *link.Record, start, target uint32) link.LinkType {
	switch r.Type {
	case link.JumpNoConditionFixedSize:
		return LinkBX

	case link.JumpConditionFixedSize:
		return LinkConditionalBX

	case link.JumpCondition:
		switch {
		case canBeJumpT1(start+2, target):
			return LinkJumpT1

		case l.Target.canBeJumpT3(start+4, target):
			return LinkJumpT3

		case l.Target.canBeJumpT4(start+6, target):
			return LinkConditionalJumpT4
		}
		return LinkConditionalBX

	default:
		switch {
		case canBeJumpT2(start+2, target):
			return LinkJumpT2

		case l.Target.canBeJumpT4(start+4, target):
			return LinkJumpT4
		}
		return LinkBX
	}
}

func (l Linker) Link(region []byte, r *link.Record, start, target uint32) {
	if target&1 != 0 {
		panic(xerrors.Errorf("armv7: jump at %s: misaligned target %#x", r.From, target))
	}

	var (
		cond = in.Cond(r.Cond)
		end  = start + uint32(len(region))
		o    output
		ok   bool
	)

	switch r.LinkType() {
	case LinkJumpT1:
		ok = canBeJumpT1(end, target)
		o.insn16(jumpT1(cond, end, target))

	case LinkJumpT2:
		ok = canBeJumpT2(end, target)
		o.insn16(jumpT2(end, target))

	case LinkJumpT3:
		ok = l.Target.canBeJumpT3(end, target)
		o.insn32(jumpT3(cond, end, target))

	case LinkJumpT4:
		ok = l.Target.canBeJumpT4(end, target)
		o.insn32(jumpT4(end, target))

	case LinkConditionalJumpT4:
		ok = l.Target.canBeJumpT4(end, target)
		o.insn16(in.IT(cond))
		o.insn32(jumpT4(end, target))

	case LinkBX:
		ok = true
		jumpBX(&o, target)

	case LinkConditionalBX:
		ok = true
		o.insn16(in.ITE(cond, true, true))
		jumpBX(&o, target)

	default:
		panic(xerrors.Errorf("armv7: jump at %s: invalid link type %d", r.From, r.LinkType()))
	}

	if !ok {
		panic(xerrors.Errorf("armv7: jump at %s can't reach %#x from %#x with link type %d", r.From, target, end, r.LinkType()))
	}
	if o.size() != len(region) {
		panic(xerrors.Errorf("armv7: jump at %s: region size %d mismatches link type %d", r.From, len(region), r.LinkType()))
	}

	o.copy(region)
}

// Fill with 16-bit NOP instructions.
func (Linker) Fill(b []byte) {
	if len(b)&1 != 0 {
		panic(xerrors.Errorf("armv7: odd fill size %d", len(b)))
	}
	for i := 0; i < len(b); i += 2 {
		binary.LittleEndian.PutUint16(b[i:], in.NOP)
	}
}

// Granularity keeps patchable instruction sequences word-aligned.
func (Linker) Granularity() int32 { return 4 }

func jumpT1(cond in.Cond, end, target uint32) uint16 {
	rel := target - end - 2
	return in.OpBT1 | uint16(cond&0xf)<<8 | uint16(rel&0x1fe)>>1
}

func jumpT2(end, target uint32) uint16 {
	rel := target - end - 2
	return in.OpBT2 | uint16(rel&0xffe)>>1
}

func jumpT3(cond in.Cond, end, target uint32) (uint16, uint16) {
	rel := target - end
	first := in.OpBT3a | uint16((rel&0x100000)>>10) | uint16(cond&0xf)<<6 | uint16((rel&0x3f000)>>12)
	second := in.OpBT3b | uint16((rel&0x80000)>>8) | uint16((rel&0x40000)>>5) | uint16((rel&0xffe)>>1)
	return first, second
}

func jumpT4(end, target uint32) (uint16, uint16) {
	rel := target - end
	if int32(rel) >= 0 {
		rel ^= 0xc00000 // J1 and J2 are inverted for positive displacements.
	}
	first := in.OpBT4a | uint16((rel&0x1000000)>>14) | uint16((rel&0x3ff000)>>12)
	second := in.OpBT4b | uint16((rel&0x800000)>>10) | uint16((rel&0x400000)>>11) | uint16((rel&0xffe)>>1)
	return first, second
}

// jumpBX loads a Thumb address into the scratch register and branches to it.
func jumpBX(o *output, target uint32) {
	o.insn32(in.MOVW.RdI16(RegData, (target+1)&0xffff))
	o.insn32(in.MOVT.RdI16(RegData, target>>16))
	o.insn16(in.BX.Rm(RegData))
}
