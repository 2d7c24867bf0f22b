// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package masm

import (
	"gate.computer/masm/buffer"
	"gate.computer/masm/code"
	"gate.computer/masm/internal"
	"gate.computer/masm/internal/pan"
	"gate.computer/masm/link"
	"gate.computer/masm/patch"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Program is finalized code.
type Program struct {
	Text []byte // Located at Addr.
	Addr uint32

	layout  *link.Layout
	ledger  *link.Ledger
	patcher patch.Patcher
}

// Finalize allocates memory for the code emitted by asm, resolves jumps, and
// copies the code into the memory.  The assembler must not be used
// afterwards.
func Finalize(asm Assembler, alloc Allocator, mode link.Mode) (p *Program, err error) {
	if internal.DontPanic() {
		defer func() { err = pan.Error(recover()) }()
	}

	p = finalize(asm, alloc, mode)
	return
}

// Assemble calls emit, and returns the error if a size-limited buffer
// overflows during it.  Other panics pass through.
func Assemble(emit func()) (err error) {
	if internal.DontPanic() {
		defer func() { err = pan.Error(recover()) }()
	}

	emit()
	return
}

func finalize(asm Assembler, alloc Allocator, mode link.Mode) *Program {
	text := asm.Buf().Bytes()

	mem, addr, err := alloc.Allocate(len(text))
	if err != nil {
		pan.Panic(xerrors.Errorf("masm: %w", err))
	}
	if len(mem) < len(text) {
		pan.Panic(xerrors.Errorf("masm: allocator returned %d bytes instead of %d", len(mem), len(text)))
	}
	if addr&3 != 0 {
		pan.Panic(xerrors.Errorf("masm: allocated address %#x is misaligned", addr))
	}

	out := buffer.NewStatic(mem[:len(text)])
	layout := link.Relax(asm.Linker(), text, asm.Ledger(), out, addr, mode)

	if log.IsLevelEnabled(log.DebugLevel) {
		log.WithFields(log.Fields{
			"addr":  addr,
			"size":  layout.Size,
			"jumps": asm.Ledger().Len(),
		}).Debug("masm: program finalized")
	}

	return &Program{
		Text:    out.Bytes(),
		Addr:    addr,
		layout:  layout,
		ledger:  asm.Ledger(),
		patcher: asm.Patcher(),
	}
}

// Offset of a label in Text.
func (p *Program) Offset(l code.Label) int32 {
	return p.layout.Offset(l)
}

// Address of a label.
func (p *Program) Address(l code.Label) uint32 {
	return p.Addr + uint32(p.layout.Offset(l))
}

// Jump record after linking.
func (p *Program) Jump(j link.Jump) *link.Record {
	return p.ledger.Record(j)
}

// Code for patching.  Flusher may be nil.
func (p *Program) Code(flusher patch.Flusher) *patch.Code {
	return &patch.Code{
		Mem:     p.Text,
		Addr:    p.Addr,
		Patcher: p.patcher,
		Flusher: flusher,
	}
}

// Region of the instruction sequence which precedes a label.  The label is
// returned by MoveWithPatch or Call, or it is the From label of a fixed-size
// jump.
func (p *Program) Region(l code.Label, pattern patch.Pattern) patch.Region {
	return p.Code(nil).Region(p.Offset(l), pattern)
}
