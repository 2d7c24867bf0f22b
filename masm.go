// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package masm

import (
	"unsafe"

	"gate.computer/masm/code"
	"gate.computer/masm/link"
	"gate.computer/masm/patch"
	"golang.org/x/xerrors"
)

// Assembler is implemented by the macro assemblers.
type Assembler interface {
	Buf() *code.Buf
	Ledger() *link.Ledger
	Linker() link.Linker
	Patcher() patch.Patcher
}

// Allocator provides memory for finalized code.  The memory must be 4-byte
// aligned, and addr must be the address at which the code will be executed.
type Allocator interface {
	Allocate(size int) (mem []byte, addr uint32, err error)
}

// MemoryAllocator allocates ordinary memory.  The code is linked as if it was
// located at Addr, which is useful for cross-assembly and testing.
type MemoryAllocator struct {
	Addr    uint32
	MaxSize int // Zero means no limit.
}

var ErrAllocation = xerrors.New("code allocation failed")

func (a *MemoryAllocator) Allocate(size int) (mem []byte, addr uint32, err error) {
	if size < 0 || (a.MaxSize > 0 && size > a.MaxSize) || uint64(a.Addr)+uint64(size) > 1<<32 {
		err = xerrors.Errorf("%d bytes at %#x: %w", size, a.Addr, ErrAllocation)
		return
	}

	words := make([]uint32, (size+3)/4+1)
	mem = unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)[:size]
	addr = a.Addr
	return
}
