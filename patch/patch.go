// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package patch rewrites instruction sequences of finalized code.
package patch

import (
	"fmt"

	"gate.computer/masm/internal/atomic"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Pattern of an instruction sequence which may be rewritten.
type Pattern uint8

const (
	PatternInt32 Pattern = iota + 1 // Constant load.
	PatternCall                     // Call through a constant load.
	PatternJump                     // Fixed-size jump.
)

func (p Pattern) String() string {
	switch p {
	case PatternInt32:
		return "int32"
	case PatternCall:
		return "call"
	case PatternJump:
		return "jump"
	default:
		return fmt.Sprintf("Pattern(%d)", uint8(p))
	}
}

// Region of finalized code holding an instruction sequence.
type Region struct {
	Offset  int32 // Start of the sequence in text.
	Size    int32
	Addr    uint32 // Address of the start.
	Pattern Pattern
}

func (r Region) End() int32 { return r.Offset + r.Size }

func (r Region) String() string {
	return fmt.Sprintf("%s at %#x", r.Pattern, r.Addr)
}

// Patcher is implemented by architecture packages.  The methods panic if the
// window doesn't contain the expected instruction pattern.
type Patcher interface {
	// Size of the instruction sequence which precedes a label.
	Size(Pattern) int32

	RepatchInt32(w *Window, value int32)
	ReadInt32(w *Window) int32
	RelinkCall(w *Window, target uint32)
	ReadCallTarget(w *Window) uint32
	RelinkJump(w *Window, target uint32)
}

// Window provides access to the memory of a word-aligned region.  Stores are
// atomic per halfword or word.
type Window struct {
	Region
	b []byte
}

func (w *Window) Uint16(offset int32) uint16 {
	return atomic.Uint16(w.b[offset : offset+2])
}

func (w *Window) Uint32(offset int32) uint32 {
	return atomic.Uint32(w.b[offset : offset+4])
}

func (w *Window) PutUint16(offset int32, value uint16) {
	atomic.PutUint16(w.b[offset:offset+2], value)
}

func (w *Window) PutUint32(offset int32, value uint32) {
	atomic.PutUint32(w.b[offset:offset+4], value)
}

// Mismatch panics.
func (w *Window) Mismatch(expected string) {
	panic(xerrors.Errorf("patch: %s pattern mismatch at %#x: expected %s", w.Pattern, w.Addr, expected))
}

// Flusher makes instruction fetch observe rewritten memory.
type Flusher interface {
	Flush(b []byte, addr uint32)
}

// FlusherFunc is an adapter.
type FlusherFunc func(b []byte, addr uint32)

func (f FlusherFunc) Flush(b []byte, addr uint32) { f(b, addr) }

// Code is executable memory.  Mem must be 4-byte aligned.
type Code struct {
	Mem     []byte
	Addr    uint32
	Patcher Patcher
	Flusher Flusher // Optional.
}

// Region for an instruction sequence of a pattern ending at offset.
func (c *Code) Region(end int32, p Pattern) Region {
	size := c.Patcher.Size(p)
	start := end - size
	if start < 0 || int(end) > len(c.Mem) {
		panic(xerrors.Errorf("patch: %s region ending at offset %#x is out of bounds", p, end))
	}
	return Region{start, size, c.Addr + uint32(start), p}
}

func (c *Code) window(r Region, p Pattern) *Window {
	if r.Pattern != p {
		panic(xerrors.Errorf("patch: %s region used as %s", r.Pattern, p))
	}
	if r.Offset < 0 || int(r.End()) > len(c.Mem) || r.Size != c.Patcher.Size(p) || r.Addr != c.Addr+uint32(r.Offset) {
		panic(xerrors.Errorf("patch: %s doesn't belong to code at %#x", r, c.Addr))
	}
	if r.Offset&3 != 0 {
		panic(xerrors.Errorf("patch: %s is not word-aligned", r))
	}
	return &Window{r, c.Mem[r.Offset:r.End()]}
}

func (c *Code) flush(w *Window, op string, value uint32) {
	if c.Flusher != nil {
		c.Flusher.Flush(w.b, w.Addr)
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		log.WithFields(log.Fields{
			"region": w.Region.String(),
			"value":  fmt.Sprintf("%#x", value),
		}).Debug("patch: " + op)
	}
}

func (c *Code) RepatchInt32(r Region, value int32) {
	w := c.window(r, PatternInt32)
	c.Patcher.RepatchInt32(w, value)
	c.flush(w, "constant rewritten", uint32(value))
}

func (c *Code) ReadInt32(r Region) int32 {
	return c.Patcher.ReadInt32(c.window(r, PatternInt32))
}

// RelinkCall to an absolute address.
func (c *Code) RelinkCall(r Region, target uint32) {
	w := c.window(r, PatternCall)
	c.Patcher.RelinkCall(w, target)
	c.flush(w, "call relinked", target)
}

func (c *Code) ReadCallTarget(r Region) uint32 {
	return c.Patcher.ReadCallTarget(c.window(r, PatternCall))
}

// RelinkJump to an absolute address.  The jump must have been emitted with a
// fixed-size jump type.
func (c *Code) RelinkJump(r Region, target uint32) {
	w := c.window(r, PatternJump)
	c.Patcher.RelinkJump(w, target)
	c.flush(w, "jump relinked", target)
}
