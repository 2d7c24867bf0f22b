// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm prints finalized code in assembly language.  It uses the
// Capstone library, so it requires cgo.
package disasm

import (
	"fmt"
)

type Arch uint8

const (
	ARMv7 Arch = iota // Thumb-2.
	MIPS              // Little-endian MIPS32.
)

func (a Arch) String() string {
	switch a {
	case ARMv7:
		return "armv7"
	case MIPS:
		return "mips"
	default:
		return fmt.Sprintf("Arch(%d)", uint8(a))
	}
}
