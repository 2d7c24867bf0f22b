// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (!mipsle && !masmmips) || masmarmv7

package native

import (
	"gate.computer/masm/code"
	"gate.computer/masm/isa/armv7"
)

const Arch = "armv7"

type MacroAssembler = armv7.MacroAssembler

// Target processor features.  Hardware division is detected when running on
// ARM.
func Target() armv7.Target {
	t := armv7.DefaultTarget()
	t.HasIDIV = haveIDIV()
	return t
}

func New(b code.Buffer) *MacroAssembler {
	return armv7.New(Target(), b)
}
