// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build (mipsle || masmmips) && !masmarmv7

package native

import (
	"gate.computer/masm/code"
	"gate.computer/masm/isa/mips"
)

const Arch = "mips"

type MacroAssembler = mips.MacroAssembler

func Target() mips.Target {
	return mips.DefaultTarget()
}

func New(b code.Buffer) *MacroAssembler {
	return mips.New(Target(), b)
}
