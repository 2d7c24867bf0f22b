// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

package disasm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bnagy/gapstone"
	"golang.org/x/xerrors"
)

func newEngine(arch Arch) (gapstone.Engine, error) {
	switch arch {
	case ARMv7:
		return gapstone.New(gapstone.CS_ARCH_ARM, gapstone.CS_MODE_THUMB)

	case MIPS:
		return gapstone.New(gapstone.CS_ARCH_MIPS, gapstone.CS_MODE_32|gapstone.CS_MODE_LITTLE_ENDIAN)

	default:
		return gapstone.Engine{}, xerrors.Errorf("disasm: unsupported architecture: %v", arch)
	}
}

var armConds = map[string]bool{
	"eq": true, "ne": true, "hs": true, "lo": true, "mi": true, "pl": true, "vs": true,
	"vc": true, "hi": true, "ls": true, "ge": true, "lt": true, "gt": true, "le": true,
}

// isJump reports whether the last operand of the instruction is a code
// address.
func isJump(arch Arch, mnemonic string) bool {
	switch arch {
	case ARMv7:
		m := strings.TrimSuffix(strings.TrimSuffix(mnemonic, ".w"), ".n")
		return m == "b" || m == "bl" || (len(m) == 3 && m[0] == 'b' && armConds[m[1:]])

	case MIPS:
		return mnemonic == "j" || mnemonic == "jal" || (strings.HasPrefix(mnemonic, "b") && mnemonic != "break")
	}
	return false
}

func jumpTarget(opStr string) (addr uint64, prefix string, ok bool) {
	i := strings.LastIndex(opStr, " ") + 1
	prefix = opStr[:i]
	s := strings.TrimPrefix(opStr[i:], "#")

	addr, err := strconv.ParseUint(s, 0, 32)
	ok = err == nil
	return
}

// Fprint writes the instructions of code located at addr.  Names of known
// addresses are printed as labels; other jump targets get generated names.
func Fprint(w io.Writer, arch Arch, text []byte, addr uint32, names map[uint32]string) error {
	engine, err := newEngine(arch)
	if err != nil {
		return err
	}
	defer engine.Close()

	insns, err := engine.Disasm(text, uint64(addr), 0)
	if err != nil {
		return err
	}

	targets := make(map[uint32]string, len(names))
	for a, name := range names {
		targets[a] = name
	}

	sequence := 0

	for i := range insns {
		insn := &insns[i]
		if !isJump(arch, insn.Mnemonic) {
			continue
		}

		target, prefix, ok := jumpTarget(insn.OpStr)
		if !ok {
			continue
		}

		name, found := targets[uint32(target)]
		if !found {
			name = fmt.Sprintf(".L%d", sequence)
			sequence++

			targets[uint32(target)] = name
		}

		insn.OpStr = prefix + name
	}

	for _, insn := range insns {
		if name, found := targets[uint32(insn.Address)]; found {
			if !strings.HasPrefix(name, ".") {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s:\n", name)
		}

		fmt.Fprintf(w, "\t%s\t%s\n", insn.Mnemonic, insn.OpStr)
	}

	fmt.Fprintln(w)
	return nil
}
