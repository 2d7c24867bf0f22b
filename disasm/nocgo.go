// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !cgo

package disasm

import (
	"io"

	"golang.org/x/xerrors"
)

var ErrNoCgo = xerrors.New("disasm: cgo is required")

func Fprint(w io.Writer, arch Arch, text []byte, addr uint32, names map[uint32]string) error {
	return ErrNoCgo
}
