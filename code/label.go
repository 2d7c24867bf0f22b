// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package code contains the emission cursor and the position type shared by
// the instruction encoders and the linker.
package code

import (
	"fmt"
	"math"
)

// Label is a byte offset into the text of one assembler.  It stays valid when
// the buffer is reallocated.
type Label uint32

// Unset label doesn't refer to any position.
const Unset = Label(math.MaxUint32)

func (l Label) IsSet() bool { return l != Unset }

// Offset panics if the label is unset.
func (l Label) Offset() int32 {
	if l == Unset {
		panic("label is unset")
	}
	return int32(l)
}

func (l Label) String() string {
	if l == Unset {
		return "unset"
	}
	return fmt.Sprintf("0x%x", uint32(l))
}
