// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package armv7

import (
	"encoding/binary"
)

// output stages halfwords of an instruction sequence.
type output struct {
	buf   [8]uint16
	index uint8
}

func (o *output) size() int {
	return int(o.index) * 2
}

func (o *output) copy(target []byte) {
	for i := uint8(0); i < o.index; i++ {
		binary.LittleEndian.PutUint16(target, o.buf[i])
		target = target[2:]
	}
}

func (o *output) insn16(i uint16) {
	o.buf[o.index] = i
	o.index++
}

func (o *output) insn32(first, second uint16) {
	o.buf[o.index] = first
	o.buf[o.index+1] = second
	o.index += 2
}
