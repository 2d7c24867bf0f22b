// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package code_test

import (
	"bytes"
	"testing"

	"gate.computer/masm/buffer"
	"gate.computer/masm/code"
	"github.com/stretchr/testify/require"
)

func TestLabelStabilityUnderGrowth(t *testing.T) {
	text := code.Buf{Buffer: buffer.NewDynamic()}

	type capture struct {
		label code.Label
		data  []byte
	}
	var captures []capture

	for i := 0; i < 5000; i++ {
		l := text.Label()
		text.PutUint16(uint16(i))
		text.PutByte(byte(i >> 3))
		text.PutUint32(uint32(i) * 7919)

		b := text.Bytes()
		captures = append(captures, capture{l, append([]byte(nil), b[l:]...)})
	}

	require.Equal(t, int32(5000*7), text.Size())

	b := text.Bytes()
	for _, c := range captures {
		if !bytes.Equal(b[c.label:int(c.label)+len(c.data)], c.data) {
			t.Fatalf("content at %s changed", c.label)
		}
	}
}

func TestLabelUnset(t *testing.T) {
	require.False(t, code.Unset.IsSet())
	require.True(t, code.Label(0).IsSet())
	require.Equal(t, "unset", code.Unset.String())
	require.Equal(t, "0x10", code.Label(16).String())
	require.Panics(t, func() { code.Unset.Offset() })
}
