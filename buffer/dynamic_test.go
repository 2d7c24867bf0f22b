// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDynamicZeroValue(t *testing.T) {
	var d Dynamic
	require.Equal(t, 0, d.Len())
	require.Equal(t, InlineSize, d.Cap())
	require.Nil(t, d.Bytes())

	d.PutByte(0x5a)
	require.Equal(t, 1, d.Len())
	require.Equal(t, []byte{0x5a}, d.Bytes())
	require.Equal(t, InlineSize, cap(d.Bytes()))
}

func TestDynamicGrowthFactor(t *testing.T) {
	d := NewDynamic()
	d.Extend(InlineSize)
	require.Equal(t, InlineSize, d.Cap())

	d.PutUint32(0xdeadbeef)
	require.Equal(t, InlineSize+InlineSize/2+4, d.Cap())
	require.Equal(t, InlineSize+4, d.Len())
}

func TestDynamicOffsetsSurviveGrowth(t *testing.T) {
	d := NewDynamic()

	type mark struct {
		offset int
		value  uint32
	}
	var marks []mark

	reallocs := 0
	base := &d.Extend(0)[:1][0]

	for i := uint32(0); i < 10000; i++ {
		marks = append(marks, mark{d.Len(), i * 2654435761})
		d.PutUint32(i * 2654435761)

		if b := d.Bytes(); &b[0] != base {
			base = &b[0]
			reallocs++
		}
	}

	require.Greater(t, reallocs, 1)

	b := d.Bytes()
	for _, m := range marks {
		require.Equal(t, m.value, binary.LittleEndian.Uint32(b[m.offset:]))
	}
}

func TestDynamicPutters(t *testing.T) {
	var d Dynamic
	d.PutByte(1)
	d.PutUint16(0x0302)
	d.PutUint32(0x07060504)
	d.PutBytes([]byte{8, 9})
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, d.Bytes())
}
