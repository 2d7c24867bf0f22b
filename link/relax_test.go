// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"bytes"
	"encoding/binary"
	"testing"

	"gate.computer/masm/buffer"
	"gate.computer/masm/code"
	"github.com/stretchr/testify/require"
)

const (
	toyShort LinkType = iota + 1
	toyLong
)

// toyLinker has 2-byte short jumps with 8-bit displacement and 8-byte
// absolute long jumps.
type toyLinker struct {
	granule int32
}

func (toyLinker) ReservedSize(JumpType) int32 { return 8 }

func (toyLinker) LinkSize(t LinkType) int32 {
	switch t {
	case toyShort:
		return 2
	case toyLong:
		return 8
	}
	return 0
}

func (toyLinker) ComputeLinkType(r *Record, start, target uint32) LinkType {
	if r.Type.Compactable() {
		if rel := int64(target) - int64(start+2); rel >= -128 && rel < 128 {
			return toyShort
		}
	}
	return toyLong
}

func (toyLinker) Link(region []byte, r *Record, start, target uint32) {
	switch r.LinkType() {
	case toyShort:
		rel := int64(target) - int64(start+2)
		if rel < -128 || rel >= 128 {
			panic("out of range")
		}
		region[0] = 0xeb
		region[1] = byte(int8(rel))

	case toyLong:
		region[0] = 0xe9
		region[1] = 0
		region[2] = 0
		region[3] = 0
		binary.LittleEndian.PutUint32(region[4:], target)
	}
}

func (toyLinker) Fill(b []byte) {
	for i := range b {
		b[i] = 0x90
	}
}

func (l toyLinker) Granularity() int32 {
	if l.granule == 0 {
		return 1
	}
	return l.granule
}

type toyProgram struct {
	text   []byte
	ledger Ledger
	labels []code.Label
	jumps  []Jump
}

// emitToy emits n jumps separated by filler.  Every jump targets the label
// preceding the jump emitted target(i) steps away.
func emitToy(n, filler int, jumpType JumpType, target func(i int) int) *toyProgram {
	p := new(toyProgram)
	b := code.Buf{Buffer: buffer.NewDynamic()}

	for i := 0; i < n; i++ {
		p.labels = append(p.labels, b.Label())
		for j := 0; j < filler; j++ {
			b.PutByte(0x01)
		}
		b.Extend(8)
		p.jumps = append(p.jumps, p.ledger.Add(b.Label(), jumpType, 0))
	}
	p.labels = append(p.labels, b.Label())

	for i, j := range p.jumps {
		p.ledger.Bind(j, p.labels[target(i)])
	}

	p.text = b.Bytes()
	return p
}

func relaxToy(t *testing.T, p *toyProgram, base uint32, mode Mode) ([]byte, *Layout) {
	t.Helper()

	out := buffer.NewStatic(make([]byte, len(p.text)))
	lo := Relax(toyLinker{}, p.text, &p.ledger, out, base, mode)
	require.Equal(t, int(lo.Size), out.Len())
	return out.Bytes(), lo
}

func toyTarget(t *testing.T, b []byte, r *Record, base uint32, mode Mode) uint32 {
	t.Helper()

	start := r.FinalStart()
	if mode == InPlace || !r.Type.Compactable() {
		require.Equal(t, r.FinalFrom()-8, start)
	}

	switch r.LinkType() {
	case toyShort:
		require.Equal(t, byte(0xeb), b[start])
		return base + uint32(start+2) + uint32(int32(int8(b[start+1])))

	case toyLong:
		require.Equal(t, byte(0xe9), b[start])
		return binary.LittleEndian.Uint32(b[start+4:])
	}

	t.Fatal("link type not resolved")
	return 0
}

func TestRelaxCompact(t *testing.T) {
	const base = 0x10000

	p := emitToy(200, 3, JumpNoCondition, func(i int) int { return i + 1 })
	b, lo := relaxToy(t, p, base, Compact)

	require.Equal(t, int32(200*(3+2)), lo.Size)

	for i := range p.jumps {
		r := p.ledger.Record(p.jumps[i])
		require.Equal(t, toyShort, r.LinkType())
		require.Equal(t, Patched, r.State())
		require.Equal(t, base+uint32(lo.Offset(r.To)), toyTarget(t, b, r, base, Compact))
		require.Equal(t, lo.Offset(r.From), r.FinalFrom())
	}

	for _, l := range p.labels {
		off := lo.Offset(l)
		if off < lo.Size {
			require.Equal(t, byte(0x01), b[off], "label %s", l)
		}
	}
}

func TestRelaxGranularity(t *testing.T) {
	const base = 0x10000

	p := emitToy(200, 3, JumpNoCondition, func(i int) int { return i + 1 })
	out := buffer.NewStatic(make([]byte, len(p.text)))
	lo := Relax(toyLinker{granule: 4}, p.text, &p.ledger, out, base, Compact)
	b := out.Bytes()

	// Short jumps keep 2 of the 6 unused bytes.
	require.Equal(t, int32(200*(3+4)), lo.Size)

	for i := range p.jumps {
		r := p.ledger.Record(p.jumps[i])
		require.Equal(t, toyShort, r.LinkType())
		require.Equal(t, r.FinalFrom()-4, r.FinalStart())
		require.Equal(t, []byte{0x90, 0x90}, b[r.FinalStart()+2:r.FinalFrom()])
		require.Equal(t, base+uint32(lo.Offset(r.To)), toyTarget(t, b, r, base, Compact))
	}

	for _, l := range p.labels {
		require.Equal(t, l.Offset()&3, lo.Offset(l)&3, "label %s", l)
	}
}

func TestRelaxInPlace(t *testing.T) {
	const base = 0

	p := emitToy(50, 5, JumpCondition, func(i int) int { return 0 })
	b, lo := relaxToy(t, p, base, InPlace)

	require.Equal(t, int32(len(p.text)), lo.Size)

	for i := range p.jumps {
		r := p.ledger.Record(p.jumps[i])
		require.Equal(t, r.From.Offset(), r.FinalFrom())
		require.Equal(t, uint32(0), toyTarget(t, b, r, base, InPlace))

		if r.LinkType() == toyShort {
			end := r.FinalFrom()
			require.Equal(t, bytes.Repeat([]byte{0x90}, 6), b[end-6:end])
		}
	}

	// Far backward jumps can't use the short form.
	require.Equal(t, toyLong, p.ledger.Record(p.jumps[49]).LinkType())
	require.Equal(t, toyShort, p.ledger.Record(p.jumps[0]).LinkType())
}

func TestRelaxFixedSize(t *testing.T) {
	p := emitToy(10, 1, JumpConditionFixedSize, func(i int) int { return i })
	b, lo := relaxToy(t, p, 0x400000, Compact)

	require.Equal(t, int32(len(p.text)), lo.Size)

	for i := range p.jumps {
		r := p.ledger.Record(p.jumps[i])
		require.Equal(t, toyLong, r.LinkType())
		require.Equal(t, uint32(0x400000)+uint32(p.labels[i].Offset()), toyTarget(t, b, r, 0x400000, Compact))
	}
}

func TestRelaxMixed(t *testing.T) {
	// Forward jumps over most of the program need the long form, and the
	// rest shrink.
	p := emitToy(100, 2, JumpNoCondition, func(i int) int {
		if i%10 == 0 {
			return 100
		}
		return i / 2
	})
	b, lo := relaxToy(t, p, 0x1000, Compact)

	var long int
	for i := range p.jumps {
		r := p.ledger.Record(p.jumps[i])
		if r.LinkType() == toyLong {
			long++
		}
		require.Equal(t, 0x1000+uint32(lo.Offset(r.To)), toyTarget(t, b, r, 0x1000, Compact))
	}
	require.NotZero(t, long)
	require.Less(t, int(lo.Size), len(p.text))
}

func TestRelaxUnboundJump(t *testing.T) {
	var ledger Ledger
	ledger.Add(code.Label(8), JumpNoCondition, 0)

	require.Panics(t, func() {
		Relax(toyLinker{}, make([]byte, 8), &ledger, buffer.NewStatic(make([]byte, 8)), 0, Compact)
	})
}

func TestRecordState(t *testing.T) {
	var ledger Ledger
	j := ledger.Add(code.Label(8), JumpCondition, 3)
	require.True(t, j.IsSet())
	require.False(t, Jump{}.IsSet())

	r := ledger.Record(j)
	require.Equal(t, Unlinked, r.State())
	require.Equal(t, uint8(3), r.Cond)

	j.Link(&ledger, code.Label(0))
	require.Equal(t, TypeClassified, ledger.Record(j).State())
	require.Panics(t, func() { ledger.Bind(j, code.Label(4)) })

	r = ledger.Record(j)
	r.SetLinkType(toyShort)
	require.Equal(t, LinkTypeResolved, r.State())
	require.Panics(t, func() { r.SetLinkType(toyLong) })
	require.Equal(t, toyShort, r.LinkType())
}

func TestJumpList(t *testing.T) {
	var (
		ledger Ledger
		jl     JumpList
	)
	require.True(t, jl.Empty())

	for i := 1; i <= 3; i++ {
		jl.Append(ledger.Add(code.Label(i*8), JumpNoCondition, 0))
	}
	jl.Link(&ledger, code.Label(24))

	for _, r := range ledger.Records() {
		require.Equal(t, code.Label(24), r.To)
	}
}
