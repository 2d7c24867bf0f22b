// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"sort"

	"gate.computer/masm/buffer"
	"gate.computer/masm/code"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Linker is implemented by architecture packages.  Addresses passed to it are
// absolute: base address plus offset in linked text.
type Linker interface {
	// ReservedSize of a jump region at emission time.
	ReservedSize(JumpType) int32

	// LinkSize of an encoding.
	LinkSize(LinkType) int32

	// ComputeLinkType chooses the smallest encoding which reaches target
	// when placed at the start of the region.
	ComputeLinkType(r *Record, start, target uint32) LinkType

	// Link writes the encoding into region, which has the link type's size.
	// It panics if the target is out of reach.
	Link(region []byte, r *Record, start, target uint32)

	// Fill a region with no-op instructions.
	Fill(b []byte)

	// Granularity of the space removed in compact mode.  Linked text keeps
	// assembled offsets modulo it.
	Granularity() int32
}

// Mode of relaxation.
type Mode uint8

const (
	// Compact removes unused reserved space, moving subsequent code.  Space is
	// removed in multiples of the linker's granularity, and the rest is filled
	// with no-op instructions.
	Compact Mode = iota

	// InPlace keeps code in place and fills unused reserved space with no-op
	// instructions.
	InPlace
)

func (m Mode) String() string {
	switch m {
	case Compact:
		return "compact"
	case InPlace:
		return "in-place"
	default:
		return "invalid"
	}
}

type shift struct {
	offset int32 // Original offsets at or after this...
	delta  int32 // ...move back by this much.
}

// Layout maps assembled text offsets to linked text offsets.
type Layout struct {
	shifts []shift
	Size   int32
}

// Offset in linked text.  Labels inside a removed part of a jump region are
// not meaningful.
func (lo *Layout) Offset(l code.Label) int32 {
	off := l.Offset()
	i := sort.Search(len(lo.shifts), func(i int) bool {
		return lo.shifts[i].offset > off
	})
	if i == 0 {
		return off
	}
	return off - lo.shifts[i-1].delta
}

func (lo *Layout) addShift(offset, delta int32) {
	if n := len(lo.shifts); n > 0 && lo.shifts[n-1].offset == offset {
		lo.shifts[n-1].delta = delta
		return
	}
	lo.shifts = append(lo.shifts, shift{offset, delta})
}

// Relax resolves the encodings of all jumps in the ledger, copies text into
// out, and writes the encodings.  The linked text will be located at base.
//
// Forward targets are estimated pessimistically (as if no later jump
// shrinks), and backward targets are exact.  Encodings never grow, so
// estimates remain within reach after all jumps are placed.
func Relax(l Linker, text []byte, ledger *Ledger, out *buffer.Static, base uint32, mode Mode) *Layout {
	var (
		order    = ledger.sorted()
		granule  = l.Granularity()
		lo       = new(Layout)
		debug    = log.IsLevelEnabled(log.DebugLevel)
		readPtr  int32
		writePtr int32
	)

	if granule <= 0 {
		panic(xerrors.Errorf("link: invalid granularity %d", granule))
	}
	if out.Len() != 0 {
		panic(xerrors.New("link: output buffer is not empty"))
	}

	for _, r := range order {
		from := r.From.Offset()
		reserved := l.ReservedSize(r.Type)
		if from-reserved < readPtr || int(from) > len(text) {
			panic(xerrors.Errorf("link: %s jump region ending at %s overlaps with previous region", r.Type, r.From))
		}

		out.PutBytes(text[readPtr:from])
		writePtr += from - readPtr
		readPtr = from

		var (
			start  = writePtr - reserved
			to     = r.To.Offset()
			target int32
		)
		if to >= from {
			target = to - (readPtr - writePtr)
		} else {
			target = lo.Offset(r.To)
		}

		t := l.ComputeLinkType(r, base+uint32(start), base+uint32(target))
		r.SetLinkType(t)

		size := l.LinkSize(t)
		if size > reserved {
			panic(xerrors.Errorf("link: %s jump at %s: link type %d is larger than reserved space", r.Type, r.From, t))
		}

		if mode == Compact && r.Type.Compactable() && size < reserved {
			if removed := (reserved - size) / granule * granule; removed > 0 {
				writePtr -= removed
				out.Truncate(int(writePtr))
				lo.addShift(from, readPtr-writePtr)
			}
		}

		r.start = start
		r.final = writePtr

		if debug {
			log.WithFields(log.Fields{
				"from":     r.From,
				"to":       r.To,
				"type":     r.Type,
				"link":     t,
				"size":     size,
				"reserved": reserved,
			}).Debug("link: encoding chosen")
		}
	}

	out.PutBytes(text[readPtr:])
	writePtr += int32(len(text)) - readPtr
	lo.Size = writePtr

	b := out.Bytes()

	for _, r := range order {
		size := l.LinkSize(r.linkType)
		target := lo.Offset(r.To)
		l.Link(b[r.start:r.start+size], r, base+uint32(r.start), base+uint32(target))
		l.Fill(b[r.start+size : r.final])
		r.patched = true
	}

	if debug {
		log.WithFields(log.Fields{
			"jumps":    len(order),
			"original": len(text),
			"linked":   lo.Size,
			"mode":     mode,
		}).Debug("link: relaxation done")
	}

	return lo
}
