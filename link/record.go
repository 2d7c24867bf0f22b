// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"fmt"

	"gate.computer/masm/code"
	"golang.org/x/xerrors"
)

// JumpType is chosen when a jump is emitted.  It determines how much space is
// reserved for the jump and whether the space may shrink during relaxation.
type JumpType uint8

const (
	JumpNoCondition JumpType = iota + 1
	JumpCondition
	JumpNoConditionFixedSize
	JumpConditionFixedSize
)

func (t JumpType) Conditional() bool {
	return t == JumpCondition || t == JumpConditionFixedSize
}

// Compactable jumps may be encoded with less space than was reserved for them.
// Fixed-size jumps keep their maximal encoding so that they can be relinked
// later without moving surrounding code.
func (t JumpType) Compactable() bool {
	return t == JumpNoCondition || t == JumpCondition
}

func (t JumpType) String() string {
	switch t {
	case JumpNoCondition:
		return "unconditional"
	case JumpCondition:
		return "conditional"
	case JumpNoConditionFixedSize:
		return "unconditional fixed-size"
	case JumpConditionFixedSize:
		return "conditional fixed-size"
	default:
		return fmt.Sprintf("JumpType(%d)", uint8(t))
	}
}

// LinkType names a concrete machine encoding.  The values are defined by the
// architecture packages.
type LinkType uint8

// LinkInvalid means that the link type hasn't been resolved.
const LinkInvalid LinkType = 0

// State of a record.
type State uint8

const (
	Unlinked State = iota
	TypeClassified
	LinkTypeResolved
	Patched
)

func (s State) String() string {
	switch s {
	case Unlinked:
		return "unlinked"
	case TypeClassified:
		return "type-classified"
	case LinkTypeResolved:
		return "link-type-resolved"
	case Patched:
		return "patched"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Record of a jump whose encoding is decided during relaxation.
type Record struct {
	From code.Label // End of the reserved region.
	To   code.Label // Unset until bound.
	Type JumpType
	Cond uint8

	linkType LinkType
	start    int32 // Start of the encoding in linked text.
	final    int32 // End of the region in linked text.
	patched  bool
}

func (r *Record) LinkType() LinkType { return r.linkType }

// SetLinkType panics if the link type has already been set.
func (r *Record) SetLinkType(t LinkType) {
	if t == LinkInvalid {
		panic(xerrors.Errorf("link: %s jump at %s: invalid link type", r.Type, r.From))
	}
	if r.linkType != LinkInvalid {
		panic(xerrors.Errorf("link: %s jump at %s: link type set twice", r.Type, r.From))
	}
	r.linkType = t
}

// FinalFrom is the end offset of the jump in linked text.  It is valid after
// relaxation.
func (r *Record) FinalFrom() int32 { return r.final }

// FinalStart is the start offset of the encoding in linked text.  No-op
// filler follows the encoding up to FinalFrom.  It is valid after relaxation.
func (r *Record) FinalStart() int32 { return r.start }

func (r *Record) State() State {
	switch {
	case !r.To.IsSet():
		return Unlinked
	case r.linkType == LinkInvalid:
		return TypeClassified
	case !r.patched:
		return LinkTypeResolved
	default:
		return Patched
	}
}
