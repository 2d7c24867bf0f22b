// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package link records jumps during emission and resolves their encodings
// once all targets are known.
package link

import (
	"sort"

	"gate.computer/masm/code"
	"golang.org/x/xerrors"
)

// Jump is a handle to a ledger record.  The zero value is not a jump.
type Jump struct {
	ref  int32 // Record index + 1.
	From code.Label
	Type JumpType
	Cond uint8
}

func (j Jump) IsSet() bool { return j.ref != 0 }

// Link the jump to a label.  It is a shorthand for ledger.Bind.
func (j Jump) Link(ledger *Ledger, to code.Label) {
	ledger.Bind(j, to)
}

// JumpList collects jumps which have the same target.
type JumpList []Jump

func (jl *JumpList) Append(j Jump) {
	*jl = append(*jl, j)
}

func (jl JumpList) Empty() bool { return len(jl) == 0 }

// Link all jumps to a label.
func (jl JumpList) Link(ledger *Ledger, to code.Label) {
	for _, j := range jl {
		ledger.Bind(j, to)
	}
}

// Ledger of jumps awaiting resolution.
type Ledger struct {
	records []Record
}

// Add a jump which ends at from.  The target is bound later.
func (l *Ledger) Add(from code.Label, t JumpType, cond uint8) Jump {
	l.records = append(l.records, Record{
		From:  from,
		To:    code.Unset,
		Type:  t,
		Cond:  cond,
		final: -1,
	})
	return Jump{int32(len(l.records)), from, t, cond}
}

// Bind a target label to a jump.  It panics if the jump has already been
// bound.
func (l *Ledger) Bind(j Jump, to code.Label) {
	if !to.IsSet() {
		panic(xerrors.Errorf("link: jump at %s bound to unset label", j.From))
	}
	r := l.Record(j)
	if r.To.IsSet() {
		panic(xerrors.Errorf("link: jump at %s bound twice", j.From))
	}
	r.To = to
}

// Record of a jump.  The pointer is valid until the next Add call.
func (l *Ledger) Record(j Jump) *Record {
	if !j.IsSet() || int(j.ref) > len(l.records) {
		panic(xerrors.New("link: jump doesn't belong to ledger"))
	}
	return &l.records[j.ref-1]
}

func (l *Ledger) Len() int { return len(l.records) }

// Records in emission order.
func (l *Ledger) Records() []Record { return l.records }

// sorted returns the records in ascending source order.  It panics if a jump
// hasn't been bound.
func (l *Ledger) sorted() []*Record {
	order := make([]*Record, len(l.records))
	for i := range l.records {
		r := &l.records[i]
		if !r.To.IsSet() {
			panic(xerrors.Errorf("link: %s jump at %s has no target", r.Type, r.From))
		}
		order[i] = r
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].From < order[j].From
	})
	return order
}
