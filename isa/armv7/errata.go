// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package armv7

// Erratum rejects 32-bit branches which end at a given page offset and whose
// displacement falls in [Min, Max).
type Erratum struct {
	Name       string
	PageMask   uint32
	PageOffset uint32
	Min        int64
	Max        int64
}

// CortexA8 branch erratum: a 32-bit branch which spans two 4 KiB pages and
// targets the first page may be mispredicted or deadlock.
var CortexA8 = Erratum{
	Name:       "Cortex-A8 branch spanning pages",
	PageMask:   0xfff,
	PageOffset: 0x002,
	Min:        -0x1002,
	Max:        -2,
}

// Triggered by a branch ending at end with displacement relative to end.
func (e Erratum) Triggered(end uint32, relative int64) bool {
	return end&e.PageMask == e.PageOffset && relative >= e.Min && relative < e.Max
}

// Target processor features.
type Target struct {
	HasIDIV bool // SDIV and UDIV in Thumb state.
	Errata  []Erratum
}

// DefaultTarget lacks hardware division and avoids all known branch errata.
func DefaultTarget() Target {
	return Target{
		Errata: []Erratum{CortexA8},
	}
}

func (t Target) triggered(end uint32, relative int64) bool {
	for _, e := range t.Errata {
		if e.Triggered(end, relative) {
			return true
		}
	}
	return false
}
