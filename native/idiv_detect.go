// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build arm

package native

import (
	"golang.org/x/sys/cpu"
)

func haveIDIV() bool {
	return cpu.ARM.HasIDIVT
}
