// Copyright (c) 2025 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pan is the panic zone of the library.  Errors panicked through it
// are recovered at public API boundaries; other panics pass through.
package pan

import (
	"import.name/pan"
)

var z = new(pan.Zone)

var Panic = z.Panic
var Error = z.Error
