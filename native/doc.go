// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package native provides the macro assembler of the build target.  ARMv7 is
// the default; MIPS is chosen on mipsle.  The masmarmv7 and masmmips build
// tags override the selection for cross-assembly.
package native
