// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package masm finalizes machine code emitted by the macro assemblers in the isa
subpackages.

Code is emitted into a growable buffer.  Jumps reserve space for their maximal
encoding and are recorded in a ledger.  Finalize allocates memory, chooses the
smallest encoding which reaches each jump target, and copies the code into
place.  Constant loads, calls and fixed-size jumps can be rewritten afterwards
through patch.Code.

# Errors

Emission into a size-limited buffer is wrapped with Assemble, which returns
the buffer's size limit error.  Allocation errors are returned by Finalize.
Other failures are programming errors, such as a jump without target, and they
cause a panic.
*/
package masm
