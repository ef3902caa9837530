// Copyright 2018 The go-aurora Authors
// This file is part of the go-aurora library.
//
// The go-aurora library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-aurora library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-aurora library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateInconsistentWrite = errors.New("inconsistent memory assignment")
	ErrUnknownMemoryCell          = errors.New("unknown memory cell")
	ErrUnallocatedSegment         = errors.New("segment not allocated")
	ErrSegmentTooLarge            = errors.New("offset exceeds the maximum segment size")
	ErrExpectedInteger            = errors.New("expected integer")
	ErrExpectedRelocatable        = errors.New("expected relocatable")
	ErrRelocation                 = errors.New("relocation error")
	ErrRelocatableCompare         = errors.New("addresses of different segments")
	ErrRelocatableAdd             = errors.New("cannot add two relocatable values")
	ErrRelocatableSub             = errors.New("cannot subtract a relocatable value from an integer")
	ErrRelocatableMul             = errors.New("arithmetic on relocatable values")
	ErrOffsetUnderflow            = errors.New("offset underflow")
	ErrOffsetOverflow             = errors.New("offset overflow")
	ErrInvalidArgument            = errors.New("invalid argument")
	ErrArgumentOutOfRange         = errors.New("argument out of field range")

	ErrInvalidInstructionEncoding = errors.New("invalid instruction encoding")
	ErrNonZeroHighBit             = errors.New("instruction high bit is set")
	ErrInvalidOp1Reg              = errors.New("invalid op1_src")
	ErrInvalidResLogic            = errors.New("invalid res logic")
	ErrInvalidPcUpdate            = errors.New("invalid pc_update")
	ErrInvalidApUpdate            = errors.New("invalid ap_update")
	ErrInvalidOpcode              = errors.New("invalid opcode")
	ErrInvalidImmediateOffset     = errors.New("immediate operand must follow the instruction")
	ErrUnknownOp0                 = errors.New("op0 must be known to address op1")
	ErrFailedToComputeOp0         = errors.New("failed to compute op0")
	ErrFailedToComputeOp1         = errors.New("failed to compute op1")
	ErrNoDst                      = errors.New("couldn't compute or deduce dst")
	ErrUnconstrainedRes           = errors.New("res is unconstrained")
	ErrDiffAssertValues           = errors.New("an ASSERT_EQ instruction failed")
	ErrCantWriteReturnPc          = errors.New("call failed to write return-pc")
	ErrCantWriteReturnFp          = errors.New("call failed to write return-fp")
	ErrInconsistentAutoDeduction  = errors.New("inconsistent auto-deduction")
	ErrUnfinishedScopes           = errors.New("scopes were not exited before the end of the run")
	ErrTraceNotEnabled            = errors.New("trace not enabled")
)

// MemoryError describes a failed memory access.
type MemoryError struct {
	Addr     Relocatable
	Old, New *MaybeRelocatable
	Err      error
}

func (e *MemoryError) Error() string {
	if e.Old != nil && e.New != nil {
		return fmt.Sprintf("%v at %v: %v != %v", e.Err, e.Addr, e.Old, e.New)
	}
	return fmt.Sprintf("%v at %v", e.Err, e.Addr)
}

func (e *MemoryError) Unwrap() error { return e.Err }
