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

import "github.com/Aurorachain/go-cairo/core/scopes"

// BuiltinRunner is a memory-mapped coprocessor owning one segment.
type BuiltinRunner interface {
	Name() string
	Base() Relocatable
	Included() bool
	CellsPerInstance() uint
	NInputCells() uint

	InitializeSegments(segments *SegmentManager)
	InitialStack() []MaybeRelocatable
	AddValidationRule(mem *Memory)

	// DeduceMemoryCell computes an output cell from the instance's input
	// cells. ok is false when addr is not deducible.
	DeduceMemoryCell(addr Relocatable, mem *Memory) (value MaybeRelocatable, ok bool, err error)

	// FinalStack consumes the stop pointer stored just below pointer and
	// returns the pointer to continue from along with the stop pointer.
	FinalStack(segments *SegmentManager, pointer Relocatable) (Relocatable, Relocatable, error)

	GetUsedCells(segments *SegmentManager) (uint, error)
	GetUsedInstances(segments *SegmentManager) (uint, error)
	StopPtr() (uint, bool)
}

// HintProcessor executes compiled hint data against a machine.
type HintProcessor interface {
	ExecuteHint(vm *VirtualMachine, hintData interface{}, scopes *scopes.ExecutionScopes) error
}
