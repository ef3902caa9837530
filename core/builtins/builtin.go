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

// Package builtins implements the memory-mapped coprocessors of the Cairo
// machine. Each runner owns a segment split into fixed-size instances;
// output cells of an instance are deduced from its input cells.
package builtins

import (
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

const (
	OutputName     = "output"
	PedersenName   = "pedersen"
	RangeCheckName = "range_check"
	SignatureName  = "ecdsa"
	BitwiseName    = "bitwise"
	EcOpName       = "ec_op"
	KeccakName     = "keccak"

	AdditionalHashName = "additional_hash"
)

type baseRunner struct {
	name             string
	base             vm.Relocatable
	included         bool
	cellsPerInstance uint
	nInputCells      uint
	stopPtr          *uint
}

func newBase(name string, included bool, cells, inputs uint) *baseRunner {
	return &baseRunner{name: name, included: included, cellsPerInstance: cells, nInputCells: inputs}
}

func (b *baseRunner) Name() string { return b.name }
func (b *baseRunner) Base() vm.Relocatable { return b.base }
func (b *baseRunner) Included() bool { return b.included }
func (b *baseRunner) CellsPerInstance() uint { return b.cellsPerInstance }
func (b *baseRunner) NInputCells() uint { return b.nInputCells }
func (b *baseRunner) AddValidationRule(*vm.Memory) {}

func (b *baseRunner) InitializeSegments(segments *vm.SegmentManager) {
	b.base = segments.Add()
}

func (b *baseRunner) InitialStack() []vm.MaybeRelocatable {
	if !b.included {
		return nil
	}
	return []vm.MaybeRelocatable{vm.FromRelocatable(b.base)}
}

func (b *baseRunner) DeduceMemoryCell(vm.Relocatable, *vm.Memory) (vm.MaybeRelocatable, bool, error) {
	return vm.MaybeRelocatable{}, false, nil
}

func (b *baseRunner) GetUsedCells(segments *vm.SegmentManager) (uint, error) {
	return segments.GetSegmentUsedSize(b.base.SegmentIndex)
}

func (b *baseRunner) GetUsedInstances(segments *vm.SegmentManager) (uint, error) {
	used, err := b.GetUsedCells(segments)
	if err != nil {
		return 0, err
	}
	return (used + b.cellsPerInstance - 1) / b.cellsPerInstance, nil
}

func (b *baseRunner) StopPtr() (uint, bool) {
	if b.stopPtr == nil {
		return 0, false
	}
	return *b.stopPtr, true
}

// FinalStack reads the stop pointer at pointer-1. It must point into this
// builtin's segment exactly past the last used cell.
func (b *baseRunner) FinalStack(segments *vm.SegmentManager, pointer vm.Relocatable) (vm.Relocatable, vm.Relocatable, error) {
	if !b.included {
		zero := uint(0)
		b.stopPtr = &zero
		return pointer, vm.Relocatable{}, nil
	}
	stopAddr, err := pointer.SubUint(1)
	if err != nil {
		return vm.Relocatable{}, vm.Relocatable{}, errors.Wrap(ErrNoStopPointer, b.name)
	}
	stop, err := segments.Memory.GetRelocatable(stopAddr)
	if err != nil {
		return vm.Relocatable{}, vm.Relocatable{}, errors.Wrapf(ErrNoStopPointer, "%s: %v", b.name, err)
	}
	if stop.SegmentIndex != b.base.SegmentIndex {
		return vm.Relocatable{}, vm.Relocatable{}, errors.Wrapf(ErrInvalidStopPointerIndex, "%s: %v", b.name, stop)
	}
	used, err := b.GetUsedCells(segments)
	if err != nil {
		return vm.Relocatable{}, vm.Relocatable{}, err
	}
	if stop.Offset != used {
		return vm.Relocatable{}, vm.Relocatable{}, errors.Wrapf(ErrInvalidStopPointer, "%s: stop pointer %v, used cells %d", b.name, stop, used)
	}
	off := stop.Offset
	b.stopPtr = &off
	return stopAddr, stop, nil
}

// instanceInputs returns the input cells of the instance containing addr,
// or ok=false if addr is an input cell or some input is still unknown.
func (b *baseRunner) instanceInputs(addr vm.Relocatable, mem *vm.Memory) (index uint, inputs []vm.MaybeRelocatable, ok bool) {
	index = addr.Offset % b.cellsPerInstance
	if index < b.nInputCells {
		return index, nil, false
	}
	start := vm.NewRelocatable(addr.SegmentIndex, addr.Offset-index)
	inputs = make([]vm.MaybeRelocatable, b.nInputCells)
	for i := range inputs {
		v, found := mem.Get(start.Add(uint(i)))
		if !found {
			return index, nil, false
		}
		inputs[i] = v
	}
	return index, inputs, true
}
