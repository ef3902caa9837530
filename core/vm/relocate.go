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
	"sort"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/pkg/errors"
)

// RelocatedTraceEntry is a register snapshot in the flat address space.
type RelocatedTraceEntry struct {
	PC, AP, FP uint
}

// RelocatedCell is a memory cell in the flat address space.
type RelocatedCell struct {
	Address uint
	Value   felt.Felt
}

func RelocateAddress(addr Relocatable, table []uint) (uint, error) {
	if addr.SegmentIndex < 0 || addr.SegmentIndex >= len(table) {
		return 0, errors.Wrapf(ErrRelocation, "no base for segment of %v", addr)
	}
	return table[addr.SegmentIndex] + addr.Offset, nil
}

func RelocateValue(v MaybeRelocatable, table []uint) (felt.Felt, error) {
	r, ok := v.GetRelocatable()
	if !ok {
		f, _ := v.GetFelt()
		return f, nil
	}
	flat, err := RelocateAddress(r, table)
	if err != nil {
		return felt.Felt{}, err
	}
	return felt.FromUint64(uint64(flat)), nil
}

// RelocateMemory flattens every written cell, sorted by address.
func (s *SegmentManager) RelocateMemory(table []uint) ([]RelocatedCell, error) {
	var cells []RelocatedCell
	for i := 0; i < s.NumSegments(); i++ {
		err := s.Memory.ForEach(i, func(addr Relocatable, value MaybeRelocatable) error {
			flat, err := RelocateAddress(addr, table)
			if err != nil {
				return err
			}
			v, err := RelocateValue(value, table)
			if err != nil {
				return err
			}
			cells = append(cells, RelocatedCell{Address: flat, Value: v})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Address < cells[j].Address })
	return cells, nil
}

// RelocateTrace maps every register snapshot through table.
func (vm *VirtualMachine) RelocateTrace(table []uint) ([]RelocatedTraceEntry, error) {
	if !vm.traceEnabled {
		return nil, ErrTraceNotEnabled
	}
	out := make([]RelocatedTraceEntry, 0, len(vm.Trace))
	for _, e := range vm.Trace {
		pc, err := RelocateAddress(e.PC, table)
		if err != nil {
			return nil, err
		}
		ap, err := RelocateAddress(e.AP, table)
		if err != nil {
			return nil, err
		}
		fp, err := RelocateAddress(e.FP, table)
		if err != nil {
			return nil, err
		}
		out = append(out, RelocatedTraceEntry{PC: pc, AP: ap, FP: fp})
	}
	return out, nil
}
