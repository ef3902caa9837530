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

package builtins

import (
	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const bitwiseTotalNBits = 251

type BitwiseBuiltinRunner struct {
	*baseRunner
}

func NewBitwiseBuiltinRunner(included bool) *BitwiseBuiltinRunner {
	return &BitwiseBuiltinRunner{newBase(BitwiseName, included, 5, 2)}
}

func toUint256(f felt.Felt) *uint256.Int {
	b := f.Bytes()
	return new(uint256.Int).SetBytes(b[:])
}

// DeduceMemoryCell fills x&y, x^y and x|y at offsets 2, 3 and 4 of an
// instance.
func (b *BitwiseBuiltinRunner) DeduceMemoryCell(addr vm.Relocatable, mem *vm.Memory) (vm.MaybeRelocatable, bool, error) {
	index, inputs, ok := b.instanceInputs(addr, mem)
	if !ok {
		return vm.MaybeRelocatable{}, false, nil
	}
	var xy [2]*uint256.Int
	for i, in := range inputs {
		f, ok := in.GetFelt()
		if !ok {
			return vm.MaybeRelocatable{}, false, errors.Wrapf(ErrExpectedIntegerInput, "bitwise instance of %v", addr)
		}
		if f.BitLen() > bitwiseTotalNBits {
			return vm.MaybeRelocatable{}, false, errors.Wrapf(ErrIntegerBiggerThanPowerOf2, "%v exceeds 2^%d", f, bitwiseTotalNBits)
		}
		xy[i] = toUint256(f)
	}
	res := new(uint256.Int)
	switch index {
	case 2:
		res.And(xy[0], xy[1])
	case 3:
		res.Xor(xy[0], xy[1])
	case 4:
		res.Or(xy[0], xy[1])
	}
	out := res.Bytes32()
	return vm.FromFelt(felt.FromBytes(out[:])), true, nil
}
