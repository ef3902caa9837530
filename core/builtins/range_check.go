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
	"math/big"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

const (
	rangeCheckNParts    = 8
	innerRangeCheckBits = 16
)

type RangeCheckBuiltinRunner struct {
	*baseRunner
	bound felt.Felt
}

func NewRangeCheckBuiltinRunner(included bool) *RangeCheckBuiltinRunner {
	bound := new(big.Int).Lsh(big.NewInt(1), innerRangeCheckBits*rangeCheckNParts)
	return &RangeCheckBuiltinRunner{
		baseRunner: newBase(RangeCheckName, included, 1, 1),
		bound:      felt.FromBigInt(bound),
	}
}

// Bound is 2^128: every value written to the segment must be below it.
func (r *RangeCheckBuiltinRunner) Bound() felt.Felt {
	return r.bound
}

func (r *RangeCheckBuiltinRunner) AddValidationRule(mem *vm.Memory) {
	mem.AddValidationRule(r.base.SegmentIndex, func(mem *vm.Memory, addr vm.Relocatable) ([]vm.Relocatable, error) {
		v, _ := mem.Get(addr)
		f, ok := v.GetFelt()
		if !ok {
			return nil, errors.Wrapf(ErrRangeCheckNonInt, "at %v", addr)
		}
		if f.Cmp(r.bound) >= 0 {
			return nil, errors.Wrapf(ErrRangeCheckOutOfBounds, "value %v at %v", f, addr)
		}
		return []vm.Relocatable{addr}, nil
	})
}
