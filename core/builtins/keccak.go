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
	"github.com/Aurorachain/go-cairo/crypto/sha3"
	"github.com/pkg/errors"
)

const (
	keccakInputs    = 8
	keccakStateBits = 200
)

var (
	keccakLaneMask  = new(big.Int).SetUint64(^uint64(0))
	keccakStateMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), keccakStateBits), big.NewInt(1))
)

// KeccakBuiltinRunner applies Keccak-f[1600] to eight 200-bit inputs and
// exposes the permuted state as eight 200-bit outputs.
type KeccakBuiltinRunner struct {
	*baseRunner
}

func NewKeccakBuiltinRunner(included bool) *KeccakBuiltinRunner {
	return &KeccakBuiltinRunner{newBase(KeccakName, included, 16, keccakInputs)}
}

// KeccakPermutation packs the inputs little-endian into the 1600-bit
// state, permutes it and unpacks it the same way.
func KeccakPermutation(inputs []felt.Felt) ([]felt.Felt, error) {
	acc := new(big.Int)
	for i := len(inputs) - 1; i >= 0; i-- {
		if inputs[i].BitLen() > keccakStateBits {
			return nil, errors.Wrapf(ErrIntegerBiggerThanPowerOf2, "%v exceeds 2^%d", inputs[i], keccakStateBits)
		}
		acc.Lsh(acc, keccakStateBits)
		acc.Or(acc, inputs[i].BigInt())
	}
	var state [25]uint64
	for j := range state {
		lane := new(big.Int).Rsh(acc, uint(64*j))
		state[j] = lane.And(lane, keccakLaneMask).Uint64()
	}
	sha3.KeccakF1600(&state)

	acc.SetUint64(0)
	for j := len(state) - 1; j >= 0; j-- {
		acc.Lsh(acc, 64)
		acc.Or(acc, new(big.Int).SetUint64(state[j]))
	}
	out := make([]felt.Felt, keccakInputs)
	for k := range out {
		chunk := new(big.Int).Rsh(acc, uint(keccakStateBits*k))
		out[k] = felt.FromBigInt(chunk.And(chunk, keccakStateMask))
	}
	return out, nil
}

func (k *KeccakBuiltinRunner) DeduceMemoryCell(addr vm.Relocatable, mem *vm.Memory) (vm.MaybeRelocatable, bool, error) {
	index, inputs, ok := k.instanceInputs(addr, mem)
	if !ok {
		return vm.MaybeRelocatable{}, false, nil
	}
	vals := make([]felt.Felt, len(inputs))
	for i, in := range inputs {
		f, ok := in.GetFelt()
		if !ok {
			return vm.MaybeRelocatable{}, false, errors.Wrapf(ErrExpectedIntegerInput, "keccak instance of %v", addr)
		}
		vals[i] = f
	}
	out, err := KeccakPermutation(vals)
	if err != nil {
		return vm.MaybeRelocatable{}, false, err
	}
	return vm.FromFelt(out[index-keccakInputs]), true, nil
}
