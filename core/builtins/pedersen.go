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
	junocrypto "github.com/NethermindEth/juno/core/crypto"
	junofelt "github.com/NethermindEth/juno/core/felt"
	"github.com/pkg/errors"
)

type HashBuiltinRunner struct {
	*baseRunner
}

func NewHashBuiltinRunner(included bool) *HashBuiltinRunner {
	return &HashBuiltinRunner{newBase(PedersenName, included, 3, 2)}
}

// NewAdditionalHashBuiltinRunner creates the extra pedersen runner the host
// may attach to a run. Programs never declare it.
func NewAdditionalHashBuiltinRunner() *HashBuiltinRunner {
	return &HashBuiltinRunner{newBase(AdditionalHashName, true, 3, 2)}
}

// PedersenHash hashes two field elements on the STARK curve.
func PedersenHash(a, b felt.Felt) felt.Felt {
	ab, bb := a.Bytes(), b.Bytes()
	x := new(junofelt.Felt).SetBytes(ab[:])
	y := new(junofelt.Felt).SetBytes(bb[:])
	h := junocrypto.Pedersen(x, y).Bytes()
	return felt.FromBytes(h[:])
}

func (h *HashBuiltinRunner) DeduceMemoryCell(addr vm.Relocatable, mem *vm.Memory) (vm.MaybeRelocatable, bool, error) {
	_, inputs, ok := h.instanceInputs(addr, mem)
	if !ok {
		return vm.MaybeRelocatable{}, false, nil
	}
	x, okX := inputs[0].GetFelt()
	y, okY := inputs[1].GetFelt()
	if !okX || !okY {
		return vm.MaybeRelocatable{}, false, errors.Wrapf(ErrExpectedIntegerInput, "pedersen instance of %v", addr)
	}
	return vm.FromFelt(PedersenHash(x, y)), true, nil
}
