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
)

type OutputBuiltinRunner struct {
	*baseRunner
}

func NewOutputBuiltinRunner(included bool) *OutputBuiltinRunner {
	return &OutputBuiltinRunner{newBase(OutputName, included, 1, 1)}
}

// Output returns the written cells of the output segment in order. Holes
// are skipped.
func (o *OutputBuiltinRunner) Output(mem *vm.Memory) ([]felt.Felt, error) {
	var out []felt.Felt
	err := mem.ForEach(o.base.SegmentIndex, func(addr vm.Relocatable, value vm.MaybeRelocatable) error {
		f, err := mem.GetFelt(addr)
		if err != nil {
			return err
		}
		out = append(out, f)
		return nil
	})
	return out, err
}
