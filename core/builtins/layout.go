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
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

// CanonicalOrder is the order in which programs must declare builtins.
var CanonicalOrder = []string{
	OutputName, PedersenName, RangeCheckName, SignatureName, BitwiseName, EcOpName, KeccakName,
}

// Layout is the set of builtins a run may instantiate.
type Layout struct {
	Name     string
	Builtins []string
}

var Layouts = map[string]Layout{
	"plain":     {Name: "plain"},
	"small":     {Name: "small", Builtins: []string{OutputName, PedersenName, RangeCheckName, SignatureName}},
	"dex":       {Name: "dex", Builtins: []string{OutputName, PedersenName, RangeCheckName, SignatureName}},
	"recursive": {Name: "recursive", Builtins: []string{OutputName, PedersenName, RangeCheckName, BitwiseName}},
	"starknet":  {Name: "starknet", Builtins: []string{OutputName, PedersenName, RangeCheckName, SignatureName, BitwiseName, EcOpName}},
	"all_cairo": {Name: "all_cairo", Builtins: CanonicalOrder},
	"all":       {Name: "all", Builtins: CanonicalOrder},
}

func GetLayout(name string) (Layout, error) {
	l, ok := Layouts[name]
	if !ok {
		return Layout{}, errors.Wrapf(ErrUnknownLayout, "%q", name)
	}
	return l, nil
}

func (l Layout) Supports(name string) bool {
	for _, b := range l.Builtins {
		if b == name {
			return true
		}
	}
	return false
}

// CheckBuiltins requires names to be supported by the layout and to follow
// the canonical order.
func (l Layout) CheckBuiltins(names []string) error {
	pos := 0
	for _, name := range names {
		if !l.Supports(name) {
			return errors.Wrapf(ErrBuiltinNotInLayout, "%s in layout %s", name, l.Name)
		}
		for pos < len(CanonicalOrder) && CanonicalOrder[pos] != name {
			pos++
		}
		if pos == len(CanonicalOrder) {
			return errors.Wrapf(ErrBuiltinsNotInCanonicalOrder, "%v", names)
		}
		pos++
	}
	return nil
}

// NewBuiltinRunner instantiates a runner by builtin name.
func NewBuiltinRunner(name string, included bool) (vm.BuiltinRunner, error) {
	switch name {
	case OutputName:
		return NewOutputBuiltinRunner(included), nil
	case PedersenName:
		return NewHashBuiltinRunner(included), nil
	case RangeCheckName:
		return NewRangeCheckBuiltinRunner(included), nil
	case SignatureName:
		return NewSignatureBuiltinRunner(included), nil
	case BitwiseName:
		return NewBitwiseBuiltinRunner(included), nil
	case EcOpName:
		return NewEcOpBuiltinRunner(included), nil
	case KeccakName:
		return NewKeccakBuiltinRunner(included), nil
	}
	return nil, errors.Wrapf(ErrUnknownBuiltin, "%q", name)
}
