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
	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
	"github.com/pkg/errors"
)

// EcOpBuiltinRunner computes r = p + m*q. An instance is laid out as
// p.x, p.y, q.x, q.y, m, r.x, r.y.
type EcOpBuiltinRunner struct {
	*baseRunner
}

func NewEcOpBuiltinRunner(included bool) *EcOpBuiltinRunner {
	return &EcOpBuiltinRunner{newBase(EcOpName, included, 7, 5)}
}

func affinePoint(x, y felt.Felt) starkcurve.G1Affine {
	var p starkcurve.G1Affine
	p.X.SetBigInt(x.BigInt())
	p.Y.SetBigInt(y.BigInt())
	return p
}

func feltFromCoordinate(b *big.Int) felt.Felt {
	return felt.FromBigInt(b)
}

// EcOp returns p + m*q on the STARK curve.
func EcOp(p, q starkcurve.G1Affine, m *big.Int) (starkcurve.G1Affine, error) {
	if !p.IsOnCurve() {
		return starkcurve.G1Affine{}, errors.Wrap(ErrPointNotOnCurve, "p")
	}
	if !q.IsOnCurve() {
		return starkcurve.G1Affine{}, errors.Wrap(ErrPointNotOnCurve, "q")
	}
	scalar := new(big.Int).Mod(m, fr.Modulus())

	var acc, qJac starkcurve.G1Jac
	acc.FromAffine(&p)
	if scalar.Sign() != 0 {
		qJac.FromAffine(&q)
		qJac.ScalarMultiplication(&qJac, scalar)
		acc.AddAssign(&qJac)
	}
	var r starkcurve.G1Affine
	r.FromJacobian(&acc)
	if r.IsInfinity() {
		return starkcurve.G1Affine{}, ErrEcOpInfinity
	}
	return r, nil
}

func (e *EcOpBuiltinRunner) DeduceMemoryCell(addr vm.Relocatable, mem *vm.Memory) (vm.MaybeRelocatable, bool, error) {
	index, inputs, ok := e.instanceInputs(addr, mem)
	if !ok {
		return vm.MaybeRelocatable{}, false, nil
	}
	vals := make([]felt.Felt, len(inputs))
	for i, in := range inputs {
		f, ok := in.GetFelt()
		if !ok {
			return vm.MaybeRelocatable{}, false, errors.Wrapf(ErrExpectedIntegerInput, "ec_op instance of %v", addr)
		}
		vals[i] = f
	}
	r, err := EcOp(affinePoint(vals[0], vals[1]), affinePoint(vals[2], vals[3]), vals[4].BigInt())
	if err != nil {
		return vm.MaybeRelocatable{}, false, errors.Wrapf(err, "ec_op instance of %v", addr)
	}
	coord := r.X
	if index == 6 {
		coord = r.Y
	}
	return vm.FromFelt(feltFromCoordinate(coord.BigInt(new(big.Int)))), true, nil
}
