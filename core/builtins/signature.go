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
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
	"github.com/pkg/errors"
)

var (
	curveBeta     fp.Element
	generatorJac  starkcurve.G1Jac
	signatureBits = new(big.Int).Lsh(big.NewInt(1), 251)
)

func init() {
	var gAff starkcurve.G1Affine
	generatorJac, gAff = starkcurve.Generators()
	// beta = y^2 - x^3 - x, read off the generator
	var x3, y2 fp.Element
	x3.Square(&gAff.X).Mul(&x3, &gAff.X)
	y2.Square(&gAff.Y)
	curveBeta.Sub(&y2, &x3).Sub(&curveBeta, &gAff.X)
}

// Signature is an (r, s) ECDSA pair.
type Signature struct {
	R, S felt.Felt
}

// SignatureBuiltinRunner checks ECDSA signatures over the STARK curve. An
// instance is laid out as public key, message hash.
type SignatureBuiltinRunner struct {
	*baseRunner
	signatures map[vm.Relocatable]Signature
}

func NewSignatureBuiltinRunner(included bool) *SignatureBuiltinRunner {
	return &SignatureBuiltinRunner{
		baseRunner: newBase(SignatureName, included, 2, 2),
		signatures: make(map[vm.Relocatable]Signature),
	}
}

// AddSignature records the signature of the instance whose public key lives
// at addr.
func (s *SignatureBuiltinRunner) AddSignature(addr vm.Relocatable, r, sig felt.Felt) error {
	if addr.SegmentIndex != s.base.SegmentIndex {
		return errors.Errorf("signature address %v outside %s segment", addr, s.name)
	}
	s.signatures[addr] = Signature{R: r, S: sig}
	return nil
}

func (s *SignatureBuiltinRunner) Signatures() map[vm.Relocatable]Signature {
	return s.signatures
}

// FinalStack also checks that every touched instance carries a valid
// signature.
func (s *SignatureBuiltinRunner) FinalStack(segments *vm.SegmentManager, pointer vm.Relocatable) (vm.Relocatable, vm.Relocatable, error) {
	ptr, stop, err := s.baseRunner.FinalStack(segments, pointer)
	if err != nil || !s.included {
		return ptr, stop, err
	}
	if err := s.VerifySignatures(segments.Memory); err != nil {
		return vm.Relocatable{}, vm.Relocatable{}, err
	}
	return ptr, stop, nil
}

// VerifySignatures validates every instance that has a written cell.
func (s *SignatureBuiltinRunner) VerifySignatures(mem *vm.Memory) error {
	checked := make(map[uint]bool)
	return mem.ForEach(s.base.SegmentIndex, func(addr vm.Relocatable, _ vm.MaybeRelocatable) error {
		inst := addr.Offset - addr.Offset%s.cellsPerInstance
		if checked[inst] {
			return nil
		}
		checked[inst] = true
		pubAddr := vm.NewRelocatable(addr.SegmentIndex, inst)
		sig, ok := s.signatures[pubAddr]
		if !ok {
			return errors.Wrapf(ErrMissingSignature, "at %v", pubAddr)
		}
		pub, err := mem.GetFelt(pubAddr)
		if err != nil {
			return err
		}
		msg, err := mem.GetFelt(pubAddr.Add(1))
		if err != nil {
			return err
		}
		if !VerifyECDSA(pub, msg, sig.R, sig.S) {
			return errors.Wrapf(ErrInvalidSignature, "public key %v, message %v", pub.Hex(), msg.Hex())
		}
		return nil
	})
}

// recoverPoint returns a curve point with the given x coordinate.
func recoverPoint(x felt.Felt) (starkcurve.G1Affine, bool) {
	var p starkcurve.G1Affine
	p.X.SetBigInt(x.BigInt())
	var rhs fp.Element
	rhs.Square(&p.X).Mul(&rhs, &p.X).Add(&rhs, &p.X).Add(&rhs, &curveBeta)
	if p.Y.Sqrt(&rhs) == nil {
		return starkcurve.G1Affine{}, false
	}
	return p, true
}

// VerifyECDSA checks a STARK-curve signature against the x coordinate of the
// public key. Both points sharing that x coordinate are accepted.
func VerifyECDSA(pubX, msg, r, s felt.Felt) bool {
	n := fr.Modulus()
	rb, sb, zb := r.BigInt(), s.BigInt(), msg.BigInt()
	if rb.Sign() == 0 || rb.Cmp(signatureBits) >= 0 {
		return false
	}
	if sb.Sign() == 0 || sb.Cmp(n) >= 0 || zb.Cmp(signatureBits) >= 0 {
		return false
	}
	q, ok := recoverPoint(pubX)
	if !ok {
		return false
	}
	w := new(big.Int).ModInverse(sb, n)
	if w == nil {
		return false
	}

	var zG starkcurve.G1Jac
	zG.ScalarMultiplication(&generatorJac, zb)

	var qJac, qNeg starkcurve.G1Jac
	qJac.FromAffine(&q)
	qNeg.Neg(&qJac)
	for _, candidate := range []*starkcurve.G1Jac{&qJac, &qNeg} {
		var rQ, sum starkcurve.G1Jac
		rQ.ScalarMultiplication(candidate, rb)
		sum.Set(&zG).AddAssign(&rQ)
		sum.ScalarMultiplication(&sum, w)

		var res starkcurve.G1Affine
		res.FromJacobian(&sum)
		if res.IsInfinity() {
			continue
		}
		if res.X.BigInt(new(big.Int)).Cmp(rb) == 0 {
			return true
		}
	}
	return false
}
