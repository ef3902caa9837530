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

package runner

import (
	"github.com/Aurorachain/go-cairo/core/builtins"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

// VerifySecureRunner checks that the run stayed within its segments: no
// cell past the program data, no builtin cell past its stop pointer when
// verifyBuiltins is set, and no address pointing into an unallocated
// segment. Builtin deductions and signatures are verified again.
func (r *CairoRunner) VerifySecureRunner(verifyBuiltins bool) error {
	if r.state < Ended {
		return ErrRunNotFinished
	}
	segments := r.vm.Segments
	mem := segments.Memory

	programSize := uint(len(r.program.Data))
	err := mem.ForEach(r.programBase.SegmentIndex, func(addr vm.Relocatable, _ vm.MaybeRelocatable) error {
		if addr.Offset >= programSize {
			return errors.Wrapf(ErrOutOfBoundsProgramAccess, "%v, program size %d", addr, programSize)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if verifyBuiltins {
		bounds, err := r.builtinBounds()
		if err != nil {
			return err
		}
		for seg, bound := range bounds {
			err := mem.ForEach(seg, func(addr vm.Relocatable, _ vm.MaybeRelocatable) error {
				if addr.Offset >= bound {
					return errors.Wrapf(ErrOutOfBoundsBuiltinAccess, "%v, bound %d", addr, bound)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	}

	for i := 0; i < segments.NumSegments(); i++ {
		err := mem.ForEach(i, func(addr vm.Relocatable, value vm.MaybeRelocatable) error {
			if !segments.IsValidMemoryValue(value) {
				return errors.Wrapf(ErrInvalidMemoryValue, "%v at %v", value, addr)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	for _, b := range r.vm.BuiltinRunners {
		if sig, ok := b.(*builtins.SignatureBuiltinRunner); ok && sig.Included() {
			if err := sig.VerifySignatures(mem); err != nil {
				return err
			}
		}
	}
	if err := r.vm.VerifyAutoDeductions(); err != nil {
		return err
	}
	r.state = Verified
	return nil
}
