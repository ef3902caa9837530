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

import "github.com/pkg/errors"

// RunContext holds the three machine registers.
type RunContext struct {
	PC Relocatable
	AP Relocatable
	FP Relocatable
}

func (rc *RunContext) base(reg Register) Relocatable {
	if reg == AP {
		return rc.AP
	}
	return rc.FP
}

func (rc *RunContext) ComputeDstAddr(inst *Instruction) (Relocatable, error) {
	return rc.base(inst.DstReg).AddInt(inst.OffDst)
}

func (rc *RunContext) ComputeOp0Addr(inst *Instruction) (Relocatable, error) {
	return rc.base(inst.Op0Reg).AddInt(inst.OffOp0)
}

// ComputeOp1Addr needs op0 when op1 is addressed through it.
func (rc *RunContext) ComputeOp1Addr(inst *Instruction, op0 *MaybeRelocatable) (Relocatable, error) {
	switch inst.Op1Src {
	case Op1SrcAP:
		return rc.AP.AddInt(inst.OffOp1)
	case Op1SrcFP:
		return rc.FP.AddInt(inst.OffOp1)
	case Op1SrcImm:
		if inst.OffOp1 != 1 {
			return Relocatable{}, ErrInvalidImmediateOffset
		}
		return rc.PC.Add(1), nil
	}
	if op0 == nil {
		return Relocatable{}, ErrUnknownOp0
	}
	base, ok := op0.GetRelocatable()
	if !ok {
		return Relocatable{}, errors.Wrapf(ErrExpectedRelocatable, "op0 is %v", op0)
	}
	return base.AddInt(inst.OffOp1)
}
