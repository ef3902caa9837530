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

import (
	"github.com/pkg/errors"
)

type Register uint8

const (
	AP Register = iota
	FP
)

type Op1Src uint8

const (
	Op1SrcOp0 Op1Src = iota
	Op1SrcImm
	Op1SrcAP
	Op1SrcFP
)

type ResLogic uint8

const (
	ResOp1 ResLogic = iota
	ResAdd
	ResMul
	ResUnconstrained
)

type PcUpdate uint8

const (
	PcRegular PcUpdate = iota
	PcJump
	PcJumpRel
	PcJnz
)

type ApUpdate uint8

const (
	ApRegular ApUpdate = iota
	ApAdd
	ApAdd1
	ApAdd2
)

type FpUpdate uint8

const (
	FpRegular FpUpdate = iota
	FpAPPlus2
	FpDst
)

type Opcode uint8

const (
	NOp Opcode = iota
	Call
	Ret
	AssertEq
)

// Instruction is a decoded 63-bit Cairo instruction word.
type Instruction struct {
	OffDst int
	OffOp0 int
	OffOp1 int
	DstReg Register
	Op0Reg Register
	Op1Src Op1Src
	Res    ResLogic
	Pc     PcUpdate
	Ap     ApUpdate
	Fp     FpUpdate
	Opcode Opcode
}

// Size is 2 when an immediate follows the instruction word.
func (i Instruction) Size() uint {
	if i.Op1Src == Op1SrcImm {
		return 2
	}
	return 1
}

const (
	offsetBias = 1 << 15

	dstRegBit = 0
	op0RegBit = 1
	op1SrcOff = 2
	resOff    = 5
	pcOff     = 7
	apOff     = 10
	opcodeOff = 12
)

func decodeOffset(word uint64) int {
	return int(word&0xffff) - offsetBias
}

// DecodeInstruction splits an instruction word into offsets and flags.
//
//	bits  0..15  off_dst (biased by 2^15)
//	bits 16..31  off_op0
//	bits 32..47  off_op1
//	bits 48..62  flags
func DecodeInstruction(word uint64) (Instruction, error) {
	if word>>63 != 0 {
		return Instruction{}, ErrNonZeroHighBit
	}
	flags := word >> 48
	inst := Instruction{
		OffDst: decodeOffset(word),
		OffOp0: decodeOffset(word >> 16),
		OffOp1: decodeOffset(word >> 32),
		DstReg: Register(flags >> dstRegBit & 1),
		Op0Reg: Register(flags >> op0RegBit & 1),
	}

	switch (flags >> op1SrcOff) & 7 {
	case 0:
		inst.Op1Src = Op1SrcOp0
	case 1:
		inst.Op1Src = Op1SrcImm
	case 2:
		inst.Op1Src = Op1SrcFP
	case 4:
		inst.Op1Src = Op1SrcAP
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidOp1Reg, "word %#x", word)
	}

	switch (flags >> pcOff) & 7 {
	case 0:
		inst.Pc = PcRegular
	case 1:
		inst.Pc = PcJump
	case 2:
		inst.Pc = PcJumpRel
	case 4:
		inst.Pc = PcJnz
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidPcUpdate, "word %#x", word)
	}

	switch (flags >> resOff) & 3 {
	case 0:
		if inst.Pc == PcJnz {
			inst.Res = ResUnconstrained
		} else {
			inst.Res = ResOp1
		}
	case 1:
		inst.Res = ResAdd
	case 2:
		inst.Res = ResMul
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidResLogic, "word %#x", word)
	}
	if inst.Pc == PcJnz && inst.Res != ResUnconstrained {
		return Instruction{}, errors.Wrapf(ErrInvalidResLogic, "jnz with res logic, word %#x", word)
	}

	switch (flags >> opcodeOff) & 7 {
	case 0:
		inst.Opcode = NOp
	case 1:
		inst.Opcode = Call
	case 2:
		inst.Opcode = Ret
	case 4:
		inst.Opcode = AssertEq
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidOpcode, "word %#x", word)
	}

	switch (flags >> apOff) & 3 {
	case 0:
		if inst.Opcode == Call {
			inst.Ap = ApAdd2
		} else {
			inst.Ap = ApRegular
		}
	case 1:
		inst.Ap = ApAdd
	case 2:
		inst.Ap = ApAdd1
	default:
		return Instruction{}, errors.Wrapf(ErrInvalidApUpdate, "word %#x", word)
	}
	if inst.Opcode == Call && inst.Ap != ApAdd2 {
		return Instruction{}, errors.Wrapf(ErrInvalidApUpdate, "call with ap update, word %#x", word)
	}

	switch inst.Opcode {
	case Call:
		inst.Fp = FpAPPlus2
	case Ret:
		inst.Fp = FpDst
	default:
		inst.Fp = FpRegular
	}
	return inst, nil
}
