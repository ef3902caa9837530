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
	"github.com/Aurorachain/go-cairo/core/scopes"
	"github.com/Aurorachain/go-cairo/metrics"
	"github.com/pkg/errors"
)

var stepCounter = metrics.NewCounter("vm/steps")

// TraceEntry is the register state before an instruction ran.
type TraceEntry struct {
	PC, AP, FP Relocatable
}

// VirtualMachine executes Cairo instructions one at a time.
type VirtualMachine struct {
	RunContext     RunContext
	Segments       *SegmentManager
	BuiltinRunners []BuiltinRunner
	Trace          []TraceEntry
	CurrentStep    uint

	// FailedHintIndex is the position within its pc of the hint that
	// aborted the last step, or -1.
	FailedHintIndex int

	traceEnabled bool
}

func NewVirtualMachine(traceEnabled bool) *VirtualMachine {
	return &VirtualMachine{
		Segments:        NewSegmentManager(),
		FailedHintIndex: -1,
		traceEnabled:    traceEnabled,
	}
}

func (vm *VirtualMachine) TraceEnabled() bool { return vm.traceEnabled }

// Step runs the hints attached to the current pc in order, then executes
// exactly one instruction. A failing hint aborts the step before the
// instruction and its index is recorded.
func (vm *VirtualMachine) Step(hp HintProcessor, sc *scopes.ExecutionScopes, hints map[uint][]interface{}) error {
	if vm.RunContext.PC.SegmentIndex == 0 {
		for i, data := range hints[vm.RunContext.PC.Offset] {
			if err := hp.ExecuteHint(vm, data, sc); err != nil {
				vm.FailedHintIndex = i
				return err
			}
		}
	}
	return vm.StepInstruction()
}

func (vm *VirtualMachine) decodeCurrentInstruction() (Instruction, error) {
	word, err := vm.Segments.Memory.GetFelt(vm.RunContext.PC)
	if err != nil {
		return Instruction{}, errors.Wrap(err, "fetching instruction")
	}
	w, ok := word.Uint64()
	if !ok {
		return Instruction{}, errors.Wrapf(ErrInvalidInstructionEncoding, "word %v at %v", word, vm.RunContext.PC)
	}
	return DecodeInstruction(w)
}

func (vm *VirtualMachine) StepInstruction() error {
	inst, err := vm.decodeCurrentInstruction()
	if err != nil {
		return err
	}
	return vm.runInstruction(&inst)
}

type operands struct {
	dst, res, op0, op1 MaybeRelocatable
	resKnown           bool
}

type operandAddresses struct {
	dst, op0, op1 Relocatable
}

func (vm *VirtualMachine) runInstruction(inst *Instruction) error {
	ops, addrs, err := vm.computeOperands(inst)
	if err != nil {
		return err
	}
	if err := vm.opcodeAssertions(inst, &ops); err != nil {
		return err
	}
	if vm.traceEnabled {
		vm.Trace = append(vm.Trace, TraceEntry{PC: vm.RunContext.PC, AP: vm.RunContext.AP, FP: vm.RunContext.FP})
	}
	mem := vm.Segments.Memory
	mem.MarkAsAccessed(vm.RunContext.PC)
	mem.MarkAsAccessed(addrs.dst)
	mem.MarkAsAccessed(addrs.op0)
	mem.MarkAsAccessed(addrs.op1)

	if err := vm.updateRegisters(inst, &ops); err != nil {
		return err
	}
	vm.CurrentStep++
	stepCounter.Inc(1)
	return nil
}

func (vm *VirtualMachine) computeOperands(inst *Instruction) (operands, operandAddresses, error) {
	var (
		ops   operands
		addrs operandAddresses
		err   error
	)
	mem := vm.Segments.Memory
	rc := &vm.RunContext

	if addrs.dst, err = rc.ComputeDstAddr(inst); err != nil {
		return ops, addrs, err
	}
	dst, dstKnown := mem.Get(addrs.dst)

	if addrs.op0, err = rc.ComputeOp0Addr(inst); err != nil {
		return ops, addrs, err
	}
	op0, op0Known := mem.Get(addrs.op0)

	var op0Ptr *MaybeRelocatable
	if op0Known {
		op0Ptr = &op0
	}
	if addrs.op1, err = rc.ComputeOp1Addr(inst, op0Ptr); err != nil {
		return ops, addrs, err
	}
	op1, op1Known := mem.Get(addrs.op1)

	var res MaybeRelocatable
	resKnown := false

	if !op0Known {
		op0, res, resKnown, err = vm.computeOp0Deductions(addrs.op0, inst, dst, dstKnown, op1, op1Known)
		if err != nil {
			return ops, addrs, err
		}
		if err := mem.Insert(addrs.op0, op0); err != nil {
			return ops, addrs, err
		}
	}
	if !op1Known {
		var r MaybeRelocatable
		var rKnown bool
		op1, r, rKnown, err = vm.computeOp1Deductions(addrs.op1, inst, dst, dstKnown, op0)
		if err != nil {
			return ops, addrs, err
		}
		if !resKnown && rKnown {
			res, resKnown = r, true
		}
		if err := mem.Insert(addrs.op1, op1); err != nil {
			return ops, addrs, err
		}
	}
	if !resKnown {
		res, resKnown, err = computeRes(inst, op0, op1)
		if err != nil {
			return ops, addrs, err
		}
	}
	if !dstKnown {
		switch {
		case inst.Opcode == AssertEq && resKnown:
			dst = res
		case inst.Opcode == Call:
			dst = FromRelocatable(rc.FP)
		default:
			return ops, addrs, ErrNoDst
		}
		if err := mem.Insert(addrs.dst, dst); err != nil {
			return ops, addrs, err
		}
	}
	ops = operands{dst: dst, res: res, op0: op0, op1: op1, resKnown: resKnown}
	return ops, addrs, nil
}

func (vm *VirtualMachine) computeOp0Deductions(addr Relocatable, inst *Instruction, dst MaybeRelocatable, dstKnown bool, op1 MaybeRelocatable, op1Known bool) (MaybeRelocatable, MaybeRelocatable, bool, error) {
	if v, ok, err := vm.DeduceMemoryCell(addr); err != nil {
		return MaybeRelocatable{}, MaybeRelocatable{}, false, err
	} else if ok {
		return v, MaybeRelocatable{}, false, nil
	}
	switch inst.Opcode {
	case Call:
		return FromRelocatable(vm.RunContext.PC.Add(inst.Size())), MaybeRelocatable{}, false, nil
	case AssertEq:
		if !dstKnown || !op1Known {
			break
		}
		switch inst.Res {
		case ResAdd:
			op0, err := dst.Sub(op1)
			if err != nil {
				return MaybeRelocatable{}, MaybeRelocatable{}, false, err
			}
			return op0, dst, true, nil
		case ResMul:
			if dst.IsRelocatable() || op1.IsRelocatable() || op1.IsZero() {
				break
			}
			op0, err := dst.Div(op1)
			if err != nil {
				return MaybeRelocatable{}, MaybeRelocatable{}, false, err
			}
			return op0, dst, true, nil
		}
	}
	return MaybeRelocatable{}, MaybeRelocatable{}, false, errors.Wrapf(ErrFailedToComputeOp0, "at %v", addr)
}

func (vm *VirtualMachine) computeOp1Deductions(addr Relocatable, inst *Instruction, dst MaybeRelocatable, dstKnown bool, op0 MaybeRelocatable) (MaybeRelocatable, MaybeRelocatable, bool, error) {
	if v, ok, err := vm.DeduceMemoryCell(addr); err != nil {
		return MaybeRelocatable{}, MaybeRelocatable{}, false, err
	} else if ok {
		return v, MaybeRelocatable{}, false, nil
	}
	if inst.Opcode == AssertEq && dstKnown {
		switch inst.Res {
		case ResOp1:
			return dst, dst, true, nil
		case ResAdd:
			op1, err := dst.Sub(op0)
			if err != nil {
				return MaybeRelocatable{}, MaybeRelocatable{}, false, err
			}
			return op1, dst, true, nil
		case ResMul:
			if dst.IsRelocatable() || op0.IsRelocatable() || op0.IsZero() {
				break
			}
			op1, err := dst.Div(op0)
			if err != nil {
				return MaybeRelocatable{}, MaybeRelocatable{}, false, err
			}
			return op1, dst, true, nil
		}
	}
	return MaybeRelocatable{}, MaybeRelocatable{}, false, errors.Wrapf(ErrFailedToComputeOp1, "at %v", addr)
}

func computeRes(inst *Instruction, op0, op1 MaybeRelocatable) (MaybeRelocatable, bool, error) {
	switch inst.Res {
	case ResOp1:
		return op1, true, nil
	case ResAdd:
		r, err := op0.Add(op1)
		return r, err == nil, err
	case ResMul:
		r, err := op0.Mul(op1)
		return r, err == nil, err
	}
	return MaybeRelocatable{}, false, nil
}

func (vm *VirtualMachine) opcodeAssertions(inst *Instruction, ops *operands) error {
	switch inst.Opcode {
	case AssertEq:
		if !ops.resKnown {
			return ErrUnconstrainedRes
		}
		if ops.res != ops.dst {
			return errors.Wrapf(ErrDiffAssertValues, "%v != %v", ops.dst, ops.res)
		}
	case Call:
		retPc := FromRelocatable(vm.RunContext.PC.Add(inst.Size()))
		if ops.op0 != retPc {
			return errors.Wrapf(ErrCantWriteReturnPc, "%v != %v", ops.op0, retPc)
		}
		if retFp := FromRelocatable(vm.RunContext.FP); ops.dst != retFp {
			return errors.Wrapf(ErrCantWriteReturnFp, "%v != %v", ops.dst, retFp)
		}
	}
	return nil
}

func (vm *VirtualMachine) updateRegisters(inst *Instruction, ops *operands) error {
	rc := &vm.RunContext
	var newFp Relocatable
	switch inst.Fp {
	case FpAPPlus2:
		newFp = rc.AP.Add(2)
	case FpDst:
		if r, ok := ops.dst.GetRelocatable(); ok {
			newFp = r
		} else {
			f, _ := ops.dst.GetFelt()
			off, ok := f.Uint64()
			if !ok {
				return errors.Wrapf(ErrOffsetOverflow, "fp offset %v", f)
			}
			newFp = NewRelocatable(rc.FP.SegmentIndex, uint(off))
		}
	default:
		newFp = rc.FP
	}

	var newAp Relocatable
	switch inst.Ap {
	case ApAdd:
		if !ops.resKnown {
			return ErrUnconstrainedRes
		}
		f, ok := ops.res.GetFelt()
		if !ok {
			return errors.Wrap(ErrExpectedInteger, "ap += res")
		}
		r, err := rc.AP.AddFelt(f)
		if err != nil {
			return err
		}
		newAp = r
	case ApAdd1:
		newAp = rc.AP.Add(1)
	case ApAdd2:
		newAp = rc.AP.Add(2)
	default:
		newAp = rc.AP
	}

	var newPc Relocatable
	switch inst.Pc {
	case PcJump:
		if !ops.resKnown {
			return ErrUnconstrainedRes
		}
		r, ok := ops.res.GetRelocatable()
		if !ok {
			return errors.Wrap(ErrExpectedRelocatable, "absolute jump")
		}
		newPc = r
	case PcJumpRel:
		if !ops.resKnown {
			return ErrUnconstrainedRes
		}
		f, ok := ops.res.GetFelt()
		if !ok {
			return errors.Wrap(ErrExpectedInteger, "relative jump")
		}
		r, err := rc.PC.AddFelt(f)
		if err != nil {
			return err
		}
		newPc = r
	case PcJnz:
		if ops.dst.IsZero() {
			newPc = rc.PC.Add(inst.Size())
			break
		}
		f, ok := ops.op1.GetFelt()
		if !ok {
			return errors.Wrap(ErrExpectedInteger, "jnz offset")
		}
		r, err := rc.PC.AddFelt(f)
		if err != nil {
			return err
		}
		newPc = r
	default:
		newPc = rc.PC.Add(inst.Size())
	}

	rc.FP, rc.AP, rc.PC = newFp, newAp, newPc
	return nil
}

// DeduceMemoryCell asks the builtin owning addr's segment for its value.
func (vm *VirtualMachine) DeduceMemoryCell(addr Relocatable) (MaybeRelocatable, bool, error) {
	for _, b := range vm.BuiltinRunners {
		if b.Base().SegmentIndex == addr.SegmentIndex {
			return b.DeduceMemoryCell(addr, vm.Segments.Memory)
		}
	}
	return MaybeRelocatable{}, false, nil
}

// DeduceUnresolvedBuiltinCells fills every empty deducible cell below the
// used size of each builtin segment.
func (vm *VirtualMachine) DeduceUnresolvedBuiltinCells() error {
	mem := vm.Segments.Memory
	for _, b := range vm.BuiltinRunners {
		seg := b.Base().SegmentIndex
		size, err := vm.Segments.GetSegmentUsedSize(seg)
		if err != nil {
			return err
		}
		for off := uint(0); off < size; off++ {
			addr := NewRelocatable(seg, off)
			if _, ok := mem.Get(addr); ok {
				continue
			}
			v, ok, err := b.DeduceMemoryCell(addr, mem)
			if err != nil || !ok {
				continue
			}
			if err := mem.Insert(addr, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// VerifyAutoDeductions checks every written builtin cell against what the
// builtin would deduce for it.
func (vm *VirtualMachine) VerifyAutoDeductions() error {
	mem := vm.Segments.Memory
	for _, b := range vm.BuiltinRunners {
		seg := b.Base().SegmentIndex
		err := mem.ForEach(seg, func(addr Relocatable, value MaybeRelocatable) error {
			deduced, ok, err := b.DeduceMemoryCell(addr, mem)
			if err != nil {
				return err
			}
			if ok && deduced != value {
				return errors.Wrapf(ErrInconsistentAutoDeduction, "%s at %v: %v != %v", b.Name(), addr, value, deduced)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// EndRun finalizes builtin cells and requires all hint scopes to be closed.
func (vm *VirtualMachine) EndRun(sc *scopes.ExecutionScopes) error {
	if err := vm.DeduceUnresolvedBuiltinCells(); err != nil {
		return err
	}
	if err := vm.VerifyAutoDeductions(); err != nil {
		return err
	}
	if sc != nil && sc.Len() != 1 {
		return errors.Wrapf(ErrUnfinishedScopes, "%d frames left", sc.Len())
	}
	return nil
}

// MarkAddressRangeAsAccessed marks n cells starting at base.
func (vm *VirtualMachine) MarkAddressRangeAsAccessed(base Relocatable, n uint) {
	for i := uint(0); i < n; i++ {
		vm.Segments.Memory.MarkAsAccessed(base.Add(i))
	}
}

// GetReturnValues reads the n cells right below ap.
func (vm *VirtualMachine) GetReturnValues(n uint) ([]MaybeRelocatable, error) {
	start, err := vm.RunContext.AP.SubUint(n)
	if err != nil {
		return nil, err
	}
	return vm.Segments.Memory.GetRange(start, n)
}

// Builtin looks up a runner by name.
func (vm *VirtualMachine) Builtin(name string) (BuiltinRunner, bool) {
	for _, b := range vm.BuiltinRunners {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}
