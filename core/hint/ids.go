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

package hint

import (
	"strings"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/program"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

// registerBase resolves the register an offset is relative to. ap based
// references are corrected by the ap movement between the reference and
// the hint, which must belong to the same tracking group.
func registerBase(v *vm.VirtualMachine, reg vm.Register, ref *program.HintReference, hintTracking program.ApTracking) (vm.Relocatable, error) {
	if reg == vm.FP {
		return v.RunContext.FP, nil
	}
	if ref.ApTrackingData == nil {
		return vm.Relocatable{}, errors.New("ap based reference without ap tracking data")
	}
	refTracking := *ref.ApTrackingData
	if refTracking.Group != hintTracking.Group {
		return vm.Relocatable{}, errors.Errorf("ap tracking group %d, hint is in group %d", refTracking.Group, hintTracking.Group)
	}
	if hintTracking.Offset < refTracking.Offset {
		return vm.Relocatable{}, errors.Errorf("ap tracking offset %d past hint offset %d", refTracking.Offset, hintTracking.Offset)
	}
	return v.RunContext.AP.SubUint(hintTracking.Offset - refTracking.Offset)
}

func evalOffset(v *vm.VirtualMachine, o program.OffsetValue, ref *program.HintReference, hintTracking program.ApTracking) (vm.MaybeRelocatable, error) {
	switch o.Kind {
	case program.OffsetImmediate:
		return vm.FromFelt(felt.FromBigInt(o.Immediate)), nil
	case program.OffsetConst:
		return vm.FromFelt(felt.FromInt64(int64(o.Value))), nil
	}
	base, err := registerBase(v, o.Register, ref, hintTracking)
	if err != nil {
		return vm.MaybeRelocatable{}, err
	}
	addr, err := base.AddInt(o.Value)
	if err != nil {
		return vm.MaybeRelocatable{}, err
	}
	if !o.Deref {
		return vm.FromRelocatable(addr), nil
	}
	val, ok := v.Segments.Memory.Get(addr)
	if !ok {
		return vm.MaybeRelocatable{}, errors.Wrapf(vm.ErrUnknownMemoryCell, "%v", addr)
	}
	return val, nil
}

// evalReference computes the reference expression without its outer
// dereference: the address of the variable when ref.Dereference is set,
// its value otherwise.
func evalReference(v *vm.VirtualMachine, ref *program.HintReference, hintTracking program.ApTracking) (vm.MaybeRelocatable, error) {
	val, err := evalOffset(v, ref.Offset1, ref, hintTracking)
	if err != nil {
		return vm.MaybeRelocatable{}, err
	}
	if ref.Offset2 == (program.OffsetValue{}) {
		return val, nil
	}
	off, err := evalOffset(v, ref.Offset2, ref, hintTracking)
	if err != nil {
		return vm.MaybeRelocatable{}, err
	}
	return val.Add(off)
}

func referenceAddress(v *vm.VirtualMachine, ref *program.HintReference, hintTracking program.ApTracking) (vm.Relocatable, error) {
	if !ref.Dereference {
		return vm.Relocatable{}, errors.New("reference has no address")
	}
	val, err := evalReference(v, ref, hintTracking)
	if err != nil {
		return vm.Relocatable{}, err
	}
	addr, ok := val.GetRelocatable()
	if !ok {
		return vm.Relocatable{}, errors.Wrapf(vm.ErrExpectedRelocatable, "reference address %v", val)
	}
	return addr, nil
}

// variableType is the Cairo type of the variable a reference denotes.
func variableType(ref *program.HintReference) string {
	if ref.Dereference {
		return strings.TrimSuffix(ref.CairoType, "*")
	}
	return ref.CairoType
}

// idsView resolves the ids of one hint against the current registers.
type idsView struct {
	vm   *vm.VirtualMachine
	data *HintData
}

func (ids idsView) ref(name string) (*program.HintReference, error) {
	ref, ok := ids.data.Ids[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownIdentifier, "ids.%s", name)
	}
	return &ref, nil
}

func (ids idsView) Address(name string) (vm.Relocatable, error) {
	ref, err := ids.ref(name)
	if err != nil {
		return vm.Relocatable{}, err
	}
	addr, err := referenceAddress(ids.vm, ref, ids.data.ApTracking)
	return addr, errors.Wrapf(err, "ids.%s", name)
}

func (ids idsView) Get(name string) (vm.MaybeRelocatable, error) {
	ref, err := ids.ref(name)
	if err != nil {
		return vm.MaybeRelocatable{}, err
	}
	val, err := evalReference(ids.vm, ref, ids.data.ApTracking)
	if err != nil {
		return vm.MaybeRelocatable{}, errors.Wrapf(err, "ids.%s", name)
	}
	if !ref.Dereference {
		return val, nil
	}
	addr, ok := val.GetRelocatable()
	if !ok {
		return vm.MaybeRelocatable{}, errors.Wrapf(vm.ErrExpectedRelocatable, "ids.%s address %v", name, val)
	}
	out, ok := ids.vm.Segments.Memory.Get(addr)
	if !ok {
		return vm.MaybeRelocatable{}, errors.Wrapf(vm.ErrUnknownMemoryCell, "ids.%s at %v", name, addr)
	}
	return out, nil
}

func (ids idsView) GetFelt(name string) (felt.Felt, error) {
	val, err := ids.Get(name)
	if err != nil {
		return felt.Felt{}, err
	}
	f, ok := val.GetFelt()
	if !ok {
		return felt.Felt{}, errors.Wrapf(vm.ErrExpectedInteger, "ids.%s is %v", name, val)
	}
	return f, nil
}

func (ids idsView) GetRelocatable(name string) (vm.Relocatable, error) {
	val, err := ids.Get(name)
	if err != nil {
		return vm.Relocatable{}, err
	}
	r, ok := val.GetRelocatable()
	if !ok {
		return vm.Relocatable{}, errors.Wrapf(vm.ErrExpectedRelocatable, "ids.%s is %v", name, val)
	}
	return r, nil
}

func (ids idsView) Insert(name string, value vm.MaybeRelocatable) error {
	addr, err := ids.Address(name)
	if err != nil {
		return err
	}
	return ids.vm.Segments.Memory.Insert(addr, value)
}
