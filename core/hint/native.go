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
	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/builtins"
	"github.com/Aurorachain/go-cairo/core/dict"
	"github.com/Aurorachain/go-cairo/core/scopes"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

const dictManagerVar = "__dict_manager"

func executeNative(v *vm.VirtualMachine, data *HintData, sc *scopes.ExecutionScopes) error {
	ids := idsView{vm: v, data: data}
	mem := v.Segments.Memory
	ap := v.RunContext.AP

	switch data.Kind {
	case KindAddSegment:
		return mem.Insert(ap, vm.FromRelocatable(v.Segments.Add()))

	case KindVMEnterScope:
		sc.EnterScope(nil)
		return nil

	case KindVMExitScope:
		return sc.ExitScope()

	case KindMemcpyEnterScope:
		n, err := ids.GetFelt("len")
		if err != nil {
			return err
		}
		sc.EnterScope(map[string]interface{}{"n": n})
		return nil

	case KindAssertNN:
		a, err := ids.GetFelt("a")
		if err != nil {
			return err
		}
		bound, err := rangeCheckBound(v)
		if err != nil {
			return err
		}
		if a.Cmp(bound) >= 0 {
			return errors.Wrapf(ErrAssertion, "a = %v is out of range.", a)
		}
		return nil

	case KindAssertNotZero:
		value, err := ids.GetFelt("value")
		if err != nil {
			return err
		}
		if value.IsZero() {
			return errors.Wrapf(ErrAssertion, "assert_not_zero failed: %v = 0.", value)
		}
		return nil

	case KindIsNN:
		a, err := ids.GetFelt("a")
		if err != nil {
			return err
		}
		bound, err := rangeCheckBound(v)
		if err != nil {
			return err
		}
		res := felt.One
		if a.Cmp(bound) < 0 {
			res = felt.Zero
		}
		return mem.Insert(ap, vm.FromFelt(res))

	case KindDictNew:
		initial, err := sc.Get("initial_dict")
		if err != nil {
			return errors.Wrap(ErrUnknownIdentifier, err.Error())
		}
		m, err := feltMapFromScope(initial)
		if err != nil {
			return err
		}
		base, err := dictManager(sc).NewDict(v.Segments, m)
		if err != nil {
			return err
		}
		if err := mem.Insert(ap, vm.FromRelocatable(base)); err != nil {
			return err
		}
		sc.Delete("initial_dict")
		return nil

	case KindDefaultDictNew:
		def, err := ids.GetFelt("default_value")
		if err != nil {
			return err
		}
		base, err := dictManager(sc).NewDefaultDict(v.Segments, def, nil)
		if err != nil {
			return err
		}
		return mem.Insert(ap, vm.FromRelocatable(base))

	case KindDictRead:
		tracker, err := trackerFor(ids, sc)
		if err != nil {
			return err
		}
		key, err := ids.GetFelt("key")
		if err != nil {
			return err
		}
		value, err := tracker.Read(mem, key)
		if err != nil {
			return err
		}
		return ids.Insert("value", vm.FromFelt(value))

	case KindDictWrite:
		tracker, err := trackerFor(ids, sc)
		if err != nil {
			return err
		}
		key, err := ids.GetFelt("key")
		if err != nil {
			return err
		}
		value, err := ids.GetFelt("new_value")
		if err != nil {
			return err
		}
		return tracker.Write(mem, key, value)
	}
	return errors.Wrapf(ErrWrongHintData, "no native implementation for %v", data.Kind)
}

func rangeCheckBound(v *vm.VirtualMachine) (felt.Felt, error) {
	b, _ := v.Builtin(builtins.RangeCheckName)
	rc, ok := b.(*builtins.RangeCheckBuiltinRunner)
	if !ok {
		return felt.Felt{}, errors.Wrap(ErrMissingBuiltin, builtins.RangeCheckName)
	}
	return rc.Bound(), nil
}

// dictManager returns the run's dict manager, creating it in the current
// scope on first use.
func dictManager(sc *scopes.ExecutionScopes) *dict.Manager {
	if v, err := sc.Get(dictManagerVar); err == nil {
		if m, ok := v.(*dict.Manager); ok {
			return m
		}
	}
	m := dict.NewManager()
	sc.AssignOrUpdate(dictManagerVar, m)
	return m
}

func trackerFor(ids idsView, sc *scopes.ExecutionScopes) (*dict.Tracker, error) {
	v, err := sc.Get(dictManagerVar)
	if err != nil {
		return nil, errors.Wrap(ErrUnknownIdentifier, err.Error())
	}
	m, ok := v.(*dict.Manager)
	if !ok {
		return nil, errors.Errorf("%s has type %T", dictManagerVar, v)
	}
	ptr, err := ids.GetRelocatable("dict_ptr")
	if err != nil {
		return nil, err
	}
	return m.GetTracker(ptr)
}
