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
	"math"
	"math/big"
	"regexp"
	"sort"
	"strconv"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
	"github.com/robertkrimen/otto"
)

// Integers up to 2^53 survive a round trip through a JS number.
const maxSafeInteger = 1 << 53

var integerPattern = regexp.MustCompile(`^-?([0-9]+|0x[0-9a-fA-F]+)$`)

func feltToJS(o *otto.Otto, f felt.Felt) (otto.Value, error) {
	if n, ok := f.Uint64(); ok && n <= maxSafeInteger {
		return o.ToValue(n)
	}
	return o.ToValue(f.String())
}

func relocatableToJS(o *otto.Otto, r vm.Relocatable) (otto.Value, error) {
	return o.Call("new Relocatable", nil, r.SegmentIndex, r.Offset)
}

func bigToJS(o *otto.Otto, b *big.Int) (otto.Value, error) {
	if b.IsInt64() && math.Abs(float64(b.Int64())) <= maxSafeInteger {
		return o.ToValue(b.Int64())
	}
	return o.ToValue(b.String())
}

// toJS converts a host value into its script representation. Values
// without one are handed to the engine as opaque Go objects.
func toJS(o *otto.Otto, v interface{}) (otto.Value, error) {
	switch x := v.(type) {
	case nil:
		return otto.NullValue(), nil
	case otto.Value:
		return x, nil
	case felt.Felt:
		return feltToJS(o, x)
	case vm.Relocatable:
		return relocatableToJS(o, x)
	case vm.MaybeRelocatable:
		if r, ok := x.GetRelocatable(); ok {
			return relocatableToJS(o, r)
		}
		f, _ := x.GetFelt()
		return feltToJS(o, f)
	case *big.Int:
		return bigToJS(o, x)
	case []felt.Felt:
		items := make([]interface{}, len(x))
		for i, f := range x {
			items[i] = f
		}
		return arrayToJS(o, items)
	case []vm.MaybeRelocatable:
		items := make([]interface{}, len(x))
		for i, m := range x {
			items[i] = m
		}
		return arrayToJS(o, items)
	case []interface{}:
		return arrayToJS(o, x)
	case map[string]interface{}:
		obj, err := o.Object(`({})`)
		if err != nil {
			return otto.Value{}, err
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			val, err := toJS(o, x[k])
			if err != nil {
				return otto.Value{}, err
			}
			if err := obj.Set(k, val); err != nil {
				return otto.Value{}, err
			}
		}
		return obj.Value(), nil
	}
	return o.ToValue(v)
}

func arrayToJS(o *otto.Otto, items []interface{}) (otto.Value, error) {
	arr, err := o.Object(`([])`)
	if err != nil {
		return otto.Value{}, err
	}
	for _, item := range items {
		val, err := toJS(o, item)
		if err != nil {
			return otto.Value{}, err
		}
		if _, err := arr.Call("push", val); err != nil {
			return otto.Value{}, err
		}
	}
	return arr.Value(), nil
}

func isRelocatable(o *otto.Otto, v otto.Value) bool {
	if !v.IsObject() {
		return false
	}
	res, err := o.Call("__isRelocatable", nil, v)
	if err != nil {
		return false
	}
	b, _ := res.ToBoolean()
	return b
}

// relocatableFromJS reads a Relocatable object. Struct accessors resolve
// to their base address.
func relocatableFromJS(o *otto.Otto, v otto.Value) (vm.Relocatable, error) {
	if !isRelocatable(o, v) {
		return vm.Relocatable{}, errors.Wrapf(vm.ErrExpectedRelocatable, "got %v", v)
	}
	obj := v.Object()
	if addr, err := obj.Get("address_"); err == nil && isRelocatable(o, addr) {
		obj = addr.Object()
	}
	seg, err := obj.Get("segment_index")
	if err != nil {
		return vm.Relocatable{}, err
	}
	off, err := obj.Get("offset")
	if err != nil {
		return vm.Relocatable{}, err
	}
	s, err := seg.ToInteger()
	if err != nil {
		return vm.Relocatable{}, err
	}
	n, err := off.ToInteger()
	if err != nil || n < 0 {
		return vm.Relocatable{}, errors.Wrapf(vm.ErrInvalidArgument, "offset %v", off)
	}
	return vm.NewRelocatable(int(s), uint(n)), nil
}

func integerFromNumber(v otto.Value) (*big.Int, bool) {
	f, err := v.ToFloat()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	b, _ := new(big.Float).SetFloat64(f).Int(nil)
	return b, true
}

// feltFromJS accepts integral numbers, integer strings and booleans.
func feltFromJS(v otto.Value) (felt.Felt, error) {
	switch {
	case v.IsNumber():
		if b, ok := integerFromNumber(v); ok {
			return felt.FromBigInt(b), nil
		}
	case v.IsString():
		if s := v.String(); integerPattern.MatchString(s) {
			return felt.FromString(s)
		}
	case v.IsBoolean():
		if b, _ := v.ToBoolean(); b {
			return felt.One, nil
		}
		return felt.Zero, nil
	}
	return felt.Felt{}, errors.Wrapf(vm.ErrExpectedInteger, "got %v", v)
}

// memoryValueFromJS converts a script value into a memory word.
func memoryValueFromJS(o *otto.Otto, v otto.Value) (vm.MaybeRelocatable, error) {
	if v.IsObject() {
		r, err := relocatableFromJS(o, v)
		if err != nil {
			return vm.MaybeRelocatable{}, err
		}
		return vm.FromRelocatable(r), nil
	}
	f, err := feltFromJS(v)
	if err != nil {
		return vm.MaybeRelocatable{}, err
	}
	return vm.FromFelt(f), nil
}

// argFromJS converts a value passed to segments.write_arg / gen_arg:
// arrays nest, everything else must be a memory word.
func argFromJS(o *otto.Otto, v otto.Value) (interface{}, error) {
	if v.Class() == "Array" {
		return arrayFromJS(o, v, argFromJS)
	}
	return memoryValueFromJS(o, v)
}

func arrayFromJS(o *otto.Otto, v otto.Value, elem func(*otto.Otto, otto.Value) (interface{}, error)) ([]interface{}, error) {
	obj := v.Object()
	lv, err := obj.Get("length")
	if err != nil {
		return nil, err
	}
	n, err := lv.ToInteger()
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, n)
	for i := range out {
		item, err := obj.Get(strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		if out[i], err = elem(o, item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// fromJS converts a script value into the host value stored in a scope
// frame or a hint local. Integers become felts, Relocatable objects
// Relocatables, and wrapped Go objects come back unchanged.
func fromJS(o *otto.Otto, v otto.Value) (interface{}, error) {
	switch {
	case v.IsUndefined() || v.IsNull():
		return nil, nil
	case v.IsBoolean():
		return v.ToBoolean()
	case v.IsNumber():
		if b, ok := integerFromNumber(v); ok {
			return felt.FromBigInt(b), nil
		}
		return v.ToFloat()
	case v.IsString():
		s := v.String()
		if integerPattern.MatchString(s) {
			return felt.FromString(s)
		}
		return s, nil
	}
	if isRelocatable(o, v) {
		return relocatableFromJS(o, v)
	}
	switch v.Class() {
	case "Array":
		return arrayFromJS(o, v, fromJS)
	case "Object":
		exported, err := v.Export()
		if err != nil {
			return nil, err
		}
		if _, plain := exported.(map[string]interface{}); !plain {
			return exported, nil
		}
		obj := v.Object()
		out := make(map[string]interface{})
		for _, k := range obj.Keys() {
			item, err := obj.Get(k)
			if err != nil {
				return nil, err
			}
			if out[k], err = fromJS(o, item); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return v.Export()
}

// feltMapFromScope converts the initial_dict of dict_new.
func feltMapFromScope(v interface{}) (map[felt.Felt]felt.Felt, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[felt.Felt]felt.Felt:
		return m, nil
	case map[string]interface{}:
		out := make(map[felt.Felt]felt.Felt, len(m))
		for k, val := range m {
			key, err := felt.FromString(k)
			if err != nil {
				return nil, err
			}
			mv, err := vm.ToMaybeRelocatable(val, true)
			if err != nil {
				return nil, err
			}
			f, ok := mv.GetFelt()
			if !ok {
				return nil, errors.Wrapf(vm.ErrExpectedInteger, "initial_dict[%s]", k)
			}
			out[key] = f
		}
		return out, nil
	}
	return nil, errors.Errorf("initial_dict has type %T", v)
}
