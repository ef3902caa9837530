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
	"errors"
	"testing"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/builtins"
	"github.com/Aurorachain/go-cairo/core/program"
	"github.com/Aurorachain/go-cairo/core/scopes"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fpRef(off int) program.HintReference {
	return program.HintReference{
		Offset1:     program.OffsetValue{Kind: program.OffsetRegister, Register: vm.FP, Value: off},
		Dereference: true,
		CairoType:   "felt*",
	}
}

// newTestVM has segments 0 to 2 with fp = 1:10 and ap = 1:12.
func newTestVM() *vm.VirtualMachine {
	v := vm.NewVirtualMachine(false)
	for i := 0; i < 3; i++ {
		v.Segments.Add()
	}
	v.RunContext = vm.RunContext{
		PC: vm.NewRelocatable(0, 0),
		AP: vm.NewRelocatable(1, 12),
		FP: vm.NewRelocatable(1, 10),
	}
	return v
}

func withRangeCheck(v *vm.VirtualMachine) {
	rc := builtins.NewRangeCheckBuiltinRunner(true)
	rc.InitializeSegments(v.Segments)
	v.BuiltinRunners = append(v.BuiltinRunners, rc)
}

func insert(t *testing.T, v *vm.VirtualMachine, seg int, off uint, val interface{}) {
	mv, err := vm.ToMaybeRelocatable(val, true)
	require.NoError(t, err)
	require.NoError(t, v.Segments.Memory.Insert(vm.NewRelocatable(seg, off), mv))
}

func get(t *testing.T, v *vm.VirtualMachine, seg int, off uint) vm.MaybeRelocatable {
	val, ok := v.Segments.Memory.Get(vm.NewRelocatable(seg, off))
	require.True(t, ok, "no value at %d:%d", seg, off)
	return val
}

func native(kind Kind, ids map[string]program.HintReference) *HintData {
	return &HintData{Kind: kind, Ids: ids}
}

func TestKindOf(t *testing.T) {
	for code, kind := range nativeKinds {
		assert.Equal(t, kind, KindOf(code))
		assert.NotEqual(t, "unknown", kind.String())
	}
	assert.Equal(t, KindScripted, KindOf("memory[ap] = segments.add() "))
	assert.Equal(t, KindScripted, KindOf("x = 1"))
	assert.Equal(t, "dict_read", KindDictRead.String())
}

func TestAddSegment(t *testing.T) {
	v := newTestVM()
	sc := scopes.NewExecutionScopes()
	require.NoError(t, executeNative(v, native(KindAddSegment, nil), sc))
	assert.Equal(t, vm.FromRelocatable(vm.NewRelocatable(3, 0)), get(t, v, 1, 12))
	assert.Equal(t, 4, v.Segments.NumSegments())
}

func TestScopeHints(t *testing.T) {
	v := newTestVM()
	sc := scopes.NewExecutionScopes()
	insert(t, v, 1, 7, 3)

	err := executeNative(v, native(KindMemcpyEnterScope, map[string]program.HintReference{"len": fpRef(-3)}), sc)
	require.NoError(t, err)
	require.Equal(t, 2, sc.Len())
	n, err := sc.Get("n")
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(3), n)

	require.NoError(t, executeNative(v, native(KindVMEnterScope, nil), sc))
	assert.Equal(t, 3, sc.Len())
	require.NoError(t, executeNative(v, native(KindVMExitScope, nil), sc))
	require.NoError(t, executeNative(v, native(KindVMExitScope, nil), sc))
	err = executeNative(v, native(KindVMExitScope, nil), sc)
	assert.True(t, errors.Is(err, scopes.ErrExitMainScope))

	err = executeNative(v, native(KindMemcpyEnterScope, nil), sc)
	assert.True(t, errors.Is(err, ErrUnknownIdentifier))
}

func TestAssertNN(t *testing.T) {
	v := newTestVM()
	sc := scopes.NewExecutionScopes()
	ids := map[string]program.HintReference{"a": fpRef(-3)}
	insert(t, v, 1, 7, 5)

	err := executeNative(v, native(KindAssertNN, ids), sc)
	assert.True(t, errors.Is(err, ErrMissingBuiltin))

	withRangeCheck(v)
	require.NoError(t, executeNative(v, native(KindAssertNN, ids), sc))

	ids = map[string]program.HintReference{"a": fpRef(-2)}
	insert(t, v, 1, 8, -1)
	err = executeNative(v, native(KindAssertNN, ids), sc)
	assert.True(t, errors.Is(err, ErrAssertion))
}

func TestAssertNotZero(t *testing.T) {
	v := newTestVM()
	sc := scopes.NewExecutionScopes()
	insert(t, v, 1, 7, 5)
	insert(t, v, 1, 8, 0)

	require.NoError(t, executeNative(v, native(KindAssertNotZero, map[string]program.HintReference{"value": fpRef(-3)}), sc))
	err := executeNative(v, native(KindAssertNotZero, map[string]program.HintReference{"value": fpRef(-2)}), sc)
	assert.True(t, errors.Is(err, ErrAssertion))

	// a pointer is not an integer
	insert(t, v, 1, 9, vm.NewRelocatable(2, 0))
	err = executeNative(v, native(KindAssertNotZero, map[string]program.HintReference{"value": fpRef(-1)}), sc)
	assert.True(t, errors.Is(err, vm.ErrExpectedInteger))
}

func TestIsNN(t *testing.T) {
	for _, tt := range []struct {
		a    interface{}
		want uint64
	}{
		{0, 0},
		{17, 0},
		{-1, 1},
	} {
		v := newTestVM()
		withRangeCheck(v)
		insert(t, v, 1, 7, tt.a)
		err := executeNative(v, native(KindIsNN, map[string]program.HintReference{"a": fpRef(-3)}), scopes.NewExecutionScopes())
		require.NoError(t, err)
		assert.Equal(t, vm.NewInt(tt.want), get(t, v, 1, 12), "a = %v", tt.a)
	}
}

func TestDictHints(t *testing.T) {
	v := newTestVM()
	sc := scopes.NewExecutionScopes()
	insert(t, v, 1, 6, 7) // default_value
	insert(t, v, 1, 7, 1) // key
	insert(t, v, 1, 8, 9) // new_value

	require.NoError(t, executeNative(v, native(KindDefaultDictNew, map[string]program.HintReference{"default_value": fpRef(-4)}), sc))
	base := vm.NewRelocatable(3, 0)
	assert.Equal(t, vm.FromRelocatable(base), get(t, v, 1, 12))

	write := native(KindDictWrite, map[string]program.HintReference{
		"dict_ptr":  fpRef(2),
		"key":       fpRef(-3),
		"new_value": fpRef(-2),
	})
	require.NoError(t, executeNative(v, write, sc))
	assert.Equal(t, vm.NewInt(1), get(t, v, 3, 0))
	assert.Equal(t, vm.NewInt(7), get(t, v, 3, 1))
	assert.Equal(t, vm.NewInt(9), get(t, v, 3, 2))

	// the same pointer is stale now
	err := executeNative(v, write, sc)
	assert.Error(t, err)

	insert(t, v, 1, 13, base.Add(3))
	read := native(KindDictRead, map[string]program.HintReference{
		"dict_ptr": fpRef(3),
		"key":      fpRef(-3),
		"value":    fpRef(-1),
	})
	require.NoError(t, executeNative(v, read, sc))
	assert.Equal(t, vm.NewInt(9), get(t, v, 1, 9))
	assert.Equal(t, vm.NewInt(9), get(t, v, 3, 4))
	assert.Equal(t, vm.NewInt(9), get(t, v, 3, 5))
}

func TestDictNew(t *testing.T) {
	v := newTestVM()
	sc := scopes.NewExecutionScopes()

	err := executeNative(v, native(KindDictNew, nil), sc)
	assert.True(t, errors.Is(err, ErrUnknownIdentifier))

	sc.AssignOrUpdate("initial_dict", map[felt.Felt]felt.Felt{felt.FromUint64(2): felt.FromUint64(4)})
	require.NoError(t, executeNative(v, native(KindDictNew, nil), sc))
	_, err = sc.Get("initial_dict")
	assert.True(t, errors.Is(err, scopes.ErrVariableNotInScope))

	ptr, ok := get(t, v, 1, 12).GetRelocatable()
	require.True(t, ok)
	tracker, err := dictManager(sc).GetTracker(ptr)
	require.NoError(t, err)
	val, err := tracker.Get(felt.FromUint64(2))
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(4), val)
}
