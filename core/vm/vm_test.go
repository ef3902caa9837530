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
	"errors"
	"testing"

	"github.com/Aurorachain/go-cairo/core/scopes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	calls  []interface{}
	failOn interface{}
}

var errHintFailed = errors.New("hint failed")

func (p *recordingProcessor) ExecuteHint(vm *VirtualMachine, data interface{}, sc *scopes.ExecutionScopes) error {
	p.calls = append(p.calls, data)
	if data == p.failOn {
		return errHintFailed
	}
	return nil
}

func newTestVM(t *testing.T, program ...uint64) *VirtualMachine {
	vm := NewVirtualMachine(true)
	prog := vm.Segments.Add()
	exec := vm.Segments.Add()
	data := make([]MaybeRelocatable, len(program))
	for i, w := range program {
		data[i] = NewInt(w)
	}
	_, err := vm.Segments.LoadData(prog, data)
	require.NoError(t, err)
	_, err = vm.Segments.LoadData(exec, []MaybeRelocatable{NewInt(0), NewInt(0)})
	require.NoError(t, err)
	vm.RunContext = RunContext{PC: prog, AP: exec.Add(2), FP: exec.Add(2)}
	return vm
}

func TestStepAssertImmediate(t *testing.T) {
	vm := newTestVM(t, 0x480680017fff8000, 7)
	require.NoError(t, vm.Step(&recordingProcessor{}, scopes.NewExecutionScopes(), nil))

	v, err := vm.Segments.Memory.GetFelt(NewRelocatable(1, 2))
	require.NoError(t, err)
	assert.Equal(t, "7", v.String())
	assert.Equal(t, NewRelocatable(0, 2), vm.RunContext.PC)
	assert.Equal(t, NewRelocatable(1, 3), vm.RunContext.AP)
	assert.Equal(t, NewRelocatable(1, 2), vm.RunContext.FP)
	assert.Equal(t, uint(1), vm.CurrentStep)
	assert.Equal(t, []TraceEntry{{PC: NewRelocatable(0, 0), AP: NewRelocatable(1, 2), FP: NewRelocatable(1, 2)}}, vm.Trace)
	assert.True(t, vm.Segments.Memory.IsAccessed(NewRelocatable(0, 1)), "immediate cell is accessed")
}

func TestStepAssertFailure(t *testing.T) {
	vm := newTestVM(t, 0x480680017fff8000, 7)
	require.NoError(t, vm.Segments.Memory.Insert(NewRelocatable(1, 2), NewInt(8)))
	err := vm.Step(&recordingProcessor{}, scopes.NewExecutionScopes(), nil)
	assert.True(t, errors.Is(err, ErrDiffAssertValues), "have %v", err)
	assert.Equal(t, NewRelocatable(0, 0), vm.RunContext.PC)
	assert.Empty(t, vm.Trace)
}

func TestStepCallRet(t *testing.T) {
	vm := newTestVM(t, 0x1104800180018000, 3, 0x480680017fff8000, 0x208b7fff7fff7ffe)
	sc := scopes.NewExecutionScopes()
	hp := &recordingProcessor{}

	require.NoError(t, vm.Step(hp, sc, nil))
	assert.Equal(t, NewRelocatable(0, 3), vm.RunContext.PC)
	assert.Equal(t, NewRelocatable(1, 4), vm.RunContext.AP)
	assert.Equal(t, NewRelocatable(1, 4), vm.RunContext.FP)

	retFp, err := vm.Segments.Memory.GetRelocatable(NewRelocatable(1, 2))
	require.NoError(t, err)
	assert.Equal(t, NewRelocatable(1, 2), retFp)
	retPc, err := vm.Segments.Memory.GetRelocatable(NewRelocatable(1, 3))
	require.NoError(t, err)
	assert.Equal(t, NewRelocatable(0, 2), retPc)

	require.NoError(t, vm.Step(hp, sc, nil))
	assert.Equal(t, NewRelocatable(0, 2), vm.RunContext.PC)
	assert.Equal(t, NewRelocatable(1, 2), vm.RunContext.FP)
	assert.Equal(t, NewRelocatable(1, 4), vm.RunContext.AP)
}

func TestStepHintsRunInOrder(t *testing.T) {
	vm := newTestVM(t, 0x480680017fff8000, 7)
	hp := &recordingProcessor{}
	hints := map[uint][]interface{}{0: {"a", "b", "c"}, 2: {"d"}}
	require.NoError(t, vm.Step(hp, scopes.NewExecutionScopes(), hints))
	assert.Equal(t, []interface{}{"a", "b", "c"}, hp.calls)
	assert.Equal(t, -1, vm.FailedHintIndex)
}

func TestStepHintFailureAbortsStep(t *testing.T) {
	vm := newTestVM(t, 0x480680017fff8000, 7)
	hp := &recordingProcessor{failOn: "b"}
	hints := map[uint][]interface{}{0: {"a", "b", "c"}}
	err := vm.Step(hp, scopes.NewExecutionScopes(), hints)
	assert.Equal(t, errHintFailed, err)
	assert.Equal(t, 1, vm.FailedHintIndex)
	assert.Equal(t, []interface{}{"a", "b"}, hp.calls)
	assert.Equal(t, NewRelocatable(0, 0), vm.RunContext.PC)
	assert.Equal(t, uint(0), vm.CurrentStep)
	_, ok := vm.Segments.Memory.Get(NewRelocatable(1, 2))
	assert.False(t, ok, "instruction must not run")
}

func TestStepUnknownInstruction(t *testing.T) {
	vm := newTestVM(t)
	err := vm.Step(&recordingProcessor{}, scopes.NewExecutionScopes(), nil)
	assert.True(t, errors.Is(err, ErrUnknownMemoryCell), "have %v", err)
}

func TestEndRunRequiresMainScope(t *testing.T) {
	vm := newTestVM(t)
	sc := scopes.NewExecutionScopes()
	sc.EnterScope(nil)
	assert.True(t, errors.Is(vm.EndRun(sc), ErrUnfinishedScopes))
	require.NoError(t, sc.ExitScope())
	assert.NoError(t, vm.EndRun(sc))
}

func TestGetReturnValues(t *testing.T) {
	vm := newTestVM(t)
	vals, err := vm.GetReturnValues(2)
	require.NoError(t, err)
	assert.Equal(t, []MaybeRelocatable{NewInt(0), NewInt(0)}, vals)
	_, err = vm.GetReturnValues(3)
	assert.True(t, errors.Is(err, ErrOffsetUnderflow))
}
