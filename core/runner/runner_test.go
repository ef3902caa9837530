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
	"bytes"
	"encoding/binary"
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/builtins"
	"github.com/Aurorachain/go-cairo/core/hint"
	"github.com/Aurorachain/go-cairo/core/program"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadProgram(t *testing.T, name string) *program.Program {
	t.Helper()
	prog, err := program.FromFile(filepath.Join("testdata", name), "main")
	require.NoError(t, err)
	return prog
}

func newRunner(t *testing.T, name string, cfg Config) *CairoRunner {
	t.Helper()
	r, err := New(loadProgram(t, name), cfg)
	require.NoError(t, err)
	return r
}

func returnFelt(t *testing.T, r *CairoRunner) felt.Felt {
	t.Helper()
	vals, err := r.GetReturnValues(1)
	require.NoError(t, err)
	f, ok := vals[0].GetFelt()
	require.True(t, ok, "return value %v is not a felt", vals[0])
	return f
}

func TestFibonacciMain(t *testing.T) {
	r := newRunner(t, "fibonacci.json", Config{Layout: "plain", TraceEnabled: true})
	require.NoError(t, r.CairoRun(CairoRunOptions{}))

	assert.Equal(t, Verified, r.State())
	assert.Equal(t, uint(80), r.VM().CurrentStep)
	assert.Equal(t, felt.FromUint64(144), returnFelt(t, r))

	size, err := r.GetSegmentUsedSize(0)
	require.NoError(t, err)
	assert.Equal(t, uint(24), size)

	trace, err := r.RelocatedTrace()
	require.NoError(t, err)
	require.Len(t, trace, 80)
	assert.Equal(t, vm.RelocatedTraceEntry{PC: 1, AP: 27, FP: 27}, trace[0])

	mem, err := r.RelocatedMemory()
	require.NoError(t, err)
	require.NoError(t, r.Relocate())
	again, err := r.RelocatedMemory()
	require.NoError(t, err)
	assert.Equal(t, mem, again, "relocation is not deterministic:\n%s", spew.Sdump(again))
}

func TestRunBudget(t *testing.T) {
	r := newRunner(t, "fibonacci.json", DefaultConfig)
	end, err := r.Initialize()
	require.NoError(t, err)
	start := r.VM().RunContext.PC

	budget := uint64(0)
	err = r.RunUntilPC(end, &budget)
	assert.True(t, errors.Is(err, ErrResourcesExhausted), "got %v", err)
	assert.Equal(t, start, r.VM().RunContext.PC)

	budget = 10
	err = r.RunUntilPC(end, &budget)
	assert.True(t, errors.Is(err, ErrResourcesExhausted), "got %v", err)
	assert.Equal(t, uint(10), r.VM().CurrentStep)
	assert.Equal(t, uint64(0), budget)

	budget = 100
	require.NoError(t, r.RunUntilPC(end, &budget))
	assert.Equal(t, uint64(30), budget)
}

func TestOutputProgram(t *testing.T) {
	r := newRunner(t, "output.json", Config{Layout: "small"})
	var out bytes.Buffer
	require.NoError(t, r.CairoRun(CairoRunOptions{Output: &out}))
	assert.Equal(t, "Program Output:\n7\n", out.String())

	assert.Equal(t, uint(4), r.VM().CurrentStep)
	assert.Equal(t, vm.NewRelocatable(1, 5), r.VM().RunContext.AP)

	b, ok := r.VM().Builtin(builtins.OutputName)
	require.True(t, ok)
	stop, ok := b.StopPtr()
	require.True(t, ok)
	assert.Equal(t, uint(1), stop)

	assert.Equal(t, vm.NewRelocatable(5, 0), r.AddSegment())

	res, err := r.GetExecutionResources()
	require.NoError(t, err)
	assert.Equal(t, uint(4), res.NSteps)
	assert.Equal(t, uint(0), res.NMemoryHoles)
	assert.Equal(t, map[string]uint{"output_builtin": 1}, res.BuiltinInstanceCounter)

	mem, err := r.RelocatedMemory()
	require.NoError(t, err)
	require.Len(t, mem, 12, spew.Sdump(mem))
	last := mem[len(mem)-1]
	assert.Equal(t, uint(12), last.Address)
	assert.Equal(t, felt.FromUint64(7), last.Value)
}

func TestOutputRequiresLayout(t *testing.T) {
	_, err := New(loadProgram(t, "output.json"), DefaultConfig)
	assert.Error(t, err)
}

func TestWriteOutputWithoutBuiltin(t *testing.T) {
	r := newRunner(t, "fibonacci.json", DefaultConfig)
	require.NoError(t, r.CairoRun(CairoRunOptions{}))
	assert.Equal(t, ErrNoOutputBuiltin, r.WriteOutput(ioutil.Discard))
}

func TestStrictBuiltins(t *testing.T) {
	for _, strict := range []bool{false, true} {
		r := newRunner(t, "output.json", Config{Layout: "small", StrictBuiltins: strict})
		end, err := r.Initialize()
		require.NoError(t, err)
		require.NoError(t, r.RunUntilPC(end, nil))

		base := r.AddAdditionalHashBuiltin()
		assert.Equal(t, vm.NewRelocatable(5, 0), base)
		n := len(r.VM().BuiltinRunners)
		assert.Equal(t, vm.NewRelocatable(6, 0), r.AddAdditionalHashBuiltin())
		assert.Len(t, r.VM().BuiltinRunners, n, "a second hash runner replaces the first")
		require.NoError(t, r.EndRun())

		err = r.ReadReturnValues()
		if strict {
			assert.True(t, errors.Is(err, ErrUndeclaredBuiltin), "got %v", err)
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestRunFromEntrypoint(t *testing.T) {
	r := newRunner(t, "fibonacci.json", DefaultConfig)
	require.NoError(t, r.RunFromEntrypoint(11, []interface{}{1, 1, 10}, DefaultRunOptions()))

	assert.Equal(t, Verified, r.State())
	assert.Equal(t, uint(74), r.VM().CurrentStep)
	assert.Equal(t, felt.FromUint64(144), returnFelt(t, r))
	assert.Len(t, r.VM().BuiltinRunners, len(builtins.CanonicalOrder))

	fp, err := r.InitialFP()
	require.NoError(t, err)
	assert.Equal(t, vm.NewRelocatable(1, 5), fp)
	end, ok := r.Get(vm.NewRelocatable(1, 4))
	require.True(t, ok)
	assert.Equal(t, vm.FromRelocatable(vm.NewRelocatable(len(builtins.CanonicalOrder)+2, 0)), end)
}

func TestRunFromEntrypointName(t *testing.T) {
	r := newRunner(t, "fibonacci.json", DefaultConfig)
	require.NoError(t, r.RunFromEntrypointName("fib", []interface{}{1, 1, 10}, DefaultRunOptions()))
	assert.Equal(t, felt.FromUint64(144), returnFelt(t, r))

	r = newRunner(t, "fibonacci.json", DefaultConfig)
	err := r.RunFromEntrypointName("nope", nil, DefaultRunOptions())
	assert.True(t, errors.Is(err, ErrInvalidArgs), "got %v", err)
}

func TestRunFromEntrypointTyped(t *testing.T) {
	r := newRunner(t, "fibonacci.json", DefaultConfig)
	opts := DefaultRunOptions()
	opts.Typed = true
	args := []interface{}{
		TypedArg{Kind: TypeStruct, Members: []TypedArg{
			{Kind: TypeFelt, Value: 1},
			{Kind: TypeFelt, Value: 1},
		}},
		TypedArg{Kind: TypeFelt, Value: 10},
	}
	require.NoError(t, r.RunFromEntrypoint(11, args, opts))
	assert.Equal(t, felt.FromUint64(144), returnFelt(t, r))

	r = newRunner(t, "fibonacci.json", DefaultConfig)
	err := r.RunFromEntrypoint(11, []interface{}{1, 1, 10}, opts)
	assert.True(t, errors.Is(err, ErrInvalidArgs), "got %v", err)
}

func TestRunFromEntrypointInvalidArgs(t *testing.T) {
	r := newRunner(t, "fibonacci.json", DefaultConfig)
	err := r.RunFromEntrypoint(11, []interface{}{1, "one", 10}, DefaultRunOptions())
	assert.True(t, errors.Is(err, ErrInvalidArgs), "got %v", err)

	r = newRunner(t, "fibonacci.json", DefaultConfig)
	opts := DefaultRunOptions()
	opts.ApplyModulus = false
	err = r.RunFromEntrypoint(11, []interface{}{-1, 1, 10}, opts)
	assert.True(t, errors.Is(err, ErrInvalidArgs), "got %v", err)
}

func TestRunFromEntrypointBudget(t *testing.T) {
	r := newRunner(t, "fibonacci.json", DefaultConfig)
	opts := DefaultRunOptions()
	budget := uint64(5)
	opts.Resources = &budget
	err := r.RunFromEntrypoint(11, []interface{}{1, 1, 10}, opts)
	assert.True(t, errors.Is(err, ErrResourcesExhausted), "got %v", err)
	assert.Equal(t, uint(5), r.VM().CurrentStep)
}

// counterProgram writes counter at ap from a hint, then asserts it is 7.
func counterProgram(code string) *program.Program {
	main := uint(0)
	return &program.Program{
		Data:      []vm.MaybeRelocatable{vm.NewInt(0x480680017fff8000), vm.NewInt(7), vm.NewInt(0x208b7fff7fff7ffe)},
		Main:      &main,
		MainScope: "__main__",
		Hints: map[uint][]program.HintParams{
			0: {{Code: code, AccessibleScopes: []string{"__main__", "__main__.main"}}},
		},
		ErrorAttributes: []program.Attribute{
			{Name: "error_message", StartPC: 0, EndPC: 2, Value: "counter mismatch"},
		},
		InstructionLocations: map[uint]program.InstructionLocation{
			0: {
				Inst:  program.Location{InputFile: program.InputFile{Filename: "counter.cairo"}, StartLine: 3, StartCol: 5},
				Hints: []program.HintLocation{{Location: program.Location{InputFile: program.InputFile{Filename: "counter.cairo"}, StartLine: 2, StartCol: 5}}},
			},
		},
	}
}

const counterHint = `memory.set(ap, counter); counter = felt.add(counter, 1);`

func TestHintLocals(t *testing.T) {
	r, err := New(counterProgram(counterHint), DefaultConfig)
	require.NoError(t, err)
	require.NoError(t, r.CairoRun(CairoRunOptions{HintLocals: map[string]interface{}{"counter": felt.FromUint64(7)}}))
	assert.Equal(t, felt.FromUint64(8), r.HintLocals()["counter"])
	assert.Equal(t, uint(2), r.VM().CurrentStep)
}

func TestVmException(t *testing.T) {
	r, err := New(counterProgram(counterHint), DefaultConfig)
	require.NoError(t, err)
	err = r.CairoRun(CairoRunOptions{HintLocals: map[string]interface{}{"counter": felt.FromUint64(8)}})
	require.Error(t, err)

	var exc *VmException
	require.True(t, errors.As(err, &exc))
	assert.True(t, errors.Is(err, vm.ErrDiffAssertValues), "got %v", err)
	assert.Equal(t, vm.NewRelocatable(0, 0), exc.PC)
	assert.Equal(t, -1, exc.HintIndex)
	assert.Nil(t, exc.HintLocation)
	assert.Equal(t, "Error message: counter mismatch", exc.ErrorAttr)
	assert.Contains(t, err.Error(), "counter.cairo:3:5: Error at pc=0:0:")
}

func TestHintException(t *testing.T) {
	r, err := New(counterProgram(`throw new Error("no counter");`), DefaultConfig)
	require.NoError(t, err)
	err = r.CairoRun(CairoRunOptions{})

	var exc *VmException
	require.True(t, errors.As(err, &exc), "got %v", err)
	assert.True(t, errors.Is(err, hint.ErrHintScript), "got %v", err)
	assert.Equal(t, 0, exc.HintIndex)
	require.NotNil(t, exc.HintLocation)
	assert.Equal(t, uint(2), exc.HintLocation.StartLine)
	assert.Equal(t, uint(0), r.VM().CurrentStep)
}

func TestCairoRunFiles(t *testing.T) {
	dir := t.TempDir()
	traceFile := filepath.Join(dir, "trace.bin")
	memoryFile := filepath.Join(dir, "memory.bin")

	r := newRunner(t, "output.json", Config{Layout: "small"})
	err := r.CairoRun(CairoRunOptions{TraceFile: traceFile})
	assert.True(t, errors.Is(err, vm.ErrTraceNotEnabled), "got %v", err)

	r = newRunner(t, "output.json", Config{Layout: "small", TraceEnabled: true})
	require.NoError(t, r.CairoRun(CairoRunOptions{TraceFile: traceFile, MemoryFile: memoryFile}))

	trace, err := ioutil.ReadFile(traceFile)
	require.NoError(t, err)
	require.Len(t, trace, 4*24)
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(trace[16:]), "first pc")

	mem, err := ioutil.ReadFile(memoryFile)
	require.NoError(t, err)
	assert.Len(t, mem, 12*40)
}

func TestEncoders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEncodedTrace([]vm.RelocatedTraceEntry{{PC: 1, AP: 2, FP: 3}}, &buf))
	want := make([]byte, 24)
	want[0], want[8], want[16] = 2, 3, 1
	assert.Equal(t, want, buf.Bytes())

	buf.Reset()
	require.NoError(t, WriteEncodedMemory([]vm.RelocatedCell{{Address: 5, Value: felt.FromUint64(0x0102)}}, &buf))
	want = make([]byte, 40)
	want[0], want[8], want[9] = 5, 0x02, 0x01
	assert.Equal(t, want, buf.Bytes())
}

func TestRunnerLifecycle(t *testing.T) {
	r := newRunner(t, "fibonacci.json", DefaultConfig)
	assert.Equal(t, ErrNotInitialized, r.RunUntilPC(vm.Relocatable{}, nil))
	assert.Equal(t, ErrRunNotFinished, r.Relocate())
	_, err := r.InitialFP()
	assert.Equal(t, ErrNotInitialized, err)

	require.NoError(t, r.CairoRun(CairoRunOptions{}))
	assert.Equal(t, ErrEndRunCalledTwice, r.EndRun())
	_, err = r.Initialize()
	assert.Equal(t, ErrAlreadyInitialized, err)
	_, err = r.RelocatedTrace()
	assert.Equal(t, vm.ErrTraceNotEnabled, err)

	seg := r.AddSegment()
	require.NoError(t, r.Insert(seg, 5))
	v, ok := r.Get(seg)
	require.True(t, ok)
	assert.Equal(t, vm.NewInt(5), v)
	assert.True(t, errors.Is(r.Insert(seg.Add(1), -1), vm.ErrArgumentOutOfRange))
	assert.True(t, errors.Is(r.Insert(seg, 6), vm.ErrDuplicateInconsistentWrite))

	require.NoError(t, r.MarkAsAccessed(seg, 1))
	vals, err := r.GetRange(seg, 1)
	require.NoError(t, err)
	assert.Equal(t, []vm.MaybeRelocatable{vm.NewInt(5)}, vals)
}

func TestMissingMain(t *testing.T) {
	r, err := New(&program.Program{}, DefaultConfig)
	require.NoError(t, err)
	_, err = r.Initialize()
	assert.Equal(t, ErrMissingMain, err)
}
