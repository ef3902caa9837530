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

package program

import (
	"math/big"
	"testing"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFibonacci(t *testing.T) {
	prog, err := FromFile("testdata/fibonacci.json", "main")
	require.NoError(t, err)

	require.Len(t, prog.Data, 24)
	assert.Equal(t, vm.FromFelt(felt.FromUint64(0x480680017fff8000)), prog.Data[0])
	assert.Equal(t, vm.FromFelt(felt.FromUint64(0x90)), prog.Data[9])
	assert.Equal(t, vm.FromFelt(felt.FromInt64(-10)), prog.Data[22])
	assert.Empty(t, prog.Builtins)
	assert.Equal(t, "__main__", prog.MainScope)

	require.NotNil(t, prog.Main)
	assert.Equal(t, uint(0), *prog.Main)
	pc, ok := prog.EntrypointPC("fib")
	assert.True(t, ok)
	assert.Equal(t, uint(11), pc)
	_, ok = prog.EntrypointPC("missing")
	assert.False(t, ok)

	assert.Equal(t, felt.FromUint64(144), prog.Constants["__main__.FIB_TARGET"])
	assert.Equal(t, felt.FromInt64(-1), prog.Constants["__main__.MINUS_ONE"])
	assert.Equal(t, big.NewInt(-1), prog.Identifiers["__main__.MINUS_ONE"].Value)

	require.Len(t, prog.References, 3)
	ref := prog.References[2].Parsed
	assert.Equal(t, OffsetValue{Kind: OffsetRegister, Register: vm.FP, Value: -3}, ref.Offset1)
	assert.True(t, ref.Dereference)
	require.NotNil(t, ref.ApTrackingData)
	assert.Equal(t, ApTracking{Group: 1}, *ref.ApTrackingData)

	loc, ok := prog.InstructionLocations[8]
	require.True(t, ok)
	assert.Equal(t, "fibonacci.cairo", loc.Inst.InputFile.Filename)
	assert.Equal(t, uint(4), loc.Inst.StartLine)
}

func TestResolveIdentifier(t *testing.T) {
	prog, err := FromFile("testdata/fibonacci.json", "")
	require.NoError(t, err)
	assert.Nil(t, prog.Main)

	id, ok := prog.ResolveIdentifier("__main__.run")
	require.True(t, ok)
	assert.Equal(t, "function", id.Type)
	assert.Equal(t, uint(0), *id.PC)

	pc, ok := prog.EntrypointPC("run")
	assert.True(t, ok)
	assert.Equal(t, uint(0), pc)

	st, ok := prog.Struct("__main__.fib.Args")
	require.True(t, ok)
	assert.Equal(t, uint(3), *st.Size)
	assert.Equal(t, uint(2), st.Members["n"].Offset)
	_, ok = prog.Struct("__main__.fib")
	assert.False(t, ok)
}

func TestLoadOutputProgram(t *testing.T) {
	prog, err := FromFile("testdata/output.json", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"output"}, prog.Builtins)
	require.Len(t, prog.ErrorAttributes, 1)
	assert.Equal(t, "output mismatch", prog.ErrorAttributes[0].Value)
	assert.Equal(t, uint(2), prog.ErrorAttributes[0].StartPC)
	assert.Empty(t, prog.InstructionLocations)
}

func TestLoadHints(t *testing.T) {
	src := `{
		"builtins": [],
		"data": ["0x208b7fff7fff7ffe"],
		"hints": {
			"0": [{
				"accessible_scopes": ["__main__", "__main__.main"],
				"code": "memory[ap] = segments.add()",
				"flow_tracking_data": {"ap_tracking": {"group": 0, "offset": 0}, "reference_ids": {"__main__.main.x": 0}}
			}]
		},
		"identifiers": {},
		"reference_manager": {"references": [{"ap_tracking_data": {"group": 0, "offset": 0}, "pc": 0, "value": "[cast(fp + (-3), felt*)]"}]}
	}`
	prog, err := FromBytes([]byte(src), "main")
	require.NoError(t, err)
	require.Len(t, prog.Hints[0], 1)
	h := prog.Hints[0][0]
	assert.Equal(t, "memory[ap] = segments.add()", h.Code)
	assert.Equal(t, uint(0), h.FlowTrackingData.ReferenceIDs["__main__.main.x"])
	assert.Nil(t, prog.Main)
}

func TestLoadInvalid(t *testing.T) {
	for _, src := range []string{
		`{"data": ["0xzz"]}`,
		`{"prime": "0x11", "data": []}`,
		`{"data": [], "hints": {"pc": []}}`,
		`{"data": [], "reference_manager": {"references": [{"value": "cast(sp, felt)"}]}}`,
		`not json`,
	} {
		_, err := FromBytes([]byte(src), "main")
		assert.True(t, errors.Cause(err) == ErrInvalidProgram, src)
	}
}
