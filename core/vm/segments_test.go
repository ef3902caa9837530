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
	"math/big"
	"testing"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArgNested(t *testing.T) {
	s := NewSegmentManager()
	base := s.Add()
	end, err := s.WriteArg(base, []interface{}{1, []interface{}{2, []int{3, 4}}, big.NewInt(-1)}, true)
	require.NoError(t, err)
	assert.Equal(t, base.Add(3), end)
	assert.Equal(t, 3, s.NumSegments())

	inner, err := s.Memory.GetRelocatable(base.Add(1))
	require.NoError(t, err)
	assert.Equal(t, NewRelocatable(1, 0), inner)
	deepest, err := s.Memory.GetRelocatable(inner.Add(1))
	require.NoError(t, err)
	vals, err := s.Memory.GetRange(deepest, 2)
	require.NoError(t, err)
	assert.Equal(t, []MaybeRelocatable{NewInt(3), NewInt(4)}, vals)

	last, err := s.Memory.GetFelt(base.Add(2))
	require.NoError(t, err)
	assert.Equal(t, felt.FromInt64(-1), last)
}

func TestGenArgWithoutModulus(t *testing.T) {
	s := NewSegmentManager()
	if _, err := s.GenArg([]interface{}{felt.Prime()}, false); err == nil {
		t.Fatal("expected out of range error")
	}
	v, err := s.GenArg(NewRelocatable(0, 0), false)
	if err != nil || !v.IsRelocatable() {
		t.Fatalf("have %v %v", v, err)
	}
}

func TestRelocateSegments(t *testing.T) {
	s := NewSegmentManager()
	for i := 0; i < 4; i++ {
		s.Add()
	}
	_, err := s.LoadData(NewRelocatable(0, 0), []MaybeRelocatable{NewInt(1), NewInt(2), NewInt(3)})
	require.NoError(t, err)
	require.NoError(t, s.Memory.Insert(NewRelocatable(1, 4), FromRelocatable(NewRelocatable(3, 1))))
	require.NoError(t, s.Memory.Insert(NewRelocatable(3, 1), NewInt(7)))

	table, err := s.RelocateSegments()
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 4, 9, 9}, table)

	again, err := s.RelocateSegments()
	require.NoError(t, err)
	assert.Equal(t, table, again, "relocation is deterministic")

	cells, err := s.RelocateMemory(table)
	require.NoError(t, err)
	assert.Equal(t, []RelocatedCell{
		{1, felt.FromUint64(1)},
		{2, felt.FromUint64(2)},
		{3, felt.FromUint64(3)},
		{8, felt.FromUint64(10)},
		{10, felt.FromUint64(7)},
	}, cells)
}

func TestMemoryHoles(t *testing.T) {
	s := NewSegmentManager()
	s.Add()
	b := s.Add()
	_, err := s.LoadData(NewRelocatable(0, 0), []MaybeRelocatable{NewInt(1), NewInt(2), NewInt(3), NewInt(4)})
	require.NoError(t, err)
	require.NoError(t, s.Memory.Insert(b.Add(2), NewInt(1)))
	s.Memory.MarkAsAccessed(NewRelocatable(0, 0))
	s.Memory.MarkAsAccessed(NewRelocatable(0, 3))

	holes, err := s.GetMemoryHoles(map[int]bool{b.SegmentIndex: true})
	require.NoError(t, err)
	assert.Equal(t, uint(2), holes)

	holes, err = s.GetMemoryHoles(nil)
	require.NoError(t, err)
	assert.Equal(t, uint(5), holes)
}
