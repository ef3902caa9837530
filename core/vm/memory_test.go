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

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWriteOnce(t *testing.T) {
	s := NewSegmentManager()
	base := s.Add()

	require.NoError(t, s.Memory.Insert(base, NewInt(5)))
	require.NoError(t, s.Memory.Insert(base, NewInt(5)), "rewriting the same value")

	err := s.Memory.Insert(base, NewInt(6))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateInconsistentWrite))
	var merr *MemoryError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, base, merr.Addr)

	v, ok := s.Memory.Get(base)
	require.True(t, ok)
	assert.Equal(t, NewInt(5), v, "failed write must not change the cell")

	err = s.Memory.Insert(base, FromRelocatable(base))
	assert.True(t, errors.Is(err, ErrDuplicateInconsistentWrite), "felt and address never compare equal")
}

func TestMemoryUnallocatedSegment(t *testing.T) {
	s := NewSegmentManager()
	err := s.Memory.Insert(NewRelocatable(3, 0), NewInt(1))
	if !errors.Is(err, ErrUnallocatedSegment) {
		t.Fatalf("have %v, want %v", err, ErrUnallocatedSegment)
	}
	if _, ok := s.Memory.Get(NewRelocatable(-1, 0)); ok {
		t.Fatal("temporary segment read succeeded")
	}
}

func TestMemoryGetRange(t *testing.T) {
	s := NewSegmentManager()
	base := s.Add()
	end, err := s.LoadData(base, []MaybeRelocatable{NewInt(1), NewInt(2), NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, NewRelocatable(0, 3), end)

	vals, err := s.Memory.GetRange(base, 3)
	require.NoError(t, err)
	assert.Equal(t, []MaybeRelocatable{NewInt(1), NewInt(2), NewInt(3)}, vals)

	require.NoError(t, s.Memory.Insert(base.Add(5), NewInt(9)))
	_, err = s.Memory.GetRange(base, 6)
	assert.True(t, errors.Is(err, ErrUnknownMemoryCell), "hole at offset 3")

	size, err := s.GetSegmentUsedSize(0)
	require.NoError(t, err)
	assert.Equal(t, uint(6), size)
}

func TestMemoryTypedGetters(t *testing.T) {
	s := NewSegmentManager()
	base := s.Add()
	require.NoError(t, s.Memory.Insert(base, FromRelocatable(base.Add(4))))
	require.NoError(t, s.Memory.Insert(base.Add(1), NewInt(7)))

	r, err := s.Memory.GetRelocatable(base)
	require.NoError(t, err)
	assert.Equal(t, base.Add(4), r)
	_, err = s.Memory.GetFelt(base)
	assert.True(t, errors.Is(err, ErrExpectedInteger))

	f, err := s.Memory.GetFelt(base.Add(1))
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(7), f)
	_, err = s.Memory.GetRelocatable(base.Add(1))
	assert.True(t, errors.Is(err, ErrExpectedRelocatable))
}

func TestMemoryValidationRule(t *testing.T) {
	s := NewSegmentManager()
	s.Add()
	seg := s.Add()
	calls := 0
	errTooBig := errors.New("too big")
	s.Memory.AddValidationRule(seg.SegmentIndex, func(mem *Memory, addr Relocatable) ([]Relocatable, error) {
		calls++
		f, err := mem.GetFelt(addr)
		if err != nil {
			return nil, err
		}
		if v, ok := f.Uint64(); !ok || v > 10 {
			return nil, errTooBig
		}
		return []Relocatable{addr}, nil
	})
	require.NoError(t, s.Memory.Insert(seg, NewInt(3)))
	require.NoError(t, s.Memory.Insert(seg, NewInt(3)))
	assert.Equal(t, 1, calls, "rewrites of validated cells are not revalidated")
	assert.Equal(t, errTooBig, s.Memory.Insert(seg.Add(1), NewInt(11)))
	require.NoError(t, s.Memory.Insert(NewRelocatable(0, 0), NewInt(11)), "rules are per segment")
}

func TestMemorySequentialGrowth(t *testing.T) {
	s := NewSegmentManager()
	base := s.Add()
	const n = 200000
	for i := uint(0); i < n; i++ {
		require.NoError(t, s.Memory.Insert(base.Add(i), NewInt(uint64(i))))
	}
	seg := s.Memory.data[base.SegmentIndex]
	assert.Len(t, seg, n)
	assert.True(t, cap(seg) < 2*n+2, "capacity %d", cap(seg))

	v, ok := s.Memory.Get(base.Add(n - 1))
	require.True(t, ok)
	assert.Equal(t, NewInt(n-1), v)

	// A gap leaves holes that stay unwritten.
	require.NoError(t, s.Memory.Insert(base.Add(n+10), NewInt(1)))
	_, ok = s.Memory.Get(base.Add(n + 5))
	assert.False(t, ok)
	assert.Len(t, s.Memory.data[base.SegmentIndex], n+11)
}

func TestMemoryHugeOffset(t *testing.T) {
	s := NewSegmentManager()
	base := s.Add()
	for _, off := range []uint{MaxSegmentSize, 1 << 40, 1 << 62} {
		err := s.Memory.Insert(NewRelocatable(base.SegmentIndex, off), NewInt(1))
		require.Error(t, err, "offset %d", off)
		assert.True(t, errors.Is(err, ErrSegmentTooLarge))
		var merr *MemoryError
		require.True(t, errors.As(err, &merr))
		assert.Equal(t, off, merr.Addr.Offset)
	}
	assert.Empty(t, s.Memory.data[base.SegmentIndex], "failed inserts allocate nothing")
}
