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
	"reflect"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/common/math"
	"github.com/pkg/errors"
)

// SegmentManager allocates segments and moves data in and out of memory.
type SegmentManager struct {
	Memory *Memory
}

func NewSegmentManager() *SegmentManager {
	return &SegmentManager{Memory: NewMemory()}
}

// Add allocates a new segment and returns its base.
func (s *SegmentManager) Add() Relocatable {
	return NewRelocatable(s.Memory.allocate(), 0)
}

func (s *SegmentManager) NumSegments() int {
	return s.Memory.NumSegments()
}

// LoadData writes data contiguously from ptr and returns the address past
// the last cell.
func (s *SegmentManager) LoadData(ptr Relocatable, data []MaybeRelocatable) (Relocatable, error) {
	for i, v := range data {
		if err := s.Memory.Insert(ptr.Add(uint(i)), v); err != nil {
			return Relocatable{}, err
		}
	}
	return ptr.Add(uint(len(data))), nil
}

// GenArg converts arg into a memory word. Slices are written to a fresh
// segment whose base is returned.
func (s *SegmentManager) GenArg(arg interface{}, applyModulus bool) (MaybeRelocatable, error) {
	if items, ok := asSlice(arg); ok {
		base := s.Add()
		if _, err := s.WriteArg(base, items, applyModulus); err != nil {
			return MaybeRelocatable{}, err
		}
		return FromRelocatable(base), nil
	}
	return ToMaybeRelocatable(arg, applyModulus)
}

// WriteArg writes the elements of args from ptr, materialising nested
// slices into new segments.
func (s *SegmentManager) WriteArg(ptr Relocatable, args []interface{}, applyModulus bool) (Relocatable, error) {
	data := make([]MaybeRelocatable, 0, len(args))
	for _, a := range args {
		v, err := s.GenArg(a, applyModulus)
		if err != nil {
			return Relocatable{}, err
		}
		data = append(data, v)
	}
	return s.LoadData(ptr, data)
}

func asSlice(arg interface{}) ([]interface{}, bool) {
	switch v := arg.(type) {
	case []interface{}:
		return v, true
	case []MaybeRelocatable:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []felt.Felt:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// GetSegmentUsedSize is the highest written offset plus one.
func (s *SegmentManager) GetSegmentUsedSize(index int) (uint, error) {
	if index < 0 || index >= s.NumSegments() {
		return 0, errors.Wrapf(ErrUnallocatedSegment, "segment %d", index)
	}
	return s.Memory.segmentSize(index), nil
}

// ComputeEffectiveSizes returns the used size of every segment.
func (s *SegmentManager) ComputeEffectiveSizes() []uint {
	sizes := make([]uint, s.NumSegments())
	for i := range sizes {
		sizes[i] = s.Memory.segmentSize(i)
	}
	return sizes
}

// RelocateSegments returns the flat base address of every segment: segment
// 0 starts at 1 and each next segment follows the previous one's used size.
func (s *SegmentManager) RelocateSegments() ([]uint, error) {
	sizes := s.ComputeEffectiveSizes()
	table := make([]uint, len(sizes))
	next := uint64(1)
	for i, size := range sizes {
		table[i] = uint(next)
		var overflow bool
		if next, overflow = math.SafeAdd(next, uint64(size)); overflow {
			return nil, errors.Wrapf(ErrRelocation, "segment %d overflows the address space", i)
		}
	}
	return table, nil
}

// GetMemoryHoles counts cells of non-builtin segments that lie below the
// used size but were never accessed.
func (s *SegmentManager) GetMemoryHoles(builtinSegments map[int]bool) (uint, error) {
	var holes uint
	for i := 0; i < s.NumSegments(); i++ {
		if builtinSegments[i] {
			continue
		}
		used := s.Memory.segmentSize(i)
		accessed := s.Memory.AccessedCount(i)
		if accessed > used {
			return 0, errors.Errorf("segment %d has %d accessed cells but size %d", i, accessed, used)
		}
		holes += used - accessed
	}
	return holes, nil
}

// IsValidMemoryValue reports whether an address word points into an
// allocated segment.
func (s *SegmentManager) IsValidMemoryValue(v MaybeRelocatable) bool {
	r, ok := v.GetRelocatable()
	if !ok {
		return true
	}
	return r.SegmentIndex >= 0 && r.SegmentIndex < s.NumSegments()
}
