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
	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/pkg/errors"
	"gopkg.in/fatih/set.v0"
)

// ValidationRule checks a freshly written cell of a builtin segment and
// returns the addresses it validated.
type ValidationRule func(mem *Memory, addr Relocatable) ([]Relocatable, error)

// MaxSegmentSize bounds the offsets a single segment can hold.
const MaxSegmentSize = 1 << 26

type cell struct {
	value MaybeRelocatable
	ok    bool
}

// Memory is a collection of write-once segments of optional cells.
type Memory struct {
	data            [][]cell
	validationRules map[int]ValidationRule
	validated       *set.SetNonTS
	accessed        *set.SetNonTS
}

func NewMemory() *Memory {
	return &Memory{
		validationRules: make(map[int]ValidationRule),
		validated:       set.NewNonTS(),
		accessed:        set.NewNonTS(),
	}
}

// NumSegments is the number of allocated segments.
func (m *Memory) NumSegments() int {
	return len(m.data)
}

func (m *Memory) allocate() int {
	m.data = append(m.data, nil)
	return len(m.data) - 1
}

// grow extends seg to length n, doubling its capacity when it runs out.
func grow(seg []cell, n int) []cell {
	if n <= cap(seg) {
		return seg[:n]
	}
	c := 2 * cap(seg)
	if c < n {
		c = n
	}
	if c > MaxSegmentSize {
		c = MaxSegmentSize
	}
	grown := make([]cell, n, c)
	copy(grown, seg)
	return grown
}

func (m *Memory) segment(index int) ([]cell, bool) {
	if index < 0 || index >= len(m.data) {
		return nil, false
	}
	return m.data[index], true
}

// Insert writes value at addr. Rewriting an equal value succeeds without
// effect; a different value fails.
func (m *Memory) Insert(addr Relocatable, value MaybeRelocatable) error {
	seg, ok := m.segment(addr.SegmentIndex)
	if !ok {
		return &MemoryError{Addr: addr, Err: ErrUnallocatedSegment}
	}
	if addr.Offset < uint(len(seg)) && seg[addr.Offset].ok {
		if old := seg[addr.Offset].value; old != value {
			return &MemoryError{Addr: addr, Old: &old, New: &value, Err: ErrDuplicateInconsistentWrite}
		}
		return nil
	}
	if addr.Offset >= uint(len(seg)) {
		if addr.Offset >= MaxSegmentSize {
			return &MemoryError{Addr: addr, Err: ErrSegmentTooLarge}
		}
		seg = grow(seg, int(addr.Offset)+1)
		m.data[addr.SegmentIndex] = seg
	}
	seg[addr.Offset] = cell{value: value, ok: true}
	return m.validate(addr)
}

func (m *Memory) validate(addr Relocatable) error {
	rule, ok := m.validationRules[addr.SegmentIndex]
	if !ok || m.validated.Has(addr) {
		return nil
	}
	done, err := rule(m, addr)
	if err != nil {
		return err
	}
	for _, a := range done {
		m.validated.Add(a)
	}
	return nil
}

func (m *Memory) Get(addr Relocatable) (MaybeRelocatable, bool) {
	seg, ok := m.segment(addr.SegmentIndex)
	if !ok || addr.Offset >= uint(len(seg)) || !seg[addr.Offset].ok {
		return MaybeRelocatable{}, false
	}
	return seg[addr.Offset].value, true
}

func (m *Memory) GetFelt(addr Relocatable) (felt.Felt, error) {
	v, ok := m.Get(addr)
	if !ok {
		return felt.Felt{}, &MemoryError{Addr: addr, Err: ErrUnknownMemoryCell}
	}
	f, ok := v.GetFelt()
	if !ok {
		return felt.Felt{}, &MemoryError{Addr: addr, Err: ErrExpectedInteger}
	}
	return f, nil
}

func (m *Memory) GetRelocatable(addr Relocatable) (Relocatable, error) {
	v, ok := m.Get(addr)
	if !ok {
		return Relocatable{}, &MemoryError{Addr: addr, Err: ErrUnknownMemoryCell}
	}
	r, ok := v.GetRelocatable()
	if !ok {
		return Relocatable{}, &MemoryError{Addr: addr, Err: ErrExpectedRelocatable}
	}
	return r, nil
}

// GetRange reads n consecutive cells. Any hole is an error.
func (m *Memory) GetRange(addr Relocatable, n uint) ([]MaybeRelocatable, error) {
	values := make([]MaybeRelocatable, 0, n)
	for i := uint(0); i < n; i++ {
		v, ok := m.Get(addr.Add(i))
		if !ok {
			return nil, &MemoryError{Addr: addr.Add(i), Err: ErrUnknownMemoryCell}
		}
		values = append(values, v)
	}
	return values, nil
}

func (m *Memory) GetFeltRange(addr Relocatable, n uint) ([]felt.Felt, error) {
	values := make([]felt.Felt, 0, n)
	for i := uint(0); i < n; i++ {
		f, err := m.GetFelt(addr.Add(i))
		if err != nil {
			return nil, err
		}
		values = append(values, f)
	}
	return values, nil
}

// AddValidationRule installs the rule for every later insert into segment.
func (m *Memory) AddValidationRule(segment int, rule ValidationRule) {
	m.validationRules[segment] = rule
}

// ValidateExistingMemory runs the installed rules over cells written
// before the rules existed.
func (m *Memory) ValidateExistingMemory() error {
	for index := range m.validationRules {
		seg, ok := m.segment(index)
		if !ok {
			continue
		}
		for off, c := range seg {
			if !c.ok {
				continue
			}
			if err := m.validate(NewRelocatable(index, uint(off))); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Memory) MarkAsAccessed(addr Relocatable) {
	m.accessed.Add(addr)
}

func (m *Memory) IsAccessed(addr Relocatable) bool {
	return m.accessed.Has(addr)
}

// AccessedCount counts the accessed addresses of a segment.
func (m *Memory) AccessedCount(segment int) uint {
	var n uint
	m.accessed.Each(func(item interface{}) bool {
		if item.(Relocatable).SegmentIndex == segment {
			n++
		}
		return true
	})
	return n
}

// segmentSize is the highest written offset plus one.
func (m *Memory) segmentSize(index int) uint {
	seg, _ := m.segment(index)
	return uint(len(seg))
}

// ForEach visits the written cells of a segment in offset order.
func (m *Memory) ForEach(segment int, fn func(addr Relocatable, value MaybeRelocatable) error) error {
	seg, ok := m.segment(segment)
	if !ok {
		return errors.Wrapf(ErrUnallocatedSegment, "segment %d", segment)
	}
	for off, c := range seg {
		if !c.ok {
			continue
		}
		if err := fn(NewRelocatable(segment, uint(off)), c.value); err != nil {
			return err
		}
	}
	return nil
}
