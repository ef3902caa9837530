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

// Package dict tracks the Cairo dictionaries created by hints. Each dict
// owns a segment into which (key, prev_value, new_value) records are
// appended.
package dict

import (
	"errors"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/vm"
	pkgerrors "github.com/pkg/errors"
)

// AccessSize is the number of cells of one access record.
const AccessSize = 3

var (
	ErrNoDictTracker     = errors.New("no dict tracker for segment")
	ErrMismatchedDictPtr = errors.New("dict pointer does not match tracker")
	ErrNoSuchKey         = errors.New("key not found in dict")
	ErrDictPtrSegment    = errors.New("pointer is outside the dict segment")
	ErrDictPtrBackwards  = errors.New("dict pointer cannot move backwards")
)

// Tracker follows one dict: its current end pointer and the key/value
// state at that pointer.
type Tracker struct {
	CurrentPtr vm.Relocatable
	data       map[felt.Felt]felt.Felt
	defaultVal *felt.Felt
}

func newTracker(base vm.Relocatable, initial map[felt.Felt]felt.Felt, def *felt.Felt) *Tracker {
	data := make(map[felt.Felt]felt.Felt, len(initial))
	for k, v := range initial {
		data[k] = v
	}
	return &Tracker{CurrentPtr: base, data: data, defaultVal: def}
}

// Default returns the default value of a default dict.
func (t *Tracker) Default() (felt.Felt, bool) {
	if t.defaultVal == nil {
		return felt.Felt{}, false
	}
	return *t.defaultVal, true
}

// Get looks a key up without recording an access.
func (t *Tracker) Get(key felt.Felt) (felt.Felt, error) {
	if v, ok := t.data[key]; ok {
		return v, nil
	}
	if t.defaultVal != nil {
		return *t.defaultVal, nil
	}
	return felt.Felt{}, pkgerrors.Wrapf(ErrNoSuchKey, "%v", key)
}

// Set stores a value without recording an access.
func (t *Tracker) Set(key, value felt.Felt) {
	t.data[key] = value
}

// Len is the number of keys held explicitly.
func (t *Tracker) Len() int {
	return len(t.data)
}

func (t *Tracker) appendAccess(mem *vm.Memory, key, prev, next felt.Felt) error {
	_, err := loadFelts(mem, t.CurrentPtr, key, prev, next)
	if err != nil {
		return err
	}
	t.CurrentPtr = t.CurrentPtr.Add(AccessSize)
	return nil
}

func loadFelts(mem *vm.Memory, ptr vm.Relocatable, values ...felt.Felt) (vm.Relocatable, error) {
	for i, v := range values {
		if err := mem.Insert(ptr.Add(uint(i)), vm.FromFelt(v)); err != nil {
			return vm.Relocatable{}, err
		}
	}
	return ptr.Add(uint(len(values))), nil
}

// Read returns the value of key and records (key, value, value). Absent
// keys fall back to the default or fail.
func (t *Tracker) Read(mem *vm.Memory, key felt.Felt) (felt.Felt, error) {
	v, err := t.Get(key)
	if err != nil {
		return felt.Felt{}, err
	}
	if err := t.appendAccess(mem, key, v, v); err != nil {
		return felt.Felt{}, err
	}
	return v, nil
}

// Write stores value under key and records (key, previous, value).
func (t *Tracker) Write(mem *vm.Memory, key, value felt.Felt) error {
	prev, err := t.Get(key)
	if err != nil {
		return err
	}
	if err := t.appendAccess(mem, key, prev, value); err != nil {
		return err
	}
	t.data[key] = value
	return nil
}

// AdvancePtr moves the current pointer forward within the dict segment.
func (t *Tracker) AdvancePtr(newPtr vm.Relocatable) error {
	if newPtr.SegmentIndex != t.CurrentPtr.SegmentIndex {
		return pkgerrors.Wrapf(ErrDictPtrSegment, "%v, dict at %v", newPtr, t.CurrentPtr)
	}
	if newPtr.Offset < t.CurrentPtr.Offset {
		return pkgerrors.Wrapf(ErrDictPtrBackwards, "%v before %v", newPtr, t.CurrentPtr)
	}
	t.CurrentPtr = newPtr
	return nil
}

// Manager maps dict segments to their trackers.
type Manager struct {
	trackers map[int]*Tracker
}

func NewManager() *Manager {
	return &Manager{trackers: make(map[int]*Tracker)}
}

// NewDict allocates a segment for a dict seeded with initial.
func (m *Manager) NewDict(segments *vm.SegmentManager, initial map[felt.Felt]felt.Felt) (vm.Relocatable, error) {
	base := segments.Add()
	m.trackers[base.SegmentIndex] = newTracker(base, initial, nil)
	return base, nil
}

// NewDefaultDict is NewDict where absent keys read as def.
func (m *Manager) NewDefaultDict(segments *vm.SegmentManager, def felt.Felt, initial map[felt.Felt]felt.Felt) (vm.Relocatable, error) {
	base := segments.Add()
	m.trackers[base.SegmentIndex] = newTracker(base, initial, &def)
	return base, nil
}

// GetTracker resolves the dict owning ptr, which must be its current end.
func (m *Manager) GetTracker(ptr vm.Relocatable) (*Tracker, error) {
	t, ok := m.trackers[ptr.SegmentIndex]
	if !ok {
		return nil, pkgerrors.Wrapf(ErrNoDictTracker, "segment %d", ptr.SegmentIndex)
	}
	if t.CurrentPtr != ptr {
		return nil, pkgerrors.Wrapf(ErrMismatchedDictPtr, "have %v, tracker at %v", ptr, t.CurrentPtr)
	}
	return t, nil
}

// Len is the number of live dicts.
func (m *Manager) Len() int {
	return len(m.trackers)
}
