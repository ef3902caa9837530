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

// ExecutionResources summarizes what a run consumed.
type ExecutionResources struct {
	NSteps                 uint
	NMemoryHoles           uint
	BuiltinInstanceCounter map[string]uint // keyed "<name>_builtin"
}

func (r *CairoRunner) GetExecutionResources() (*ExecutionResources, error) {
	builtinSegments := make(map[int]bool, len(r.vm.BuiltinRunners))
	counter := make(map[string]uint, len(r.vm.BuiltinRunners))
	for _, b := range r.vm.BuiltinRunners {
		builtinSegments[b.Base().SegmentIndex] = true
		n, err := b.GetUsedInstances(r.vm.Segments)
		if err != nil {
			return nil, err
		}
		counter[b.Name()+"_builtin"] = n
	}
	holes, err := r.vm.Segments.GetMemoryHoles(builtinSegments)
	if err != nil {
		return nil, err
	}
	return &ExecutionResources{
		NSteps:                 r.vm.CurrentStep,
		NMemoryHoles:           holes,
		BuiltinInstanceCounter: counter,
	}, nil
}

// builtinBounds is the end of the region of each builtin segment a run
// may have written: the stop pointer once known, the used size otherwise.
func (r *CairoRunner) builtinBounds() (map[int]uint, error) {
	bounds := make(map[int]uint, len(r.vm.BuiltinRunners))
	for _, b := range r.vm.BuiltinRunners {
		if stop, ok := b.StopPtr(); ok && b.Included() {
			bounds[b.Base().SegmentIndex] = stop
			continue
		}
		used, err := b.GetUsedCells(r.vm.Segments)
		if err != nil {
			return nil, err
		}
		bounds[b.Base().SegmentIndex] = used
	}
	return bounds, nil
}
