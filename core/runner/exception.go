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
	"fmt"
	"strings"

	"github.com/Aurorachain/go-cairo/core/program"
	"github.com/Aurorachain/go-cairo/core/vm"
)

const maxTracebackEntries = 20

// VmException is a step failure annotated with where in the program it
// happened.
type VmException struct {
	PC               vm.Relocatable
	InstLocation     *program.Location
	HintLocation     *program.Location // set when a hint failed
	HintIndex        int
	AccessibleScopes []string
	ErrorAttr        string
	Traceback        string
	Err              error
}

func (e *VmException) Error() string {
	var b strings.Builder
	if e.ErrorAttr != "" {
		b.WriteString(e.ErrorAttr)
		b.WriteString("\n")
	}
	loc := e.InstLocation
	if e.HintLocation != nil {
		loc = e.HintLocation
	}
	if loc != nil {
		fmt.Fprintf(&b, "%s: ", formatLocation(loc))
	}
	fmt.Fprintf(&b, "Error at pc=%v:\n%v", e.PC, e.Err)
	if e.Traceback != "" {
		b.WriteString("\n")
		b.WriteString(e.Traceback)
	}
	return b.String()
}

func (e *VmException) Unwrap() error { return e.Err }

func formatLocation(loc *program.Location) string {
	return fmt.Sprintf("%s:%d:%d", loc.InputFile.Filename, loc.StartLine, loc.StartCol)
}

func (r *CairoRunner) vmException(err error) error {
	pc := r.vm.RunContext.PC
	e := &VmException{
		PC:        pc,
		HintIndex: r.vm.FailedHintIndex,
		ErrorAttr: r.errorAttribute(pc.Offset),
		Traceback: r.traceback(),
		Err:       err,
	}
	if loc, ok := r.program.InstructionLocations[pc.Offset]; ok {
		inst := loc.Inst
		e.InstLocation = &inst
		e.AccessibleScopes = loc.AccessibleScopes
		if idx := r.vm.FailedHintIndex; idx >= 0 && idx < len(loc.Hints) {
			hl := loc.Hints[idx].Location
			e.HintLocation = &hl
		}
	}
	return e
}

// errorAttribute joins the error_message attributes whose pc range holds pc.
func (r *CairoRunner) errorAttribute(pc uint) string {
	var msgs []string
	for _, attr := range r.program.ErrorAttributes {
		if attr.StartPC <= pc && pc < attr.EndPC {
			msgs = append(msgs, "Error message: "+attr.Value)
		}
	}
	return strings.Join(msgs, "\n")
}

// traceback walks the saved frame pointers and lists the call
// instructions of the active frames, outermost first.
func (r *CairoRunner) traceback() string {
	mem := r.vm.Segments.Memory
	fp := r.vm.RunContext.FP
	var calls []vm.Relocatable
	for i := 0; i < maxTracebackEntries; i++ {
		savedAddr, err := fp.SubUint(2)
		if err != nil {
			break
		}
		savedFP, err := mem.GetRelocatable(savedAddr)
		if err != nil || savedFP == fp {
			break
		}
		retPC, err := mem.GetRelocatable(savedAddr.Add(1))
		if err != nil {
			break
		}
		callPC, ok := r.callBefore(retPC)
		if !ok {
			break
		}
		calls = append(calls, callPC)
		fp = savedFP
	}
	if len(calls) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Cairo traceback (most recent call last):")
	for i := len(calls) - 1; i >= 0; i-- {
		pc := calls[i]
		if loc, ok := r.program.InstructionLocations[pc.Offset]; ok {
			fmt.Fprintf(&b, "\n%s: (pc=%v)", formatLocation(&loc.Inst), pc)
		} else {
			fmt.Fprintf(&b, "\nUnknown location (pc=%v)", pc)
		}
	}
	return b.String()
}

// callBefore finds the call instruction a return address follows.
func (r *CairoRunner) callBefore(ret vm.Relocatable) (vm.Relocatable, bool) {
	if ret.SegmentIndex != r.programBase.SegmentIndex {
		return vm.Relocatable{}, false
	}
	for _, size := range []uint{2, 1} {
		if ret.Offset < size {
			continue
		}
		at := vm.NewRelocatable(ret.SegmentIndex, ret.Offset-size)
		word, err := r.vm.Segments.Memory.GetFelt(at)
		if err != nil {
			continue
		}
		w, ok := word.Uint64()
		if !ok {
			continue
		}
		inst, err := vm.DecodeInstruction(w)
		if err == nil && inst.Opcode == vm.Call && inst.Size() == size {
			return at, true
		}
	}
	return vm.Relocatable{}, false
}
