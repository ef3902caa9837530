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

// Package hint runs the hints attached to program instructions. The
// hints the Cairo compiler emits most often are executed natively; any
// other hint is a JavaScript snippet run on the embedded engine.
package hint

import (
	"sort"
	"strings"
	"time"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/program"
	"github.com/Aurorachain/go-cairo/core/scopes"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/Aurorachain/go-cairo/internal/jsre"
	"github.com/Aurorachain/go-cairo/log"
	"github.com/Aurorachain/go-cairo/metrics"
	"github.com/pkg/errors"
)

var (
	execTimer     = metrics.NewTimer("hint/exec")
	nativeMeter   = metrics.NewMeter("hint/native")
	scriptedMeter = metrics.NewMeter("hint/scripted")
)

// HintData is a hint compiled against its program: its kind, its code and
// the references its ids resolve to, keyed by trailing name.
type HintData struct {
	Kind             Kind
	Code             string
	Ids              map[string]program.HintReference
	ApTracking       program.ApTracking
	AccessibleScopes []string
}

type structInfo struct {
	fullName string
	size     uint
	members  map[string]program.Member
}

// Processor compiles and executes the hints of one program. It also holds
// the host supplied hint locals, which scripted hints may update.
type Processor struct {
	program      *program.Program
	re           *jsre.JSRE
	hintLocals   map[string]interface{}
	staticLocals map[string]interface{}

	constants map[string]felt.Felt // by trailing name
	structs   map[string]string    // trailing name -> full name
}

// NewProcessor creates a processor running scripted hints on the
// process-wide runtime.
func NewProcessor(prog *program.Program) (*Processor, error) {
	re, err := jsre.Default()
	if err != nil {
		return nil, err
	}
	return NewProcessorWithRuntime(prog, re), nil
}

func NewProcessorWithRuntime(prog *program.Program, re *jsre.JSRE) *Processor {
	p := &Processor{
		program:      prog,
		re:           re,
		hintLocals:   make(map[string]interface{}),
		staticLocals: make(map[string]interface{}),
		constants:    make(map[string]felt.Felt),
		structs:      make(map[string]string),
	}
	names := make([]string, 0, len(prog.Identifiers))
	for name := range prog.Identifiers {
		names = append(names, name)
	}
	// Sorted so that clashing trailing names resolve the same way every run.
	sort.Strings(names)
	for _, name := range names {
		short := trailingName(name)
		switch prog.Identifiers[name].Type {
		case "const":
			if _, ok := p.constants[short]; !ok {
				p.constants[short] = prog.Constants[name]
			}
		case "struct", "alias":
			if _, isStruct := prog.Struct(name); !isStruct {
				continue
			}
			if _, ok := p.structs[short]; !ok {
				p.structs[short] = name
			}
		}
	}
	return p
}

func trailingName(name string) string {
	return name[strings.LastIndexByte(name, '.')+1:]
}

func (p *Processor) SetHintLocals(locals map[string]interface{}) {
	p.hintLocals = make(map[string]interface{}, len(locals))
	for k, v := range locals {
		p.hintLocals[k] = v
	}
}

// SetStaticLocals installs values visible to every scripted hint.
// Assignments to them inside a hint are dropped.
func (p *Processor) SetStaticLocals(locals map[string]interface{}) {
	p.staticLocals = make(map[string]interface{}, len(locals))
	for k, v := range locals {
		p.staticLocals[k] = v
	}
}

// HintLocals returns the hint locals as last updated by the hints.
func (p *Processor) HintLocals() map[string]interface{} {
	return p.hintLocals
}

// CompileHint resolves the references of a program hint.
func (p *Processor) CompileHint(params program.HintParams) (*HintData, error) {
	data := &HintData{
		Kind:             KindOf(params.Code),
		Code:             params.Code,
		Ids:              make(map[string]program.HintReference, len(params.FlowTrackingData.ReferenceIDs)),
		ApTracking:       params.FlowTrackingData.APTracking,
		AccessibleScopes: params.AccessibleScopes,
	}
	for name, idx := range params.FlowTrackingData.ReferenceIDs {
		if idx >= uint(len(p.program.References)) {
			return nil, errors.Wrapf(ErrUnknownIdentifier, "%s refers to reference %d of %d", name, idx, len(p.program.References))
		}
		data.Ids[trailingName(name)] = p.program.References[idx].Parsed
	}
	return data, nil
}

// CompileHints compiles every hint of the program, keyed by pc offset in
// the form the machine's Step consumes.
func (p *Processor) CompileHints() (map[uint][]interface{}, error) {
	out := make(map[uint][]interface{}, len(p.program.Hints))
	for pc, hints := range p.program.Hints {
		for _, h := range hints {
			data, err := p.CompileHint(h)
			if err != nil {
				return nil, errors.Wrapf(err, "hint at pc %d", pc)
			}
			out[pc] = append(out[pc], data)
		}
	}
	return out, nil
}

// ExecuteHint runs one compiled hint.
func (p *Processor) ExecuteHint(v *vm.VirtualMachine, hintData interface{}, sc *scopes.ExecutionScopes) error {
	data, ok := hintData.(*HintData)
	if !ok {
		return errors.Wrapf(ErrWrongHintData, "%T", hintData)
	}
	defer execTimer.UpdateSince(time.Now())

	var err error
	if data.Kind == KindScripted {
		scriptedMeter.Mark(1)
		err = p.executeScript(v, data, sc)
	} else {
		nativeMeter.Mark(1)
		err = executeNative(v, data, sc)
	}
	if err != nil {
		log.Debug("Hint failed", log.Stringer("kind", data.Kind), log.Stringer("pc", v.RunContext.PC), log.Err(err))
	}
	return err
}

// structByName resolves a Cairo type name to a struct.
func (p *Processor) structByName(name string) (*structInfo, bool) {
	id, ok := p.program.Struct(name)
	if !ok {
		return nil, false
	}
	info := &structInfo{fullName: name, members: id.Members}
	if id.Size != nil {
		info.size = *id.Size
	} else {
		for _, m := range id.Members {
			if m.Offset+1 > info.size {
				info.size = m.Offset + 1
			}
		}
	}
	return info, true
}

// scopedConstants returns the constants visible as ids.<name>, preferring
// those declared in the hint's innermost accessible scope.
func (p *Processor) scopedConstants(data *HintData) map[string]felt.Felt {
	out := make(map[string]felt.Felt, len(p.constants))
	for name, val := range p.constants {
		out[name] = val
		for i := len(data.AccessibleScopes) - 1; i >= 0; i-- {
			if c, ok := p.program.Constants[data.AccessibleScopes[i]+"."+name]; ok {
				out[name] = c
				break
			}
		}
	}
	return out
}
