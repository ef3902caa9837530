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
	"bytes"
	"encoding/json"
	"io/ioutil"
	"math/big"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/common/math"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

var ErrInvalidProgram = errors.New("invalid program")

type jsonIdentifier struct {
	Type        string            `json:"type"`
	FullName    string            `json:"full_name"`
	PC          *uint             `json:"pc"`
	Value       json.Number       `json:"value"`
	Size        *uint             `json:"size"`
	Members     map[string]Member `json:"members"`
	Destination string            `json:"destination"`
	CairoType   string            `json:"cairo_type"`
	Decorators  []string          `json:"decorators"`
}

type jsonReference struct {
	ApTrackingData ApTracking `json:"ap_tracking_data"`
	PC             *uint      `json:"pc"`
	Value          string     `json:"value"`
}

type jsonProgram struct {
	Attributes       []Attribute               `json:"attributes"`
	Builtins         []string                  `json:"builtins"`
	Data             []string                  `json:"data"`
	Hints            map[string][]HintParams   `json:"hints"`
	Identifiers      map[string]jsonIdentifier `json:"identifiers"`
	MainScope        string                    `json:"main_scope"`
	Prime            string                    `json:"prime"`
	ReferenceManager struct {
		References []jsonReference `json:"references"`
	} `json:"reference_manager"`
	DebugInfo *struct {
		InstructionLocations map[string]InstructionLocation `json:"instruction_locations"`
	} `json:"debug_info"`
}

// FromFile loads a compiled program; entrypoint names the function whose pc
// becomes Main, usually "main".
func FromFile(path string, entrypoint string) (*Program, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(raw, entrypoint)
}

func FromBytes(raw []byte, entrypoint string) (*Program, error) {
	var jp jsonProgram
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&jp); err != nil {
		return nil, errors.Wrap(ErrInvalidProgram, err.Error())
	}
	if jp.Prime != "" {
		p, err := felt.ParseBigInt(jp.Prime)
		if err != nil || p.Cmp(felt.Prime()) != 0 {
			return nil, errors.Wrapf(ErrInvalidProgram, "unsupported prime %s", jp.Prime)
		}
	}
	if jp.MainScope == "" {
		jp.MainScope = "__main__"
	}
	prog := &Program{
		Builtins:             jp.Builtins,
		Hints:                make(map[uint][]HintParams, len(jp.Hints)),
		Identifiers:          make(map[string]Identifier, len(jp.Identifiers)),
		Constants:            make(map[string]felt.Felt),
		MainScope:            jp.MainScope,
		Prime:                jp.Prime,
		ErrorAttributes:      errorAttributes(jp.Attributes),
		InstructionLocations: make(map[uint]InstructionLocation),
	}

	prog.Data = make([]vm.MaybeRelocatable, len(jp.Data))
	for i, word := range jp.Data {
		f, err := felt.FromString(word)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidProgram, "data[%d]: %v", i, err)
		}
		prog.Data[i] = vm.FromFelt(f)
	}

	for key, hints := range jp.Hints {
		pc, ok := math.ParseUint64(key)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidProgram, "hint pc %q", key)
		}
		prog.Hints[uint(pc)] = hints
	}

	for name, id := range jp.Identifiers {
		ident := Identifier{
			Type:        id.Type,
			FullName:    id.FullName,
			PC:          id.PC,
			Size:        id.Size,
			Members:     id.Members,
			Destination: id.Destination,
			CairoType:   id.CairoType,
			Decorators:  id.Decorators,
		}
		if id.Value != "" {
			v, ok := new(big.Int).SetString(id.Value.String(), 10)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidProgram, "identifier %s value %s", name, id.Value)
			}
			ident.Value = v
			if id.Type == "const" {
				prog.Constants[name] = felt.FromBigInt(v)
			}
		}
		prog.Identifiers[name] = ident
	}

	for i, r := range jp.ReferenceManager.References {
		parsed, err := ParseReference(r.Value)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidProgram, "reference %d: %v", i, err)
		}
		tracking := r.ApTrackingData
		parsed.ApTrackingData = &tracking
		prog.References = append(prog.References, Reference{
			ApTrackingData: r.ApTrackingData,
			PC:             r.PC,
			Value:          r.Value,
			Parsed:         parsed,
		})
	}

	if jp.DebugInfo != nil {
		for key, loc := range jp.DebugInfo.InstructionLocations {
			pc, ok := math.ParseUint64(key)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidProgram, "instruction location pc %q", key)
			}
			prog.InstructionLocations[uint(pc)] = loc
		}
	}

	if entrypoint != "" {
		if pc, ok := prog.EntrypointPC(entrypoint); ok {
			prog.Main = &pc
		}
	}
	return prog, nil
}

func errorAttributes(attrs []Attribute) []Attribute {
	var out []Attribute
	for _, a := range attrs {
		if a.Name == "error_message" {
			out = append(out, a)
		}
	}
	return out
}
