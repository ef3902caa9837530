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

// Package program loads compiled Cairo programs.
package program

import (
	"math/big"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/vm"
)

type ApTracking struct {
	Group  uint `json:"group"`
	Offset uint `json:"offset"`
}

type FlowTrackingData struct {
	APTracking   ApTracking      `json:"ap_tracking"`
	ReferenceIDs map[string]uint `json:"reference_ids"`
}

// HintParams is a hint as emitted by the compiler.
type HintParams struct {
	Code             string           `json:"code"`
	AccessibleScopes []string         `json:"accessible_scopes"`
	FlowTrackingData FlowTrackingData `json:"flow_tracking_data"`
}

type Member struct {
	CairoType string `json:"cairo_type"`
	Offset    uint   `json:"offset"`
}

// Identifier is an entry of the program's identifier table. Only the
// fields relevant to its Type are set.
type Identifier struct {
	Type        string
	FullName    string
	PC          *uint
	Value       *big.Int
	Size        *uint
	Members     map[string]Member
	Destination string
	CairoType   string
	Decorators  []string
}

// Attribute scopes an error message over a pc range.
type Attribute struct {
	Name             string            `json:"name"`
	StartPC          uint              `json:"start_pc"`
	EndPC            uint              `json:"end_pc"`
	Value            string            `json:"value"`
	FlowTrackingData *FlowTrackingData `json:"flow_tracking_data"`
}

type InputFile struct {
	Filename string `json:"filename"`
}

type Location struct {
	EndLine   uint      `json:"end_line"`
	EndCol    uint      `json:"end_col"`
	InputFile InputFile `json:"input_file"`
	StartLine uint      `json:"start_line"`
	StartCol  uint      `json:"start_col"`
}

type HintLocation struct {
	Location        Location `json:"location"`
	NPrefixNewlines uint     `json:"n_prefix_newlines"`
}

type InstructionLocation struct {
	Inst             Location       `json:"inst"`
	Hints            []HintLocation `json:"hints"`
	AccessibleScopes []string       `json:"accessible_scopes"`
}

// Reference is an entry of the reference manager: a parsed expression
// valid from PC on.
type Reference struct {
	ApTrackingData ApTracking
	PC             *uint
	Value          string
	Parsed         HintReference
}

type Program struct {
	Data                 []vm.MaybeRelocatable
	Builtins             []string
	Hints                map[uint][]HintParams
	Identifiers          map[string]Identifier
	Constants            map[string]felt.Felt
	References           []Reference
	Main                 *uint
	MainScope            string
	Prime                string
	ErrorAttributes      []Attribute
	InstructionLocations map[uint]InstructionLocation
}

// ResolveIdentifier follows alias chains.
func (p *Program) ResolveIdentifier(name string) (Identifier, bool) {
	for i := 0; i < 16; i++ {
		id, ok := p.Identifiers[name]
		if !ok {
			return Identifier{}, false
		}
		if id.Type != "alias" {
			return id, true
		}
		name = id.Destination
	}
	return Identifier{}, false
}

// EntrypointPC returns the pc of a function of the main scope.
func (p *Program) EntrypointPC(name string) (uint, bool) {
	id, ok := p.ResolveIdentifier(p.MainScope + "." + name)
	if !ok || id.PC == nil || id.Type != "function" {
		return 0, false
	}
	return *id.PC, true
}

// Struct returns the struct identifier a (possibly aliased) name denotes.
func (p *Program) Struct(name string) (Identifier, bool) {
	id, ok := p.ResolveIdentifier(name)
	if !ok || id.Type != "struct" {
		return Identifier{}, false
	}
	return id, true
}
