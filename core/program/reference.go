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
	"math/big"
	"strings"
	"unicode"

	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

type OffsetKind uint8

const (
	OffsetConst     OffsetKind = iota // plain integer added to the address
	OffsetImmediate                   // the whole reference is a literal
	OffsetRegister                    // register + offset, optionally dereferenced
)

type OffsetValue struct {
	Kind      OffsetKind
	Value     int
	Immediate *big.Int
	Register  vm.Register
	Deref     bool
}

// HintReference is a parsed reference expression such as
// "[cast(fp + (-3), felt*)]".
type HintReference struct {
	Offset1        OffsetValue
	Offset2        OffsetValue
	Dereference    bool
	ApTrackingData *ApTracking
	CairoType      string
}

// ParseReference parses the value of a reference manager entry.
func ParseReference(s string) (HintReference, error) {
	p := &refParser{src: s}
	ref, err := p.reference()
	if err != nil {
		return HintReference{}, errors.Wrapf(err, "reference %q", s)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return HintReference{}, errors.Errorf("reference %q: trailing input at %d", s, p.pos)
	}
	return ref, nil
}

type refParser struct {
	src string
	pos int
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *refParser) peek(tok string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], tok)
}

func (p *refParser) accept(tok string) bool {
	if p.peek(tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *refParser) expect(tok string) error {
	if !p.accept(tok) {
		return errors.Errorf("expected %q at %d", tok, p.pos)
	}
	return nil
}

func (p *refParser) reference() (HintReference, error) {
	if p.peek("[") {
		save := p.pos
		p.accept("[")
		ref, err := p.castExpr()
		if err == nil && p.accept("]") {
			ref.Dereference = true
			return ref, nil
		}
		p.pos = save
	}
	return p.castExpr()
}

func (p *refParser) castExpr() (HintReference, error) {
	if !p.accept("cast(") {
		o1, o2, err := p.expr()
		return HintReference{Offset1: o1, Offset2: o2}, err
	}
	o1, o2, err := p.expr()
	if err != nil {
		return HintReference{}, err
	}
	if err := p.expect(","); err != nil {
		return HintReference{}, err
	}
	p.skipSpace()
	start, depth := p.pos, 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '(' {
			depth++
		} else if c == ')' {
			if depth == 0 {
				break
			}
			depth--
		}
		p.pos++
	}
	typ := strings.TrimSpace(p.src[start:p.pos])
	if err := p.expect(")"); err != nil {
		return HintReference{}, err
	}
	return HintReference{Offset1: o1, Offset2: o2, CairoType: typ}, nil
}

func (p *refParser) expr() (OffsetValue, OffsetValue, error) {
	o1, err := p.term()
	if err != nil {
		return OffsetValue{}, OffsetValue{}, err
	}
	var o2 OffsetValue
	switch {
	case p.accept("+"):
		if o2, err = p.term(); err != nil {
			return OffsetValue{}, OffsetValue{}, err
		}
		if o2.Kind == OffsetConst {
			if o2, err = constOffset(o2.Immediate); err != nil {
				return OffsetValue{}, OffsetValue{}, err
			}
		}
	case p.accept("-"):
		n, err := p.integer()
		if err != nil {
			return OffsetValue{}, OffsetValue{}, err
		}
		n.Neg(n)
		if o2, err = constOffset(n); err != nil {
			return OffsetValue{}, OffsetValue{}, err
		}
	}
	if o1.Kind == OffsetRegister && o2.Kind == OffsetConst && !o1.Deref {
		o1.Value += o2.Value
		o2 = OffsetValue{}
	}
	if o1.Kind == OffsetConst && o2 == (OffsetValue{}) {
		o1 = OffsetValue{Kind: OffsetImmediate, Immediate: o1.Immediate}
	}
	return o1, o2, nil
}

// term is "[reg + off]", "reg + off", "reg" or an integer.
func (p *refParser) term() (OffsetValue, error) {
	if p.accept("[") {
		reg, off, err := p.register()
		if err != nil {
			return OffsetValue{}, err
		}
		if err := p.expect("]"); err != nil {
			return OffsetValue{}, err
		}
		return OffsetValue{Kind: OffsetRegister, Register: reg, Value: off, Deref: true}, nil
	}
	if p.peek("ap") || p.peek("fp") {
		reg, off, err := p.register()
		if err != nil {
			return OffsetValue{}, err
		}
		return OffsetValue{Kind: OffsetRegister, Register: reg, Value: off}, nil
	}
	n, err := p.integer()
	if err != nil {
		return OffsetValue{}, err
	}
	if !n.IsInt64() {
		return OffsetValue{Kind: OffsetConst, Immediate: n}, nil
	}
	return OffsetValue{Kind: OffsetConst, Value: int(n.Int64()), Immediate: n}, nil
}

func constOffset(n *big.Int) (OffsetValue, error) {
	if !n.IsInt64() {
		return OffsetValue{}, errors.Errorf("offset %v out of range", n)
	}
	return OffsetValue{Kind: OffsetConst, Value: int(n.Int64())}, nil
}

func (p *refParser) register() (vm.Register, int, error) {
	var reg vm.Register
	switch {
	case p.accept("ap"):
		reg = vm.AP
	case p.accept("fp"):
		reg = vm.FP
	default:
		return 0, 0, errors.Errorf("expected register at %d", p.pos)
	}
	if p.peek("+") && !p.peek("+ [") {
		save := p.pos
		p.accept("+")
		n, err := p.integer()
		if err != nil || !n.IsInt64() {
			p.pos = save
			return reg, 0, nil
		}
		return reg, int(n.Int64()), nil
	}
	return reg, 0, nil
}

// integer accepts "3", "-3" and "(-3)".
func (p *refParser) integer() (*big.Int, error) {
	paren := p.accept("(")
	p.skipSpace()
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && unicode.IsDigit(rune(p.src[p.pos])) {
		p.pos++
	}
	n, ok := new(big.Int).SetString(p.src[start:p.pos], 10)
	if !ok {
		return nil, errors.Errorf("expected integer at %d", start)
	}
	if paren {
		if err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	return n, nil
}
