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
	"fmt"
	"math/big"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/common/math"
	"github.com/pkg/errors"
)

// Relocatable is an address inside a memory segment. Negative segment
// indices denote temporary segments.
type Relocatable struct {
	SegmentIndex int
	Offset       uint
}

func NewRelocatable(segment int, offset uint) Relocatable {
	return Relocatable{SegmentIndex: segment, Offset: offset}
}

func (r Relocatable) String() string {
	return fmt.Sprintf("%d:%d", r.SegmentIndex, r.Offset)
}

func (r Relocatable) Add(n uint) Relocatable {
	return Relocatable{r.SegmentIndex, r.Offset + n}
}

// AddInt moves the offset by a signed amount.
func (r Relocatable) AddInt(n int) (Relocatable, error) {
	if n < 0 && uint(-n) > r.Offset {
		return Relocatable{}, errors.Wrapf(ErrOffsetUnderflow, "%v%+d", r, n)
	}
	if n < 0 {
		return Relocatable{r.SegmentIndex, r.Offset - uint(-n)}, nil
	}
	return Relocatable{r.SegmentIndex, r.Offset + uint(n)}, nil
}

// AddFelt adds a field element to the offset. The sum is taken in the
// field, so adding P-1 steps one cell back.
func (r Relocatable) AddFelt(f felt.Felt) (Relocatable, error) {
	sum := felt.FromUint64(uint64(r.Offset)).Add(f)
	off, ok := sum.Uint64()
	if !ok {
		return Relocatable{}, errors.Wrapf(ErrOffsetOverflow, "%v + %v", r, f)
	}
	return Relocatable{r.SegmentIndex, uint(off)}, nil
}

// SubFelt subtracts a field element from the offset.
func (r Relocatable) SubFelt(f felt.Felt) (Relocatable, error) {
	return r.AddFelt(f.Neg())
}

// Sub returns the distance between two addresses of the same segment.
func (r Relocatable) Sub(o Relocatable) (uint, error) {
	if r.SegmentIndex != o.SegmentIndex {
		return 0, errors.Wrapf(ErrRelocatableCompare, "%v - %v", r, o)
	}
	if o.Offset > r.Offset {
		return 0, errors.Wrapf(ErrOffsetUnderflow, "%v - %v", r, o)
	}
	return r.Offset - o.Offset, nil
}

func (r Relocatable) SubUint(n uint) (Relocatable, error) {
	off, underflow := math.SafeSub(uint64(r.Offset), uint64(n))
	if underflow {
		return Relocatable{}, errors.Wrapf(ErrOffsetUnderflow, "%v - %d", r, n)
	}
	return Relocatable{r.SegmentIndex, uint(off)}, nil
}

// Cmp orders two addresses of the same segment.
func (r Relocatable) Cmp(o Relocatable) (int, error) {
	if r.SegmentIndex != o.SegmentIndex {
		return 0, errors.Wrapf(ErrRelocatableCompare, "%v, %v", r, o)
	}
	switch {
	case r.Offset < o.Offset:
		return -1, nil
	case r.Offset > o.Offset:
		return 1, nil
	}
	return 0, nil
}

// MaybeRelocatable is a memory word: a field element or an address.
// It is a comparable value type.
type MaybeRelocatable struct {
	addr   Relocatable
	felt   felt.Felt
	isAddr bool
}

func FromFelt(f felt.Felt) MaybeRelocatable {
	return MaybeRelocatable{felt: f}
}

func FromRelocatable(r Relocatable) MaybeRelocatable {
	return MaybeRelocatable{addr: r, isAddr: true}
}

func NewInt(v uint64) MaybeRelocatable {
	return FromFelt(felt.FromUint64(v))
}

func (m MaybeRelocatable) IsRelocatable() bool { return m.isAddr }

func (m MaybeRelocatable) GetFelt() (felt.Felt, bool) {
	return m.felt, !m.isAddr
}

func (m MaybeRelocatable) GetRelocatable() (Relocatable, bool) {
	return m.addr, m.isAddr
}

// IsZero reports whether m is the field element 0. Addresses are never zero.
func (m MaybeRelocatable) IsZero() bool {
	return !m.isAddr && m.felt.IsZero()
}

func (m MaybeRelocatable) String() string {
	if m.isAddr {
		return m.addr.String()
	}
	return m.felt.String()
}

func (m MaybeRelocatable) Add(o MaybeRelocatable) (MaybeRelocatable, error) {
	switch {
	case !m.isAddr && !o.isAddr:
		return FromFelt(m.felt.Add(o.felt)), nil
	case m.isAddr && !o.isAddr:
		r, err := m.addr.AddFelt(o.felt)
		return FromRelocatable(r), err
	case !m.isAddr && o.isAddr:
		r, err := o.addr.AddFelt(m.felt)
		return FromRelocatable(r), err
	}
	return MaybeRelocatable{}, errors.Wrapf(ErrRelocatableAdd, "%v + %v", m, o)
}

func (m MaybeRelocatable) Sub(o MaybeRelocatable) (MaybeRelocatable, error) {
	switch {
	case !m.isAddr && !o.isAddr:
		return FromFelt(m.felt.Sub(o.felt)), nil
	case m.isAddr && !o.isAddr:
		r, err := m.addr.SubFelt(o.felt)
		return FromRelocatable(r), err
	case m.isAddr && o.isAddr:
		d, err := m.addr.Sub(o.addr)
		return NewInt(uint64(d)), err
	}
	return MaybeRelocatable{}, errors.Wrapf(ErrRelocatableSub, "%v - %v", m, o)
}

func (m MaybeRelocatable) Mul(o MaybeRelocatable) (MaybeRelocatable, error) {
	if m.isAddr || o.isAddr {
		return MaybeRelocatable{}, errors.Wrapf(ErrRelocatableMul, "%v * %v", m, o)
	}
	return FromFelt(m.felt.Mul(o.felt)), nil
}

func (m MaybeRelocatable) Div(o MaybeRelocatable) (MaybeRelocatable, error) {
	if m.isAddr || o.isAddr {
		return MaybeRelocatable{}, errors.Wrapf(ErrRelocatableMul, "%v / %v", m, o)
	}
	q, err := m.felt.Div(o.felt)
	return FromFelt(q), err
}

// ToMaybeRelocatable converts a host value into a memory word. Integers
// are reduced modulo P when applyModulus is set and must otherwise lie in
// [0, P).
func ToMaybeRelocatable(v interface{}, applyModulus bool) (MaybeRelocatable, error) {
	var b *big.Int
	switch x := v.(type) {
	case MaybeRelocatable:
		return x, nil
	case Relocatable:
		return FromRelocatable(x), nil
	case felt.Felt:
		return FromFelt(x), nil
	case int:
		b = big.NewInt(int64(x))
	case int64:
		b = big.NewInt(x)
	case uint:
		b = new(big.Int).SetUint64(uint64(x))
	case uint64:
		b = new(big.Int).SetUint64(x)
	case *big.Int:
		b = x
	default:
		return MaybeRelocatable{}, errors.Wrapf(ErrInvalidArgument, "unsupported value of type %T", v)
	}
	if !applyModulus && (b.Sign() < 0 || b.Cmp(felt.Prime()) >= 0) {
		return MaybeRelocatable{}, errors.Wrapf(ErrArgumentOutOfRange, "%v", b)
	}
	return FromFelt(felt.FromBigInt(b)), nil
}
