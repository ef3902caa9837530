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
	"errors"
	"math/big"
	"testing"

	"github.com/Aurorachain/go-cairo/common/felt"
)

func TestRelocatableArithmetic(t *testing.T) {
	r := NewRelocatable(1, 5)
	if got := r.Add(3); got != NewRelocatable(1, 8) {
		t.Errorf("add: have %v", got)
	}
	if got, err := r.AddInt(-5); err != nil || got != NewRelocatable(1, 0) {
		t.Errorf("addint: have %v %v", got, err)
	}
	if _, err := r.AddInt(-6); !errors.Is(err, ErrOffsetUnderflow) {
		t.Errorf("addint underflow: have %v", err)
	}
	if got, err := r.AddFelt(felt.FromInt64(-1)); err != nil || got != NewRelocatable(1, 4) {
		t.Errorf("addfelt -1: have %v %v", got, err)
	}
	if _, err := r.AddFelt(felt.FromInt64(-6)); !errors.Is(err, ErrOffsetOverflow) {
		t.Errorf("addfelt below zero: have %v", err)
	}
	if d, err := r.Sub(NewRelocatable(1, 2)); err != nil || d != 3 {
		t.Errorf("sub: have %d %v", d, err)
	}
	if _, err := r.Sub(NewRelocatable(2, 2)); !errors.Is(err, ErrRelocatableCompare) {
		t.Errorf("cross segment sub: have %v", err)
	}
	if _, err := r.Cmp(NewRelocatable(0, 5)); !errors.Is(err, ErrRelocatableCompare) {
		t.Errorf("cross segment cmp: have %v", err)
	}
}

func TestMaybeRelocatableArithmetic(t *testing.T) {
	addr := FromRelocatable(NewRelocatable(2, 4))
	var tests = []struct {
		name string
		fn   func() (MaybeRelocatable, error)
		want MaybeRelocatable
		err  error
	}{
		{"felt+felt", func() (MaybeRelocatable, error) { return NewInt(2).Add(NewInt(3)) }, NewInt(5), nil},
		{"addr+felt", func() (MaybeRelocatable, error) { return addr.Add(NewInt(3)) }, FromRelocatable(NewRelocatable(2, 7)), nil},
		{"felt+addr", func() (MaybeRelocatable, error) { return NewInt(1).Add(addr) }, FromRelocatable(NewRelocatable(2, 5)), nil},
		{"addr+addr", func() (MaybeRelocatable, error) { return addr.Add(addr) }, MaybeRelocatable{}, ErrRelocatableAdd},
		{"addr-addr", func() (MaybeRelocatable, error) { return addr.Sub(FromRelocatable(NewRelocatable(2, 1))) }, NewInt(3), nil},
		{"addr-felt", func() (MaybeRelocatable, error) { return addr.Sub(NewInt(4)) }, FromRelocatable(NewRelocatable(2, 0)), nil},
		{"felt-addr", func() (MaybeRelocatable, error) { return NewInt(4).Sub(addr) }, MaybeRelocatable{}, ErrRelocatableSub},
		{"felt*felt", func() (MaybeRelocatable, error) { return NewInt(4).Mul(NewInt(6)) }, NewInt(24), nil},
		{"addr*felt", func() (MaybeRelocatable, error) { return addr.Mul(NewInt(6)) }, MaybeRelocatable{}, ErrRelocatableMul},
	}
	for _, tt := range tests {
		got, err := tt.fn()
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("%s: have err %v, want %v", tt.name, err, tt.err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: have %v %v, want %v", tt.name, got, err, tt.want)
		}
	}
}

func TestToMaybeRelocatable(t *testing.T) {
	p := felt.Prime()
	if _, err := ToMaybeRelocatable(p, false); !errors.Is(err, ErrArgumentOutOfRange) {
		t.Errorf("P without modulus: have %v", err)
	}
	v, err := ToMaybeRelocatable(new(big.Int).Add(p, big.NewInt(2)), true)
	if err != nil || v != NewInt(2) {
		t.Errorf("P+2 with modulus: have %v %v", v, err)
	}
	if _, err := ToMaybeRelocatable(-1, false); !errors.Is(err, ErrArgumentOutOfRange) {
		t.Errorf("-1 without modulus: have %v", err)
	}
	if _, err := ToMaybeRelocatable("x", true); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("string: have %v", err)
	}
}
