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

package felt

import (
	"math/big"
	"testing"
)

func TestPrime(t *testing.T) {
	want := new(big.Int).Lsh(big.NewInt(1), 251)
	want.Add(want, new(big.Int).Lsh(big.NewInt(17), 192))
	want.Add(want, big.NewInt(1))
	if Prime().Cmp(want) != 0 {
		t.Fatalf("prime mismatch: have %v, want %v", Prime(), want)
	}
}

func TestFromString(t *testing.T) {
	var tests = []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"144", "144"},
		{"0x90", "144"},
		{"-1", new(big.Int).Sub(Prime(), big.NewInt(1)).String()},
		{"0x800000000000011000000000000000000000000000000000000000000000001", "0"},
	}
	for _, tt := range tests {
		f, err := FromString(tt.in)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if f.String() != tt.want {
			t.Errorf("%q: have %s, want %s", tt.in, f, tt.want)
		}
	}
	for _, bad := range []string{"", "0x", "12ab", "--3"} {
		if _, err := FromString(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a, b := FromUint64(10), FromUint64(3)
	if s := a.Add(b); !s.Equal(FromUint64(13)) {
		t.Errorf("add: have %v", s)
	}
	if d := b.Sub(a); d.Signed().Int64() != -7 {
		t.Errorf("sub: have %v", d.Signed())
	}
	q, err := a.Div(b)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Mul(b).Equal(a) {
		t.Errorf("div: %v * 3 != 10", q)
	}
	if _, err := a.Div(Zero); err == nil {
		t.Error("expected division by zero error")
	}
	if !FromInt64(-5).Neg().Equal(FromUint64(5)) {
		t.Error("neg mismatch")
	}
}

func TestEncoding(t *testing.T) {
	f := FromUint64(0x0102)
	be, le := f.Bytes(), f.LEBytes()
	if be[30] != 1 || be[31] != 2 || le[0] != 2 || le[1] != 1 {
		t.Errorf("unexpected encodings %x %x", be, le)
	}
	if v, ok := f.Uint64(); !ok || v != 0x102 {
		t.Errorf("uint64: %d %v", v, ok)
	}
	if _, ok := FromInt64(-1).Uint64(); ok {
		t.Error("P-1 should not fit in 64 bits")
	}
	var g Felt
	if err := g.UnmarshalText([]byte(f.Hex())); err != nil || !g.Equal(f) {
		t.Errorf("text roundtrip: %v %v", g, err)
	}
}
