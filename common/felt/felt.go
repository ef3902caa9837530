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

// Package felt implements field elements of the STARK prime field
// P = 2^251 + 17*2^192 + 1 used by the Cairo machine.
package felt

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

var prime, halfPrime *big.Int

func init() {
	prime = fp.Modulus()
	halfPrime = new(big.Int).Rsh(prime, 1)
}

var (
	Zero = Felt{}
	One  = FromUint64(1)
)

// Felt is an element of the Cairo field. The zero value is 0.
type Felt struct {
	e fp.Element
}

// Prime returns a copy of the field modulus.
func Prime() *big.Int {
	return new(big.Int).Set(prime)
}

func FromUint64(v uint64) Felt {
	var f Felt
	f.e.SetUint64(v)
	return f
}

func FromInt64(v int64) Felt {
	var f Felt
	f.e.SetInt64(v)
	return f
}

// FromBigInt reduces b modulo P. Negative values map to P - |b| mod P.
func FromBigInt(b *big.Int) Felt {
	var f Felt
	v := new(big.Int).Mod(b, prime)
	f.e.SetBigInt(v)
	return f
}

// FromBytes interprets b as a big-endian integer and reduces it modulo P.
func FromBytes(b []byte) Felt {
	return FromBigInt(new(big.Int).SetBytes(b))
}

// FromString parses a decimal or 0x-prefixed hexadecimal integer with an
// optional leading minus sign and reduces it modulo P.
func FromString(s string) (Felt, error) {
	b, err := ParseBigInt(s)
	if err != nil {
		return Felt{}, err
	}
	return FromBigInt(b), nil
}

// ParseBigInt parses the same syntax as FromString without reducing.
func ParseBigInt(s string) (*big.Int, error) {
	str := strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(str, "-") {
		neg = true
		str = strings.TrimSpace(str[1:])
	}
	base := 10
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		base = 16
		str = str[2:]
	}
	b, ok := new(big.Int).SetString(str, base)
	if !ok || str == "" {
		return nil, fmt.Errorf("invalid field element %q", s)
	}
	if neg {
		b.Neg(b)
	}
	return b, nil
}

func (f Felt) Add(g Felt) Felt {
	var r Felt
	r.e.Add(&f.e, &g.e)
	return r
}

func (f Felt) Sub(g Felt) Felt {
	var r Felt
	r.e.Sub(&f.e, &g.e)
	return r
}

func (f Felt) Mul(g Felt) Felt {
	var r Felt
	r.e.Mul(&f.e, &g.e)
	return r
}

func (f Felt) Neg() Felt {
	var r Felt
	r.e.Neg(&f.e)
	return r
}

// Div returns f / g in the field. Division by zero is an error.
func (f Felt) Div(g Felt) (Felt, error) {
	if g.IsZero() {
		return Felt{}, fmt.Errorf("division of %v by zero", f)
	}
	var inv, r Felt
	inv.e.Inverse(&g.e)
	r.e.Mul(&f.e, &inv.e)
	return r, nil
}

func (f Felt) IsZero() bool {
	return f.e.IsZero()
}

func (f Felt) Equal(g Felt) bool {
	return f.e.Equal(&g.e)
}

// Cmp compares the canonical representatives of f and g.
func (f Felt) Cmp(g Felt) int {
	return f.BigInt().Cmp(g.BigInt())
}

// BigInt returns the canonical representative in [0, P).
func (f Felt) BigInt() *big.Int {
	return f.e.BigInt(new(big.Int))
}

// Signed returns the representative in (-P/2, P/2].
func (f Felt) Signed() *big.Int {
	b := f.BigInt()
	if b.Cmp(halfPrime) > 0 {
		b.Sub(b, prime)
	}
	return b
}

// Uint64 returns the value if it fits in 64 bits.
func (f Felt) Uint64() (uint64, bool) {
	b := f.BigInt()
	if !b.IsUint64() {
		return 0, false
	}
	return b.Uint64(), true
}

// BitLen is the bit length of the canonical representative.
func (f Felt) BitLen() int {
	return f.BigInt().BitLen()
}

// Bytes is the 32 byte big-endian encoding.
func (f Felt) Bytes() [32]byte {
	return f.e.Bytes()
}

// LEBytes is the 32 byte little-endian encoding.
func (f Felt) LEBytes() [32]byte {
	be := f.e.Bytes()
	var le [32]byte
	for i := range be {
		le[i] = be[31-i]
	}
	return le
}

func (f Felt) String() string {
	return f.BigInt().String()
}

func (f Felt) Hex() string {
	return "0x" + f.BigInt().Text(16)
}

func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.Hex()), nil
}

func (f *Felt) UnmarshalText(input []byte) error {
	v, err := FromString(string(input))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
