// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixed implements the unsigned fixed point numbers used for prices and ratios.
package fixed

import (
	"errors"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Decimals is the number of decimals of a U128.
const Decimals = 18

var (
	// ErrOverflow is returned when a result does not fit 128 bits.
	ErrOverflow = errors.New("fixed point overflow")
	// ErrDivisionByZero is returned on division or reciprocal of zero.
	ErrDivisionByZero = errors.New("fixed point division by zero")
	// ErrNegative is returned when a negative integer is given.
	ErrNegative = errors.New("fixed point negative operand")

	accuracy = uint256.NewInt(1e18)
	maxInner = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
)

// U128 is an unsigned fixed point number with 18 decimals bounded to 128 bits of inner value.
// The zero value is zero.
type U128 struct {
	inner uint256.Int
}

// Zero is 0.
var Zero = U128{}

// One is 1.
var One = FromUint64(1)

func fromInner(v *uint256.Int) (U128, error) {
	if v.Gt(maxInner) {
		return U128{}, ErrOverflow
	}
	return U128{inner: *v}, nil
}

// FromInner builds a number from its raw inner value (value × 10^18).
func FromInner(v *big.Int) (U128, error) {
	if v.Sign() < 0 {
		return U128{}, ErrNegative
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return U128{}, ErrOverflow
	}
	return fromInner(u)
}

// FromUint64 returns n as a fixed point number.
func FromUint64(n uint64) U128 {
	var p U128
	p.inner.Mul(uint256.NewInt(n), accuracy)
	return p
}

// FromRational returns floor(n/d).
func FromRational(n, d *big.Int) (U128, error) {
	if d.Sign() == 0 {
		return U128{}, ErrDivisionByZero
	}
	if n.Sign() < 0 || d.Sign() < 0 {
		return U128{}, ErrNegative
	}
	inner := new(big.Int).Mul(n, accuracy.ToBig())
	return FromInner(inner.Quo(inner, d))
}

// Parse parses a decimal string. Digits beyond 18 decimals are truncated.
func Parse(s string) (U128, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return U128{}, err
	}
	return FromDecimal(d)
}

// MustParse parses a decimal string, panic on error.
func MustParse(s string) U128 {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// FromDecimal converts a decimal, truncating digits beyond 18 decimals.
func FromDecimal(d decimal.Decimal) (U128, error) {
	if d.IsNegative() {
		return U128{}, ErrNegative
	}
	return FromInner(d.Shift(Decimals).BigInt())
}

// Inner returns the raw inner value.
func (p U128) Inner() *big.Int {
	return p.inner.ToBig()
}

// IsZero reports whether p is zero.
func (p U128) IsZero() bool {
	return p.inner.IsZero()
}

// Cmp compares p and o and returns -1, 0 or +1.
func (p U128) Cmp(o U128) int {
	return p.inner.Cmp(&o.inner)
}

// Add returns p+o.
func (p U128) Add(o U128) (U128, error) {
	v, overflow := new(uint256.Int).AddOverflow(&p.inner, &o.inner)
	if overflow {
		return U128{}, ErrOverflow
	}
	return fromInner(v)
}

// Sub returns p-o.
func (p U128) Sub(o U128) (U128, error) {
	if p.inner.Lt(&o.inner) {
		return U128{}, ErrOverflow
	}
	var r U128
	r.inner.Sub(&p.inner, &o.inner)
	return r, nil
}

// Mul returns p×o rounded down.
func (p U128) Mul(o U128) (U128, error) {
	v, overflow := new(uint256.Int).MulDivOverflow(&p.inner, &o.inner, accuracy)
	if overflow {
		return U128{}, ErrOverflow
	}
	return fromInner(v)
}

// Div returns p/o rounded down.
func (p U128) Div(o U128) (U128, error) {
	if o.IsZero() {
		return U128{}, ErrDivisionByZero
	}
	v, overflow := new(uint256.Int).MulDivOverflow(&p.inner, accuracy, &o.inner)
	if overflow {
		return U128{}, ErrOverflow
	}
	return fromInner(v)
}

// Reciprocal returns 1/p rounded up.
func (p U128) Reciprocal() (U128, error) {
	if p.IsZero() {
		return U128{}, ErrDivisionByZero
	}
	v, overflow := new(uint256.Int).MulDivOverflow(accuracy, accuracy, &p.inner)
	if overflow {
		return U128{}, ErrOverflow
	}
	if !new(uint256.Int).MulMod(accuracy, accuracy, &p.inner).IsZero() {
		v.AddUint64(v, 1)
	}
	return fromInner(v)
}

// MulInt returns p×n rounded down.
func (p U128) MulInt(n *big.Int) (*big.Int, error) {
	if n.Sign() < 0 {
		return nil, ErrNegative
	}
	u, overflow := uint256.FromBig(n)
	if overflow || u.Gt(maxInner) {
		return nil, ErrOverflow
	}
	v, overflow := new(uint256.Int).MulDivOverflow(&p.inner, u, accuracy)
	if overflow || v.Gt(maxInner) {
		return nil, ErrOverflow
	}
	return v.ToBig(), nil
}

// MulPow10 returns p×10^exp, rounded down for negative exponents.
func (p U128) MulPow10(exp int) (U128, error) {
	if exp == 0 {
		return p, nil
	}
	abs := exp
	if abs < 0 {
		abs = -abs
	}
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(abs)))
	if exp < 0 {
		var r U128
		r.inner.Div(&p.inner, scale)
		return r, nil
	}
	v, overflow := new(uint256.Int).MulOverflow(&p.inner, scale)
	if overflow {
		return U128{}, ErrOverflow
	}
	return fromInner(v)
}

// Min returns the smaller of p and o.
func Min(p, o U128) U128 {
	if p.Cmp(o) <= 0 {
		return p
	}
	return o
}

// Decimal returns the exact decimal value.
func (p U128) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(p.inner.ToBig(), -Decimals)
}

func (p U128) String() string {
	return p.Decimal().String()
}

// MarshalText implements encoding.TextMarshaler.
func (p U128) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *U128) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder.
func (p U128) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, p.inner.ToBig())
}

// DecodeRLP implements rlp.Decoder.
func (p *U128) DecodeRLP(s *rlp.Stream) error {
	v, err := s.BigInt()
	if err != nil {
		return err
	}
	parsed, err := FromInner(v)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
