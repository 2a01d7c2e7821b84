// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixed

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Perquintill is a ratio in parts per 10^18, bounded to [0, 1].
type Perquintill uint64

// OneQuintill is the value of a full Perquintill.
const OneQuintill Perquintill = 1_000_000_000_000_000_000

var quintill = new(big.Int).SetUint64(uint64(OneQuintill))

// Percent returns n percent.
func Percent(n uint64) Perquintill {
	if n >= 100 {
		return OneQuintill
	}
	return Perquintill(n * 10_000_000_000_000_000)
}

// PerquintillFromRational returns floor(n/d), saturated at one.
func PerquintillFromRational(n, d *big.Int) Perquintill {
	if d.Sign() <= 0 || n.Sign() <= 0 {
		return 0
	}
	if n.Cmp(d) >= 0 {
		return OneQuintill
	}
	v := new(big.Int).Mul(n, quintill)
	return Perquintill(v.Quo(v, d).Uint64())
}

// ParsePerquintill parses a decimal ratio such as "0.075".
func ParsePerquintill(s string) (Perquintill, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return 0, ErrOverflow
	}
	return Perquintill(d.Shift(Decimals).BigInt().Uint64()), nil
}

// MulFloor returns p×n rounded down.
func (p Perquintill) MulFloor(n *big.Int) *big.Int {
	v := new(big.Int).Mul(n, new(big.Int).SetUint64(uint64(p)))
	return v.Quo(v, quintill)
}

// MulCeil returns p×n rounded up.
func (p Perquintill) MulCeil(n *big.Int) *big.Int {
	v := new(big.Int).Mul(n, new(big.Int).SetUint64(uint64(p)))
	q, r := new(big.Int).QuoRem(v, quintill, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// MulFixed returns p×v rounded down.
func (p Perquintill) MulFixed(v U128) U128 {
	r, _ := FromInner(p.MulFloor(v.Inner()))
	return r
}

// Complement returns 1-p.
func (p Perquintill) Complement() Perquintill {
	return OneQuintill - p
}

// Fixed returns the ratio as a U128.
func (p Perquintill) Fixed() U128 {
	r, _ := FromInner(new(big.Int).SetUint64(uint64(p)))
	return r
}

func (p Perquintill) String() string {
	return decimal.New(int64(p), -16).String() + "%"
}

// MarshalText implements encoding.TextMarshaler.
func (p Perquintill) MarshalText() ([]byte, error) {
	return []byte(decimal.New(int64(p), -Decimals).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Perquintill) UnmarshalText(text []byte) error {
	parsed, err := ParsePerquintill(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
