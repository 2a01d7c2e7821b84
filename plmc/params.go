// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package plmc

import (
	"math/big"
)

// Constants of the chain.
const (
	BlockInterval uint64 = 12 // seconds between two consecutive blocks.
	BlocksPerDay  uint32 = 7200

	USDDecimals  uint8 = 6
	PLMCDecimals uint8 = 10
)

var (
	USDUnit  = Pow10(USDDecimals)  // one USD in its smallest unit.
	PLMCUnit = Pow10(PLMCDecimals) // one PLMC in planck.
)

// Days converts a number of days into blocks.
func Days(n uint32) uint32 {
	return n * BlocksPerDay
}

// Pow10 returns 10^n.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// Units returns amount whole units of a token with the given decimals.
func Units(amount int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(amount), Pow10(decimals))
}

// USD returns amount whole dollars in USD units.
func USD(amount int64) *big.Int {
	return Units(amount, USDDecimals)
}

// PLMC returns amount whole PLMC in planck.
func PLMC(amount int64) *big.Int {
	return Units(amount, PLMCDecimals)
}
