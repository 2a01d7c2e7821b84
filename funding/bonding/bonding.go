// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bonding converts USD tickets into the collateral participations lock.
package bonding

import (
	"math/big"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
)

// FeePercentage is the OTM fee charged on the USD value of the bond.
var FeePercentage = fixed.Perquintill(75_000_000_000_000_000)

// USDBond returns the USD value that has to be bonded for a ticket.
func USDBond(ticket *big.Int, multiplier uint8) (*big.Int, error) {
	if multiplier == 0 {
		return nil, reverts.ErrBadMath
	}
	return new(big.Int).Quo(ticket, big.NewInt(int64(multiplier))), nil
}

// USDToNative converts USD units into units of an asset priced at price, rounding the
// reciprocal up so the result never under-collateralises.
func USDToNative(usd *big.Int, price fixed.U128) (*big.Int, error) {
	reciprocal, err := price.Reciprocal()
	if err != nil {
		return nil, reverts.ErrBadMath
	}
	amount, err := reciprocal.MulInt(usd)
	if err != nil {
		return nil, reverts.ErrBadMath
	}
	return amount, nil
}

// NativeToUSD converts asset units priced at price into USD units, rounding down.
func NativeToUSD(amount *big.Int, price fixed.U128) (*big.Int, error) {
	usd, err := price.MulInt(amount)
	if err != nil {
		return nil, reverts.ErrBadMath
	}
	return usd, nil
}

// Bond returns the PLMC a ticket requires in the mode.
func Bond(ticket *big.Int, mode Mode, plmcPrice fixed.U128) (*big.Int, error) {
	usd, err := USDBond(ticket, mode.Multiplier)
	if err != nil {
		return nil, err
	}
	return USDToNative(usd, plmcPrice)
}

// OTMFee returns the fee in funding asset units owed for a treasury provided bond.
func OTMFee(bond *big.Int, plmcPrice, assetPrice fixed.U128) (*big.Int, error) {
	bondUSD, err := NativeToUSD(bond, plmcPrice)
	if err != nil {
		return nil, err
	}
	return USDToNative(FeePercentage.MulFloor(bondUSD), assetPrice)
}

// TicketSize bounds the USD value of a participation.
type TicketSize struct {
	Min *big.Int
	// Max is the cumulative maximum per DID, nil for no maximum.
	Max *big.Int `rlp:"optional"`
}

// Validate checks a ticket against the bounds, where spent is what the DID already bought.
func (ts TicketSize) Validate(ticket, spent *big.Int) error {
	if ts.Min != nil && ticket.Cmp(ts.Min) < 0 {
		return reverts.ErrTooLow
	}
	return ts.ValidateMax(ticket, spent)
}

// ValidateMax checks only the cumulative maximum.
func (ts TicketSize) ValidateMax(ticket, spent *big.Int) error {
	if ts.Max != nil && new(big.Int).Add(ticket, spent).Cmp(ts.Max) > 0 {
		return reverts.ErrTooHigh
	}
	return nil
}

// VestingInfo is the linear release of a bond or of purchased tokens.
type VestingInfo struct {
	TotalAmount    *big.Int
	AmountPerBlock *big.Int
	Duration       uint32
}

// VestingDuration returns the vesting length in blocks: 2.167 weeks per multiplier step above one.
func VestingDuration(multiplier uint8) uint32 {
	if multiplier <= 1 {
		return 1
	}
	// 2.167 weeks = 2167 * 7 / 1000 days
	blocks := uint64(multiplier-1) * 2167 * 7 * uint64(plmc.BlocksPerDay) / 1000
	if blocks == 0 {
		return 1
	}
	return uint32(blocks)
}

// NewVestingInfo spreads total over the duration for multiplier.
func NewVestingInfo(total *big.Int, multiplier uint8) VestingInfo {
	duration := VestingDuration(multiplier)
	perBlock := new(big.Int).Quo(total, big.NewInt(int64(duration)))
	if perBlock.Sign() == 0 && total.Sign() > 0 {
		perBlock.SetInt64(1)
	}
	return VestingInfo{
		TotalAmount:    new(big.Int).Set(total),
		AmountPerBlock: perBlock,
		Duration:       duration,
	}
}

// ReleaseKind says what happens to an OTM fee and bond at settlement.
type ReleaseKind uint8

const (
	// Locked forwards the fee to the fee recipient and keeps the bond locked until a block.
	Locked ReleaseKind = iota
	// Refunded returns the fee to the participant.
	Refunded
)

// ReleaseType is the OTM release policy.
type ReleaseType struct {
	Kind  ReleaseKind
	Until uint32
}

// ReleasePolicy returns how the OTM fee and bond of a settled participation are released. Successful
// projects keep the bond locked for the vesting duration of the multiplier from now.
func ReleasePolicy(success bool, now uint32, multiplier uint8) ReleaseType {
	if !success {
		return ReleaseType{Kind: Refunded}
	}
	return ReleaseType{Kind: Locked, Until: now + VestingDuration(multiplier)}
}
