// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bucket implements the auction price ladder.
//
// The whole auction allocation is first offered at the minimum price. Once it is sold the price
// increases by DeltaPrice for every further DeltaAmount tokens, so later bids outbid earlier ones.
package bucket

import (
	"math/big"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/reverts"
)

var (
	// TrancheRatio is the share of the auction allocation sold per price step.
	TrancheRatio = fixed.Percent(10)
	// PriceStepRatio is the share of the minimum price added per step.
	PriceStepRatio = fixed.Percent(10)
)

// Bucket is the state of the price ladder.
type Bucket struct {
	AmountLeft   *big.Int
	CurrentPrice fixed.U128
	InitialPrice fixed.U128
	DeltaPrice   fixed.U128
	DeltaAmount  *big.Int
}

// Tranche is an amount of tokens bought at one price.
type Tranche struct {
	Amount *big.Int
	Price  fixed.U128
}

// Fill is the outcome of a ladder fill.
type Fill struct {
	Amount        *big.Int
	WeightedPrice fixed.U128
	Tranches      []Tranche
}

// New creates the bucket of an auction selling allocation tokens from minPrice.
func New(allocation *big.Int, minPrice fixed.U128) *Bucket {
	deltaAmount := TrancheRatio.MulFloor(allocation)
	if deltaAmount.Sign() == 0 {
		deltaAmount = big.NewInt(1)
	}
	return &Bucket{
		AmountLeft:   new(big.Int).Set(allocation),
		CurrentPrice: minPrice,
		InitialPrice: minPrice,
		DeltaPrice:   PriceStepRatio.MulFixed(minPrice),
		DeltaAmount:  deltaAmount,
	}
}

// Copy returns a deep copy.
func (b *Bucket) Copy() *Bucket {
	return &Bucket{
		AmountLeft:   new(big.Int).Set(b.AmountLeft),
		CurrentPrice: b.CurrentPrice,
		InitialPrice: b.InitialPrice,
		DeltaPrice:   b.DeltaPrice,
		DeltaAmount:  new(big.Int).Set(b.DeltaAmount),
	}
}

// advance moves to the next price step.
func (b *Bucket) advance() error {
	next, err := b.CurrentPrice.Add(b.DeltaPrice)
	if err != nil {
		return reverts.ErrBadMath
	}
	b.CurrentPrice = next
	b.AmountLeft = new(big.Int).Set(b.DeltaAmount)
	return nil
}

// Fill takes amount tokens from the ladder, advancing the price as tranches run out.
// The bucket is only mutated on success.
func (b *Bucket) Fill(amount *big.Int) (*Fill, error) {
	if amount.Sign() <= 0 {
		return nil, reverts.ErrTooLow
	}
	work := b.Copy()
	var (
		left     = new(big.Int).Set(amount)
		tranches []Tranche
		cost     = new(big.Int)
	)
	for left.Sign() > 0 {
		if work.AmountLeft.Sign() == 0 {
			if err := work.advance(); err != nil {
				return nil, err
			}
		}
		take := minInt(left, work.AmountLeft)
		tranches = append(tranches, Tranche{Amount: take, Price: work.CurrentPrice})

		trancheCost, err := work.CurrentPrice.MulInt(take)
		if err != nil {
			return nil, reverts.ErrBadMath
		}
		cost.Add(cost, trancheCost)
		left.Sub(left, take)
		work.AmountLeft = new(big.Int).Sub(work.AmountLeft, take)
	}
	// a sold out tranche moves the price on, so the next bid is quoted at the new step
	if work.AmountLeft.Sign() == 0 {
		if err := work.advance(); err != nil {
			return nil, err
		}
	}

	wap, err := fixed.FromRational(cost, amount)
	if err != nil {
		return nil, reverts.ErrBadMath
	}
	*b = *work
	return &Fill{Amount: new(big.Int).Set(amount), WeightedPrice: wap, Tranches: tranches}, nil
}

// WeightedAveragePrice returns the volume weighted price of the sold tranches, or the
// initial price when nothing was sold.
func (b *Bucket) WeightedAveragePrice(sold []Tranche) (fixed.U128, error) {
	var (
		amount   = new(big.Int)
		weighted = new(big.Int)
	)
	for _, t := range sold {
		amount.Add(amount, t.Amount)
		weighted.Add(weighted, new(big.Int).Mul(t.Price.Inner(), t.Amount))
	}
	if amount.Sign() == 0 {
		return b.InitialPrice, nil
	}
	wap, err := fixed.FromInner(weighted.Quo(weighted, amount))
	if err != nil {
		return fixed.Zero, reverts.ErrBadMath
	}
	return wap, nil
}

func minInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
