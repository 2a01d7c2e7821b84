// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/funding/participation"
)

// Prices are the USD prices a settlement converts with.
type Prices struct {
	PLMC  fixed.U128
	Asset fixed.U128
}

// BidRefund is what a settled bid keeps and gets back.
type BidRefund struct {
	FinalPrice           fixed.U128
	FinalCTAmount        *big.Int
	RefundedPLMC         *big.Int
	RefundedFundingAsset *big.Int
	RefundedOTMFee       *big.Int
}

// Refund computes the refund of a bid. Rejected bids and bids of failed projects get everything
// back, others pay the lower of their price and the weighted average price for the tokens they got.
func Refund(bid *participation.Bid, success bool, wap fixed.U128, prices Prices) (*BidRefund, error) {
	finalPrice := fixed.Min(bid.OriginalCTUSDPrice, wap)
	fee := bid.OTMFee
	if fee == nil {
		fee = new(big.Int)
	}

	if !success || bid.Status.Kind == participation.Rejected {
		return &BidRefund{
			FinalPrice:           finalPrice,
			FinalCTAmount:        new(big.Int),
			RefundedPLMC:         new(big.Int).Set(bid.PLMCBond),
			RefundedFundingAsset: new(big.Int).Set(bid.FundingAssetAmountLocked),
			RefundedOTMFee:       new(big.Int).Set(fee),
		}, nil
	}

	amount := bid.FinalCTAmount()
	ticket, err := finalPrice.MulInt(amount)
	if err != nil {
		return nil, err
	}
	bond, err := bonding.Bond(ticket, bid.Mode, prices.PLMC)
	if err != nil {
		return nil, err
	}
	fundingAsset, err := bonding.USDToNative(ticket, prices.Asset)
	if err != nil {
		return nil, err
	}
	newFee := new(big.Int)
	if bid.Mode.OTM {
		if newFee, err = bonding.OTMFee(bond, prices.PLMC, prices.Asset); err != nil {
			return nil, err
		}
	}
	return &BidRefund{
		FinalPrice:           finalPrice,
		FinalCTAmount:        amount,
		RefundedPLMC:         saturatingSub(bid.PLMCBond, bond),
		RefundedFundingAsset: saturatingSub(bid.FundingAssetAmountLocked, fundingAsset),
		RefundedOTMFee:       saturatingSub(fee, newFee),
	}, nil
}

func saturatingSub(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}
