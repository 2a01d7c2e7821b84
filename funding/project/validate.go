// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package project

import (
	"math/big"
	"slices"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
)

// Bounds enforced on metadata.
var (
	MinProfessionalBid         = plmc.USD(5000)
	MinParticipation           = plmc.USD(1)
	MinFundingTarget           = plmc.USD(1000)
	MaxFundingTarget           = plmc.USD(1_000_000_000)
	MinTokenDecimals           = uint8(6)
	MaxTokenDecimals           = uint8(18)
	MinOriginalPrice           = fixed.MustParse("0.00001")
	MaxOriginalPrice           = fixed.FromUint64(1000)
	MaxParticipationCurrencies = 3
)

// Validate checks the metadata describes a fundable project.
func (m *Metadata) Validate() error {
	if m.MinimumPrice.IsZero() {
		return reverts.ErrPriceTooLow
	}

	for _, investor := range []plmc.InvestorType{plmc.Retail, plmc.Professional, plmc.Institutional} {
		min := MinParticipation
		if investor != plmc.Retail {
			min = MinProfessionalBid
		}
		if err := validTicket(m.BiddingTicketSizes.For(investor), min); err != nil {
			return err
		}
		if err := validTicket(m.ContributingTicketSizes.For(investor), MinParticipation); err != nil {
			return err
		}
	}

	total := m.TotalAllocationSize
	if total == nil || total.Sign() <= 0 ||
		m.MainnetTokenMaxSupply == nil || total.Cmp(m.MainnetTokenMaxSupply) > 0 {
		return reverts.ErrAllocationSizeError
	}

	if m.AuctionRoundAllocationPercentage == 0 || m.AuctionRoundAllocationPercentage > fixed.OneQuintill {
		return reverts.ErrAuctionRoundPercentage
	}

	if len(m.ParticipationCurrencies) == 0 || len(m.ParticipationCurrencies) > MaxParticipationCurrencies {
		return reverts.ErrParticipationCurrencies
	}
	seen := make([]plmc.Asset, 0, len(m.ParticipationCurrencies))
	for _, asset := range m.ParticipationCurrencies {
		if !asset.IsFundingAsset() || slices.Contains(seen, asset) {
			return reverts.ErrParticipationCurrencies
		}
		seen = append(seen, asset)
	}

	target, err := m.FundingTarget()
	if err != nil {
		return err
	}
	if target.Cmp(MinFundingTarget) < 0 {
		return reverts.ErrFundingTargetTooLow
	}
	if target.Cmp(MaxFundingTarget) > 0 {
		return reverts.ErrFundingTargetTooHigh
	}

	decimals := m.Token.Decimals
	if decimals < MinTokenDecimals || decimals > MaxTokenDecimals {
		return reverts.ErrBadDecimals
	}
	if total.Cmp(plmc.Pow10(decimals)) < 0 {
		return reverts.ErrAllocationSizeError
	}

	// price of a whole token in USD
	original, err := m.MinimumPrice.MulPow10(int(decimals) - int(plmc.USDDecimals))
	if err != nil || original.Cmp(MinOriginalPrice) < 0 || original.Cmp(MaxOriginalPrice) > 0 {
		return reverts.ErrBadTokenomics
	}
	return nil
}

func validTicket(ts bonding.TicketSize, min *big.Int) error {
	if ts.Min == nil || ts.Min.Cmp(min) < 0 {
		return reverts.ErrTicketSizeError
	}
	if ts.Max != nil && ts.Max.Cmp(ts.Min) < 0 {
		return reverts.ErrTicketSizeError
	}
	return nil
}
