// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"math/big"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/rewards"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

// Round durations in blocks.
var (
	EvaluationRoundDuration         = storage.NewConfigVariable("evaluation-round-duration", plmc.Days(7))
	AuctionInitializePeriodDuration = storage.NewConfigVariable("auction-initialize-period-duration", plmc.Days(7))
	AuctionOpeningDuration          = storage.NewConfigVariable("auction-opening-duration", plmc.Days(2))
	AuctionClosingDuration          = storage.NewConfigVariable("auction-closing-duration", plmc.Days(3))
	CommunityRoundDuration          = storage.NewConfigVariable("community-round-duration", plmc.Days(5))
	RemainderRoundDuration          = storage.NewConfigVariable("remainder-round-duration", plmc.Days(2))
	SuccessToSettlementTime         = storage.NewConfigVariable("success-to-settlement-time", 1)
)

var durations = []*storage.ConfigVariable{
	EvaluationRoundDuration,
	AuctionInitializePeriodDuration,
	AuctionOpeningDuration,
	AuctionClosingDuration,
	CommunityRoundDuration,
	RemainderRoundDuration,
	SuccessToSettlementTime,
}

// Params are the protocol constants of the funding engine.
type Params struct {
	MaxProjectsToUpdatePerBlock uint32
	MaxSettlementsPerBlock      uint32
	MaxMigrationsPerXcm         uint32
	MaxMigrationsPerUser        uint32

	MaxEvaluationsPerUser      uint32
	MaxBidsPerUser             uint32
	MaxContributionsPerUser    uint32
	MaxEvaluationsPerProject   uint32
	MaxBidsPerProject          uint32
	MaxContributionsPerProject uint32

	MinUSDPerEvaluation *big.Int
	// EvaluationSuccessThreshold is the share of the funding target evaluations must bond.
	EvaluationSuccessThreshold fixed.Perquintill
	FeeBrackets                []rewards.FeeBracket

	// ProtocolTreasury receives slashed evaluation bonds.
	ProtocolTreasury plmc.Address
	// BondTreasury provides the bonds of OTM participations.
	BondTreasury plmc.Address
	// ContributionTreasury receives the liquidity pool and long term holder tokens.
	ContributionTreasury plmc.Address
	// FeeRecipient receives the OTM fees of successful projects.
	FeeRecipient plmc.Address
}

// DefaultParams returns the production constants.
func DefaultParams() *Params {
	return &Params{
		MaxProjectsToUpdatePerBlock: 5,
		MaxSettlementsPerBlock:      64,
		MaxMigrationsPerXcm:         10,
		MaxMigrationsPerUser:        100,

		MaxEvaluationsPerUser:      16,
		MaxBidsPerUser:             32,
		MaxContributionsPerUser:    16,
		MaxEvaluationsPerProject:   512,
		MaxBidsPerProject:          1024,
		MaxContributionsPerProject: 1024,

		MinUSDPerEvaluation:        plmc.USD(100),
		EvaluationSuccessThreshold: fixed.Percent(10),
		FeeBrackets:                rewards.DefaultFeeBrackets,

		ProtocolTreasury:     plmc.DeriveAccount("treasury"),
		BondTreasury:         plmc.DeriveAccount("otmbond"),
		ContributionTreasury: plmc.DeriveAccount("cttreas"),
		FeeRecipient:         plmc.DeriveAccount("otmfeerc"),
	}
}

// EarlyThreshold returns the USD evaluations must bond for the project to pass evaluation.
func (p *Params) EarlyThreshold(target *big.Int) *big.Int {
	return p.EvaluationSuccessThreshold.MulFloor(target)
}
