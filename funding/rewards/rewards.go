// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards computes the funding outcome, evaluator rewards and slashes, and bid refunds.
package rewards

import (
	"math/big"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/plmc"
)

var (
	// FundingSuccessThreshold is the funding ratio a project must exceed to succeed.
	FundingSuccessThreshold = fixed.Percent(33)
	// SlashThreshold is the funding ratio at or below which evaluators are slashed.
	SlashThreshold = fixed.Percent(75)
	// RewardThreshold is the funding ratio from which evaluators are rewarded.
	RewardThreshold = fixed.Percent(90)
	// EvaluatorSlash is the share of the original evaluation bond that is slashed.
	EvaluatorSlash = fixed.Percent(20)

	EvaluatorsShare    = fixed.Percent(30)
	EarlyEvaluatorPot  = fixed.Percent(20)
	NormalEvaluatorPot = fixed.Percent(80)
	LiquidityPoolShare = fixed.Percent(50)
	LongTermShare      = fixed.Percent(20)
)

// FeeBracket charges Fee on the next Limit USD raised, a nil Limit covers the rest.
type FeeBracket struct {
	Fee   fixed.Perquintill
	Limit *big.Int `rlp:"optional"`
}

// DefaultFeeBrackets charge 10% on the first million, 8% on the next four and 6% above.
var DefaultFeeBrackets = []FeeBracket{
	{Fee: fixed.Percent(10), Limit: plmc.USD(1_000_000)},
	{Fee: fixed.Percent(8), Limit: plmc.USD(4_000_000)},
	{Fee: fixed.Percent(6)},
}

// TotalFee returns the protocol fee in USD for raised USD.
func TotalFee(raised *big.Int, brackets []FeeBracket) *big.Int {
	var (
		remaining = new(big.Int).Set(raised)
		total     = new(big.Int)
	)
	for _, b := range brackets {
		if remaining.Sign() <= 0 {
			break
		}
		portion := remaining
		if b.Limit != nil && remaining.Cmp(b.Limit) > 0 {
			portion = b.Limit
		}
		total.Add(total, b.Fee.MulFloor(portion))
		remaining = new(big.Int).Sub(remaining, portion)
	}
	return total
}

// FeeAllocation returns the amount of contribution tokens matching the fee share of raised.
func FeeAllocation(raised, sold *big.Int, brackets []FeeBracket) *big.Int {
	fee := TotalFee(raised, brackets)
	return fixed.PerquintillFromRational(fee, raised).MulFloor(sold)
}

// FundingOutcome decides whether a project with the funding ratio succeeded.
func FundingOutcome(ratio fixed.Perquintill) project.FundingOutcome {
	if ratio > FundingSuccessThreshold {
		return project.Success
	}
	return project.Failure
}

// EvaluatorsOutcomeKind maps a funding ratio to the outcome evaluators get.
func EvaluatorsOutcomeKind(ratio fixed.Perquintill) project.OutcomeKind {
	switch {
	case ratio <= SlashThreshold:
		return project.OutcomeSlashed
	case ratio < RewardThreshold:
		return project.OutcomeUnchanged
	default:
		return project.OutcomeRewarded
	}
}

// NewRewardInfo splits the evaluator share of the fee allocation into the early and normal pots.
func NewRewardInfo(feeAllocation, totalBondedUSD, earlyThresholdUSD *big.Int) project.RewardInfo {
	evaluators := EvaluatorsShare.MulFloor(feeAllocation)
	early := totalBondedUSD
	if earlyThresholdUSD.Cmp(early) < 0 {
		early = earlyThresholdUSD
	}
	return project.RewardInfo{
		EarlyEvaluatorRewardPot:       EarlyEvaluatorPot.MulFloor(evaluators),
		NormalEvaluatorRewardPot:      NormalEvaluatorPot.MulFloor(evaluators),
		EarlyEvaluatorTotalBondedUSD:  new(big.Int).Set(early),
		NormalEvaluatorTotalBondedUSD: new(big.Int).Set(totalBondedUSD),
	}
}

// EvaluatorReward returns the contribution tokens an evaluation earns from the pots.
func EvaluatorReward(earlyUSD, lateUSD *big.Int, info project.RewardInfo) *big.Int {
	earlyWeight := fixed.PerquintillFromRational(earlyUSD, info.EarlyEvaluatorTotalBondedUSD)
	normalWeight := fixed.PerquintillFromRational(new(big.Int).Add(earlyUSD, lateUSD), info.NormalEvaluatorTotalBondedUSD)
	reward := earlyWeight.MulFloor(info.EarlyEvaluatorRewardPot)
	return reward.Add(reward, normalWeight.MulFloor(info.NormalEvaluatorRewardPot))
}

// Slash returns the part of an original evaluation bond taken when evaluators are slashed.
func Slash(originalBond *big.Int) *big.Int {
	return EvaluatorSlash.MulFloor(originalBond)
}

// TreasuryRewards returns the liquidity pool and long term holder token amounts.
func TreasuryRewards(feeAllocation *big.Int) (liquidity, longTerm *big.Int) {
	return LiquidityPoolShare.MulFloor(feeAllocation), LongTermShare.MulFloor(feeAllocation)
}
