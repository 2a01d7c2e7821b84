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

// TokenInformation describes the contribution token.
type TokenInformation struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// TicketSizes holds one ticket bound per investor tier.
type TicketSizes struct {
	Retail        bonding.TicketSize
	Professional  bonding.TicketSize
	Institutional bonding.TicketSize
}

// For returns the bound applying to the investor.
func (t TicketSizes) For(investor plmc.InvestorType) bonding.TicketSize {
	switch investor {
	case plmc.Professional:
		return t.Professional
	case plmc.Institutional:
		return t.Institutional
	default:
		return t.Retail
	}
}

// Metadata is the issuer supplied description of a fundraise. It is immutable once the
// project is frozen.
type Metadata struct {
	Token                            TokenInformation
	MainnetTokenMaxSupply            *big.Int
	TotalAllocationSize              *big.Int
	AuctionRoundAllocationPercentage fixed.Perquintill
	// MinimumPrice is decimals aware: USD units per contribution token unit.
	MinimumPrice              fixed.U128
	BiddingTicketSizes        TicketSizes
	ContributingTicketSizes   TicketSizes
	ParticipationCurrencies   []plmc.Asset
	FundingDestinationAccount plmc.Address
	ParticipantsAccountType   plmc.AccountType
	PolicyIPFSCid             string
}

// AuctionAllocation returns the tokens offered in the auction.
func (m *Metadata) AuctionAllocation() *big.Int {
	return m.AuctionRoundAllocationPercentage.MulFloor(m.TotalAllocationSize)
}

// FundingTarget returns the USD raised when the whole allocation sells at the minimum price.
func (m *Metadata) FundingTarget() (*big.Int, error) {
	target, err := m.MinimumPrice.MulInt(m.TotalAllocationSize)
	if err != nil {
		return nil, reverts.ErrBadMath
	}
	return target, nil
}

// Accepts reports whether the asset can fund the project.
func (m *Metadata) Accepts(asset plmc.Asset) bool {
	return slices.Contains(m.ParticipationCurrencies, asset)
}

// Copy returns a deep copy.
func (m *Metadata) Copy() *Metadata {
	cpy := *m
	cpy.MainnetTokenMaxSupply = new(big.Int).Set(m.MainnetTokenMaxSupply)
	cpy.TotalAllocationSize = new(big.Int).Set(m.TotalAllocationSize)
	cpy.ParticipationCurrencies = slices.Clone(m.ParticipationCurrencies)
	return &cpy
}

// BlockRange is an inclusive range of blocks. Zero End means open ended.
type BlockRange struct {
	Start uint32
	End   uint32
}

// Contains reports whether the block is inside the range.
func (r BlockRange) Contains(block uint32) bool {
	return block >= r.Start && (r.End == 0 || block <= r.End)
}

// Ended reports whether the range is over at block.
func (r BlockRange) Ended(block uint32) bool {
	return r.End != 0 && block > r.End
}

// OutcomeKind is what happens to evaluator bonds at settlement.
type OutcomeKind uint8

const (
	OutcomeNotYet OutcomeKind = iota
	OutcomeUnchanged
	OutcomeRewarded
	OutcomeSlashed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUnchanged:
		return "Unchanged"
	case OutcomeRewarded:
		return "Rewarded"
	case OutcomeSlashed:
		return "Slashed"
	default:
		return "NotYet"
	}
}

// RewardInfo is the contribution token pot shared by evaluators of a rewarded project.
type RewardInfo struct {
	EarlyEvaluatorRewardPot       *big.Int
	NormalEvaluatorRewardPot      *big.Int
	EarlyEvaluatorTotalBondedUSD  *big.Int
	NormalEvaluatorTotalBondedUSD *big.Int
}

// EvaluatorsOutcome is the evaluator outcome decided at funding end.
type EvaluatorsOutcome struct {
	Kind   OutcomeKind
	Reward RewardInfo
}

// EvaluationRoundInfo aggregates the evaluations of a project.
type EvaluationRoundInfo struct {
	TotalBondedUSD    *big.Int
	TotalBondedPLMC   *big.Int
	EvaluatorsOutcome EvaluatorsOutcome
}

// Details is the mutable round state of a project.
type Details struct {
	Issuer                      plmc.Address
	IssuerDID                   plmc.DID
	IsFrozen                    bool
	Status                      Status
	Round                       BlockRange
	RemainingContributionTokens *big.Int
	FundingAmountReached        *big.Int
	FundraisingTarget           *big.Int
	WeightedAveragePrice        fixed.U128
	HasWeightedAveragePrice     bool
	Evaluation                  EvaluationRoundInfo
	USDBidOnOversubscription    *big.Int
	FundingEndBlock             uint32
	CandleEndBlock              uint32
	Migration                   MigrationType
}

// WAP returns the weighted average price once resolved.
func (d *Details) WAP() (fixed.U128, error) {
	if !d.HasWeightedAveragePrice {
		return fixed.Zero, reverts.ErrWapNotSet
	}
	return d.WeightedAveragePrice, nil
}

// FundingRatio returns the share of the target raised, rounded down.
func (d *Details) FundingRatio() fixed.Perquintill {
	return fixed.PerquintillFromRational(d.FundingAmountReached, d.FundraisingTarget)
}

// Outcome returns the funding outcome of a settling or settled project.
func (d *Details) Outcome() FundingOutcome {
	switch d.Status.Kind {
	case FundingSuccessful:
		return Success
	case FundingFailed:
		return Failure
	case SettlementStarted, SettlementFinished:
		return d.Status.Outcome
	case CTMigrationStarted, CTMigrationFinished:
		return Success
	}
	return 0
}
