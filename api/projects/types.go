// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package projects

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding"
	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/funding/bucket"
	"github.com/polimec/polimec-node/funding/migration"
	"github.com/polimec/polimec-node/funding/participation"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/plmc"
)

func amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func bigOf(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(v))
}

type TicketSize struct {
	Min *math.HexOrDecimal256 `json:"min"`
	Max *math.HexOrDecimal256 `json:"max,omitempty"`
}

type TicketSizes struct {
	Retail        TicketSize `json:"retail"`
	Professional  TicketSize `json:"professional"`
	Institutional TicketSize `json:"institutional"`
}

type Token struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Metadata is the issuer supplied description of a project. Amounts are in minimal units and
// the minimum price is a decimal of USD units per token unit.
type Metadata struct {
	Token                            Token                 `json:"token"`
	MainnetTokenMaxSupply            *math.HexOrDecimal256 `json:"mainnetTokenMaxSupply"`
	TotalAllocationSize              *math.HexOrDecimal256 `json:"totalAllocationSize"`
	AuctionRoundAllocationPercentage fixed.Perquintill     `json:"auctionRoundAllocationPercentage"`
	MinimumPrice                     fixed.U128            `json:"minimumPrice"`
	BiddingTicketSizes               TicketSizes           `json:"biddingTicketSizes"`
	ContributingTicketSizes          TicketSizes           `json:"contributingTicketSizes"`
	ParticipationCurrencies          []plmc.Asset          `json:"participationCurrencies"`
	FundingDestinationAccount        plmc.Address          `json:"fundingDestinationAccount"`
	ParticipantsAccountType          string                `json:"participantsAccountType"`
	PolicyIPFSCid                    string                `json:"policyIpfsCid"`
}

func convertTicketSizes(t project.TicketSizes) TicketSizes {
	conv := func(s bonding.TicketSize) TicketSize {
		return TicketSize{Min: amount(s.Min), Max: amount(s.Max)}
	}
	return TicketSizes{
		Retail:        conv(t.Retail),
		Professional:  conv(t.Professional),
		Institutional: conv(t.Institutional),
	}
}

func (t TicketSizes) toTicketSizes() project.TicketSizes {
	conv := func(s TicketSize) bonding.TicketSize {
		lower := bigOf(s.Min)
		if lower == nil {
			lower = new(big.Int)
		}
		return bonding.TicketSize{Min: lower, Max: bigOf(s.Max)}
	}
	return project.TicketSizes{
		Retail:        conv(t.Retail),
		Professional:  conv(t.Professional),
		Institutional: conv(t.Institutional),
	}
}

func convertMetadata(m *project.Metadata) *Metadata {
	return &Metadata{
		Token:                            Token(m.Token),
		MainnetTokenMaxSupply:            amount(m.MainnetTokenMaxSupply),
		TotalAllocationSize:              amount(m.TotalAllocationSize),
		AuctionRoundAllocationPercentage: m.AuctionRoundAllocationPercentage,
		MinimumPrice:                     m.MinimumPrice,
		BiddingTicketSizes:               convertTicketSizes(m.BiddingTicketSizes),
		ContributingTicketSizes:          convertTicketSizes(m.ContributingTicketSizes),
		ParticipationCurrencies:          m.ParticipationCurrencies,
		FundingDestinationAccount:        m.FundingDestinationAccount,
		ParticipantsAccountType:          m.ParticipantsAccountType.String(),
		PolicyIPFSCid:                    m.PolicyIPFSCid,
	}
}

func (m *Metadata) toMetadata() (*project.Metadata, error) {
	if m.MainnetTokenMaxSupply == nil || m.TotalAllocationSize == nil {
		return nil, errors.New("mainnetTokenMaxSupply and totalAllocationSize are required")
	}
	var accountType plmc.AccountType
	switch m.ParticipantsAccountType {
	case "", "polkadot":
		accountType = plmc.PolkadotAccount
	case "ethereum":
		accountType = plmc.EthereumAccount
	default:
		return nil, errors.New("participantsAccountType: unknown account type")
	}
	return &project.Metadata{
		Token:                            project.TokenInformation(m.Token),
		MainnetTokenMaxSupply:            bigOf(m.MainnetTokenMaxSupply),
		TotalAllocationSize:              bigOf(m.TotalAllocationSize),
		AuctionRoundAllocationPercentage: m.AuctionRoundAllocationPercentage,
		MinimumPrice:                     m.MinimumPrice,
		BiddingTicketSizes:               m.BiddingTicketSizes.toTicketSizes(),
		ContributingTicketSizes:          m.ContributingTicketSizes.toTicketSizes(),
		ParticipationCurrencies:          m.ParticipationCurrencies,
		FundingDestinationAccount:        m.FundingDestinationAccount,
		ParticipantsAccountType:          accountType,
		PolicyIPFSCid:                    m.PolicyIPFSCid,
	}, nil
}

type BlockRange struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type Evaluation struct {
	TotalBondedUSD    *math.HexOrDecimal256 `json:"totalBondedUsd"`
	TotalBondedPLMC   *math.HexOrDecimal256 `json:"totalBondedPlmc"`
	EvaluatorsOutcome string                `json:"evaluatorsOutcome"`
}

type Migration struct {
	Kind        string `json:"kind"`
	ParaID      uint32 `json:"paraId,omitempty"`
	ChannelOpen bool   `json:"channelOpen"`
	Ready       bool   `json:"ready"`
}

// Project is a project with its round state.
type Project struct {
	ID                          plmc.ProjectID        `json:"id"`
	Metadata                    *Metadata             `json:"metadata"`
	Issuer                      plmc.Address          `json:"issuer"`
	IssuerDID                   plmc.DID              `json:"issuerDid"`
	IsFrozen                    bool                  `json:"isFrozen"`
	Status                      project.Status        `json:"status"`
	Round                       BlockRange            `json:"round"`
	RemainingContributionTokens *math.HexOrDecimal256 `json:"remainingContributionTokens"`
	FundingAmountReached        *math.HexOrDecimal256 `json:"fundingAmountReached"`
	FundraisingTarget           *math.HexOrDecimal256 `json:"fundraisingTarget"`
	WeightedAveragePrice        *fixed.U128           `json:"weightedAveragePrice,omitempty"`
	Evaluation                  Evaluation            `json:"evaluation"`
	FundingEndBlock             uint32                `json:"fundingEndBlock,omitempty"`
	Migration                   Migration             `json:"migration"`
}

func convertProject(id plmc.ProjectID, m *project.Metadata, d *project.Details) *Project {
	p := &Project{
		ID:                          id,
		Metadata:                    convertMetadata(m),
		Issuer:                      d.Issuer,
		IssuerDID:                   d.IssuerDID,
		IsFrozen:                    d.IsFrozen,
		Status:                      d.Status,
		Round:                       BlockRange(d.Round),
		RemainingContributionTokens: amount(d.RemainingContributionTokens),
		FundingAmountReached:        amount(d.FundingAmountReached),
		FundraisingTarget:           amount(d.FundraisingTarget),
		Evaluation: Evaluation{
			TotalBondedUSD:    amount(d.Evaluation.TotalBondedUSD),
			TotalBondedPLMC:   amount(d.Evaluation.TotalBondedPLMC),
			EvaluatorsOutcome: d.Evaluation.EvaluatorsOutcome.Kind.String(),
		},
		FundingEndBlock: d.FundingEndBlock,
		Migration: Migration{
			Kind:        d.Migration.Kind.String(),
			ParaID:      d.Migration.Pallet.ParaID,
			ChannelOpen: d.Migration.Pallet.Channel.IsOpen(),
			Ready:       d.Migration.Pallet.Readiness.Passed(),
		},
	}
	if d.HasWeightedAveragePrice {
		wap := d.WeightedAveragePrice
		p.WeightedAveragePrice = &wap
	}
	return p
}

type Bucket struct {
	AmountLeft   *math.HexOrDecimal256 `json:"amountLeft"`
	CurrentPrice fixed.U128            `json:"currentPrice"`
	InitialPrice fixed.U128            `json:"initialPrice"`
	DeltaPrice   fixed.U128            `json:"deltaPrice"`
	DeltaAmount  *math.HexOrDecimal256 `json:"deltaAmount"`
}

func convertBucket(b *bucket.Bucket) *Bucket {
	return &Bucket{
		AmountLeft:   amount(b.AmountLeft),
		CurrentPrice: b.CurrentPrice,
		InitialPrice: b.InitialPrice,
		DeltaPrice:   b.DeltaPrice,
		DeltaAmount:  amount(b.DeltaAmount),
	}
}

// Mode is how a participation is collateralised. OTM ignores the multiplier.
type Mode struct {
	OTM        bool  `json:"otm,omitempty"`
	Multiplier uint8 `json:"multiplier,omitempty"`
}

func (m *Mode) toMode() bonding.Mode {
	if m == nil {
		return bonding.Classic(1)
	}
	if m.OTM {
		return bonding.OTM()
	}
	return bonding.Classic(m.Multiplier)
}

func convertMode(m bonding.Mode) Mode {
	return Mode{OTM: m.OTM, Multiplier: m.Multiplier}
}

type EvaluationRecord struct {
	ID               uint32                `json:"id"`
	Evaluator        plmc.Address          `json:"evaluator"`
	DID              plmc.DID              `json:"did"`
	OriginalPLMCBond *math.HexOrDecimal256 `json:"originalPlmcBond"`
	CurrentPLMCBond  *math.HexOrDecimal256 `json:"currentPlmcBond"`
	EarlyUSDAmount   *math.HexOrDecimal256 `json:"earlyUsdAmount"`
	LateUSDAmount    *math.HexOrDecimal256 `json:"lateUsdAmount"`
	When             uint32                `json:"when"`
	ReceivingAccount string                `json:"receivingAccount"`
}

func convertEvaluation(e *participation.Evaluation) *EvaluationRecord {
	return &EvaluationRecord{
		ID:               e.ID,
		Evaluator:        e.Evaluator,
		DID:              e.DID,
		OriginalPLMCBond: amount(e.OriginalPLMCBond),
		CurrentPLMCBond:  amount(e.CurrentPLMCBond),
		EarlyUSDAmount:   amount(e.EarlyUSDAmount),
		LateUSDAmount:    amount(e.LateUSDAmount),
		When:             e.When,
		ReceivingAccount: e.ReceivingAccount.String(),
	}
}

type BidRecord struct {
	ID                       uint32                  `json:"id"`
	Bidder                   plmc.Address            `json:"bidder"`
	DID                      plmc.DID                `json:"did"`
	Status                   participation.BidStatus `json:"status"`
	OriginalCTAmount         *math.HexOrDecimal256   `json:"originalCtAmount"`
	OriginalCTUSDPrice       fixed.U128              `json:"originalCtUsdPrice"`
	InvestorType             string                  `json:"investorType"`
	Mode                     Mode                    `json:"mode"`
	FundingAsset             plmc.Asset              `json:"fundingAsset"`
	FundingAssetAmountLocked *math.HexOrDecimal256   `json:"fundingAssetAmountLocked"`
	PLMCBond                 *math.HexOrDecimal256   `json:"plmcBond"`
	OTMFee                   *math.HexOrDecimal256   `json:"otmFee,omitempty"`
	When                     uint32                  `json:"when"`
	ReceivingAccount         string                  `json:"receivingAccount"`
}

func convertBid(b *participation.Bid) *BidRecord {
	return &BidRecord{
		ID:                       b.ID,
		Bidder:                   b.Bidder,
		DID:                      b.DID,
		Status:                   b.Status,
		OriginalCTAmount:         amount(b.OriginalCTAmount),
		OriginalCTUSDPrice:       b.OriginalCTUSDPrice,
		InvestorType:             b.InvestorType.String(),
		Mode:                     convertMode(b.Mode),
		FundingAsset:             b.FundingAsset,
		FundingAssetAmountLocked: amount(b.FundingAssetAmountLocked),
		PLMCBond:                 amount(b.PLMCBond),
		OTMFee:                   amount(b.OTMFee),
		When:                     b.When,
		ReceivingAccount:         b.ReceivingAccount.String(),
	}
}

type ContributionRecord struct {
	ID                    uint32                `json:"id"`
	Contributor           plmc.Address          `json:"contributor"`
	DID                   plmc.DID              `json:"did"`
	CTAmount              *math.HexOrDecimal256 `json:"ctAmount"`
	USDContributionAmount *math.HexOrDecimal256 `json:"usdContributionAmount"`
	InvestorType          string                `json:"investorType"`
	Mode                  Mode                  `json:"mode"`
	FundingAsset          plmc.Asset            `json:"fundingAsset"`
	FundingAssetAmount    *math.HexOrDecimal256 `json:"fundingAssetAmount"`
	PLMCBond              *math.HexOrDecimal256 `json:"plmcBond"`
	OTMFee                *math.HexOrDecimal256 `json:"otmFee,omitempty"`
	When                  uint32                `json:"when"`
	ReceivingAccount      string                `json:"receivingAccount"`
}

func convertContribution(c *participation.Contribution) *ContributionRecord {
	return &ContributionRecord{
		ID:                    c.ID,
		Contributor:           c.Contributor,
		DID:                   c.DID,
		CTAmount:              amount(c.CTAmount),
		USDContributionAmount: amount(c.USDContributionAmount),
		InvestorType:          c.InvestorType.String(),
		Mode:                  convertMode(c.Mode),
		FundingAsset:          c.FundingAsset,
		FundingAssetAmount:    amount(c.FundingAssetAmount),
		PLMCBond:              amount(c.PLMCBond),
		OTMFee:                amount(c.OTMFee),
		When:                  c.When,
		ReceivingAccount:      c.ReceivingAccount.String(),
	}
}

type MigrationRecord struct {
	ParticipationType string                `json:"participationType"`
	ParticipationID   uint32                `json:"participationId"`
	Receiver          string                `json:"receiver"`
	Amount            *math.HexOrDecimal256 `json:"amount"`
	VestingTime       uint32                `json:"vestingTime"`
}

type UserMigrations struct {
	Status     migration.Status      `json:"status"`
	Total      *math.HexOrDecimal256 `json:"total"`
	Migrations []*MigrationRecord    `json:"migrations"`
}

func convertMigrations(u *migration.UserMigrations) *UserMigrations {
	out := &UserMigrations{
		Status:     u.Status,
		Total:      amount(u.Total()),
		Migrations: make([]*MigrationRecord, 0, len(u.Migrations)),
	}
	for _, m := range u.Migrations {
		out.Migrations = append(out.Migrations, &MigrationRecord{
			ParticipationType: m.Origin.ParticipationType.String(),
			ParticipationID:   m.Origin.ID,
			Receiver:          m.Origin.User.String(),
			Amount:            amount(m.Info.ContributionTokenAmount),
			VestingTime:       m.Info.VestingTime,
		})
	}
	return out
}

// Receiver optionally delivers the tokens to another account. The signature proves control of
// it and is only needed when it differs from the caller account.
type Receiver struct {
	Account   string        `json:"receiver,omitempty"`
	Signature hexutil.Bytes `json:"signature,omitempty"`
}

func (r Receiver) toReceiver(caller plmc.Address) (funding.Receiver, error) {
	if r.Account == "" {
		return funding.OwnReceiver(caller), nil
	}
	account, err := plmc.ParseReceivingAccount(r.Account)
	if err != nil {
		return funding.Receiver{}, err
	}
	return funding.Receiver{Account: account, Signature: r.Signature}, nil
}

type EvaluateRequest struct {
	USD *math.HexOrDecimal256 `json:"usd"`
	Receiver
}

// ParticipateRequest buys tokens in the auction or the community rounds.
type ParticipateRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
	Mode   *Mode                 `json:"mode,omitempty"`
	Asset  string                `json:"asset"`
	Receiver
}

type SettleRequest struct {
	Kind string `json:"kind"`
	ID   uint32 `json:"id"`
}

func (s *SettleRequest) toRef() (participation.Ref, error) {
	for _, k := range []participation.Kind{participation.EvaluationKind, participation.BidKind, participation.ContributionKind} {
		if k.String() == s.Kind {
			return participation.Ref{Kind: k, ID: s.ID}, nil
		}
	}
	return participation.Ref{}, errors.New("kind: unknown participation kind")
}

type ConfirmMigrationRequest struct {
	Participant plmc.Address `json:"participant"`
}

type CreateResponse struct {
	ID plmc.ProjectID `json:"id"`
}
