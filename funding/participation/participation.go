// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package participation holds the evaluation, bid and contribution records of projects.
package participation

import (
	"math/big"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/plmc"
)

// Kind is the kind of a participation.
type Kind uint8

const (
	EvaluationKind Kind = iota
	BidKind
	ContributionKind
)

func (k Kind) String() string {
	switch k {
	case EvaluationKind:
		return "evaluation"
	case BidKind:
		return "bid"
	case ContributionKind:
		return "contribution"
	}
	return "unknown"
}

func (k Kind) Bytes() []byte {
	return []byte{byte(k)}
}

// Evaluation is a PLMC bond placed during the evaluation round.
type Evaluation struct {
	ID               uint32
	Project          plmc.ProjectID
	Evaluator        plmc.Address
	DID              plmc.DID
	OriginalPLMCBond *big.Int
	CurrentPLMCBond  *big.Int
	// EarlyUSDAmount is the part of the bond placed before the early threshold was reached.
	EarlyUSDAmount   *big.Int
	LateUSDAmount    *big.Int
	When             uint32
	ReceivingAccount plmc.ReceivingAccount
}

// USDAmount is the total USD value bonded by the evaluation.
func (e *Evaluation) USDAmount() *big.Int {
	return new(big.Int).Add(e.EarlyUSDAmount, e.LateUSDAmount)
}

// BidStatusKind is the resolution state of a bid.
type BidStatusKind uint8

const (
	YetUnknown BidStatusKind = iota
	Accepted
	Rejected
	PartiallyAccepted
)

// RejectionReason tells why a bid did not get tokens.
type RejectionReason uint8

const (
	NotRejected RejectionReason = iota
	AfterCandleEnd
	NoTokensLeft
)

func (r RejectionReason) String() string {
	switch r {
	case AfterCandleEnd:
		return "AfterCandleEnd"
	case NoTokensLeft:
		return "NoTokensLeft"
	}
	return ""
}

// BidStatus is the status of a bid, Amount is set for partially accepted bids.
type BidStatus struct {
	Kind   BidStatusKind
	Reason RejectionReason
	Amount *big.Int `rlp:"optional"`
}

func (s BidStatus) String() string {
	switch s.Kind {
	case Accepted:
		return "Accepted"
	case Rejected:
		return "Rejected(" + s.Reason.String() + ")"
	case PartiallyAccepted:
		return "PartiallyAccepted(" + s.Amount.String() + ")"
	}
	return "YetUnknown"
}

func (s BidStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Bid is an auction bid for an amount of tokens at one bucket price.
type Bid struct {
	ID                       uint32
	Project                  plmc.ProjectID
	Bidder                   plmc.Address
	DID                      plmc.DID
	Status                   BidStatus
	OriginalCTAmount         *big.Int
	OriginalCTUSDPrice       fixed.U128
	InvestorType             plmc.InvestorType
	Mode                     bonding.Mode
	FundingAsset             plmc.Asset
	FundingAssetAmountLocked *big.Int
	PLMCBond                 *big.Int
	// OTMFee is the fee held in the funding asset for OTM participations.
	OTMFee           *big.Int
	When             uint32
	ReceivingAccount plmc.ReceivingAccount
}

// FinalCTAmount returns the amount of tokens the bid receives after resolution.
func (b *Bid) FinalCTAmount() *big.Int {
	switch b.Status.Kind {
	case Accepted:
		return new(big.Int).Set(b.OriginalCTAmount)
	case PartiallyAccepted:
		return new(big.Int).Set(b.Status.Amount)
	}
	return new(big.Int)
}

// Contribution is a purchase of tokens at the weighted average price.
type Contribution struct {
	ID                    uint32
	Project               plmc.ProjectID
	Contributor           plmc.Address
	DID                   plmc.DID
	CTAmount              *big.Int
	USDContributionAmount *big.Int
	InvestorType          plmc.InvestorType
	Mode                  bonding.Mode
	FundingAsset          plmc.Asset
	FundingAssetAmount    *big.Int
	PLMCBond              *big.Int
	OTMFee                *big.Int
	When                  uint32
	ReceivingAccount      plmc.ReceivingAccount
}

// Ref identifies one participation of a project.
type Ref struct {
	Kind Kind
	ID   uint32
}

// Cursor is the position of the settlement scan of a project.
type Cursor struct {
	Kind Kind
	Next uint32
	Done bool
}
