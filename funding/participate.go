// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"bytes"
	"math/big"

	"github.com/polimec/polimec-node/credentials"
	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/funding/participation"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/ledger"
	"github.com/polimec/polimec-node/plmc"
)

// Receiver is the account the participant wants the contribution tokens delivered to, with the
// proof that the participant controls it. Polkadot receivers equal to the participant account
// need no proof.
type Receiver struct {
	Account   plmc.ReceivingAccount
	Signature []byte
}

// OwnReceiver delivers to the participant account.
func OwnReceiver(account plmc.Address) Receiver {
	return Receiver{Account: plmc.PolkadotReceiver(account)}
}

func (f *Funding) validateReceiver(investor plmc.Investor, id plmc.ProjectID, metadata *project.Metadata, r Receiver) error {
	if r.Account.Type != metadata.ParticipantsAccountType || r.Account.Validate() != nil {
		return reverts.ErrUnsupportedReceiverAccount
	}
	if r.Account.Type == plmc.PolkadotAccount && bytes.Equal(r.Account.Key, investor.Account.Bytes()) {
		return nil
	}
	if err := credentials.VerifyReceiver(r.Account, investor.Account, id, r.Signature); err != nil {
		return reverts.ErrBadReceiverAccountSignature
	}
	return nil
}

// validateParticipant runs the checks shared by every participation kind.
func (f *Funding) validateParticipant(investor plmc.Investor, id plmc.ProjectID, metadata *project.Metadata, details *project.Details) error {
	if investor.Policy != metadata.PolicyIPFSCid {
		return reverts.ErrPolicyMismatch
	}
	if investor.DID == details.IssuerDID || investor.Account == details.Issuer {
		return reverts.ErrParticipationToOwnProject
	}
	return nil
}

func (f *Funding) checkRound(details *project.Details, active bool) error {
	if !active {
		return reverts.ErrIncorrectRound
	}
	if details.Round.Ended(f.block) {
		return reverts.ErrTooLateForRound
	}
	if !details.Round.Contains(f.block) {
		return reverts.ErrTooEarlyForRound
	}
	return nil
}

// checkCaps enforces the per user and per project participation limits for n new records.
func (f *Funding) checkCaps(kind participation.Kind, id plmc.ProjectID, account plmc.Address, n, perUser, perProject uint32) error {
	userCount, err := f.participations.UserCount(kind, id, account)
	if err != nil {
		return err
	}
	if userCount+n > perUser {
		return reverts.ErrTooManyUserParticipations
	}
	projectCount, err := f.participations.ProjectCount(kind, id)
	if err != nil {
		return err
	}
	if projectCount+n > perProject {
		return reverts.ErrTooManyProjectParticipations
	}
	return nil
}

func (f *Funding) validateMode(investor plmc.Investor, mode bonding.Mode) error {
	participated, err := f.participations.ParticipatedProjects(investor.DID)
	if err != nil {
		return err
	}
	return bonding.ValidateMode(mode, investor.Type, participated)
}

// locked is what a bid or contribution put aside.
type locked struct {
	bond         *big.Int
	fundingAsset *big.Int
	fee          *big.Int
}

// bondOwner returns the account holding the bond of a participation.
func bondOwner(id plmc.ProjectID, participant plmc.Address, mode bonding.Mode) plmc.Address {
	if mode.OTM {
		return id.BondingEscrow()
	}
	return participant
}

// lock moves the funding asset of a ticket into the project escrow and bonds PLMC for it. OTM
// participants pay a fee in the funding asset instead and the treasury provides the bond.
func (f *Funding) lock(investor plmc.Investor, id plmc.ProjectID, ticket *big.Int, mode bonding.Mode, asset plmc.Asset) (*locked, error) {
	plmcPrice, err := f.price(plmc.Native)
	if err != nil {
		return nil, err
	}
	assetPrice, err := f.price(asset)
	if err != nil {
		return nil, err
	}
	bond, err := bonding.Bond(ticket, mode, plmcPrice)
	if err != nil {
		return nil, err
	}
	amount, err := bonding.USDToNative(ticket, assetPrice)
	if err != nil {
		return nil, err
	}
	res := &locked{bond: bond, fundingAsset: amount, fee: new(big.Int)}

	if err := f.ledger.Transfer(asset, investor.Account, id.Escrow(), amount); err != nil {
		return nil, fundsError(err)
	}
	if !mode.OTM {
		if err := f.ledger.Hold(investor.Account, bond, ledger.Participation); err != nil {
			return nil, fundsError(err)
		}
		return res, nil
	}

	if res.fee, err = bonding.OTMFee(bond, plmcPrice, assetPrice); err != nil {
		return nil, err
	}
	if err := f.ledger.Transfer(asset, investor.Account, id.FeeEscrow(), res.fee); err != nil {
		return nil, fundsError(err)
	}
	if err := f.ledger.Transfer(plmc.Native, f.params.BondTreasury, id.BondingEscrow(), bond); err != nil {
		return nil, err
	}
	if err := f.ledger.Hold(id.BondingEscrow(), bond, ledger.Participation); err != nil {
		return nil, err
	}
	return res, nil
}

// recordParticipation updates the per DID aggregates after a bid or contribution.
func (f *Funding) recordParticipation(kind participation.Kind, id plmc.ProjectID, investor plmc.Investor, ticket *big.Int) error {
	if err := f.participations.AddBoughtUSD(kind, id, investor.DID, ticket); err != nil {
		return err
	}
	if investor.Type == plmc.Retail {
		if err := f.participations.RecordRetailParticipation(investor.DID, id); err != nil {
			return err
		}
	}
	metricParticipations().AddWithLabel(1, map[string]string{"kind": kind.String()})
	return nil
}
