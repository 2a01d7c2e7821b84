// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"math/big"

	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/funding/participation"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/funding/scheduler"
	"github.com/polimec/polimec-node/plmc"
)

// ContributeParams describes a community or remainder round purchase.
type ContributeParams struct {
	Project      plmc.ProjectID
	CTAmount     *big.Int
	Mode         bonding.Mode
	FundingAsset plmc.Asset
	Receiver     Receiver
}

// Contribute buys tokens at the weighted average price. Holders of a winning bid wait for the
// remainder round. A request larger than what is left buys the rest.
func (f *Funding) Contribute(investor plmc.Investor, p ContributeParams) (*participation.Contribution, error) {
	var contribution *participation.Contribution
	err := f.transact(func() error {
		id := p.Project
		metadata, details, err := f.load(id)
		if err != nil {
			return err
		}
		if err := f.validateParticipant(investor, id, metadata, details); err != nil {
			return err
		}
		if p.CTAmount == nil || p.CTAmount.Sign() <= 0 {
			return reverts.ErrTooLow
		}
		if err := f.checkRound(details, details.Status.Kind == project.CommunityRound); err != nil {
			return err
		}
		if f.block < details.Status.RemainderStart {
			won, err := f.participations.HasWinningBid(id, investor.DID)
			if err != nil {
				return err
			}
			if won {
				return reverts.ErrUserHasWinningBid
			}
		}
		if !metadata.Accepts(p.FundingAsset) {
			return reverts.ErrFundingAssetNotAccepted
		}
		if err := f.validateMode(investor, p.Mode); err != nil {
			return err
		}
		if err := f.checkCaps(participation.ContributionKind, id, investor.Account, 1,
			f.params.MaxContributionsPerUser, f.params.MaxContributionsPerProject); err != nil {
			return err
		}
		if err := f.validateReceiver(investor, id, metadata, p.Receiver); err != nil {
			return err
		}

		remaining := details.RemainingContributionTokens
		if remaining.Sign() == 0 {
			return reverts.ErrProjectSoldOut
		}
		buyable := new(big.Int).Set(p.CTAmount)
		if buyable.Cmp(remaining) > 0 {
			buyable.Set(remaining)
		}
		soldOut := buyable.Cmp(remaining) == 0

		wap, err := details.WAP()
		if err != nil {
			return err
		}
		ticket, err := wap.MulInt(buyable)
		if err != nil {
			return reverts.ErrBadMath
		}
		spent, err := f.participations.BoughtUSD(participation.ContributionKind, id, investor.DID)
		if err != nil {
			return err
		}
		ticketSize := metadata.ContributingTicketSizes.For(investor.Type)
		// the last buyer takes whatever is left regardless of the minimum ticket
		if soldOut {
			err = ticketSize.ValidateMax(ticket, spent)
		} else {
			err = ticketSize.Validate(ticket, spent)
		}
		if err != nil {
			return err
		}

		funds, err := f.lock(investor, id, ticket, p.Mode, p.FundingAsset)
		if err != nil {
			return err
		}
		contribution = &participation.Contribution{
			Project:               id,
			Contributor:           investor.Account,
			DID:                   investor.DID,
			CTAmount:              buyable,
			USDContributionAmount: ticket,
			InvestorType:          investor.Type,
			Mode:                  p.Mode,
			FundingAsset:          p.FundingAsset,
			FundingAssetAmount:    funds.fundingAsset,
			PLMCBond:              funds.bond,
			OTMFee:                funds.fee,
			When:                  f.block,
			ReceivingAccount:      p.Receiver.Account,
		}
		if err := f.participations.AddContribution(contribution); err != nil {
			return err
		}
		if err := f.recordParticipation(participation.ContributionKind, id, investor, ticket); err != nil {
			return err
		}

		details.RemainingContributionTokens = new(big.Int).Sub(remaining, buyable)
		details.FundingAmountReached = new(big.Int).Add(details.FundingAmountReached, ticket)
		if err := f.projects.SetDetails(id, details); err != nil {
			return err
		}
		logger.Debug("contribution placed", "project", id, "contributor", investor.Account, "amount", buyable, "usd", ticket)
		f.emit(f.event(Contributed, id).
			withParticipant(investor.Account).
			withRef(participation.ContributionKind, contribution.ID).
			withAmount(buyable))

		if soldOut {
			logger.Info("project sold out", "project", id)
			if err := f.unschedule(id); err != nil {
				return err
			}
			return f.schedule(f.block+1, id, scheduler.FundingEnd)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contribution, nil
}
