// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"encoding/binary"
	"math/big"
	"sort"

	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/funding/bucket"
	"github.com/polimec/polimec-node/funding/participation"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/funding/scheduler"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

// BidParams describes an auction bid.
type BidParams struct {
	Project      plmc.ProjectID
	CTAmount     *big.Int
	Mode         bonding.Mode
	FundingAsset plmc.Asset
	Receiver     Receiver
}

// StartAuction lets the issuer open the auction before the initialize period ends. The
// automatic start is cancelled.
func (f *Funding) StartAuction(issuer plmc.Address, id plmc.ProjectID) error {
	return f.transact(func() error {
		_, details, err := f.loadAsIssuer(issuer, id)
		if err != nil {
			return err
		}
		if details.Status.Kind != project.AuctionInitializePeriod {
			return reverts.ErrIncorrectRound
		}
		if err := f.unschedule(id); err != nil {
			return err
		}
		return f.startAuctionOpening(id, details, true)
	})
}

func (f *Funding) startAuctionOpening(id plmc.ProjectID, details *project.Details, skipEndCheck bool) error {
	if err := f.transitionProject(id, details, project.AuctionInitializePeriod,
		project.StatusOf(project.AuctionOpening), AuctionOpeningDuration.Get(), skipEndCheck); err != nil {
		return err
	}
	return f.schedule(details.Round.End+1, id, scheduler.AuctionClosingStart)
}

func (f *Funding) startAuctionClosing(id plmc.ProjectID) error {
	_, details, err := f.load(id)
	if err != nil {
		return err
	}
	if err := f.transitionProject(id, details, project.AuctionOpening,
		project.StatusOf(project.AuctionClosing), AuctionClosingDuration.Get(), false); err != nil {
		return err
	}
	return f.schedule(details.Round.End+1, id, scheduler.CommunityFundingStart)
}

// Bid buys ct amount from the auction ladder. A bid crossing price steps is stored as one bid
// per step, each at its step price.
func (f *Funding) Bid(investor plmc.Investor, p BidParams) ([]*participation.Bid, error) {
	var bids []*participation.Bid
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
		if p.CTAmount.Cmp(metadata.TotalAllocationSize) > 0 {
			return reverts.ErrTooHigh
		}
		if err := f.checkRound(details, details.Status.IsAuction()); err != nil {
			return err
		}
		if !metadata.Accepts(p.FundingAsset) {
			return reverts.ErrFundingAssetNotAccepted
		}
		if err := f.validateMode(investor, p.Mode); err != nil {
			return err
		}
		if err := f.validateReceiver(investor, id, metadata, p.Receiver); err != nil {
			return err
		}

		b, err := f.projects.Bucket(id)
		if err != nil {
			return err
		}
		ticketSize := metadata.BiddingTicketSizes.For(investor.Type)
		quote, err := b.CurrentPrice.MulInt(p.CTAmount)
		if err != nil {
			return reverts.ErrBadMath
		}
		if ticketSize.Min != nil && quote.Cmp(ticketSize.Min) < 0 {
			return reverts.ErrTooLow
		}

		fill, err := b.Fill(p.CTAmount)
		if err != nil {
			return err
		}
		if err := f.checkCaps(participation.BidKind, id, investor.Account, uint32(len(fill.Tranches)),
			f.params.MaxBidsPerUser, f.params.MaxBidsPerProject); err != nil {
			return err
		}
		spent, err := f.participations.BoughtUSD(participation.BidKind, id, investor.DID)
		if err != nil {
			return err
		}

		for _, tranche := range fill.Tranches {
			ticket, err := tranche.Price.MulInt(tranche.Amount)
			if err != nil {
				return reverts.ErrBadMath
			}
			if err := ticketSize.ValidateMax(ticket, spent); err != nil {
				return err
			}
			spent = new(big.Int).Add(spent, ticket)

			funds, err := f.lock(investor, id, ticket, p.Mode, p.FundingAsset)
			if err != nil {
				return err
			}
			bid := &participation.Bid{
				Project:                  id,
				Bidder:                   investor.Account,
				DID:                      investor.DID,
				OriginalCTAmount:         tranche.Amount,
				OriginalCTUSDPrice:       tranche.Price,
				InvestorType:             investor.Type,
				Mode:                     p.Mode,
				FundingAsset:             p.FundingAsset,
				FundingAssetAmountLocked: funds.fundingAsset,
				PLMCBond:                 funds.bond,
				OTMFee:                   funds.fee,
				When:                     f.block,
				ReceivingAccount:         p.Receiver.Account,
			}
			if err := f.participations.AddBid(bid); err != nil {
				return err
			}
			if err := f.recordParticipation(participation.BidKind, id, investor, ticket); err != nil {
				return err
			}
			logger.Debug("bid placed", "project", id, "bidder", investor.Account, "amount", tranche.Amount, "price", tranche.Price)
			f.emit(f.event(BidPlaced, id).
				withParticipant(investor.Account).
				withRef(participation.BidKind, bid.ID).
				withAmount(tranche.Amount))
			bids = append(bids, bid)
		}
		return f.projects.SetBucket(id, b)
	})
	if err != nil {
		return nil, err
	}
	return bids, nil
}

// candleBlock picks the block closing the auction, deterministically over the closing round.
func candleBlock(id plmc.ProjectID, closing project.BlockRange) uint32 {
	if closing.End < closing.Start {
		return closing.Start
	}
	span := closing.End - closing.Start + 1
	seed := plmc.Blake2b(id.Bytes(), storage.Uint32(closing.End).Bytes())
	return closing.Start + binary.BigEndian.Uint32(seed[:4])%span
}

// resolveAuction decides the status of every bid: bids after the candle are rejected, the rest
// are accepted by price then id until the auction allocation runs out. Unsold auction tokens
// carry over to the community round.
func (f *Funding) resolveAuction(id plmc.ProjectID, metadata *project.Metadata, details *project.Details) error {
	candle := candleBlock(id, details.Round)
	details.CandleEndBlock = candle

	bids, err := f.participations.Bids(id)
	if err != nil {
		return err
	}
	sort.SliceStable(bids, func(i, j int) bool {
		if c := bids[i].OriginalCTUSDPrice.Cmp(bids[j].OriginalCTUSDPrice); c != 0 {
			return c > 0
		}
		return bids[i].ID < bids[j].ID
	})

	ladder, err := f.projects.Bucket(id)
	if err != nil {
		return err
	}

	var (
		left     = metadata.AuctionAllocation()
		sold     = new(big.Int)
		tranches []bucket.Tranche
		bidTotal = new(big.Int)
		bidUSD   = new(big.Int)
		accepted []*participation.Bid
	)
	for _, bid := range bids {
		ticket, err := bid.OriginalCTUSDPrice.MulInt(bid.OriginalCTAmount)
		if err != nil {
			return reverts.ErrBadMath
		}
		bidTotal.Add(bidTotal, bid.OriginalCTAmount)
		bidUSD.Add(bidUSD, ticket)

		switch {
		case bid.When > candle:
			bid.Status = participation.BidStatus{Kind: participation.Rejected, Reason: participation.AfterCandleEnd}
		case left.Sign() == 0:
			bid.Status = participation.BidStatus{Kind: participation.Rejected, Reason: participation.NoTokensLeft}
		case bid.OriginalCTAmount.Cmp(left) <= 0:
			bid.Status = participation.BidStatus{Kind: participation.Accepted}
		default:
			bid.Status = participation.BidStatus{Kind: participation.PartiallyAccepted, Amount: new(big.Int).Set(left)}
		}

		if amount := bid.FinalCTAmount(); amount.Sign() > 0 {
			left.Sub(left, amount)
			sold.Add(sold, amount)
			tranches = append(tranches, bucket.Tranche{Amount: amount, Price: bid.OriginalCTUSDPrice})
			if err := f.participations.SetWinningBid(id, bid.DID); err != nil {
				return err
			}
			accepted = append(accepted, bid)
		}
		if err := f.participations.SetBid(bid); err != nil {
			return err
		}
		ev := f.event(BidResolved, id).withParticipant(bid.Bidder).withRef(participation.BidKind, bid.ID)
		ev.Status = bid.Status.String()
		f.emit(ev)
	}

	wap, err := ladder.WeightedAveragePrice(tranches)
	if err != nil {
		return err
	}
	// accepted bids pay the lower of their price and the weighted average price
	raised := new(big.Int)
	for _, bid := range accepted {
		ticket, err := fixed.Min(bid.OriginalCTUSDPrice, wap).MulInt(bid.FinalCTAmount())
		if err != nil {
			return reverts.ErrBadMath
		}
		raised.Add(raised, ticket)
	}

	details.WeightedAveragePrice = wap
	details.HasWeightedAveragePrice = true
	details.RemainingContributionTokens = new(big.Int).Sub(metadata.TotalAllocationSize, sold)
	details.FundingAmountReached = new(big.Int).Add(details.FundingAmountReached, raised)
	if bidTotal.Cmp(metadata.AuctionAllocation()) > 0 {
		details.USDBidOnOversubscription = bidUSD
	}
	logger.Info("auction resolved", "project", id, "candle", candle, "bids", len(bids), "sold", sold, "wap", wap)
	return nil
}

// startCommunityFunding resolves the auction and opens the community round, followed by the
// remainder round.
func (f *Funding) startCommunityFunding(id plmc.ProjectID) error {
	metadata, details, err := f.load(id)
	if err != nil {
		return err
	}
	if details.Status.Kind != project.AuctionClosing {
		return reverts.ErrIncorrectRound
	}
	if !details.Round.Ended(f.block) {
		return reverts.ErrTooEarlyForRound
	}
	if err := f.resolveAuction(id, metadata, details); err != nil {
		return err
	}

	community := CommunityRoundDuration.Get()
	if err := f.transitionProject(id, details, project.AuctionClosing,
		project.CommunityRoundStatus(f.block+community), community+RemainderRoundDuration.Get(), false); err != nil {
		return err
	}
	end := details.Round.End + 1
	if details.RemainingContributionTokens.Sign() == 0 {
		end = f.block + 1
	}
	return f.schedule(end, id, scheduler.FundingEnd)
}
