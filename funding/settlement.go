// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"math/big"

	"github.com/polimec/polimec-node/funding/bonding"
	"github.com/polimec/polimec-node/funding/migration"
	"github.com/polimec/polimec-node/funding/participation"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/funding/rewards"
	"github.com/polimec/polimec-node/ledger"
	"github.com/polimec/polimec-node/plmc"
)

// startSettlement opens settlement of a finished project. Successful projects mint the liquidity
// pool and long term holder tokens to the contribution treasury.
func (f *Funding) startSettlement(id plmc.ProjectID) error {
	metadata, details, err := f.load(id)
	if err != nil {
		return err
	}
	current := details.Status.Kind
	if current != project.FundingSuccessful && current != project.FundingFailed {
		return reverts.ErrIncorrectRound
	}
	outcome := details.Outcome()
	if outcome == project.Success {
		sold := new(big.Int).Sub(metadata.TotalAllocationSize, details.RemainingContributionTokens)
		allocation := rewards.FeeAllocation(details.FundingAmountReached, sold, f.params.FeeBrackets)
		liquidity, longTerm := rewards.TreasuryRewards(allocation)
		if err := f.ledger.Mint(plmc.ContributionToken(id), f.params.ContributionTreasury, liquidity.Add(liquidity, longTerm)); err != nil {
			return err
		}
	}
	if err := f.transitionProject(id, details, current, project.SettlementStartedStatus(outcome), 0, true); err != nil {
		return err
	}
	return f.projects.AddSettling(id)
}

// SettleParticipation settles one participation of a settling project.
func (f *Funding) SettleParticipation(id plmc.ProjectID, ref participation.Ref) error {
	return f.transact(func() error {
		return f.settleParticipation(id, ref)
	})
}

func (f *Funding) settleParticipation(id plmc.ProjectID, ref participation.Ref) error {
	metadata, details, err := f.load(id)
	if err != nil {
		return err
	}
	if details.Status.Kind != project.SettlementStarted {
		return reverts.ErrSettlementNotStarted
	}
	ok, err := f.participations.Exists(id, ref)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrParticipationNotFound
	}

	switch ref.Kind {
	case participation.EvaluationKind:
		e, err := f.participations.Evaluation(id, ref.ID)
		if err != nil {
			return err
		}
		return f.settleEvaluation(id, details, e)
	case participation.BidKind:
		b, err := f.participations.Bid(id, ref.ID)
		if err != nil {
			return err
		}
		return f.settleBid(id, metadata, details, b)
	default:
		c, err := f.participations.Contribution(id, ref.ID)
		if err != nil {
			return err
		}
		return f.settleContribution(id, metadata, details, c)
	}
}

// settleEvaluation releases the evaluation bond, minus the slash when evaluators are slashed,
// and mints the reward of rewarded evaluators.
func (f *Funding) settleEvaluation(id plmc.ProjectID, details *project.Details, e *participation.Evaluation) error {
	outcome := details.Evaluation.EvaluatorsOutcome
	bond := new(big.Int).Set(e.CurrentPLMCBond)
	if outcome.Kind == project.OutcomeSlashed {
		slash := rewards.Slash(e.OriginalPLMCBond)
		if slash.Cmp(bond) > 0 {
			slash.Set(bond)
		}
		if err := f.ledger.TransferOnHold(e.Evaluator, f.params.ProtocolTreasury, slash, ledger.Evaluation); err != nil {
			return err
		}
		bond.Sub(bond, slash)
	}
	if err := f.ledger.Release(e.Evaluator, bond, ledger.Evaluation); err != nil {
		return err
	}

	reward := new(big.Int)
	if details.Outcome() == project.Success && outcome.Kind == project.OutcomeRewarded {
		reward = rewards.EvaluatorReward(e.EarlyUSDAmount, e.LateUSDAmount, outcome.Reward)
		if err := f.mintAndMigrate(id, e.Evaluator, e.ReceivingAccount,
			participation.EvaluationKind, e.ID, reward, 1); err != nil {
			return err
		}
	}

	details.Evaluation.TotalBondedPLMC = new(big.Int).Sub(details.Evaluation.TotalBondedPLMC, e.CurrentPLMCBond)
	if err := f.projects.SetDetails(id, details); err != nil {
		return err
	}
	f.participations.RemoveEvaluation(id, e.ID)
	f.settled(id, e.Evaluator, participation.EvaluationKind, e.ID, reward)
	return nil
}

func (f *Funding) settleBid(id plmc.ProjectID, metadata *project.Metadata, details *project.Details, b *participation.Bid) error {
	wap := metadata.MinimumPrice
	if details.HasWeightedAveragePrice {
		wap = details.WeightedAveragePrice
	}
	plmcPrice, err := f.price(plmc.Native)
	if err != nil {
		return err
	}
	assetPrice, err := f.price(b.FundingAsset)
	if err != nil {
		return err
	}
	success := details.Outcome() == project.Success
	refund, err := rewards.Refund(b, success, wap, rewards.Prices{PLMC: plmcPrice, Asset: assetPrice})
	if err != nil {
		return reverts.ErrBadMath
	}

	fee := bigOrZero(b.OTMFee)
	p := &payout{
		participant:   b.Bidder,
		receiver:      b.ReceivingAccount,
		kind:          participation.BidKind,
		id:            b.ID,
		mode:          b.Mode,
		asset:         b.FundingAsset,
		ctAmount:      refund.FinalCTAmount,
		refundedAsset: refund.RefundedFundingAsset,
		keptAsset:     new(big.Int).Sub(b.FundingAssetAmountLocked, refund.RefundedFundingAsset),
		refundedBond:  refund.RefundedPLMC,
		keptBond:      new(big.Int).Sub(b.PLMCBond, refund.RefundedPLMC),
		refundedFee:   refund.RefundedOTMFee,
		keptFee:       new(big.Int).Sub(fee, refund.RefundedOTMFee),
	}
	if err := f.pay(id, metadata, p, success); err != nil {
		return err
	}
	f.participations.RemoveBid(id, b.ID)
	f.settled(id, b.Bidder, participation.BidKind, b.ID, refund.FinalCTAmount)
	return nil
}

func (f *Funding) settleContribution(id plmc.ProjectID, metadata *project.Metadata, details *project.Details, c *participation.Contribution) error {
	success := details.Outcome() == project.Success
	p := &payout{
		participant: c.Contributor,
		receiver:    c.ReceivingAccount,
		kind:        participation.ContributionKind,
		id:          c.ID,
		mode:        c.Mode,
		asset:       c.FundingAsset,
	}
	if success {
		p.ctAmount = c.CTAmount
		p.keptAsset = c.FundingAssetAmount
		p.keptBond = c.PLMCBond
		p.keptFee = bigOrZero(c.OTMFee)
		p.refundedAsset, p.refundedBond, p.refundedFee = new(big.Int), new(big.Int), new(big.Int)
	} else {
		p.ctAmount = new(big.Int)
		p.refundedAsset = c.FundingAssetAmount
		p.refundedBond = c.PLMCBond
		p.refundedFee = bigOrZero(c.OTMFee)
		p.keptAsset, p.keptBond, p.keptFee = new(big.Int), new(big.Int), new(big.Int)
	}
	if err := f.pay(id, metadata, p, success); err != nil {
		return err
	}
	f.participations.RemoveContribution(id, c.ID)
	f.settled(id, c.Contributor, participation.ContributionKind, c.ID, p.ctAmount)
	return nil
}

// payout splits what a bid or contribution locked into what it keeps and what goes back.
type payout struct {
	participant plmc.Address
	receiver    plmc.ReceivingAccount
	kind        participation.Kind
	id          uint32
	mode        bonding.Mode
	asset       plmc.Asset
	ctAmount    *big.Int

	keptAsset, refundedAsset *big.Int
	keptBond, refundedBond   *big.Int
	keptFee, refundedFee     *big.Int
}

// pay moves the funding asset, bond and OTM fee of a settled participation and delivers its
// tokens. Kept classic bonds vest linearly, kept OTM bonds stay locked in the bonding escrow
// until the release block.
func (f *Funding) pay(id plmc.ProjectID, metadata *project.Metadata, p *payout, success bool) error {
	if err := f.ledger.Transfer(p.asset, id.Escrow(), p.participant, p.refundedAsset); err != nil {
		return err
	}
	if success {
		if err := f.ledger.Transfer(p.asset, id.Escrow(), metadata.FundingDestinationAccount, p.keptAsset); err != nil {
			return err
		}
	}

	if !p.mode.OTM {
		if err := f.ledger.Release(p.participant, p.refundedBond, ledger.Participation); err != nil {
			return err
		}
		if p.keptBond.Sign() > 0 {
			vesting := bonding.NewVestingInfo(p.keptBond, p.mode.Multiplier)
			if err := f.ledger.AddReleaseSchedule(p.participant, ledger.Schedule{
				Reason:   ledger.Participation,
				Total:    vesting.TotalAmount,
				PerBlock: vesting.AmountPerBlock,
				Start:    f.block,
			}); err != nil {
				return err
			}
		}
	} else {
		escrow := id.BondingEscrow()
		if err := f.ledger.TransferOnHold(escrow, f.params.BondTreasury, p.refundedBond, ledger.Participation); err != nil {
			return err
		}
		if err := f.ledger.Transfer(p.asset, id.FeeEscrow(), p.participant, p.refundedFee); err != nil {
			return err
		}
		release := bonding.ReleasePolicy(success, f.block, p.mode.Multiplier)
		if release.Kind == bonding.Locked {
			if err := f.ledger.Transfer(p.asset, id.FeeEscrow(), f.params.FeeRecipient, p.keptFee); err != nil {
				return err
			}
			if p.keptBond.Sign() > 0 {
				if err := f.ledger.AddReleaseSchedule(escrow, ledger.Schedule{
					Reason:   ledger.Participation,
					Total:    p.keptBond,
					PerBlock: p.keptBond,
					Start:    release.Until - 1,
				}); err != nil {
					return err
				}
			}
		}
	}

	if p.ctAmount.Sign() == 0 {
		return nil
	}
	return f.mintAndMigrate(id, p.participant, p.receiver, p.kind, p.id, p.ctAmount,
		bonding.VestingDuration(p.mode.Multiplier))
}

// mintAndMigrate mints contribution tokens to the participant and records their migration.
func (f *Funding) mintAndMigrate(
	id plmc.ProjectID,
	participant plmc.Address,
	receiver plmc.ReceivingAccount,
	kind participation.Kind,
	participationID uint32,
	amount *big.Int,
	vesting uint32,
) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := f.ledger.Mint(plmc.ContributionToken(id), participant, amount); err != nil {
		return err
	}
	return f.migrations.Add(id, participant, migration.Migration{
		Origin: migration.Origin{User: receiver, ParticipationType: kind, ID: participationID},
		Info:   migration.Info{ContributionTokenAmount: new(big.Int).Set(amount), VestingTime: vesting},
	}, int(f.params.MaxMigrationsPerUser))
}

func (f *Funding) settled(id plmc.ProjectID, participant plmc.Address, kind participation.Kind, participationID uint32, amount *big.Int) {
	logger.Debug("participation settled", "project", id, "kind", kind, "id", participationID, "participant", participant)
	f.emit(f.event(ParticipationSettled, id).
		withParticipant(participant).
		withRef(kind, participationID).
		withAmount(amount))
}

// settleBatch settles participations of settling projects in id order, at most
// MaxSettlementsPerBlock per block. Failing participations are kept for a retry on a later block.
func (f *Funding) settleBatch() {
	ids, err := f.projects.Settling()
	if err != nil {
		logger.Error("failed to list settling projects", "err", err)
		return
	}
	budget := f.params.MaxSettlementsPerBlock
	for _, id := range ids {
		if budget == 0 {
			return
		}
		used, err := f.settleProject(id, budget)
		if err != nil {
			logger.Error("failed to settle project", "project", id, "err", err)
		}
		budget -= used
	}
}

func (f *Funding) settleProject(id plmc.ProjectID, budget uint32) (uint32, error) {
	cursor, err := f.participations.Cursor(id)
	if err != nil {
		return 0, err
	}
	retries, err := f.participations.RetryList(id)
	if err != nil {
		return 0, err
	}
	var (
		used uint32
		// retries start once the scan is over, failures of this block wait for the next one
		retrying = cursor.Done
		failed   []participation.Ref
	)
	for used < budget && !cursor.Done {
		next, err := f.participations.NextID(cursor.Kind, id)
		if err != nil {
			return used, err
		}
		if cursor.Next >= next {
			if cursor.Kind == participation.ContributionKind {
				cursor.Done = true
			} else {
				cursor.Kind++
				cursor.Next = 0
			}
			continue
		}
		ref := participation.Ref{Kind: cursor.Kind, ID: cursor.Next}
		cursor.Next++
		ok, err := f.participations.Exists(id, ref)
		if err != nil {
			return used, err
		}
		if !ok {
			continue
		}
		used++
		if f.trySettle(id, ref) != nil {
			failed = append(failed, ref)
		}
	}
	if err := f.participations.SetCursor(id, cursor); err != nil {
		return used, err
	}

	var kept []participation.Ref
	for i, ref := range retries {
		if !retrying || used >= budget {
			kept = append(kept, retries[i:]...)
			break
		}
		ok, err := f.participations.Exists(id, ref)
		if err != nil {
			return used, err
		}
		if !ok {
			continue
		}
		used++
		if f.trySettle(id, ref) != nil {
			kept = append(kept, ref)
		}
	}
	return used, f.participations.SetRetryList(id, append(kept, failed...))
}

func (f *Funding) trySettle(id plmc.ProjectID, ref participation.Ref) error {
	err := f.transact(func() error {
		return f.settleParticipation(id, ref)
	})
	if err != nil {
		metricSettlementFailures().Add(1)
		logger.Warn("settlement failed", "project", id, "kind", ref.Kind, "id", ref.ID, "err", err)
		ev := f.event(SettlementFailed, id).withRef(ref.Kind, ref.ID)
		ev.Error = err.Error()
		f.emit(ev)
	}
	return err
}

// MarkProjectAsSettled finishes settlement once every participation is settled.
func (f *Funding) MarkProjectAsSettled(id plmc.ProjectID) error {
	return f.transact(func() error {
		_, details, err := f.load(id)
		if err != nil {
			return err
		}
		if details.Status.Kind != project.SettlementStarted {
			return reverts.ErrSettlementNotStarted
		}
		// retry listed participations are still stored, so they count as unsettled
		unsettled, err := f.participations.Unsettled(id)
		if err != nil {
			return err
		}
		if unsettled {
			return reverts.ErrSettlementNotComplete
		}
		if err := f.participations.SetRetryList(id, nil); err != nil {
			return err
		}
		outcome := details.Status.Outcome
		if err := f.transitionProject(id, details, project.SettlementStarted,
			project.SettlementFinishedStatus(outcome), 0, true); err != nil {
			return err
		}
		return f.projects.RemoveSettling(id)
	})
}
