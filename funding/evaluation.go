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
	"github.com/polimec/polimec-node/ledger"
	"github.com/polimec/polimec-node/plmc"
)

// Evaluate bonds PLMC worth usd on the project during its evaluation round.
func (f *Funding) Evaluate(investor plmc.Investor, id plmc.ProjectID, usd *big.Int, receiver Receiver) (*participation.Evaluation, error) {
	var evaluation *participation.Evaluation
	err := f.transact(func() error {
		metadata, details, err := f.load(id)
		if err != nil {
			return err
		}
		if err := f.validateParticipant(investor, id, metadata, details); err != nil {
			return err
		}
		if err := f.checkRound(details, details.Status.Kind == project.EvaluationRound); err != nil {
			return err
		}
		if usd == nil || usd.Cmp(f.params.MinUSDPerEvaluation) < 0 {
			return reverts.ErrTooLow
		}
		if err := f.checkCaps(participation.EvaluationKind, id, investor.Account, 1,
			f.params.MaxEvaluationsPerUser, f.params.MaxEvaluationsPerProject); err != nil {
			return err
		}
		if err := f.validateReceiver(investor, id, metadata, receiver); err != nil {
			return err
		}

		plmcPrice, err := f.price(plmc.Native)
		if err != nil {
			return err
		}
		bond, err := bonding.USDToNative(usd, plmcPrice)
		if err != nil {
			return err
		}
		if err := f.ledger.Hold(investor.Account, bond, ledger.Evaluation); err != nil {
			return fundsError(err)
		}

		// the early part fills the bonded USD up to the evaluation success threshold
		info := &details.Evaluation
		early := new(big.Int).Sub(f.params.EarlyThreshold(details.FundraisingTarget), info.TotalBondedUSD)
		if early.Sign() < 0 {
			early.SetInt64(0)
		}
		if early.Cmp(usd) > 0 {
			early.Set(usd)
		}

		evaluation = &participation.Evaluation{
			Project:          id,
			Evaluator:        investor.Account,
			DID:              investor.DID,
			OriginalPLMCBond: bond,
			CurrentPLMCBond:  new(big.Int).Set(bond),
			EarlyUSDAmount:   early,
			LateUSDAmount:    new(big.Int).Sub(usd, early),
			When:             f.block,
			ReceivingAccount: receiver.Account,
		}
		if err := f.participations.AddEvaluation(evaluation); err != nil {
			return err
		}
		info.TotalBondedUSD = new(big.Int).Add(info.TotalBondedUSD, usd)
		info.TotalBondedPLMC = new(big.Int).Add(info.TotalBondedPLMC, bond)
		if err := f.projects.SetDetails(id, details); err != nil {
			return err
		}

		metricParticipations().AddWithLabel(1, map[string]string{"kind": participation.EvaluationKind.String()})
		logger.Debug("evaluation bonded", "project", id, "evaluator", investor.Account, "usd", usd, "plmc", bond)
		f.emit(f.event(Evaluated, id).
			withParticipant(investor.Account).
			withRef(participation.EvaluationKind, evaluation.ID).
			withAmount(bond))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return evaluation, nil
}

// endEvaluation opens the auction initialize period when evaluations bonded enough, and fails
// the project otherwise.
func (f *Funding) endEvaluation(id plmc.ProjectID) error {
	_, details, err := f.load(id)
	if err != nil {
		return err
	}
	threshold := f.params.EarlyThreshold(details.FundraisingTarget)
	if details.Evaluation.TotalBondedUSD.Cmp(threshold) >= 0 {
		if err := f.transitionProject(id, details, project.EvaluationRound,
			project.StatusOf(project.AuctionInitializePeriod), AuctionInitializePeriodDuration.Get(), false); err != nil {
			return err
		}
		return f.schedule(details.Round.End+1, id, scheduler.AuctionOpeningStart)
	}

	details.Evaluation.EvaluatorsOutcome = project.EvaluatorsOutcome{Kind: project.OutcomeSlashed}
	details.FundingEndBlock = f.block
	if err := f.transitionProject(id, details, project.EvaluationRound,
		project.StatusOf(project.FundingFailed), 0, false); err != nil {
		return err
	}
	f.projects.ClearActiveProject(details.IssuerDID)
	return f.schedule(f.block+SuccessToSettlementTime.Get(), id, scheduler.StartSettlement)
}
