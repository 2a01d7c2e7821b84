// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"math/big"

	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/funding/rewards"
	"github.com/polimec/polimec-node/funding/scheduler"
	"github.com/polimec/polimec-node/plmc"
)

// endFunding closes the community and remainder rounds and decides the outcome of the project
// and of its evaluators.
func (f *Funding) endFunding(id plmc.ProjectID) error {
	metadata, details, err := f.load(id)
	if err != nil {
		return err
	}
	if details.Status.Kind != project.CommunityRound {
		return reverts.ErrIncorrectRound
	}
	soldOut := details.RemainingContributionTokens.Sign() == 0

	ratio := details.FundingRatio()
	outcome := rewards.FundingOutcome(ratio)
	evaluators := project.EvaluatorsOutcome{Kind: rewards.EvaluatorsOutcomeKind(ratio)}
	if evaluators.Kind == project.OutcomeRewarded {
		sold := new(big.Int).Sub(metadata.TotalAllocationSize, details.RemainingContributionTokens)
		allocation := rewards.FeeAllocation(details.FundingAmountReached, sold, f.params.FeeBrackets)
		evaluators.Reward = rewards.NewRewardInfo(allocation, details.Evaluation.TotalBondedUSD,
			f.params.EarlyThreshold(details.FundraisingTarget))
	}
	details.Evaluation.EvaluatorsOutcome = evaluators
	details.FundingEndBlock = f.block

	next := project.StatusOf(project.FundingSuccessful)
	if outcome == project.Failure {
		next = project.StatusOf(project.FundingFailed)
	}
	if err := f.transitionProject(id, details, project.CommunityRound, next, 0, soldOut); err != nil {
		return err
	}
	f.projects.ClearActiveProject(details.IssuerDID)
	logger.Info("funding ended", "project", id, "outcome", outcome, "ratio", ratio, "evaluators", evaluators.Kind)
	return f.schedule(f.block+SuccessToSettlementTime.Get(), id, scheduler.StartSettlement)
}
