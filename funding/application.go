// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package funding

import (
	"math/big"

	"github.com/polimec/polimec-node/funding/bucket"
	"github.com/polimec/polimec-node/funding/project"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/funding/scheduler"
	"github.com/polimec/polimec-node/plmc"
)

// CreateProject registers a project of the issuer in the Application round.
func (f *Funding) CreateProject(issuer plmc.Investor, metadata *project.Metadata) (id plmc.ProjectID, err error) {
	err = f.transact(func() error {
		if err := issuer.DID.Validate(); err != nil {
			return reverts.ErrNotIssuer
		}
		_, active, err := f.projects.ActiveProject(issuer.DID)
		if err != nil {
			return err
		}
		if active {
			return reverts.ErrHasActiveProject
		}
		if err := metadata.Validate(); err != nil {
			return err
		}
		target, err := metadata.FundingTarget()
		if err != nil {
			return err
		}

		details := &project.Details{
			Issuer:                      issuer.Account,
			IssuerDID:                   issuer.DID,
			Status:                      project.StatusOf(project.Application),
			Round:                       project.BlockRange{Start: f.block},
			RemainingContributionTokens: new(big.Int).Set(metadata.TotalAllocationSize),
			FundingAmountReached:        new(big.Int),
			FundraisingTarget:           target,
			Evaluation: project.EvaluationRoundInfo{
				TotalBondedUSD:  new(big.Int),
				TotalBondedPLMC: new(big.Int),
			},
			USDBidOnOversubscription: new(big.Int),
		}
		if id, err = f.projects.Create(metadata, details, bucket.New(metadata.AuctionAllocation(), metadata.MinimumPrice)); err != nil {
			return err
		}
		if err := f.projects.SetActiveProject(issuer.DID, id); err != nil {
			return err
		}

		logger.Info("project created", "project", id, "issuer", issuer.Account, "target", target)
		f.emit(f.event(ProjectCreated, id).withParticipant(issuer.Account))
		return nil
	})
	return id, err
}

// EditProject replaces the metadata of a project that is not frozen.
func (f *Funding) EditProject(issuer plmc.Address, id plmc.ProjectID, metadata *project.Metadata) error {
	return f.transact(func() error {
		_, details, err := f.loadAsIssuer(issuer, id)
		if err != nil {
			return err
		}
		if details.IsFrozen {
			return reverts.ErrProjectIsFrozen
		}
		if err := metadata.Validate(); err != nil {
			return err
		}
		target, err := metadata.FundingTarget()
		if err != nil {
			return err
		}
		details.FundraisingTarget = target
		details.RemainingContributionTokens = new(big.Int).Set(metadata.TotalAllocationSize)

		if err := f.projects.SetMetadata(id, metadata); err != nil {
			return err
		}
		if err := f.projects.SetDetails(id, details); err != nil {
			return err
		}
		if err := f.projects.SetBucket(id, bucket.New(metadata.AuctionAllocation(), metadata.MinimumPrice)); err != nil {
			return err
		}
		f.emit(f.event(MetadataEdited, id))
		return nil
	})
}

// RemoveProject deletes a project that is not frozen.
func (f *Funding) RemoveProject(issuer plmc.Address, id plmc.ProjectID) error {
	return f.transact(func() error {
		_, details, err := f.loadAsIssuer(issuer, id)
		if err != nil {
			return err
		}
		if details.IsFrozen {
			return reverts.ErrProjectIsFrozen
		}
		f.projects.Remove(id)
		f.projects.ClearActiveProject(details.IssuerDID)

		logger.Info("project removed", "project", id)
		f.emit(f.event(ProjectRemoved, id))
		return nil
	})
}

// StartEvaluation freezes the project and opens its evaluation round.
func (f *Funding) StartEvaluation(issuer plmc.Address, id plmc.ProjectID) error {
	return f.transact(func() error {
		metadata, details, err := f.loadAsIssuer(issuer, id)
		if err != nil {
			return err
		}
		if metadata.PolicyIPFSCid == "" {
			return reverts.ErrCidNotProvided
		}
		details.IsFrozen = true
		if err := f.transitionProject(id, details, project.Application,
			project.StatusOf(project.EvaluationRound), EvaluationRoundDuration.Get(), true); err != nil {
			return err
		}
		return f.schedule(details.Round.End+1, id, scheduler.EvaluationEnd)
	})
}
