// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package projects

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/polimec/polimec-node/api/utils"
	"github.com/polimec/polimec-node/credentials"
	"github.com/polimec/polimec-node/funding"
	"github.com/polimec/polimec-node/plmc"
)

type Projects struct {
	backend  utils.Caller
	verifier *credentials.Verifier
}

// New creates the projects API. A nil verifier rejects every authenticated call.
func New(backend utils.Caller, verifier *credentials.Verifier) *Projects {
	return &Projects{
		backend:  backend,
		verifier: verifier,
	}
}

func (p *Projects) handleGetProject(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	var res *Project
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		metadata, err := f.Metadata(id)
		if err != nil {
			return err
		}
		details, err := f.Details(id)
		if err != nil {
			return err
		}
		res = convertProject(id, metadata, details)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Projects) handleGetBucket(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	var res *Bucket
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		b, err := f.Bucket(id)
		if err != nil {
			return err
		}
		res = convertBucket(b)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Projects) handleGetEvaluations(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	res := make([]*EvaluationRecord, 0)
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		evaluations, err := f.Evaluations(id)
		if err != nil {
			return err
		}
		for _, e := range evaluations {
			res = append(res, convertEvaluation(e))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Projects) handleGetBids(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	res := make([]*BidRecord, 0)
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		bids, err := f.Bids(id)
		if err != nil {
			return err
		}
		for _, b := range bids {
			res = append(res, convertBid(b))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Projects) handleGetContributions(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	res := make([]*ContributionRecord, 0)
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		contributions, err := f.Contributions(id)
		if err != nil {
			return err
		}
		for _, c := range contributions {
			res = append(res, convertContribution(c))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Projects) handleGetMigrations(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	account, err := plmc.ParseAddress(mux.Vars(req)["account"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "account"))
	}
	var res *UserMigrations
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		u, err := f.UserMigrations(id, account)
		if err != nil {
			return err
		}
		res = convertMigrations(u)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Projects) handleCreateProject(w http.ResponseWriter, req *http.Request) error {
	issuer, err := utils.Authenticate(p.verifier, req)
	if err != nil {
		return err
	}
	var body Metadata
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	metadata, err := body.toMetadata()
	if err != nil {
		return utils.BadRequest(err)
	}
	var id plmc.ProjectID
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) (err error) {
		id, err = f.CreateProject(issuer, metadata)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &CreateResponse{ID: id})
}

func (p *Projects) handleEvaluate(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	investor, err := utils.Authenticate(p.verifier, req)
	if err != nil {
		return err
	}
	var body EvaluateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.USD == nil {
		return utils.BadRequest(errors.New("usd: required"))
	}
	receiver, err := body.toReceiver(investor.Account)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "receiver"))
	}
	var res *EvaluationRecord
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		e, err := f.Evaluate(investor, id, bigOf(body.USD), receiver)
		if err != nil {
			return err
		}
		res = convertEvaluation(e)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Projects) parseParticipation(req *http.Request) (plmc.ProjectID, plmc.Investor, *ParticipateRequest, funding.Receiver, plmc.Asset, error) {
	var (
		body     ParticipateRequest
		investor plmc.Investor
		receiver funding.Receiver
	)
	id, err := utils.ProjectID(req)
	if err != nil {
		return 0, investor, nil, receiver, "", err
	}
	if investor, err = utils.Authenticate(p.verifier, req); err != nil {
		return 0, investor, nil, receiver, "", err
	}
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return 0, investor, nil, receiver, "", utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return 0, investor, nil, receiver, "", utils.BadRequest(errors.New("amount: required"))
	}
	asset, err := plmc.ParseFundingAsset(body.Asset)
	if err != nil {
		return 0, investor, nil, receiver, "", utils.BadRequest(errors.WithMessage(err, "asset"))
	}
	if receiver, err = body.toReceiver(investor.Account); err != nil {
		return 0, investor, nil, receiver, "", utils.BadRequest(errors.WithMessage(err, "receiver"))
	}
	return id, investor, &body, receiver, asset, nil
}

func (p *Projects) handleBid(w http.ResponseWriter, req *http.Request) error {
	id, investor, body, receiver, asset, err := p.parseParticipation(req)
	if err != nil {
		return err
	}
	res := make([]*BidRecord, 0)
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		bids, err := f.Bid(investor, funding.BidParams{
			Project:      id,
			CTAmount:     bigOf(body.Amount),
			Mode:         body.Mode.toMode(),
			FundingAsset: asset,
			Receiver:     receiver,
		})
		if err != nil {
			return err
		}
		for _, b := range bids {
			res = append(res, convertBid(b))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Projects) handleContribute(w http.ResponseWriter, req *http.Request) error {
	id, investor, body, receiver, asset, err := p.parseParticipation(req)
	if err != nil {
		return err
	}
	var res *ContributionRecord
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		c, err := f.Contribute(investor, funding.ContributeParams{
			Project:      id,
			CTAmount:     bigOf(body.Amount),
			Mode:         body.Mode.toMode(),
			FundingAsset: asset,
			Receiver:     receiver,
		})
		if err != nil {
			return err
		}
		res = convertContribution(c)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

// issuerAction runs an operation of the authenticated issuer on the project of the path.
func (p *Projects) issuerAction(action func(f *funding.Funding, issuer plmc.Address, id plmc.ProjectID) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		id, err := utils.ProjectID(req)
		if err != nil {
			return err
		}
		issuer, err := utils.Authenticate(p.verifier, req)
		if err != nil {
			return err
		}
		if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
			return action(f, issuer.Account, id)
		}); err != nil {
			return err
		}
		return utils.WriteJSON(w, utils.M{"id": id})
	}
}

func (p *Projects) handleConfirmMigration(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	issuer, err := utils.Authenticate(p.verifier, req)
	if err != nil {
		return err
	}
	var body ConfirmMigrationRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		return f.ConfirmOffchainMigration(issuer.Account, id, body.Participant)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"id": id, "participant": body.Participant})
}

func (p *Projects) handleSettle(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	var body SettleRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	ref, err := body.toRef()
	if err != nil {
		return utils.BadRequest(err)
	}
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		return f.SettleParticipation(id, ref)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"id": id, "kind": body.Kind, "participation": body.ID})
}

func (p *Projects) handleMarkSettled(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		return f.MarkProjectAsSettled(id)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"id": id})
}

func (p *Projects) handleMarkMigrationFinished(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ProjectID(req)
	if err != nil {
		return err
	}
	if err := p.backend.Call(req.Context(), func(f *funding.Funding) error {
		return f.MarkProjectCTMigrationAsFinished(id)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"id": id})
}

func (p *Projects) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("projects_create").
		HandlerFunc(utils.WrapHandlerFunc(p.handleCreateProject))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("projects_get_project").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetProject))
	sub.Path("/{id}/bucket").
		Methods(http.MethodGet).
		Name("projects_get_bucket").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetBucket))
	sub.Path("/{id}/evaluations").
		Methods(http.MethodGet).
		Name("projects_get_evaluations").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetEvaluations))
	sub.Path("/{id}/bids").
		Methods(http.MethodGet).
		Name("projects_get_bids").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetBids))
	sub.Path("/{id}/contributions").
		Methods(http.MethodGet).
		Name("projects_get_contributions").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetContributions))
	sub.Path("/{id}/migrations/{account}").
		Methods(http.MethodGet).
		Name("projects_get_migrations").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetMigrations))

	sub.Path("/{id}/evaluate").
		Methods(http.MethodPost).
		Name("projects_post_evaluate").
		HandlerFunc(utils.WrapHandlerFunc(p.handleEvaluate))
	sub.Path("/{id}/bid").
		Methods(http.MethodPost).
		Name("projects_post_bid").
		HandlerFunc(utils.WrapHandlerFunc(p.handleBid))
	sub.Path("/{id}/contribute").
		Methods(http.MethodPost).
		Name("projects_post_contribute").
		HandlerFunc(utils.WrapHandlerFunc(p.handleContribute))

	sub.Path("/{id}/start-evaluation").
		Methods(http.MethodPost).
		Name("projects_post_start_evaluation").
		HandlerFunc(utils.WrapHandlerFunc(p.issuerAction((*funding.Funding).StartEvaluation)))
	sub.Path("/{id}/start-auction").
		Methods(http.MethodPost).
		Name("projects_post_start_auction").
		HandlerFunc(utils.WrapHandlerFunc(p.issuerAction((*funding.Funding).StartAuction)))
	sub.Path("/{id}/start-offchain-migration").
		Methods(http.MethodPost).
		Name("projects_post_start_offchain_migration").
		HandlerFunc(utils.WrapHandlerFunc(p.issuerAction((*funding.Funding).StartOffchainMigration)))
	sub.Path("/{id}/remove").
		Methods(http.MethodPost).
		Name("projects_post_remove").
		HandlerFunc(utils.WrapHandlerFunc(p.issuerAction((*funding.Funding).RemoveProject)))
	sub.Path("/{id}/confirm-offchain-migration").
		Methods(http.MethodPost).
		Name("projects_post_confirm_offchain_migration").
		HandlerFunc(utils.WrapHandlerFunc(p.handleConfirmMigration))

	sub.Path("/{id}/settle").
		Methods(http.MethodPost).
		Name("projects_post_settle").
		HandlerFunc(utils.WrapHandlerFunc(p.handleSettle))
	sub.Path("/{id}/mark-settled").
		Methods(http.MethodPost).
		Name("projects_post_mark_settled").
		HandlerFunc(utils.WrapHandlerFunc(p.handleMarkSettled))
	sub.Path("/{id}/mark-migration-finished").
		Methods(http.MethodPost).
		Name("projects_post_mark_migration_finished").
		HandlerFunc(utils.WrapHandlerFunc(p.handleMarkMigrationFinished))
}
