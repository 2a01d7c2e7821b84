// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participation

import (
	"math/big"
	"slices"

	"github.com/pkg/errors"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

var (
	slotNextIDs          = storage.Slot("participations-next-id")
	slotEvaluations      = storage.Slot("evaluations")
	slotBids             = storage.Slot("bids")
	slotContributions    = storage.Slot("contributions")
	slotUserCounts       = storage.Slot("participations-user-count")
	slotProjectCounts    = storage.Slot("participations-project-count")
	slotBoughtUSD        = storage.Slot("participations-bought-usd")
	slotWinningBids      = storage.Slot("did-with-winning-bids")
	slotRetailProjects   = storage.Slot("retail-participations")
	slotSettlementCursor = storage.Slot("settlement-cursor")
	slotRetryList        = storage.Slot("settlement-retry-list")
)

// records stores one kind of participation keyed by project and id.
type records[T any] struct {
	kind    Kind
	mapping *storage.Mapping[storage.Bytes, *T]
}

func (r *records[T]) get(project plmc.ProjectID, id uint32) (*T, error) {
	v, err := r.mapping.Get(storage.Compose(project, storage.Uint32(id)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", r.kind)
	}
	return v, nil
}

func (r *records[T]) set(project plmc.ProjectID, id uint32, v *T) error {
	if err := r.mapping.Set(storage.Compose(project, storage.Uint32(id)), v); err != nil {
		return errors.Wrapf(err, "failed to set %s", r.kind)
	}
	return nil
}

func (r *records[T]) remove(project plmc.ProjectID, id uint32) {
	r.mapping.Delete(storage.Compose(project, storage.Uint32(id)))
}

// list returns the records with an id below next in id order.
func (r *records[T]) list(project plmc.ProjectID, next uint32) ([]*T, error) {
	var out []*T
	for id := range next {
		v, err := r.get(project, id)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// Repository persists participations and their per project, per user and per DID aggregates.
type Repository struct {
	nextIDs       *storage.Mapping[storage.Bytes, uint32]
	evaluations   *records[Evaluation]
	bids          *records[Bid]
	contributions *records[Contribution]

	userCounts     *storage.Mapping[storage.Bytes, uint32]
	projectCounts  *storage.Mapping[storage.Bytes, uint32]
	boughtUSD      *storage.Mapping[storage.Bytes, *big.Int]
	winningBids    *storage.Mapping[storage.Bytes, bool]
	retailProjects *storage.Mapping[plmc.DID, []plmc.ProjectID]

	cursors   *storage.Mapping[plmc.ProjectID, *Cursor]
	retryList *storage.Mapping[plmc.ProjectID, []Ref]
}

func NewRepository(state *storage.State) *Repository {
	return &Repository{
		nextIDs:       storage.NewMapping[storage.Bytes, uint32](state, slotNextIDs),
		evaluations:   &records[Evaluation]{EvaluationKind, storage.NewMapping[storage.Bytes, *Evaluation](state, slotEvaluations)},
		bids:          &records[Bid]{BidKind, storage.NewMapping[storage.Bytes, *Bid](state, slotBids)},
		contributions: &records[Contribution]{ContributionKind, storage.NewMapping[storage.Bytes, *Contribution](state, slotContributions)},

		userCounts:     storage.NewMapping[storage.Bytes, uint32](state, slotUserCounts),
		projectCounts:  storage.NewMapping[storage.Bytes, uint32](state, slotProjectCounts),
		boughtUSD:      storage.NewMapping[storage.Bytes, *big.Int](state, slotBoughtUSD),
		winningBids:    storage.NewMapping[storage.Bytes, bool](state, slotWinningBids),
		retailProjects: storage.NewMapping[plmc.DID, []plmc.ProjectID](state, slotRetailProjects),

		cursors:   storage.NewMapping[plmc.ProjectID, *Cursor](state, slotSettlementCursor),
		retryList: storage.NewMapping[plmc.ProjectID, []Ref](state, slotRetryList),
	}
}

// NextID returns the id the next participation of the kind will get.
func (r *Repository) NextID(kind Kind, project plmc.ProjectID) (uint32, error) {
	id, err := r.nextIDs.Get(storage.Compose(kind, project))
	if err != nil {
		return 0, errors.Wrap(err, "failed to get next participation id")
	}
	return id, nil
}

// register allocates an id and bumps the participation counters.
func (r *Repository) register(kind Kind, project plmc.ProjectID, user plmc.Address) (uint32, error) {
	id, err := r.NextID(kind, project)
	if err != nil {
		return 0, err
	}
	if err := r.nextIDs.Set(storage.Compose(kind, project), id+1); err != nil {
		return 0, errors.Wrap(err, "failed to set next participation id")
	}
	if err := r.increment(r.userCounts, storage.Compose(kind, project, user)); err != nil {
		return 0, err
	}
	if err := r.increment(r.projectCounts, storage.Compose(kind, project)); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) increment(m *storage.Mapping[storage.Bytes, uint32], key storage.Bytes) error {
	n, err := m.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get participation count")
	}
	return errors.Wrap(m.Set(key, n+1), "failed to set participation count")
}

// UserCount returns how many participations of the kind the user made in the project.
func (r *Repository) UserCount(kind Kind, project plmc.ProjectID, user plmc.Address) (uint32, error) {
	n, err := r.userCounts.Get(storage.Compose(kind, project, user))
	return n, errors.Wrap(err, "failed to get participation count")
}

// ProjectCount returns how many participations of the kind the project received.
func (r *Repository) ProjectCount(kind Kind, project plmc.ProjectID) (uint32, error) {
	n, err := r.projectCounts.Get(storage.Compose(kind, project))
	return n, errors.Wrap(err, "failed to get participation count")
}

// AddEvaluation assigns an id to the evaluation and stores it.
func (r *Repository) AddEvaluation(e *Evaluation) error {
	id, err := r.register(EvaluationKind, e.Project, e.Evaluator)
	if err != nil {
		return err
	}
	e.ID = id
	return r.evaluations.set(e.Project, id, e)
}

func (r *Repository) Evaluation(project plmc.ProjectID, id uint32) (*Evaluation, error) {
	return r.evaluations.get(project, id)
}

func (r *Repository) SetEvaluation(e *Evaluation) error {
	return r.evaluations.set(e.Project, e.ID, e)
}

func (r *Repository) RemoveEvaluation(project plmc.ProjectID, id uint32) {
	r.evaluations.remove(project, id)
}

// Evaluations returns the unsettled evaluations of a project in id order.
func (r *Repository) Evaluations(project plmc.ProjectID) ([]*Evaluation, error) {
	next, err := r.NextID(EvaluationKind, project)
	if err != nil {
		return nil, err
	}
	return r.evaluations.list(project, next)
}

// AddBid assigns an id to the bid and stores it.
func (r *Repository) AddBid(b *Bid) error {
	id, err := r.register(BidKind, b.Project, b.Bidder)
	if err != nil {
		return err
	}
	b.ID = id
	return r.bids.set(b.Project, id, b)
}

func (r *Repository) Bid(project plmc.ProjectID, id uint32) (*Bid, error) {
	return r.bids.get(project, id)
}

func (r *Repository) SetBid(b *Bid) error {
	return r.bids.set(b.Project, b.ID, b)
}

func (r *Repository) RemoveBid(project plmc.ProjectID, id uint32) {
	r.bids.remove(project, id)
}

// Bids returns the unsettled bids of a project in id order.
func (r *Repository) Bids(project plmc.ProjectID) ([]*Bid, error) {
	next, err := r.NextID(BidKind, project)
	if err != nil {
		return nil, err
	}
	return r.bids.list(project, next)
}

// AddContribution assigns an id to the contribution and stores it.
func (r *Repository) AddContribution(c *Contribution) error {
	id, err := r.register(ContributionKind, c.Project, c.Contributor)
	if err != nil {
		return err
	}
	c.ID = id
	return r.contributions.set(c.Project, id, c)
}

func (r *Repository) Contribution(project plmc.ProjectID, id uint32) (*Contribution, error) {
	return r.contributions.get(project, id)
}

func (r *Repository) RemoveContribution(project plmc.ProjectID, id uint32) {
	r.contributions.remove(project, id)
}

// Contributions returns the unsettled contributions of a project in id order.
func (r *Repository) Contributions(project plmc.ProjectID) ([]*Contribution, error) {
	next, err := r.NextID(ContributionKind, project)
	if err != nil {
		return nil, err
	}
	return r.contributions.list(project, next)
}

// Exists reports whether the referenced participation is still unsettled.
func (r *Repository) Exists(project plmc.ProjectID, ref Ref) (bool, error) {
	key := storage.Compose(project, storage.Uint32(ref.ID))
	var (
		ok  bool
		err error
	)
	switch ref.Kind {
	case EvaluationKind:
		ok, err = r.evaluations.mapping.Exists(key)
	case BidKind:
		ok, err = r.bids.mapping.Exists(key)
	default:
		ok, err = r.contributions.mapping.Exists(key)
	}
	return ok, errors.Wrap(err, "failed to check participation")
}

// BoughtUSD returns the USD a DID spent in the project with participations of the kind.
func (r *Repository) BoughtUSD(kind Kind, project plmc.ProjectID, did plmc.DID) (*big.Int, error) {
	v, err := r.boughtUSD.Get(storage.Compose(kind, project, did))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bought usd")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

func (r *Repository) AddBoughtUSD(kind Kind, project plmc.ProjectID, did plmc.DID, amount *big.Int) error {
	total, err := r.BoughtUSD(kind, project, did)
	if err != nil {
		return err
	}
	total = new(big.Int).Add(total, amount)
	return errors.Wrap(r.boughtUSD.Set(storage.Compose(kind, project, did), total), "failed to set bought usd")
}

// HasWinningBid reports whether the DID has an accepted bid in the project.
func (r *Repository) HasWinningBid(project plmc.ProjectID, did plmc.DID) (bool, error) {
	ok, err := r.winningBids.Get(storage.Compose(project, did))
	return ok, errors.Wrap(err, "failed to get winning bid")
}

func (r *Repository) SetWinningBid(project plmc.ProjectID, did plmc.DID) error {
	return errors.Wrap(r.winningBids.Set(storage.Compose(project, did), true), "failed to set winning bid")
}

// ParticipatedProjects returns the number of distinct projects the DID joined as retail.
func (r *Repository) ParticipatedProjects(did plmc.DID) (uint32, error) {
	list, err := r.retailProjects.Get(did)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get retail participations")
	}
	return uint32(len(list)), nil
}

// RecordRetailParticipation adds the project to the DID's distinct projects.
func (r *Repository) RecordRetailParticipation(did plmc.DID, project plmc.ProjectID) error {
	list, err := r.retailProjects.Get(did)
	if err != nil {
		return errors.Wrap(err, "failed to get retail participations")
	}
	if slices.Contains(list, project) {
		return nil
	}
	return errors.Wrap(r.retailProjects.Set(did, append(list, project)), "failed to set retail participations")
}

// Cursor returns the settlement scan position of the project.
func (r *Repository) Cursor(project plmc.ProjectID) (*Cursor, error) {
	c, err := r.cursors.Get(project)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get settlement cursor")
	}
	if c == nil {
		return &Cursor{}, nil
	}
	return c, nil
}

func (r *Repository) SetCursor(project plmc.ProjectID, c *Cursor) error {
	return errors.Wrap(r.cursors.Set(project, c), "failed to set settlement cursor")
}

// RetryList returns the participations whose settlement failed and waits for a retry.
func (r *Repository) RetryList(project plmc.ProjectID) ([]Ref, error) {
	list, err := r.retryList.Get(project)
	return list, errors.Wrap(err, "failed to get retry list")
}

func (r *Repository) SetRetryList(project plmc.ProjectID, list []Ref) error {
	if len(list) == 0 {
		r.retryList.Delete(project)
		return nil
	}
	return errors.Wrap(r.retryList.Set(project, list), "failed to set retry list")
}

// Unsettled reports whether any participation of the project is left to settle.
func (r *Repository) Unsettled(project plmc.ProjectID) (bool, error) {
	for _, kind := range []Kind{EvaluationKind, BidKind, ContributionKind} {
		next, err := r.NextID(kind, project)
		if err != nil {
			return false, err
		}
		for id := range next {
			ok, err := r.Exists(project, Ref{Kind: kind, ID: id})
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}
