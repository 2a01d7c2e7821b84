// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package project

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/polimec/polimec-node/funding/bucket"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

var (
	slotNextProjectID = storage.Slot("next-project-id")
	slotMetadata      = storage.Slot("projects-metadata")
	slotDetails       = storage.Slot("projects-details")
	slotBuckets       = storage.Slot("projects-buckets")
	slotActiveDIDs    = storage.Slot("did-with-active-projects")
	slotSettling      = storage.Slot("projects-in-settlement")
	slotParaProjects  = storage.Slot("para-projects")
)

// activeProject is the project a DID currently runs.
type activeProject struct {
	ID plmc.ProjectID
}

// Repository stores projects.
type Repository struct {
	nextID   *storage.Value[uint32]
	metadata *storage.Mapping[plmc.ProjectID, *Metadata]
	details  *storage.Mapping[plmc.ProjectID, *Details]
	buckets  *storage.Mapping[plmc.ProjectID, *bucket.Bucket]
	active   *storage.Mapping[plmc.DID, *activeProject]
	settling *storage.Value[[]plmc.ProjectID]
	paras    *storage.Mapping[storage.Uint32, *activeProject]
}

func NewRepository(state *storage.State) *Repository {
	return &Repository{
		nextID:   storage.NewValue[uint32](state, slotNextProjectID),
		metadata: storage.NewMapping[plmc.ProjectID, *Metadata](state, slotMetadata),
		details:  storage.NewMapping[plmc.ProjectID, *Details](state, slotDetails),
		buckets:  storage.NewMapping[plmc.ProjectID, *bucket.Bucket](state, slotBuckets),
		active:   storage.NewMapping[plmc.DID, *activeProject](state, slotActiveDIDs),
		settling: storage.NewValue[[]plmc.ProjectID](state, slotSettling),
		paras:    storage.NewMapping[storage.Uint32, *activeProject](state, slotParaProjects),
	}
}

// NextID returns the id the next created project gets.
func (r *Repository) NextID() (plmc.ProjectID, error) {
	id, err := r.nextID.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get next project id")
	}
	return plmc.ProjectID(id), nil
}

// Create stores a new project under the next id.
func (r *Repository) Create(metadata *Metadata, details *Details, b *bucket.Bucket) (plmc.ProjectID, error) {
	id, err := r.NextID()
	if err != nil {
		return 0, err
	}
	if err := r.SetMetadata(id, metadata); err != nil {
		return 0, err
	}
	if err := r.SetDetails(id, details); err != nil {
		return 0, err
	}
	if err := r.SetBucket(id, b); err != nil {
		return 0, err
	}
	if err := r.nextID.Set(uint32(id) + 1); err != nil {
		return 0, errors.Wrap(err, "failed to set next project id")
	}
	return id, nil
}

// Metadata returns the metadata of the project.
func (r *Repository) Metadata(id plmc.ProjectID) (*Metadata, error) {
	m, err := r.metadata.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get project metadata")
	}
	if m == nil {
		return nil, reverts.ErrProjectNotFound
	}
	return m, nil
}

func (r *Repository) SetMetadata(id plmc.ProjectID, m *Metadata) error {
	return errors.Wrap(r.metadata.Set(id, m), "failed to set project metadata")
}

// Details returns the round state of the project.
func (r *Repository) Details(id plmc.ProjectID) (*Details, error) {
	d, err := r.details.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get project details")
	}
	if d == nil {
		return nil, reverts.ErrProjectNotFound
	}
	return d, nil
}

func (r *Repository) SetDetails(id plmc.ProjectID, d *Details) error {
	return errors.Wrap(r.details.Set(id, d), "failed to set project details")
}

// Bucket returns the auction price ladder of the project.
func (r *Repository) Bucket(id plmc.ProjectID) (*bucket.Bucket, error) {
	b, err := r.buckets.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get project bucket")
	}
	if b == nil {
		return nil, reverts.ErrProjectNotFound
	}
	return b, nil
}

func (r *Repository) SetBucket(id plmc.ProjectID, b *bucket.Bucket) error {
	return errors.Wrap(r.buckets.Set(id, b), "failed to set project bucket")
}

// Remove deletes all state of the project.
func (r *Repository) Remove(id plmc.ProjectID) {
	r.metadata.Delete(id)
	r.details.Delete(id)
	r.buckets.Delete(id)
}

// ActiveProject returns the project the DID currently runs.
func (r *Repository) ActiveProject(did plmc.DID) (plmc.ProjectID, bool, error) {
	a, err := r.active.Get(did)
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to get active project")
	}
	if a == nil {
		return 0, false, nil
	}
	return a.ID, true, nil
}

func (r *Repository) SetActiveProject(did plmc.DID, id plmc.ProjectID) error {
	return errors.Wrap(r.active.Set(did, &activeProject{ID: id}), "failed to set active project")
}

func (r *Repository) ClearActiveProject(did plmc.DID) {
	r.active.Delete(did)
}

// Settling returns the projects with a settlement in progress, in start order.
func (r *Repository) Settling() ([]plmc.ProjectID, error) {
	list, err := r.settling.Get()
	return list, errors.Wrap(err, "failed to get settling projects")
}

func (r *Repository) AddSettling(id plmc.ProjectID) error {
	list, err := r.Settling()
	if err != nil {
		return err
	}
	if slices.Contains(list, id) {
		return nil
	}
	return errors.Wrap(r.settling.Set(append(list, id)), "failed to set settling projects")
}

func (r *Repository) RemoveSettling(id plmc.ProjectID) error {
	list, err := r.Settling()
	if err != nil {
		return err
	}
	list = slices.DeleteFunc(list, func(p plmc.ProjectID) bool { return p == id })
	return errors.Wrap(r.settling.Set(list), "failed to set settling projects")
}

// ParaProject returns the project migrating to the chain.
func (r *Repository) ParaProject(para uint32) (plmc.ProjectID, bool, error) {
	a, err := r.paras.Get(storage.Uint32(para))
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to get para project")
	}
	if a == nil {
		return 0, false, nil
	}
	return a.ID, true, nil
}

func (r *Repository) SetParaProject(para uint32, id plmc.ProjectID) error {
	return errors.Wrap(r.paras.Set(storage.Uint32(para), &activeProject{ID: id}), "failed to set para project")
}
