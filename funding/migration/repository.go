// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migration

import (
	"encoding/binary"
	"slices"

	"github.com/pkg/errors"

	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

var (
	slotUserMigrations = storage.Slot("user-migrations")
	slotParticipants   = storage.Slot("migration-participants")
	slotUnmigrated     = storage.Slot("unmigrated-counter")
	slotExecuted       = storage.Slot("executed-migrations")
	slotQueries        = storage.Slot("migration-queries")
	slotNextQueryID    = storage.Slot("next-query-id")
)

type queryID uint64

func (q queryID) Bytes() []byte { return binary.BigEndian.AppendUint64(nil, uint64(q)) }

// Repository stores the migrations of all projects.
type Repository struct {
	users        *storage.Mapping[storage.Bytes, *UserMigrations]
	participants *storage.Mapping[plmc.ProjectID, []plmc.Address]
	unmigrated   *storage.Mapping[plmc.ProjectID, uint32]
	executed     *storage.Mapping[storage.Bytes, bool]
	queries      *storage.Mapping[queryID, *Query]
	nextQueryID  *storage.Value[uint64]
}

func NewRepository(state *storage.State) *Repository {
	return &Repository{
		users:        storage.NewMapping[storage.Bytes, *UserMigrations](state, slotUserMigrations),
		participants: storage.NewMapping[plmc.ProjectID, []plmc.Address](state, slotParticipants),
		unmigrated:   storage.NewMapping[plmc.ProjectID, uint32](state, slotUnmigrated),
		executed:     storage.NewMapping[storage.Bytes, bool](state, slotExecuted),
		queries:      storage.NewMapping[queryID, *Query](state, slotQueries),
		nextQueryID:  storage.NewValue[uint64](state, slotNextQueryID),
	}
}

// Add records a migration for the participant. Adding the same origin twice is a no-op.
// A participant holds at most max migrations per project.
func (r *Repository) Add(project plmc.ProjectID, participant plmc.Address, m Migration, max int) error {
	flag := storage.Compose(project, participant, m.Origin.ParticipationType, storage.Uint32(m.Origin.ID))
	done, err := r.executed.Get(flag)
	if err != nil {
		return errors.Wrap(err, "failed to get executed migration")
	}
	if done {
		return nil
	}

	key := storage.Compose(project, participant)
	user, err := r.users.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get user migrations")
	}
	if user == nil {
		user = &UserMigrations{}
		if err := r.addParticipant(project, participant); err != nil {
			return err
		}
	}
	if len(user.Migrations) >= max {
		return reverts.ErrTooManyMigrations
	}
	user.Migrations = append(user.Migrations, m)
	if err := r.users.Set(key, user); err != nil {
		return errors.Wrap(err, "failed to set user migrations")
	}
	return errors.Wrap(r.executed.Set(flag, true), "failed to set executed migration")
}

func (r *Repository) addParticipant(project plmc.ProjectID, participant plmc.Address) error {
	list, err := r.participants.Get(project)
	if err != nil {
		return errors.Wrap(err, "failed to get migration participants")
	}
	if slices.Contains(list, participant) {
		return nil
	}
	if err := r.participants.Set(project, append(list, participant)); err != nil {
		return errors.Wrap(err, "failed to set migration participants")
	}
	n, err := r.unmigrated.Get(project)
	if err != nil {
		return errors.Wrap(err, "failed to get unmigrated counter")
	}
	return errors.Wrap(r.unmigrated.Set(project, n+1), "failed to set unmigrated counter")
}

// User returns the migrations of the participant.
func (r *Repository) User(project plmc.ProjectID, participant plmc.Address) (*UserMigrations, error) {
	user, err := r.users.Get(storage.Compose(project, participant))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user migrations")
	}
	if user == nil {
		return nil, reverts.ErrNoMigrationsFound
	}
	return user, nil
}

func (r *Repository) setUser(project plmc.ProjectID, participant plmc.Address, user *UserMigrations) error {
	return errors.Wrap(r.users.Set(storage.Compose(project, participant), user), "failed to set user migrations")
}

// Participants returns the participants with migrations in creation order.
func (r *Repository) Participants(project plmc.ProjectID) ([]plmc.Address, error) {
	list, err := r.participants.Get(project)
	return list, errors.Wrap(err, "failed to get migration participants")
}

// Unmigrated returns the number of participants whose migrations are not confirmed.
func (r *Repository) Unmigrated(project plmc.ProjectID) (uint32, error) {
	n, err := r.unmigrated.Get(project)
	return n, errors.Wrap(err, "failed to get unmigrated counter")
}

func (r *Repository) decrementUnmigrated(project plmc.ProjectID) error {
	n, err := r.Unmigrated(project)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return errors.Wrap(r.unmigrated.Set(project, n-1), "failed to set unmigrated counter")
}

// ConfirmOffchain marks the migrations of a participant as delivered by the issuer.
func (r *Repository) ConfirmOffchain(project plmc.ProjectID, participant plmc.Address) error {
	user, err := r.User(project, participant)
	if err != nil {
		return err
	}
	if user.Status.Kind != NotStarted {
		return reverts.ErrMigrationAlreadyConfirmed
	}
	user.Status = Status{Kind: Confirmed}
	if err := r.setUser(project, participant, user); err != nil {
		return err
	}
	return r.decrementUnmigrated(project)
}

// MarkSent records that the migrations of the participant were sent, answering to query.
// Only not started or failed migrations can be sent.
func (r *Repository) MarkSent(project plmc.ProjectID, participant plmc.Address, query uint64) error {
	user, err := r.User(project, participant)
	if err != nil {
		return err
	}
	switch user.Status.Kind {
	case Confirmed:
		return reverts.ErrMigrationAlreadyConfirmed
	case Sent:
		return reverts.ErrMigrationAlreadySent
	}
	user.Status = Status{Kind: Sent, QueryID: query}
	if err := r.setUser(project, participant, user); err != nil {
		return err
	}
	return r.SetQuery(query, &Query{Kind: MigrationQuery, Project: project, Participant: participant})
}

// Resolve applies the answer to a migration query. Answers for already resolved migrations are
// ignored and reported as not applied.
func (r *Repository) Resolve(project plmc.ProjectID, participant plmc.Address, query uint64, success bool) (bool, error) {
	user, err := r.User(project, participant)
	if err != nil {
		return false, err
	}
	if user.Status.Kind != Sent || user.Status.QueryID != query {
		return false, nil
	}
	if success {
		user.Status = Status{Kind: Confirmed}
	} else {
		user.Status = Status{Kind: Failed}
	}
	if err := r.setUser(project, participant, user); err != nil {
		return false, err
	}
	r.queries.Delete(queryID(query))
	if success {
		return true, r.decrementUnmigrated(project)
	}
	return true, nil
}

// NewQueryID allocates a cross chain query id.
func (r *Repository) NewQueryID() (uint64, error) {
	id, err := r.nextQueryID.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get next query id")
	}
	return id, errors.Wrap(r.nextQueryID.Set(id+1), "failed to set next query id")
}

func (r *Repository) SetQuery(id uint64, q *Query) error {
	return errors.Wrap(r.queries.Set(queryID(id), q), "failed to set query")
}

// Query returns the pending query with the id, nil if unknown.
func (r *Repository) Query(id uint64) (*Query, error) {
	q, err := r.queries.Get(queryID(id))
	return q, errors.Wrap(err, "failed to get query")
}

func (r *Repository) RemoveQuery(id uint64) {
	r.queries.Delete(queryID(id))
}
