// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migration

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polimec/polimec-node/funding/participation"
	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/lvldb"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

var (
	alice = plmc.BytesToAddress([]byte("alice"))
	bob   = plmc.BytesToAddress([]byte("bob"))
)

func newRepo(t *testing.T) *Repository {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(storage.New(db))
}

func migrationOf(user plmc.Address, kind participation.Kind, id uint32, amount int64) Migration {
	return Migration{
		Origin: Origin{User: plmc.PolkadotReceiver(user), ParticipationType: kind, ID: id},
		Info:   Info{ContributionTokenAmount: big.NewInt(amount), VestingTime: 10},
	}
}

func TestAdd(t *testing.T) {
	repo := newRepo(t)

	require.NoError(t, repo.Add(1, alice, migrationOf(alice, participation.BidKind, 0, 100), 3))
	require.NoError(t, repo.Add(1, alice, migrationOf(alice, participation.ContributionKind, 0, 50), 3))
	// same origin again
	require.NoError(t, repo.Add(1, alice, migrationOf(alice, participation.BidKind, 0, 100), 3))
	require.NoError(t, repo.Add(1, bob, migrationOf(bob, participation.EvaluationKind, 0, 7), 3))

	user, err := repo.User(1, alice)
	require.NoError(t, err)
	assert.Len(t, user.Migrations, 2)
	assert.Equal(t, int64(150), user.Total().Int64())
	assert.Equal(t, "NotStarted", user.Status.String())

	participants, err := repo.Participants(1)
	require.NoError(t, err)
	assert.Equal(t, []plmc.Address{alice, bob}, participants)

	n, err := repo.Unmigrated(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)

	_, err = repo.User(2, alice)
	assert.ErrorIs(t, err, reverts.ErrNoMigrationsFound)
}

func TestAddLimit(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Add(1, alice, migrationOf(alice, participation.BidKind, 0, 1), 2))
	require.NoError(t, repo.Add(1, alice, migrationOf(alice, participation.BidKind, 1, 1), 2))
	assert.ErrorIs(t, repo.Add(1, alice, migrationOf(alice, participation.BidKind, 2, 1), 2), reverts.ErrTooManyMigrations)
}

func TestConfirmOffchain(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Add(1, alice, migrationOf(alice, participation.BidKind, 0, 1), 5))

	require.NoError(t, repo.ConfirmOffchain(1, alice))
	assert.ErrorIs(t, repo.ConfirmOffchain(1, alice), reverts.ErrMigrationAlreadyConfirmed)
	assert.ErrorIs(t, repo.ConfirmOffchain(1, bob), reverts.ErrNoMigrationsFound)

	n, err := repo.Unmigrated(1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSendAndResolve(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Add(1, alice, migrationOf(alice, participation.BidKind, 0, 1), 5))

	q, err := repo.NewQueryID()
	require.NoError(t, err)
	require.NoError(t, repo.MarkSent(1, alice, q))
	assert.ErrorIs(t, repo.MarkSent(1, alice, q), reverts.ErrMigrationAlreadySent)

	query, err := repo.Query(q)
	require.NoError(t, err)
	assert.Equal(t, &Query{Kind: MigrationQuery, Project: 1, Participant: alice}, query)

	// failure allows a resend under a new query
	applied, err := repo.Resolve(1, alice, q, false)
	require.NoError(t, err)
	assert.True(t, applied)
	user, err := repo.User(1, alice)
	require.NoError(t, err)
	assert.Equal(t, Failed, user.Status.Kind)

	q2, err := repo.NewQueryID()
	require.NoError(t, err)
	assert.Equal(t, q+1, q2)
	require.NoError(t, repo.MarkSent(1, alice, q2))

	applied, err = repo.Resolve(1, alice, q2, true)
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = repo.Resolve(1, alice, q2, true)
	require.NoError(t, err)
	assert.False(t, applied)

	n, err := repo.Unmigrated(1)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, repo.MarkSent(1, alice, 99), reverts.ErrMigrationAlreadyConfirmed)
}

func TestCall(t *testing.T) {
	migrations := []Migration{
		migrationOf(alice, participation.BidKind, 0, 100),
		migrationOf(alice, participation.ContributionKind, 3, 5),
	}
	raw, err := EncodeCall(4, migrations)
	require.NoError(t, err)

	call, err := DecodeCall(raw)
	require.NoError(t, err)
	assert.Equal(t, plmc.ProjectID(4), call.Project)
	require.Len(t, call.Migrations, 2)
	assert.Equal(t, uint32(3), call.Migrations[1].Origin.ID)
	assert.Equal(t, int64(5), call.Migrations[1].Info.ContributionTokenAmount.Int64())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Sent(7)", Status{Kind: Sent, QueryID: 7}.String())
	assert.Equal(t, "Confirmed", Status{Kind: Confirmed}.String())
}
