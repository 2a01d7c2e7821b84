// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scheduler

import (
	"testing"

	"github.com/polimec/polimec-node/funding/reverts"
	"github.com/polimec/polimec-node/lvldb"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler(t *testing.T, max uint32) (*Scheduler, *storage.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	state := storage.New(db)
	return New(state, max), state
}

func TestAddAndPop(t *testing.T) {
	s, _ := newScheduler(t, 10)

	block, err := s.Add(5, Entry{Project: 1, Update: EvaluationEnd})
	require.NoError(t, err)
	assert.Equal(t, uint32(5), block)

	_, err = s.Add(5, Entry{Project: 2, Update: FundingEnd})
	require.NoError(t, err)

	entries, err := s.Pop(5)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{1, EvaluationEnd}, {2, FundingEnd}}, entries)

	entries, err = s.Pop(5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCongestionMovesToNextBlock(t *testing.T) {
	s, _ := newScheduler(t, 2)

	var placed []uint32
	for i := range 5 {
		block, err := s.Add(10, Entry{Project: plmc.ProjectID(i), Update: FundingEnd})
		require.NoError(t, err)
		placed = append(placed, block)
	}
	assert.Equal(t, []uint32{10, 10, 11, 11, 12}, placed)

	for _, block := range []uint32{10, 11} {
		entries, err := s.Entries(block)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	}
}

func TestRemove(t *testing.T) {
	s, _ := newScheduler(t, 10)

	_, err := s.Add(20, Entry{Project: 1, Update: AuctionOpeningStart})
	require.NoError(t, err)
	_, err = s.Add(20, Entry{Project: 2, Update: AuctionOpeningStart})
	require.NoError(t, err)
	_, err = s.Add(30, Entry{Project: 3, Update: FundingEnd})
	require.NoError(t, err)

	removed, block, err := s.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(20), block)
	assert.Equal(t, AuctionOpeningStart, removed.Update)

	entries, err := s.Entries(20)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{2, AuctionOpeningStart}}, entries)

	_, _, err = s.Remove(1)
	assert.ErrorIs(t, err, reverts.ErrProjectNotInUpdateStore)

	_, block, err = s.Remove(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), block)

	_, _, found, err := s.Find(3)
	require.NoError(t, err)
	assert.False(t, found)

	entry, block, found, err := s.Find(2)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint32(20), block)
	assert.Equal(t, AuctionOpeningStart, entry.Update)
}

func TestRollback(t *testing.T) {
	s, state := newScheduler(t, 10)

	err := state.Transact(func() error {
		_, err := s.Add(3, Entry{Project: 1, Update: EvaluationEnd})
		require.NoError(t, err)
		return reverts.ErrIncorrectRound
	})
	assert.ErrorIs(t, err, reverts.ErrIncorrectRound)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNext(t *testing.T) {
	s, _ := newScheduler(t, 10)

	_, ok, err := s.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	for _, b := range []uint32{30, 12, 20} {
		_, err := s.Add(b, Entry{Project: plmc.ProjectID(b), Update: FundingEnd})
		require.NoError(t, err)
	}
	next, ok, err := s.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(12), next)

	_, err = s.Pop(12)
	require.NoError(t, err)
	next, _, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, uint32(20), next)
}
