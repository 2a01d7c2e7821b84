// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"errors"
	"math/big"
	"testing"

	"github.com/polimec/polimec-node/lvldb"
	"github.com/polimec/polimec-node/plmc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), db
}

type record struct {
	Name   string
	Amount *big.Int
}

func TestTransactReverts(t *testing.T) {
	s, _ := newState(t)
	m := NewMapping[plmc.ProjectID, *record](s, Slot("records"))

	require.NoError(t, m.Set(1, &record{"a", big.NewInt(1)}))

	errFail := errors.New("fail")
	err := s.Transact(func() error {
		require.NoError(t, m.Set(1, &record{"b", big.NewInt(2)}))
		require.NoError(t, m.Set(2, &record{"c", big.NewInt(3)}))
		return errFail
	})
	assert.ErrorIs(t, err, errFail)

	r, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "a", r.Name)

	r, err = m.Get(2)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestNestedTransact(t *testing.T) {
	s, _ := newState(t)
	v := NewValue[uint32](s, Slot("counter"))

	err := s.Transact(func() error {
		require.NoError(t, v.Set(1))
		inner := s.Transact(func() error {
			require.NoError(t, v.Set(2))
			return errors.New("inner")
		})
		assert.Error(t, inner)
		assert.True(t, s.InTransaction())
		return nil
	})
	require.NoError(t, err)

	got, err := v.Get()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got)
}

func TestCommit(t *testing.T) {
	s, db := newState(t)
	m := NewMapping[Bytes, string](s, Slot("strings"))

	require.NoError(t, m.Set(Bytes("k1"), "v1"))
	require.NoError(t, m.Set(Bytes("k2"), "v2"))
	m.Delete(Bytes("k2"))
	require.NoError(t, s.Commit())

	fresh := New(db)
	m2 := NewMapping[Bytes, string](fresh, Slot("strings"))
	v, err := m2.Get(Bytes("k1"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	ok, err := m2.Exists(Bytes("k2"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(Bytes("k3"), "v3"))
	s.Discard()
	ok, err = m.Exists(Bytes("k3"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommitInsideTransaction(t *testing.T) {
	s, _ := newState(t)
	err := s.Transact(func() error {
		return s.Commit()
	})
	assert.Error(t, err)
}

func TestCompose(t *testing.T) {
	a := Compose(Bytes("ab"), Bytes("c"))
	b := Compose(Bytes("a"), Bytes("bc"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Compose(Bytes("ab"), Bytes("c")))
}

func TestConfigVariable(t *testing.T) {
	s, _ := newState(t)

	def := NewConfigVariable("evaluation-duration", 10)
	def.Override(s)
	assert.Equal(t, uint32(10), def.Get())

	require.NoError(t, def.Store(s, 3))
	// already loaded
	def.Override(s)
	assert.Equal(t, uint32(10), def.Get())

	fresh := NewConfigVariable("evaluation-duration", 10)
	fresh.Override(s)
	assert.Equal(t, uint32(3), fresh.Get())
}
