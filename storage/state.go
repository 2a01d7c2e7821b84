// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides the transactional key/value state the funding engine runs on,
// and typed accessors over it.
package storage

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/polimec/polimec-node/kv"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/stackedmap"
)

// State buffers writes over a kv store. Nested transactions are reverted independently,
// and writes reach the store only on Commit.
// State is not safe for concurrent use.
type State struct {
	db kv.Store
	sm *stackedmap.StackedMap[plmc.Bytes32, []byte]
	tx int
}

// New creates a state on top of the store.
func New(db kv.Store) *State {
	s := &State{db: db}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(func(key plmc.Bytes32) ([]byte, bool, error) {
		val, err := s.db.Get(key[:])
		if err != nil {
			if s.db.IsNotFound(err) {
				return nil, false, nil
			}
			return nil, false, errors.Wrap(err, "failed to read state")
		}
		return val, true, nil
	})
	s.sm.Push()
}

// Get returns the raw value stored at key, nil if absent.
func (s *State) Get(key plmc.Bytes32) ([]byte, error) {
	val, _, err := s.sm.Get(key)
	return val, err
}

// Set stores a raw value at key. An empty value deletes the key.
func (s *State) Set(key plmc.Bytes32, value []byte) {
	s.sm.Put(key, bytes.Clone(value))
}

// Delete removes the key.
func (s *State) Delete(key plmc.Bytes32) {
	s.sm.Put(key, []byte(nil))
}

// Transact runs fn in a nested transaction, reverting all its writes if fn returns an error.
func (s *State) Transact(fn func() error) error {
	depth := s.sm.Push()
	s.tx++
	defer func() { s.tx-- }()
	if err := fn(); err != nil {
		s.sm.PopTo(depth)
		return err
	}
	return nil
}

// InTransaction reports whether a Transact call is running.
func (s *State) InTransaction() bool {
	return s.tx > 0
}

// Commit flushes all buffered writes into the underlying store.
func (s *State) Commit() error {
	if s.InTransaction() {
		return errors.New("commit inside transaction")
	}
	var (
		batch = s.db.NewBatch()
		err   error
	)
	s.sm.Changes(func(key plmc.Bytes32, value []byte) bool {
		if len(value) == 0 {
			err = batch.Delete(key[:])
		} else {
			err = batch.Put(key[:], value)
		}
		return err == nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to stage state")
	}
	if batch.Len() > 0 {
		if err := batch.Write(); err != nil {
			return errors.Wrap(err, "failed to commit state")
		}
	}
	s.reset()
	return nil
}

// Discard drops all uncommitted writes.
func (s *State) Discard() {
	s.reset()
}
