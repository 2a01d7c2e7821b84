// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the byte store the funding state is persisted in.
package kv

// Store is a byte key/value store.
type Store interface {
	// Get fails for absent keys with an error recognized by IsNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool

	Put(key, value []byte) error
	Delete(key []byte) error

	// NewBatch stages writes that reach the store together on Write.
	NewBatch() Batch
}

// StoreCloser is a store owning its resources.
type StoreCloser interface {
	Store
	Close() error
}

// Batch stages puts and deletes.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error

	// Len is the number of staged operations.
	Len() int
	Write() error
}
