// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb stores the funding state in goleveldb.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/polimec/polimec-node/kv"
	"github.com/polimec/polimec-node/log"
)

var logger = log.WithContext("pkg", "lvldb")

var _ kv.StoreCloser = (*LevelDB)(nil)

// minCacheSize and minOpenFiles are floors in MiB and handles.
const (
	minCacheSize = 16
	minOpenFiles = 16
)

// Options configures a level db instance.
type Options struct {
	// CacheSize in MiB, split between the block cache and the write buffer.
	CacheSize              int
	OpenFilesCacheCapacity int
	// Sync flushes every batch to disk before Write returns.
	Sync bool
}

// LevelDB is a kv store backed by goleveldb.
type LevelDB struct {
	db       *leveldb.DB
	stg      storage.Storage
	writeOpt *opt.WriteOptions
}

// New opens the database at path, creating it when missing.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open level db storage")
	}
	ldb, err := open(stg, opts)
	if err != nil {
		stg.Close()
		return nil, err
	}
	logger.Debug("level db opened", "path", path, "cache", opts.CacheSize, "sync", opts.Sync)
	return ldb, nil
}

// NewMem creates a database living in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, minCacheSize)
	openFiles := max(opts.OpenFilesCacheCapacity, minOpenFiles)

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFiles,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db, stg: stg, writeOpt: &opt.WriteOptions{Sync: opts.Sync}}, nil
}

// IsNotFound reports whether err was returned by Get for an absent key.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, nil)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, ldb.writeOpt)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, ldb.writeOpt)
}

// Close releases the database and its storage lock. Later operations fail.
func (ldb *LevelDB) Close() error {
	if err := ldb.db.Close(); err != nil {
		return err
	}
	return ldb.stg.Close()
}

func (ldb *LevelDB) NewBatch() kv.Batch {
	return &batch{ldb: ldb, batch: new(leveldb.Batch)}
}

type batch struct {
	ldb   *LevelDB
	batch *leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *batch) Len() int {
	return b.batch.Len()
}

func (b *batch) Write() error {
	return b.ldb.db.Write(b.batch, b.ldb.writeOpt)
}
