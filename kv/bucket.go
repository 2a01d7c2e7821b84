// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Bucket is a key prefix partitioning a store.
type Bucket string

// NewStore returns the view of src holding the keys of the bucket.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{prefix: b, src: src}
}

func (b Bucket) key(k []byte) []byte {
	out := make([]byte, 0, len(b)+len(k))
	return append(append(out, b...), k...)
}

type bucketStore struct {
	prefix Bucket
	src    Store
}

func (s *bucketStore) Get(key []byte) ([]byte, error) {
	return s.src.Get(s.prefix.key(key))
}

func (s *bucketStore) Has(key []byte) (bool, error) {
	return s.src.Has(s.prefix.key(key))
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, value []byte) error {
	return s.src.Put(s.prefix.key(key), value)
}

func (s *bucketStore) Delete(key []byte) error {
	return s.src.Delete(s.prefix.key(key))
}

func (s *bucketStore) NewBatch() Batch {
	return &bucketBatch{prefix: s.prefix, batch: s.src.NewBatch()}
}

type bucketBatch struct {
	prefix Bucket
	batch  Batch
}

func (b *bucketBatch) Put(key, value []byte) error {
	return b.batch.Put(b.prefix.key(key), value)
}

func (b *bucketBatch) Delete(key []byte) error {
	return b.batch.Delete(b.prefix.key(key))
}

func (b *bucketBatch) Len() int {
	return b.batch.Len()
}

func (b *bucketBatch) Write() error {
	return b.batch.Write()
}
