// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap implements a write buffer with nested save points.
package stackedmap

// Source loads values missing from the buffer.
type Source[K comparable, V any] func(key K) (value V, exist bool, err error)

// StackedMap buffers writes in levels. A level sees the writes of the levels below it,
// and popping a level reverts exactly the writes made since its push.
type StackedMap[K comparable, V any] struct {
	src    Source[K, V]
	levels []map[K]V
	// revs holds, per key, the levels that wrote it in ascending order.
	revs map[K][]int
	// order is the first-write order of keys across live levels.
	order []K
}

// New creates a map falling back to src for keys never written.
func New[K comparable, V any](src Source[K, V]) *StackedMap[K, V] {
	return &StackedMap[K, V]{
		src:  src,
		revs: make(map[K][]int),
	}
}

// Depth returns the number of levels.
func (sm *StackedMap[K, V]) Depth() int {
	return len(sm.levels)
}

// Push opens a level and returns the depth before it.
func (sm *StackedMap[K, V]) Push() int {
	sm.levels = append(sm.levels, make(map[K]V))
	return len(sm.levels) - 1
}

// Pop drops the top level with its writes.
func (sm *StackedMap[K, V]) Pop() {
	top := len(sm.levels) - 1
	for key := range sm.levels[top] {
		revs := sm.revs[key]
		if len(revs) == 1 {
			delete(sm.revs, key)
		} else {
			sm.revs[key] = revs[:len(revs)-1]
		}
	}
	sm.levels = sm.levels[:top]

	live := sm.order[:0]
	for _, key := range sm.order {
		if _, ok := sm.revs[key]; ok {
			live = append(live, key)
		}
	}
	sm.order = live
}

// PopTo pops levels until the depth is reached.
func (sm *StackedMap[K, V]) PopTo(depth int) {
	for len(sm.levels) > depth {
		sm.Pop()
	}
}

// Get returns the latest buffered value of key, or the source value.
func (sm *StackedMap[K, V]) Get(key K) (V, bool, error) {
	if revs, ok := sm.revs[key]; ok {
		return sm.levels[revs[len(revs)-1]][key], true, nil
	}
	return sm.src(key)
}

// Put writes into the top level. It panics without a level.
func (sm *StackedMap[K, V]) Put(key K, value V) {
	top := len(sm.levels) - 1
	lvl := sm.levels[top]
	_, seen := lvl[key]
	lvl[key] = value
	if seen {
		return
	}
	revs, ok := sm.revs[key]
	if !ok {
		sm.order = append(sm.order, key)
	}
	sm.revs[key] = append(revs, top)
}

// Changes visits every written key once with its latest value, in first-write order.
// The visit stops when cb returns false.
func (sm *StackedMap[K, V]) Changes(cb func(key K, value V) bool) {
	for _, key := range sm.order {
		revs := sm.revs[key]
		if !cb(key, sm.levels[revs[len(revs)-1]][key]) {
			return
		}
	}
}
