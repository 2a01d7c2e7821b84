// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/polimec/polimec-node/plmc"
)

type Key interface {
	Bytes() []byte
}

// Bytes is a raw key.
type Bytes []byte

func (b Bytes) Bytes() []byte { return b }

// Uint32 is a big endian encoded key.
type Uint32 uint32

func (u Uint32) Bytes() []byte { return binary.BigEndian.AppendUint32(nil, uint32(u)) }

// Compose joins keys into one, each part length prefixed.
func Compose(parts ...Key) Bytes {
	var out []byte
	for _, p := range parts {
		b := p.Bytes()
		out = binary.AppendUvarint(out, uint64(len(b)))
		out = append(out, b...)
	}
	return out
}

// Slot derives a base position from a name.
func Slot(name string) plmc.Bytes32 {
	return plmc.BytesToBytes32([]byte(name))
}

// Mapping is a rlp encoded key/value storage abstraction rooted at a base position.
type Mapping[K Key, V any] struct {
	state   *State
	basePos plmc.Bytes32
}

func NewMapping[K Key, V any](state *State, pos plmc.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{state: state, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) plmc.Bytes32 {
	return plmc.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value for key, the zero value if absent.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	raw, err := m.state.Get(m.position(key))
	if err != nil || len(raw) == 0 {
		return value, err
	}
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		err = rlp.DecodeBytes(raw, value)
	} else {
		err = rlp.DecodeBytes(raw, &value)
	}
	if err != nil {
		return value, errors.Wrap(err, "failed to decode storage")
	}
	return value, nil
}

// Exists reports whether a value is stored for key.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	raw, err := m.state.Get(m.position(key))
	return len(raw) > 0, err
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	val, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "failed to encode storage")
	}
	m.state.Set(m.position(key), val)
	return nil
}

func (m *Mapping[K, V]) Delete(key K) {
	m.state.Delete(m.position(key))
}

// Value is a single rlp encoded value stored at a fixed position.
type Value[V any] struct {
	state *State
	pos   plmc.Bytes32
}

func NewValue[V any](state *State, pos plmc.Bytes32) *Value[V] {
	return &Value[V]{state: state, pos: pos}
}

func (v *Value[V]) Get() (value V, err error) {
	raw, err := v.state.Get(v.pos)
	if err != nil || len(raw) == 0 {
		return value, err
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, errors.Wrap(err, "failed to decode storage")
	}
	return value, nil
}

func (v *Value[V]) Set(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "failed to encode storage")
	}
	v.state.Set(v.pos, raw)
	return nil
}
