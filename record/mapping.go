// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/undinefi/undine/undine"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for protocol components,
// similar to a mapping in a smart contract. Each entry lives at the
// content-addressed slot blake2b(key, basePos), which keeps the layout
// stable across logic upgrades.
type Mapping[K Key, V any] struct {
	context *Context
	basePos undine.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos undine.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

// Position returns the storage slot of the given key.
func (m *Mapping[K, V]) Position(key K) undine.Bytes32 {
	return undine.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	position := m.Position(key)
	err = m.context.state.DecodeStorage(m.context.address, position, func(raw []byte) error {
		if len(raw) == 0 {
			// entry absent, value keeps its zero value
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores the value at the key's slot. A nil pointer value removes the entry.
func (m *Mapping[K, V]) Set(key K, value V) error {
	position := m.Position(key)
	return m.context.state.EncodeStorage(m.context.address, position, func() ([]byte, error) {
		if rv := reflect.ValueOf(value); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nil, nil
		}
		return rlp.EncodeToBytes(value)
	})
}
