// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math/big"

	"github.com/undinefi/undine/kv"
	"github.com/undinefi/undine/stackedmap"
	"github.com/undinefi/undine/undine"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// StorageEncoder encodes a value into storage bytes.
// An empty returned slice removes the entry.
type StorageEncoder interface {
	Encode() ([]byte, error)
}

// StorageDecoder decodes storage bytes into a value.
// Empty data means the entry does not exist.
type StorageDecoder interface {
	Decode(data []byte) error
}

type (
	balanceKey undine.Address
	storageKey struct {
		addr undine.Address
		key  undine.Bytes32
	}
)

// State manages world state: per-address wei balances and keyed storage
// records at fixed, content-addressed slots. All mutations live in a
// stacked revision map until staged to the underlying store, which gives
// entry points checkpoint/revert (all-or-nothing) semantics.
type State struct {
	store kv.GetPutter
	sm    *stackedmap.StackedMap // keeps revisions of state
}

// New create state object.
func New(store kv.GetPutter) *State {
	state := State{
		store: store,
	}
	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.storeGetter(key)
	})

	// one implicit checkpoint to make the stacked map writable
	state.sm.Push()
	return &state
}

// storeGetter implements stackedmap.MapGetter.
func (s *State) storeGetter(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case balanceKey:
		raw, err := s.store.Get(append([]byte("b"), k[:]...))
		if err != nil {
			if s.store.IsNotFound(err) {
				return &big.Int{}, true, nil
			}
			return nil, false, err
		}
		return new(big.Int).SetBytes(raw), true, nil
	case storageKey:
		raw, err := s.store.Get(storeStorageKey(k))
		if err != nil {
			if s.store.IsNotFound(err) {
				return []byte(nil), true, nil
			}
			return nil, false, err
		}
		return raw, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func storeStorageKey(k storageKey) []byte {
	return append(append([]byte("s"), k.addr[:]...), k.key[:]...)
}

// GetBalance returns wei balance for the given address.
func (s *State) GetBalance(addr undine.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return v.(*big.Int), nil
}

// SetBalance set wei balance for the given address.
func (s *State) SetBalance(addr undine.Address, balance *big.Int) error {
	s.sm.Put(balanceKey(addr), balance)
	return nil
}

// GetRawStorage returns raw storage bytes for the given key.
func (s *State) GetRawStorage(addr undine.Address, key undine.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// SetRawStorage set raw storage bytes for the given key.
// Empty raw deletes the entry.
func (s *State) SetRawStorage(addr undine.Address, key undine.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given key.
func (s *State) GetStorage(addr undine.Address, key undine.Bytes32) (undine.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return undine.Bytes32{}, err
	}
	return undine.BytesToBytes32(raw), nil
}

// SetStorage set storage value for the given key.
// Zero value deletes the entry.
func (s *State) SetStorage(addr undine.Address, key, value undine.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	// strip leading zero bytes so the stored form is canonical
	raw := value.Bytes()
	for len(raw) > 0 && raw[0] == 0 {
		raw = raw[1:]
	}
	s.SetRawStorage(addr, key, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// An empty encoded value removes the entry.
func (s *State) EncodeStorage(addr undine.Address, key undine.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Empty raw passed to dec means the entry does not exist.
func (s *State) DecodeStorage(addr undine.Address, key undine.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// GetStructuredStorage get and decode a structured storage value.
// v must implement StorageDecoder.
func (s *State) GetStructuredStorage(addr undine.Address, key undine.Bytes32, v StorageDecoder) error {
	return s.DecodeStorage(addr, key, v.Decode)
}

// SetStructuredStorage encode and set a structured storage value.
func (s *State) SetStructuredStorage(addr undine.Address, key undine.Bytes32, v StorageEncoder) error {
	return s.EncodeStorage(addr, key, v.Encode)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}
