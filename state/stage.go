// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/undinefi/undine/kv"
)

// Stage abstracts the changes on top of the underlying store, ready to be
// committed. Keys touched more than once collapse to their latest value.
type Stage struct {
	store   kv.Putter
	changes []change
}

type change struct {
	key   []byte
	value []byte
}

// Stage collects all journaled changes of this state into a commitable stage.
// The state remains usable afterwards.
func (s *State) Stage() *Stage {
	latest := make(map[string]int)
	var changes []change

	put := func(key, value []byte) {
		if i, ok := latest[string(key)]; ok {
			changes[i].value = value
			return
		}
		latest[string(key)] = len(changes)
		changes = append(changes, change{key: key, value: value})
	}

	s.sm.Journal(func(key, value any) bool {
		switch k := key.(type) {
		case balanceKey:
			put(append([]byte("b"), k[:]...), value.(*big.Int).Bytes())
		case storageKey:
			put(storeStorageKey(k), value.([]byte))
		}
		return true
	})

	return &Stage{store: s.store, changes: changes}
}

// Commit writes all staged changes into the underlying store in one batch.
func (s *Stage) Commit() error {
	batch := s.store.NewBatch()
	for _, c := range s.changes {
		if len(c.value) == 0 {
			if err := batch.Delete(c.key); err != nil {
				return &Error{err}
			}
			continue
		}
		if err := batch.Put(c.key, c.value); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	return nil
}
